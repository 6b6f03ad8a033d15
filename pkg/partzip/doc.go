// Package partzip builds a zip archive from a directory tree and splits it
// into size-bounded parts.
//
// # Building
//
// [Build] walks a directory and zips every regular file under its relative
// path. An empty tree still yields a valid, zero-entry archive.
//
// # Splitting
//
// [Split] cuts the archive's raw bytes into parts of exactly the requested
// ceiling, the final part holding the remainder. The cut operates on bytes,
// not on zip entries: an individual part is NOT an openable archive. The
// reconstruction contract is to concatenate all parts in ascending numeric
// order, in binary mode, which reproduces the original archive
// byte-for-byte. This trades per-part openability for a trivially correct
// split and join.
//
// Split also writes a sidecar part manifest (archive path + ".parts.json")
// recording each part's size and sha256, which [Join] and [Validate] use.
//
// # Naming
//
//	finance_output.zip            the single archive
//	finance_output_part1.zip      first part after a split
//	finance_output_part2.zip      ...contiguous 1-based numbering
//	finance_output.zip.parts.json part manifest
package partzip

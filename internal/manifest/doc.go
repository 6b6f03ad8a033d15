// Package manifest parses the tabular input that drives a batch run.
//
// The input is CSV with case-insensitive headers. Required columns are
// record_id, dt, and one URL column per document category. A missing column
// rejects the whole input before any network activity; individual rows with
// an empty record_id or an unparseable date are rejected per-row and
// reported, without affecting the rest of the batch.
package manifest

// Package progress reports batch progress to a terminal.
//
// The reporter tracks rows, fetch items, and bytes with atomic counters and
// refreshes a status line on an interval. Row progress is monotonic: a row is
// counted exactly once, after all of its items have finished.
//
// The package also provides FormatBytes and ParseBytes for human-readable
// byte counts ("23MB", "1.5GB"), used by the config layer for the archive
// size ceiling.
package progress

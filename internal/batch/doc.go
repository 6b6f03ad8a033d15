// Package batch turns a parsed manifest into a populated working tree.
//
// For every row and every category with a URL, the processor derives the
// storage path, ensures the directory chain exists, and fetches the document.
// A failed item is recorded in the report and processing continues; nothing
// short of an unusable working root aborts the batch. Retrieval may run on a
// bounded worker pool; a failure in one worker never cancels the others, and
// every item is awaited before the report is finalized.
package batch

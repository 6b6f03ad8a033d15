// Package deliver uploads finished artifacts to object storage.
//
// Buckets are addressed by URL (s3://, gs://, mem://) via the Go CDK blob
// API, so the same code path serves cloud storage in production and
// in-memory buckets in tests. Drivers are registered by the caller through
// blank imports.
package deliver

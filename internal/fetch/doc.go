// Package fetch retrieves remote documents over HTTP into local files.
//
// This package handles:
//   - Connection pooling for bulk retrieval
//   - Status-code mapping to sentinel errors
//   - Optional retry with exponential backoff (single attempt by default)
//   - Atomic storage: stream to a scratch file, rename on success
//
// # Usage
//
//	client := fetch.NewClient(fetch.DefaultOptions())
//	n, err := client.FetchFile(ctx, url, cred, "/work/RID_42/2024/Invoices/Invoice_2024_03_01.pdf")
//
// A failed fetch never leaves a partial or zero-byte file at the
// destination path.
package fetch

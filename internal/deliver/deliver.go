package deliver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"gocloud.dev/blob"
)

// Upload copies the given local files into the bucket under prefix, keyed by
// their base names. Files are uploaded one at a time; the first failure aborts
// the upload and is returned.
func Upload(ctx context.Context, bucket *blob.Bucket, prefix string, paths []string) error {
	for _, p := range paths {
		if err := uploadFile(ctx, bucket, prefix, p); err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, bucket *blob.Bucket, prefix, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	key := path.Join(prefix, filepath.Base(src))
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	return nil
}

// UploadURL opens the bucket at bucketURL and uploads the given files.
// The driver is selected by the URL scheme (s3://, gs://, mem://, file://).
func UploadURL(ctx context.Context, bucketURL, prefix string, paths []string) error {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("open bucket %s: %w", bucketURL, err)
	}
	defer bucket.Close()

	return Upload(ctx, bucket, prefix, paths)
}

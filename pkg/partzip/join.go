package partzip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Join reconstructs the original archive from the parts listed in the
// manifest at manifestPath, writing it to dest. Parts are concatenated in
// ascending numeric order in binary mode; the result is byte-for-byte
// identical to the pre-split archive. The output is written to a scratch
// file and renamed into place only after every part has been copied.
//
// Returns the number of bytes written.
func Join(manifestPath, dest string, options ...Option) (int64, error) {
	opts := Options{}
	for _, opt := range options {
		opt(&opts)
	}

	m, err := LoadManifest(manifestPath)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(manifestPath)
	scratch := dest + ".part"
	out, err := os.Create(scratch)
	if err != nil {
		return 0, fmt.Errorf("partzip: create output: %w", err)
	}

	var total int64
	for i, pi := range m.Parts {
		n, err := copyPart(filepath.Join(dir, pi.Name), out, pi, opts.VerifyChecksum)
		if err != nil {
			out.Close()
			os.Remove(scratch)
			return 0, fmt.Errorf("partzip: part %d: %w", i+1, err)
		}
		total += n
	}

	if err := out.Close(); err != nil {
		os.Remove(scratch)
		return 0, fmt.Errorf("partzip: close output: %w", err)
	}

	if total != m.TotalSize {
		os.Remove(scratch)
		return 0, fmt.Errorf("partzip: size mismatch: joined %d bytes, manifest says %d", total, m.TotalSize)
	}

	if err := os.Rename(scratch, dest); err != nil {
		os.Remove(scratch)
		return 0, fmt.Errorf("partzip: rename output: %w", err)
	}

	return total, nil
}

func copyPart(path string, out io.Writer, pi PartInfo, verify bool) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := out
	hash := sha256.New()
	if verify && pi.Checksum != "" {
		w = io.MultiWriter(out, hash)
	}

	n, err := io.Copy(w, f)
	if err != nil {
		return n, err
	}
	if n != pi.Size {
		return n, fmt.Errorf("size mismatch: expected %d, got %d", pi.Size, n)
	}

	if verify && pi.Checksum != "" {
		actual := hex.EncodeToString(hash.Sum(nil))
		if actual != pi.Checksum {
			return n, fmt.Errorf("checksum mismatch: expected %s, got %s", pi.Checksum, actual)
		}
	}

	return n, nil
}

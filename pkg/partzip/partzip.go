package partzip

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ManifestSuffix is appended to the archive path to name the part manifest.
const ManifestSuffix = ".parts.json"

// ErrEmptyArchive is returned by Split when the archive has no bytes.
var ErrEmptyArchive = errors.New("partzip: archive is empty")

// Manifest describes a split archive. Parts are ordered; part numbers are
// 1-based and contiguous, so Parts[i] is part i+1.
type Manifest struct {
	Archive   string     `json:"archive"`
	TotalSize int64      `json:"total_size"`
	PartSize  int64      `json:"part_size"`
	Parts     []PartInfo `json:"parts"`
	CreatedAt time.Time  `json:"created_at"`
}

// PartInfo describes a single part file, named relative to the manifest's
// directory.
type PartInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
}

// Options configures split, join, and validate operations.
type Options struct {
	ComputeChecksum bool // Compute sha256 per part during Split (default: true)
	VerifyChecksum  bool // Verify checksums during Join/Validate
}

// Option is a functional option for configuring partzip operations.
type Option func(*Options)

// WithChecksum enables or disables sha256 computation during Split.
// Default is true.
func WithChecksum(compute bool) Option {
	return func(o *Options) {
		o.ComputeChecksum = compute
	}
}

// WithVerifyChecksum enables checksum verification during Join and Validate.
// Parts without a stored checksum are skipped.
func WithVerifyChecksum(verify bool) Option {
	return func(o *Options) {
		o.VerifyChecksum = verify
	}
}

// Build creates a zip archive at dest containing every regular file under
// root, each stored under its slash-separated path relative to root. The
// traversal is lexical, so the entry set and order are stable for a given
// tree. An empty tree produces a valid zero-entry archive.
//
// Returns the archive size in bytes.
func Build(root, dest string) (int64, error) {
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return 0, fmt.Errorf("partzip: resolve dest: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("partzip: create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if abs == destAbs {
			// Never archive the archive itself.
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})
	if walkErr != nil {
		zw.Close()
		out.Close()
		os.Remove(dest)
		return 0, fmt.Errorf("partzip: add entries: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dest)
		return 0, fmt.Errorf("partzip: finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("partzip: close archive: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return 0, fmt.Errorf("partzip: stat archive: %w", err)
	}
	return info.Size(), nil
}

// PartName returns the file name of part n for the given archive name:
// finance_output.zip, 2 -> finance_output_part2.zip.
func PartName(archive string, n int) string {
	ext := filepath.Ext(archive)
	base := strings.TrimSuffix(archive, ext)
	return fmt.Sprintf("%s_part%d%s", base, n, ext)
}

// Split cuts the archive's raw bytes into contiguous parts of exactly
// ceiling bytes each; the final part holds the remainder (1..ceiling bytes).
// Parts are written next to the archive, numbered contiguously from 1 in
// stream order, and a part manifest is written at archive+ManifestSuffix.
//
// Parts are byte slices of the archive, not archives themselves: none of
// them can be opened on its own. Concatenating all parts in ascending
// numeric order reproduces the archive byte-for-byte.
func Split(archive string, ceiling int64, options ...Option) (*Manifest, error) {
	opts := Options{ComputeChecksum: true}
	for _, opt := range options {
		opt(&opts)
	}

	if ceiling <= 0 {
		return nil, errors.New("partzip: ceiling must be positive")
	}

	f, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("partzip: open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("partzip: stat archive: %w", err)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyArchive
	}

	dir := filepath.Dir(archive)
	base := filepath.Base(archive)
	numParts := int((info.Size() + ceiling - 1) / ceiling)

	m := &Manifest{
		Archive:   base,
		TotalSize: info.Size(),
		PartSize:  ceiling,
		Parts:     make([]PartInfo, 0, numParts),
		CreatedAt: time.Now().UTC(),
	}

	for n := 1; n <= numParts; n++ {
		name := PartName(base, n)
		part, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("partzip: create part %d: %w", n, err)
		}

		var w io.Writer = part
		var hash = sha256.New()
		if opts.ComputeChecksum {
			w = io.MultiWriter(part, hash)
		}

		copied, err := io.CopyN(w, f, ceiling)
		if err != nil && err != io.EOF {
			part.Close()
			return nil, fmt.Errorf("partzip: write part %d: %w", n, err)
		}
		if err := part.Close(); err != nil {
			return nil, fmt.Errorf("partzip: close part %d: %w", n, err)
		}

		pi := PartInfo{Name: name, Size: copied}
		if opts.ComputeChecksum {
			pi.Checksum = hex.EncodeToString(hash.Sum(nil))
		}
		m.Parts = append(m.Parts, pi)
	}

	if err := writeManifest(archive+ManifestSuffix, m); err != nil {
		return nil, err
	}

	return m, nil
}

// LoadManifest reads a part manifest written by Split.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("partzip: read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("partzip: unmarshal manifest: %w", err)
	}
	return &m, nil
}

func writeManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("partzip: marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("partzip: write manifest: %w", err)
	}
	return nil
}

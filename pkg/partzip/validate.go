package partzip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ValidationResult contains the results of validating a split archive.
type ValidationResult struct {
	Valid              bool     // true if all parts exist with matching sizes
	TotalSize          int64    // total size from the manifest
	PartCount          int      // number of parts in the manifest
	MissingParts       int      // parts that don't exist on disk
	SizeMismatches     int      // parts with the wrong size
	ChecksumMismatches int      // parts with the wrong checksum (verify only)
	Errors             []string // detailed error messages
}

// Validate checks that every part listed in the manifest exists with the
// recorded size, and with the recorded checksum when WithVerifyChecksum is
// set. Missing parts and mismatches are NOT returned as errors; they are
// reported in the ValidationResult with Valid=false. An error is returned
// only when the manifest itself cannot be read.
func Validate(manifestPath string, options ...Option) (*ValidationResult, error) {
	opts := Options{}
	for _, opt := range options {
		opt(&opts)
	}

	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Valid:     true,
		TotalSize: m.TotalSize,
		PartCount: len(m.Parts),
		Errors:    make([]string, 0),
	}

	dir := filepath.Dir(manifestPath)
	for i, pi := range m.Parts {
		path := filepath.Join(dir, pi.Name)

		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				result.Valid = false
				result.MissingParts++
				result.Errors = append(result.Errors,
					fmt.Sprintf("part %d missing: %s", i+1, path))
				continue
			}
			return nil, fmt.Errorf("partzip: check part %d: %w", i+1, err)
		}

		if info.Size() != pi.Size {
			result.Valid = false
			result.SizeMismatches++
			result.Errors = append(result.Errors,
				fmt.Sprintf("part %d size mismatch: expected %d, got %d",
					i+1, pi.Size, info.Size()))
			continue
		}

		if opts.VerifyChecksum && pi.Checksum != "" {
			sum, err := checksumFile(path)
			if err != nil {
				return nil, fmt.Errorf("partzip: checksum part %d: %w", i+1, err)
			}
			if sum != pi.Checksum {
				result.Valid = false
				result.ChecksumMismatches++
				result.Errors = append(result.Errors,
					fmt.Sprintf("part %d checksum mismatch", i+1))
			}
		}
	}

	return result, nil
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

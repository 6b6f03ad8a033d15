package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/finbatch/finbatch/internal/progress"
	"github.com/finbatch/finbatch/pkg/partzip"
)

// runValidate checks that every part listed in a part manifest exists with
// the recorded size, and optionally matching checksum.
func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)

	manifestPath := fs.String("parts", "", "Part manifest path (required)")
	verify := fs.Bool("verify", false, "Also verify per-part checksums")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: finbatch validate [options]

Verify that all parts of a split archive exist and match the part manifest.
Size checks are always performed; checksum verification is opt-in.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -parts is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	result, err := partzip.Validate(*manifestPath, partzip.WithVerifyChecksum(*verify))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("Parts: %d\n", result.PartCount)
	fmt.Printf("Total size: %s\n", progress.FormatBytes(result.TotalSize))

	if result.Valid {
		fmt.Println("Status: VALID")
		return ExitSuccess
	}

	fmt.Println("Status: INVALID")
	fmt.Printf("  missing parts: %d\n", result.MissingParts)
	fmt.Printf("  size mismatches: %d\n", result.SizeMismatches)
	if *verify {
		fmt.Printf("  checksum mismatches: %d\n", result.ChecksumMismatches)
	}
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
	return ExitValidationFailed
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/finbatch/finbatch/internal/progress"
	"github.com/finbatch/finbatch/pkg/partzip"
)

// runJoin reconstructs an archive from its parts using the part manifest.
func runJoin(args []string) int {
	fs := flag.NewFlagSet("join", flag.ExitOnError)

	manifestPath := fs.String("parts", "", "Part manifest path, e.g. finance_output.zip.parts.json (required)")
	out := fs.String("out", "", "Output file (required)")
	verify := fs.Bool("verify", true, "Verify per-part checksums while joining")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: finbatch join [options]

Reconstruct an archive by concatenating its parts in ascending order.
The output is byte-identical to the archive that was split.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *manifestPath == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Error: -parts and -out are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	n, err := partzip.Join(*manifestPath, *out, partzip.WithVerifyChecksum(*verify))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("Wrote %s (%s)\n", *out, progress.FormatBytes(n))
	return ExitSuccess
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/finbatch/finbatch/internal/config"
	"github.com/finbatch/finbatch/internal/progress"
	"github.com/finbatch/finbatch/pkg/partzip"
)

// runSplit divides an existing archive into numbered parts under a ceiling.
func runSplit(args []string) int {
	fs := flag.NewFlagSet("split", flag.ExitOnError)

	archive := fs.String("archive", "", "Archive file to split (required)")
	ceiling := fs.String("ceiling", "23MB", "Size ceiling per part")
	noChecksum := fs.Bool("no-checksum", false, "Skip per-part checksum computation")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: finbatch split [options]

Split an archive into raw byte-range parts, each at most the ceiling in
size. The parts are named <archive>_partN.<ext> and concatenating them in
ascending order reproduces the original file byte for byte. A sidecar
part manifest (<archive>.parts.json) records sizes and checksums.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *archive == "" {
		fmt.Fprintln(os.Stderr, "Error: -archive is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ceilingBytes := int64(config.DefaultSizeCeiling)
	if *ceiling != "" {
		size, err := progress.ParseBytes(*ceiling)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid ceiling: %v\n", err)
			return ExitInvalidArgs
		}
		ceilingBytes = size
	}

	m, err := partzip.Split(*archive, ceilingBytes, partzip.WithChecksum(!*noChecksum))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("Split %s (%s) into %d part(s):\n",
		*archive, progress.FormatBytes(m.TotalSize), len(m.Parts))
	for _, pi := range m.Parts {
		fmt.Printf("  %s (%s)\n", pi.Name, progress.FormatBytes(pi.Size))
	}
	return ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/finbatch/finbatch/internal/config"
	"github.com/finbatch/finbatch/internal/deliver"
	"github.com/finbatch/finbatch/internal/layout"
	"github.com/finbatch/finbatch/internal/manifest"
	"github.com/finbatch/finbatch/internal/pipeline"
	"github.com/finbatch/finbatch/internal/progress"
)

// runBatch executes a full batch: parse the manifest, fetch every document
// into the deterministic tree, archive, and split when over the ceiling.
func runBatch(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	manifestPath := fs.String("manifest", "", "CSV manifest path (required)")
	configPath := fs.String("config", "", "YAML config file")
	outDir := fs.String("out", "", "Output directory for archives")
	workRoot := fs.String("work", "", "Work root for fetched files (default: temp dir, removed after)")
	archiveName := fs.String("archive", "", "Archive file name")
	ceiling := fs.String("ceiling", "", "Size ceiling per artifact, e.g. 23MB")
	workers := fs.Int("workers", 0, "Number of parallel fetch workers")
	duplicates := fs.String("duplicates", "", "Duplicate path policy: overwrite or reject")
	bucket := fs.String("bucket", "", "Bucket URL to upload artifacts to")
	timeout := fs.Duration("timeout", 0, "Per-request timeout")
	retryAttempts := fs.Int("retry-attempts", 0, "Additional attempts per item after the first")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: finbatch run [options]

Fetch every document listed in a CSV manifest into a per-record directory
tree, archive the tree as a zip, and split the archive into numbered parts
when it exceeds the size ceiling. Failed items are reported, not fatal.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -manifest is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	// Layer configuration: defaults, file, environment, then flags.
	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		return ExitInvalidArgs
	}

	override := config.Config{
		WorkRoot:    *workRoot,
		OutputDir:   *outDir,
		ArchiveName: *archiveName,
		Workers:     *workers,
		Duplicates:  *duplicates,
		Bucket:      *bucket,
		Timeout:     *timeout,
		Progress:    *showProgress,
	}
	override.Retry.Attempts = *retryAttempts
	if *ceiling != "" {
		size, err := progress.ParseBytes(*ceiling)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid ceiling: %v\n", err)
			return ExitInvalidArgs
		}
		override.SizeCeiling = size
	}
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[finbatch] Received interrupt, shutting down...")
		cancel()
	}()

	// Parse manifest
	f, err := os.Open(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening manifest: %v\n", err)
		return ExitInputError
	}
	m, err := manifest.Parse(f, layout.DefaultCategories())
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing manifest: %v\n", err)
		return ExitInputError
	}

	totalItems := 0
	for _, row := range m.Rows {
		totalItems += len(row.URLs)
	}

	// Setup progress reporter
	var reporter *progress.Reporter
	if cfg.Progress {
		reporter = progress.NewReporter(progress.Options{
			TotalRows:      len(m.Rows),
			TotalItems:     totalItems,
			Workers:        cfg.Workers,
			UpdateInterval: 2 * time.Second,
			Source:         *manifestPath,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	result, err := pipeline.Run(ctx, m, cfg, reporter)
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		// Packaging failure still surfaces the partial retrieval results.
		if result != nil && result.Report != nil {
			printReport(os.Stdout, m, result)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	printReport(os.Stdout, m, result)

	// Upload artifacts when a bucket is configured
	if cfg.Bucket != "" {
		paths := make([]string, 0, len(result.Artifacts)+1)
		for _, a := range result.Artifacts {
			paths = append(paths, a.Path)
		}
		if result.PartManifest != "" {
			paths = append(paths, result.PartManifest)
		}
		if err := deliver.UploadURL(ctx, cfg.Bucket, "", paths); err != nil {
			fmt.Fprintf(os.Stderr, "Error uploading artifacts: %v\n", err)
			return ExitStorageError
		}
		fmt.Printf("Uploaded %d artifact(s) to %s\n", len(paths), cfg.Bucket)
	}

	if len(result.Report.Failures) > 0 || len(result.Report.Rejected) > 0 {
		return ExitPartialFailure
	}
	return ExitSuccess
}

func printReport(w io.Writer, m *manifest.Manifest, result *pipeline.Result) {
	r := result.Report

	fmt.Fprintf(w, "Rows: %d processed, %d rejected\n", len(m.Rows), len(r.Rejected))
	fmt.Fprintf(w, "Items: %d attempted, %d succeeded, %d failed, %d skipped\n",
		r.Attempted, r.Succeeded, len(r.Failures), r.Skipped)

	for _, rej := range r.Rejected {
		fmt.Fprintf(w, "  rejected line %d: %s\n", rej.Line, rej.Reason)
	}
	for _, fail := range r.Failures {
		fmt.Fprintf(w, "  failed line %d: record %s %s: %s\n",
			fail.Line, fail.RecordID, fail.Category, fail.Reason)
	}

	// No archive section when packaging never produced one.
	if result.ArchiveSize == 0 && len(result.Artifacts) == 0 {
		return
	}

	fmt.Fprintf(w, "Archive: %s", progress.FormatBytes(result.ArchiveSize))
	if result.Split {
		fmt.Fprintf(w, ", split into %d parts\n", len(result.Artifacts))
	} else {
		fmt.Fprintln(w)
	}
	for _, a := range result.Artifacts {
		fmt.Fprintf(w, "  %s (%s)\n", a.Path, progress.FormatBytes(a.Size))
	}
}

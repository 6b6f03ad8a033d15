package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finbatch/finbatch/internal/batch"
	"github.com/finbatch/finbatch/internal/config"
	"github.com/finbatch/finbatch/internal/fetch"
	"github.com/finbatch/finbatch/internal/layout"
	"github.com/finbatch/finbatch/internal/manifest"
	"github.com/finbatch/finbatch/internal/progress"
	"github.com/finbatch/finbatch/pkg/partzip"
)

// Artifact is one output file produced by a run.
type Artifact struct {
	Seq  int
	Path string
	Size int64
}

// Result describes the outcome of a full run.
type Result struct {
	// Report is the per-item outcome of the retrieval phase. It is set
	// even when a later packaging stage fails.
	Report *batch.Report

	// Artifacts lists the emitted files in ascending 1-based sequence
	// order: either the single combined archive, or the numbered parts.
	Artifacts []Artifact

	// ArchiveSize is the size of the combined archive before any split.
	ArchiveSize int64

	// Split reports whether the archive exceeded the ceiling and was
	// divided into parts.
	Split bool

	// PartManifest is the path of the sidecar part manifest, set only
	// when Split is true.
	PartManifest string
}

// Run executes the full pipeline: fetch every manifest item into the
// deterministic directory tree, archive the tree, and split the archive
// into parts if it exceeds the configured ceiling.
//
// Retrieval failures are tolerated and carried in Result.Report; a non-nil
// error means the run itself could not complete (workspace setup, archiving,
// or splitting failed).
func Run(ctx context.Context, m *manifest.Manifest, cfg config.Config, reporter *progress.Reporter) (*Result, error) {
	workRoot := cfg.WorkRoot
	if workRoot == "" {
		tmp, err := os.MkdirTemp("", "finbatch-*")
		if err != nil {
			return nil, fmt.Errorf("create work root: %w", err)
		}
		defer os.RemoveAll(tmp)
		workRoot = tmp
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.Timeout = cfg.Timeout
	fetchOpts.RetryAttempts = cfg.Retry.Attempts
	fetchOpts.RetryBackoff = cfg.Retry.Backoff
	fetchOpts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	client := fetch.NewClient(fetchOpts)

	var cred *fetch.Credential
	if cfg.AuthToken != "" {
		cred = &fetch.Credential{Header: cfg.AuthHeader, Value: cfg.AuthToken}
	}

	cats := layout.DefaultCategories()
	report, err := batch.Process(ctx, client, workRoot, m, cats, batch.Options{
		Workers:    cfg.Workers,
		Duplicates: batch.DuplicatePolicy(cfg.Duplicates),
		Credential: cred,
		Progress:   reporter,
	})
	if err != nil {
		return nil, fmt.Errorf("process batch: %w", err)
	}

	result := &Result{Report: report}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("create output dir: %w", err)
	}

	archivePath := filepath.Join(cfg.OutputDir, cfg.ArchiveName)
	size, err := partzip.Build(workRoot, archivePath)
	if err != nil {
		return result, fmt.Errorf("build archive: %w", err)
	}
	result.ArchiveSize = size

	if !needsSplit(size, cfg.SizeCeiling) {
		result.Artifacts = []Artifact{{Seq: 1, Path: archivePath, Size: size}}
		return result, nil
	}

	pm, err := partzip.Split(archivePath, cfg.SizeCeiling)
	if err != nil {
		return result, fmt.Errorf("split archive: %w", err)
	}
	if err := os.Remove(archivePath); err != nil {
		return result, fmt.Errorf("remove combined archive: %w", err)
	}

	result.Split = true
	result.PartManifest = archivePath + partzip.ManifestSuffix
	for i, pi := range pm.Parts {
		result.Artifacts = append(result.Artifacts, Artifact{
			Seq:  i + 1,
			Path: filepath.Join(cfg.OutputDir, pi.Name),
			Size: pi.Size,
		})
	}
	return result, nil
}

// needsSplit reports whether an archive of the given size must be divided.
// An archive exactly at the ceiling ships as a single artifact.
func needsSplit(size, ceiling int64) bool {
	return size > ceiling
}

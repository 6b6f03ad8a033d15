package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.OutputDir != "." {
		t.Errorf("output dir = %q, want %q", cfg.OutputDir, ".")
	}
	if cfg.ArchiveName != "finance_output.zip" {
		t.Errorf("archive name = %q, want finance_output.zip", cfg.ArchiveName)
	}
	if cfg.SizeCeiling != 23*1024*1024 {
		t.Errorf("size ceiling = %d, want %d", cfg.SizeCeiling, 23*1024*1024)
	}
	if cfg.Workers != 1 {
		t.Errorf("workers = %d, want 1", cfg.Workers)
	}
	if cfg.Duplicates != "overwrite" {
		t.Errorf("duplicates = %q, want overwrite", cfg.Duplicates)
	}
	if cfg.Retry.Attempts != 0 {
		t.Errorf("retry attempts = %d, want 0", cfg.Retry.Attempts)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
output_dir: /tmp/out
archive_name: statements.zip
size_ceiling: 10MB
workers: 4
duplicates: reject
timeout: 45s
retry:
  attempts: 2
  backoff: 500ms
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("output dir = %q, want /tmp/out", cfg.OutputDir)
	}
	if cfg.ArchiveName != "statements.zip" {
		t.Errorf("archive name = %q, want statements.zip", cfg.ArchiveName)
	}
	if cfg.SizeCeiling != 10*1024*1024 {
		t.Errorf("size ceiling = %d, want %d", cfg.SizeCeiling, 10*1024*1024)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.Duplicates != "reject" {
		t.Errorf("duplicates = %q, want reject", cfg.Duplicates)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 2 {
		t.Errorf("retry attempts = %d, want 2", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("retry backoff = %v, want 500ms", cfg.Retry.Backoff)
	}
	// Unset values keep their defaults.
	if cfg.Retry.MaxBackoff != 30*time.Second {
		t.Errorf("retry max backoff = %v, want 30s", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromFileInvalidSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("size_ceiling: lots\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for unparsable size_ceiling")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FINBATCH_OUTPUT_DIR", "/env/out")
	t.Setenv("FINBATCH_SIZE_CEILING", "5MB")
	t.Setenv("FINBATCH_WORKERS", "8")
	t.Setenv("FINBATCH_AUTH_TOKEN", "Bearer abc123")
	t.Setenv("FINBATCH_RETRY_ATTEMPTS", "3")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.OutputDir != "/env/out" {
		t.Errorf("output dir = %q, want /env/out", cfg.OutputDir)
	}
	if cfg.SizeCeiling != 5*1024*1024 {
		t.Errorf("size ceiling = %d, want %d", cfg.SizeCeiling, 5*1024*1024)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Workers)
	}
	if cfg.AuthToken != "Bearer abc123" {
		t.Errorf("auth token = %q, want Bearer abc123", cfg.AuthToken)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("retry attempts = %d, want 3", cfg.Retry.Attempts)
	}
}

func TestLoadFromEnvInvalidWorkers(t *testing.T) {
	t.Setenv("FINBATCH_WORKERS", "many")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for unparsable FINBATCH_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, "output_dir"},
		{"empty archive name", func(c *Config) { c.ArchiveName = "" }, "archive_name"},
		{"zero ceiling", func(c *Config) { c.SizeCeiling = 0 }, "size_ceiling"},
		{"negative ceiling", func(c *Config) { c.SizeCeiling = -1 }, "size_ceiling"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"bad duplicates", func(c *Config) { c.Duplicates = "merge" }, "duplicates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	merged := base.Merge(Config{
		OutputDir: "/flag/out",
		Workers:   6,
		Bucket:    "s3://archives",
	})

	if merged.OutputDir != "/flag/out" {
		t.Errorf("output dir = %q, want /flag/out", merged.OutputDir)
	}
	if merged.Workers != 6 {
		t.Errorf("workers = %d, want 6", merged.Workers)
	}
	if merged.Bucket != "s3://archives" {
		t.Errorf("bucket = %q, want s3://archives", merged.Bucket)
	}
	// Untouched fields survive the merge.
	if merged.ArchiveName != base.ArchiveName {
		t.Errorf("archive name = %q, want %q", merged.ArchiveName, base.ArchiveName)
	}
	if merged.SizeCeiling != base.SizeCeiling {
		t.Errorf("size ceiling = %d, want %d", merged.SizeCeiling, base.SizeCeiling)
	}
}

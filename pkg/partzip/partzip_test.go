package partzip

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeRaw creates a file of the given size with a repeating byte pattern.
func writeRaw(t *testing.T, path string, size int) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 256)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuildArchivesTree(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"RID_42/2024/Invoices/Invoice_2024_03_01.pdf":      "invoice",
		"RID_42/2024/Payment_Advices/Payment_Advice_a.pdf": "advice",
		"RID_43/2023/Annexures/Annexure_2023_01_01.xlsx":   "annexure",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	dest := filepath.Join(t.TempDir(), "out.zip")
	size, err := Build(root, dest)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if size <= 0 {
		t.Fatalf("expected positive archive size, got %d", size)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(zr.File))
	}
	for _, zf := range zr.File {
		want, ok := files[zf.Name]
		if !ok {
			t.Errorf("unexpected entry %q", zf.Name)
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", zf.Name, err)
		}
		var buf bytes.Buffer
		buf.ReadFrom(rc)
		rc.Close()
		if buf.String() != want {
			t.Errorf("entry %q content = %q, want %q", zf.Name, buf.String(), want)
		}
	}
}

func TestBuildEmptyTree(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.zip")
	size, err := Build(t.TempDir(), dest)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if size <= 0 {
		t.Fatalf("empty archive should still have bytes, got %d", size)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("empty archive is not a valid zip: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 0 {
		t.Errorf("expected 0 entries, got %d", len(zr.File))
	}
}

func TestSplitExactChunks(t *testing.T) {
	// 2500 bytes at a 1000-byte ceiling: parts of 1000, 1000, 500.
	dir := t.TempDir()
	archive := filepath.Join(dir, "finance_output.zip")
	writeRaw(t, archive, 2500)

	m, err := Split(archive, 1000)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(m.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(m.Parts))
	}
	wantSizes := []int64{1000, 1000, 500}
	for i, pi := range m.Parts {
		if pi.Size != wantSizes[i] {
			t.Errorf("part %d size = %d, want %d", i+1, pi.Size, wantSizes[i])
		}
		info, err := os.Stat(filepath.Join(dir, pi.Name))
		if err != nil {
			t.Fatalf("stat part %d: %v", i+1, err)
		}
		if info.Size() != wantSizes[i] {
			t.Errorf("part %d on-disk size = %d, want %d", i+1, info.Size(), wantSizes[i])
		}
	}

	wantNames := []string{
		"finance_output_part1.zip",
		"finance_output_part2.zip",
		"finance_output_part3.zip",
	}
	for i, pi := range m.Parts {
		if pi.Name != wantNames[i] {
			t.Errorf("part %d name = %q, want %q", i+1, pi.Name, wantNames[i])
		}
	}

	if m.TotalSize != 2500 {
		t.Errorf("manifest total size = %d, want 2500", m.TotalSize)
	}
	if _, err := os.Stat(archive + ManifestSuffix); err != nil {
		t.Errorf("part manifest not written: %v", err)
	}
}

func TestSplitOneByteOverCeiling(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "out.zip")
	writeRaw(t, archive, 1001)

	m, err := Split(archive, 1000)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	if len(m.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(m.Parts))
	}
	if m.Parts[0].Size != 1000 {
		t.Errorf("part 1 size = %d, want 1000", m.Parts[0].Size)
	}
	if m.Parts[1].Size != 1 {
		t.Errorf("part 2 size = %d, want 1", m.Parts[1].Size)
	}
}

func TestSplitExactlyCeiling(t *testing.T) {
	// A caller splitting an archive whose size equals the ceiling gets a
	// single full-size part; no zero-byte dangling part is emitted.
	dir := t.TempDir()
	archive := filepath.Join(dir, "out.zip")
	writeRaw(t, archive, 1000)

	m, err := Split(archive, 1000)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(m.Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(m.Parts))
	}
	if m.Parts[0].Size != 1000 {
		t.Errorf("part size = %d, want 1000", m.Parts[0].Size)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "out.zip")
	writeRaw(t, archive, 2500)

	original, err := os.ReadFile(archive)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	m, err := Split(archive, 1000)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	// Concatenate parts in ascending numeric order.
	var joined bytes.Buffer
	for _, pi := range m.Parts {
		data, err := os.ReadFile(filepath.Join(dir, pi.Name))
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		joined.Write(data)
	}

	if !bytes.Equal(joined.Bytes(), original) {
		t.Error("concatenated parts do not reproduce the original archive")
	}
}

func TestSplitInvalidCeiling(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "out.zip")
	writeRaw(t, archive, 10)

	if _, err := Split(archive, 0); err == nil {
		t.Error("expected error for zero ceiling")
	}
	if _, err := Split(archive, -5); err == nil {
		t.Error("expected error for negative ceiling")
	}
}

func TestSplitEmptyArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "out.zip")
	if err := os.WriteFile(archive, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Split(archive, 1000)
	if !errors.Is(err, ErrEmptyArchive) {
		t.Errorf("expected ErrEmptyArchive, got %v", err)
	}
}

func TestPartName(t *testing.T) {
	tests := []struct {
		archive string
		n       int
		want    string
	}{
		{"finance_output.zip", 1, "finance_output_part1.zip"},
		{"finance_output.zip", 12, "finance_output_part12.zip"},
		{"backup.tar", 2, "backup_part2.tar"},
	}

	for _, tt := range tests {
		got := PartName(tt.archive, tt.n)
		if got != tt.want {
			t.Errorf("PartName(%q, %d) = %q, want %q", tt.archive, tt.n, got, tt.want)
		}
	}
}

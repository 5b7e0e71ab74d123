package loader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeTestRecord writes one learn-layout record file.
func writeTestRecord(t *testing.T, dir, name, url, technology string, patterns []string) {
	t.Helper()

	content := `{
		"phase": "phase1",
		"inputData": {"url": "` + url + `"},
		"analysis": {
			"technologyDetected": "` + technology + `",
			"keyPatterns": [`
	for i, p := range patterns {
		if i > 0 {
			content += ","
		}
		content += `"` + p + `"`
	}
	content += `]}}`

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLoadDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestRecord(t, dir, "run-01.json", "https://a.example", "WordPress", []string{"p1", "p2"})
	writeTestRecord(t, dir, "run-02.json", "https://b.example", "Drupal", []string{"p3"})
	writeTestRecord(t, dir, "run-03.json", "https://a.example", "WordPress", []string{"p1"})

	result, err := New(WithLogger(discardLogger())).LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	if result.Loaded != 3 || result.Skipped != 0 {
		t.Errorf("Loaded, Skipped = %d, %d, want 3, 0", result.Loaded, result.Skipped)
	}

	// Output keeps file name order regardless of decode order.
	wantURLs := []string{"https://a.example", "https://b.example", "https://a.example"}
	for i, want := range wantURLs {
		if got := result.Runs[i].SiteURL; got != want {
			t.Errorf("Runs[%d].SiteURL = %q, want %q", i, got, want)
		}
	}
}

func TestLoadDirectorySkipsMalformedAndIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestRecord(t, dir, "run-01.json", "https://a.example", "wordpress", []string{"p1"})
	for name, content := range map[string]string{
		"broken.json":  `{"analysis":`,
		"foreign.json": `{"something": "else"}`,
		"index.json":   `{"files": ["run-01.json"]}`,
		"notes.txt":    "not a record",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	result, err := New(WithLogger(discardLogger())).LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}

	// index.json and notes.txt are not record candidates at all; only the
	// broken and foreign files count as skipped.
	if result.Loaded != 1 {
		t.Errorf("Loaded = %d, want 1", result.Loaded)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
}

func TestLoadDirectoryLimit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestRecord(t, dir, "run-01.json", "https://a.example", "wordpress", []string{"p1"})
	writeTestRecord(t, dir, "run-02.json", "https://b.example", "wordpress", []string{"p1"})
	writeTestRecord(t, dir, "run-03.json", "https://c.example", "wordpress", []string{"p1"})

	result, err := New(WithLimit(2), WithLogger(discardLogger())).LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if result.Loaded != 2 {
		t.Errorf("Loaded = %d, want 2", result.Loaded)
	}
}

func TestLoadDirectoryAliases(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestRecord(t, dir, "run-01.json", "https://a.example", "WP", []string{"p1"})

	aliases := map[string]string{"wp": "wordpress"}
	result, err := New(WithAliases(aliases), WithLogger(discardLogger())).LoadDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	if got := result.Runs[0].Technology; got != "wordpress" {
		t.Errorf("Technology = %q, want wordpress", got)
	}
}

func TestLoadDirectoryEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := New(WithLogger(discardLogger())).LoadDirectory(context.Background(), dir)
	if !errors.Is(err, ErrNoRecords) {
		t.Errorf("LoadDirectory() error = %v, want ErrNoRecords", err)
	}
}

func TestLoadDirectoryMissing(t *testing.T) {
	t.Parallel()

	_, err := New(WithLogger(discardLogger())).LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("LoadDirectory() error = nil, want error for missing directory")
	}
}

func TestLoadDirectoryCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestRecord(t, dir, "run-01.json", "https://a.example", "wordpress", []string{"p1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithLogger(discardLogger())).LoadDirectory(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("LoadDirectory() error = %v, want context.Canceled", err)
	}
}

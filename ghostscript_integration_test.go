//go:build integration

package pdfit

// Notes:
// - Runs the real gs binary. Ghostscript may legitimately produce a larger
//   file for a tiny fixture, so only the status and a valid result are
//   checked, not the reduction.

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func requireGhostscript(t *testing.T) {
	t.Helper()

	if _, err := NewGhostscript().Binary(); err != nil {
		t.Fatal("Ghostscript not found. Install gs to run compression integration tests.")
	}
}

func TestGhostscript_Compress_Integration(t *testing.T) {
	requireGhostscript(t)

	dir := t.TempDir()
	input := writeFixture(t, dir, "in.pdf", 3)
	output := filepath.Join(dir, "out.pdf")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	engine := NewEngine()
	res, err := engine.CompressFile(ctx, input, output, QualityHigh, "")
	if err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}
	if res.Status != StatusCompressed {
		t.Errorf("Status = %v, want %v", res.Status, StatusCompressed)
	}

	doc, err := engine.Load(output)
	if err != nil {
		t.Fatalf("Load(output) error = %v", err)
	}
	if doc.PageCount() != 3 {
		t.Errorf("PageCount() = %d, want 3", doc.PageCount())
	}
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// writePDF writes a gofpdf document of n pages, each reading "Page N".
func writePDF(t *testing.T, dir, name string, n int) string {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 14)
	for i := 1; i <= n; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, fmt.Sprintf("Page %d", i))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating fixture: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFile writes content to dir/name, creating parent directories.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// pageCount loads path and returns its page count.
func pageCount(t *testing.T, path string) int {
	t.Helper()

	doc, err := pdfit.NewEngine(pdfit.WithBackend(nil)).Load(path)
	if err != nil {
		t.Fatalf("loading %s: %v", path, err)
	}
	return doc.PageCount()
}

// ---------------------------------------------------------------------------
// Test environment
// ---------------------------------------------------------------------------

// testEnv returns an environment writing to buffers, whose engine has no
// compression backend so tests never depend on Ghostscript.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Config: config.DefaultConfig(),
		NewEngine: func(_ *config.Config, l logrus.FieldLogger) *pdfit.Engine {
			return pdfit.NewEngine(pdfit.WithBackend(nil), pdfit.WithLogger(l))
		},
		NewPool: newPool,
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// Recording presenter
// ---------------------------------------------------------------------------

type recordingPresenter struct {
	mu       sync.Mutex
	results  []string
	warnings []string
	errors   []string
	progress int
}

var _ Presenter = (*recordingPresenter)(nil)

func (p *recordingPresenter) ShowProgress(string, int) Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress++
	return nopProgress{}
}

func (p *recordingPresenter) ShowResult(m string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, m)
}

func (p *recordingPresenter) ShowWarning(m string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.warnings = append(p.warnings, m)
}

func (p *recordingPresenter) ShowError(m string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, m)
}

func (p *recordingPresenter) joinedErrors() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.errors, "\n")
}

package pdfit

// Notes:
// - Converter tests run WithoutBrowser so they need no Chrome; the browser
//   renderers are covered by integration tests.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want InputKind
	}{
		{"a.txt", KindText},
		{"a.md", KindMarkdown},
		{"a.png", KindImage},
		{"a.html", KindHTML},
		{"a.docx", KindDocument},
		{"a.pptx", KindPresentation},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := DetectKind(tt.path)
			if err != nil || got != tt.want {
				t.Errorf("DetectKind(%q) = %q, %v, want %q", tt.path, got, err, tt.want)
			}
		})
	}

	if _, err := DetectKind("a.pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DetectKind(a.pdf) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("line one\nline two\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "notes.pdf")

	conv := NewConverter(WithoutBrowser())
	defer conv.Close()

	res, err := conv.Convert(context.Background(), src, out)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Kind != KindText || res.Strategy != "text" || res.Output != out {
		t.Errorf("Convert() = %+v", res)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}

	// The output must be readable by the engine.
	doc, err := NewEngine(WithBackend(nil)).Load(out)
	if err != nil {
		t.Fatalf("Load(converted) error = %v", err)
	}
	if doc.PageCount() != 1 {
		t.Errorf("PageCount() = %d, want 1", doc.PageCount())
	}
}

func TestConverter_ConvertAs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "page.data")
	if err := os.WriteFile(src, []byte("<h1>Hi</h1><p>there</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewConverter(WithoutBrowser()).ConvertAs(context.Background(), KindHTML, src, filepath.Join(dir, "page.pdf"))
	if err != nil {
		t.Fatalf("ConvertAs() error = %v", err)
	}
	if res.Strategy != "html-text" {
		t.Errorf("Strategy = %q, want html-text", res.Strategy)
	}
}

func TestConverter_Convert_Unsupported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "x.pdf")

	_, err := NewConverter(WithoutBrowser()).Convert(context.Background(), filepath.Join(dir, "x.xyz"), out)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Convert() error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("output written for unsupported input")
	}
}

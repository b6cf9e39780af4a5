package pdfit

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/alnah/go-pdfit/internal/process"
)

// Ghostscript compresses PDFs with the gs pdfwrite device.
type Ghostscript struct {
	bin    string
	runner process.Runner
}

// Compile-time interface check.
var _ CompressionBackend = (*Ghostscript)(nil)

// GhostscriptOption configures a Ghostscript backend.
type GhostscriptOption func(*Ghostscript)

// WithGhostscriptBinary sets the gs executable. Defaults to a PATH lookup.
func WithGhostscriptBinary(bin string) GhostscriptOption {
	return func(g *Ghostscript) {
		if bin != "" {
			g.bin = bin
		}
	}
}

// withRunner replaces the process runner. Used by tests.
func withRunner(r process.Runner) GhostscriptOption {
	return func(g *Ghostscript) {
		g.runner = r
	}
}

// NewGhostscript creates a Ghostscript backend.
func NewGhostscript(opts ...GhostscriptOption) *Ghostscript {
	g := &Ghostscript{runner: process.ExecRunner{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GhostscriptCandidates lists executable names to search for, per platform.
func GhostscriptCandidates() []string {
	if runtime.GOOS == "windows" {
		return []string{"gswin64c", "gswin32c", "gs"}
	}
	return []string{"gs"}
}

// Binary resolves the gs executable.
func (g *Ghostscript) Binary() (string, error) {
	if g.bin != "" {
		return g.bin, nil
	}
	bin, err := process.LookPath(GhostscriptCandidates()...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return bin, nil
}

// Optimize rewrites inputPath into outputPath using preset.
func (g *Ghostscript) Optimize(ctx context.Context, inputPath, outputPath string, preset Preset) error {
	bin, err := g.Binary()
	if err != nil {
		return err
	}

	err = g.runner.Run(ctx, bin, ghostscriptArgs(inputPath, outputPath, preset)...)
	if err != nil {
		if errors.Is(err, process.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ghostscript: %w", err)
	}
	return nil
}

func ghostscriptArgs(inputPath, outputPath string, preset Preset) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + string(preset),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + outputPath,
		inputPath,
	}
}

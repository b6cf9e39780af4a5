package pdfit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Quality selects how aggressively Compress reduces file size.
type Quality string

// Compression qualities.
const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Preset is a Ghostscript -dPDFSETTINGS value.
type Preset string

// Ghostscript presets, from least to most aggressive.
const (
	PresetDefault Preset = "/default"
	PresetEbook   Preset = "/ebook"
	PresetScreen  Preset = "/screen"
)

// ParseQuality converts a user-supplied string into a Quality.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if _, err := q.Preset(); err != nil {
		return "", err
	}
	return q, nil
}

// Preset returns the Ghostscript preset for q.
func (q Quality) Preset() (Preset, error) {
	switch q {
	case QualityLow:
		return PresetDefault, nil
	case QualityMedium:
		return PresetEbook, nil
	case QualityHigh:
		return PresetScreen, nil
	default:
		return "", fmt.Errorf("%w: %q (must be low, medium or high)", ErrInvalidQuality, string(q))
	}
}

// CompressionBackend rewrites a PDF file with an external optimizer.
type CompressionBackend interface {
	Optimize(ctx context.Context, inputPath, outputPath string, preset Preset) error
}

// CompressStatus tells how a compression result was produced.
type CompressStatus int

const (
	// StatusCompressed means the backend produced the output.
	StatusCompressed CompressStatus = iota
	// StatusFallback means the backend failed and codec re-serialization
	// produced a smaller file.
	StatusFallback
	// StatusIneffective means no method produced a smaller file and the
	// original content is returned unchanged.
	StatusIneffective
)

func (s CompressStatus) String() string {
	switch s {
	case StatusCompressed:
		return "compressed"
	case StatusFallback:
		return "fallback"
	case StatusIneffective:
		return "ineffective"
	default:
		return fmt.Sprintf("CompressStatus(%d)", int(s))
	}
}

// CompressResult is the outcome of Engine.Compress.
type CompressResult struct {
	Document   *Document
	Status     CompressStatus
	InputSize  int
	OutputSize int
}

// Reduction returns the size saving as a percentage of the input.
func (r *CompressResult) Reduction() float64 {
	if r.InputSize == 0 {
		return 0
	}
	return float64(r.InputSize-r.OutputSize) / float64(r.InputSize) * 100
}

// Compress reduces the encoded size of doc. The backend is tried first;
// on failure the codec re-serializes the document, and if that is not
// smaller the original is returned with StatusIneffective.
func (e *Engine) Compress(ctx context.Context, doc *Document, quality Quality) (*CompressResult, error) {
	preset, err := quality.Preset()
	if err != nil {
		return nil, err
	}
	if doc.Locked() {
		return nil, ErrDocumentLocked
	}

	// Pending passwords are applied after compression: the backend and the
	// optimizer both work on the plain page set.
	plain := doc
	if doc.protect != nil {
		plain = doc.withPages(doc.Pages())
		plain.protect = nil
	}

	original, err := e.codec.Encode(plain)
	if err != nil {
		return nil, err
	}
	log := e.logger.WithField("quality", quality).WithField("input_size", len(original))

	if e.backend != nil {
		out, err := e.runBackend(ctx, original, preset)
		if err == nil {
			compressed, decErr := e.codec.Decode(sourceName(doc), out)
			if decErr == nil {
				compressed.protect = doc.protect
				log.WithField("output_size", len(out)).Debug("compressed with backend")
				return &CompressResult{
					Document:   compressed,
					Status:     StatusCompressed,
					InputSize:  len(original),
					OutputSize: len(out),
				}, nil
			}
			err = decErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).Debug("backend failed, falling back to re-serialization")
	}

	optimized, err := e.codec.Optimize(plain)
	if err != nil {
		return nil, err
	}
	if len(optimized) >= len(original) {
		log.WithField("output_size", len(optimized)).Debug("re-serialization not smaller, keeping original")
		return &CompressResult{
			Document:   doc,
			Status:     StatusIneffective,
			InputSize:  len(original),
			OutputSize: len(original),
		}, nil
	}

	compressed, err := e.codec.Decode(sourceName(doc), optimized)
	if err != nil {
		return nil, err
	}
	compressed.protect = doc.protect
	log.WithField("output_size", len(optimized)).Debug("compressed with re-serialization")
	return &CompressResult{
		Document:   compressed,
		Status:     StatusFallback,
		InputSize:  len(original),
		OutputSize: len(optimized),
	}, nil
}

// runBackend stages data in a private temp directory, since the backend
// works on paths.
func (e *Engine) runBackend(ctx context.Context, data []byte, preset Preset) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pdfit-compress-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	out := filepath.Join(dir, "output.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("staging input: %w", err)
	}
	if err := e.backend.Optimize(ctx, in, out, preset); err != nil {
		return nil, err
	}
	return os.ReadFile(out) // #nosec G304 -- path inside our temp dir
}

func sourceName(doc *Document) string {
	if srcs := doc.Sources(); len(srcs) > 0 {
		return srcs[0].Name()
	}
	return "document.pdf"
}

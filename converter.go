package pdfit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-pdfit/internal/convert"
)

// Conversion errors, shared with the converter implementation.
var (
	ErrUnsupportedFormat   = convert.ErrUnsupportedFormat
	ErrAllStrategiesFailed = convert.ErrAllStrategiesFailed
	ErrBrowserConnect      = convert.ErrBrowserConnect
	ErrOfficeUnavailable   = convert.ErrOfficeUnavailable
)

// InputKind is a family of input formats sharing a conversion chain.
type InputKind = convert.Kind

// Input kinds accepted by Converter.
const (
	KindText         = convert.KindText
	KindMarkdown     = convert.KindMarkdown
	KindImage        = convert.KindImage
	KindHTML         = convert.KindHTML
	KindDocument     = convert.KindDocument
	KindPresentation = convert.KindPresentation
)

// DetectKind returns the input kind for path based on its extension.
func DetectKind(path string) (InputKind, error) {
	return convert.Detect(path)
}

// ParseKind validates a user-supplied kind name.
func ParseKind(s string) (InputKind, error) {
	return convert.ParseKind(s)
}

// SupportedExtensions lists the input extensions Converter handles.
func SupportedExtensions() []string {
	return convert.Extensions()
}

// ConvertResult describes one finished conversion.
type ConvertResult struct {
	Input    string
	Output   string
	Kind     InputKind
	Strategy string // which fallback produced the output, e.g. "chrome-rod" or "docx-text"
	Size     int
}

type converterConfig struct {
	timeout   time.Duration
	logger    logrus.FieldLogger
	officeBin string
	noBrowser bool
}

// ConverterOption configures a Converter.
type ConverterOption func(*converterConfig)

// WithTimeout sets the browser page load timeout.
func WithTimeout(d time.Duration) ConverterOption {
	return func(c *converterConfig) { c.timeout = d }
}

// WithConverterLogger sets the logger receiving strategy fallbacks.
func WithConverterLogger(l logrus.FieldLogger) ConverterOption {
	return func(c *converterConfig) { c.logger = l }
}

// WithOfficeBinary pins the LibreOffice executable instead of a PATH lookup.
func WithOfficeBinary(bin string) ConverterOption {
	return func(c *converterConfig) { c.officeBin = bin }
}

// WithoutBrowser disables headless Chrome. HTML and Markdown inputs are
// then rendered as plain text.
func WithoutBrowser() ConverterOption {
	return func(c *converterConfig) { c.noBrowser = true }
}

// Converter turns text, Markdown, image, HTML, word-processor and
// presentation files into PDF. Create with NewConverter and Close when
// done; the browser is started on first HTML or Markdown input.
// A Converter handles one conversion at a time; use ConverterPool for
// parallel work.
type Converter struct {
	svc *convert.Service
}

// NewConverter creates a Converter.
func NewConverter(opts ...ConverterOption) *Converter {
	cfg := converterConfig{timeout: convert.DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	svcOpts := []convert.Option{
		convert.WithTimeout(cfg.timeout),
		convert.WithLogger(cfg.logger),
		convert.WithOfficeBinary(cfg.officeBin),
	}
	if cfg.noBrowser {
		svcOpts = append(svcOpts, convert.WithoutBrowser())
	}
	return &Converter{svc: convert.New(svcOpts...)}
}

// Convert converts input to a PDF written atomically at output. The input
// kind is detected from its extension.
func (c *Converter) Convert(ctx context.Context, input, output string) (*ConvertResult, error) {
	kind, err := convert.Detect(input)
	if err != nil {
		return nil, err
	}
	return c.ConvertAs(ctx, kind, input, output)
}

// ConvertAs converts input as kind regardless of its extension.
// Recovers from internal panics so one bad file cannot crash a batch.
func (c *Converter) ConvertAs(ctx context.Context, kind InputKind, input, output string) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error converting %s: %v", input, r)
		}
	}()

	res, err := c.svc.ConvertKind(ctx, kind, input, output)
	if err != nil {
		return nil, err
	}
	return &ConvertResult{
		Input:    input,
		Output:   output,
		Kind:     res.Kind,
		Strategy: res.Strategy,
		Size:     res.Size,
	}, nil
}

// Close releases the browser instances, if any were started.
func (c *Converter) Close() error {
	return c.svc.Close()
}

// Package convert turns text, markdown, images, HTML and office documents
// into PDF bytes. Each input kind has an ordered chain of strategies; the
// first one that succeeds wins.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for conversion.
var (
	ErrUnsupportedFormat   = errors.New("unsupported input format")
	ErrAllStrategiesFailed = errors.New("all conversion strategies failed")
	ErrBrowserConnect      = errors.New("failed to connect to browser")
	ErrPDFGeneration       = errors.New("PDF generation failed")
	ErrOfficeUnavailable   = errors.New("office suite unavailable")
	ErrEmptyInput          = errors.New("input has no convertible content")
)

// Kind is a family of input formats sharing a conversion chain.
type Kind string

// Input kinds.
const (
	KindText         Kind = "text"
	KindMarkdown     Kind = "markdown"
	KindImage        Kind = "image"
	KindHTML         Kind = "html"
	KindDocument     Kind = "document"
	KindPresentation Kind = "presentation"
)

var extensionKinds = map[string]Kind{
	".txt":      KindText,
	".text":     KindText,
	".log":      KindText,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".jpg":      KindImage,
	".jpeg":     KindImage,
	".png":      KindImage,
	".gif":      KindImage,
	".bmp":      KindImage,
	".tif":      KindImage,
	".tiff":     KindImage,
	".webp":     KindImage,
	".html":     KindHTML,
	".htm":      KindHTML,
	".docx":     KindDocument,
	".doc":      KindDocument,
	".odt":      KindDocument,
	".rtf":      KindDocument,
	".pptx":     KindPresentation,
	".ppt":      KindPresentation,
	".odp":      KindPresentation,
}

// Detect returns the Kind for path based on its extension.
func Detect(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if k, ok := extensionKinds[ext]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ParseKind validates a kind name given by the user.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindText, KindMarkdown, KindImage, KindHTML, KindDocument, KindPresentation:
		return k, nil
	}
	return "", fmt.Errorf("%w: kind %q", ErrUnsupportedFormat, s)
}

// Extensions returns the handled file extensions, sorted.
func Extensions() []string {
	out := make([]string, 0, len(extensionKinds))
	for ext := range extensionKinds {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Strategy is one way of producing PDF bytes from a source file.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, src string) ([]byte, error)
}

// Chain tries strategies in order until one succeeds.
type Chain struct {
	Strategies []Strategy
	Logger     logrus.FieldLogger
}

// Run returns the output of the first successful strategy and its name.
// When every strategy fails the joined errors are wrapped in
// ErrAllStrategiesFailed. Context cancellation stops the chain immediately.
func (c Chain) Run(ctx context.Context, src string) ([]byte, string, error) {
	var errs []error
	for _, s := range c.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		out, err := s.Run(ctx, src)
		if err == nil {
			return out, s.Name, nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		if c.Logger != nil {
			c.Logger.WithField("strategy", s.Name).WithError(err).Debug("conversion strategy failed")
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	return nil, "", fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...))
}

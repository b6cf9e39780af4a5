package convert

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-pdfit/internal/fileutil"
	"github.com/alnah/go-pdfit/internal/process"
)

// DefaultTimeout bounds one browser page load.
const DefaultTimeout = 30 * time.Second

// Result describes a finished conversion.
type Result struct {
	Kind     Kind
	Strategy string
	Size     int
}

// Service converts files to PDF. It owns up to two browser instances,
// started on first HTML or Markdown conversion; call Close when done.
// A Service is not meant for concurrent use: give each worker its own.
type Service struct {
	timeout   time.Duration
	logger    logrus.FieldLogger
	runner    process.Runner
	officeBin string
	renderers []Renderer
	noBrowser bool

	markdown *MarkdownRenderer
	office   *Office
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout sets the browser page load timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger for strategy fallbacks.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOfficeBinary pins the LibreOffice executable.
func WithOfficeBinary(bin string) Option {
	return func(s *Service) { s.officeBin = bin }
}

// WithRunner replaces the external command runner.
func WithRunner(r process.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithRenderers replaces the browser renderers, in preference order.
func WithRenderers(r ...Renderer) Option {
	return func(s *Service) { s.renderers = r }
}

// WithoutBrowser disables browser rendering; HTML and Markdown fall back
// to their text rendition.
func WithoutBrowser() Option {
	return func(s *Service) { s.noBrowser = true }
}

// New creates a Service. Browsers are not launched until needed.
func New(opts ...Option) *Service {
	s := &Service{
		timeout: DefaultTimeout,
		runner:  process.ExecRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	if s.renderers == nil && !s.noBrowser {
		s.renderers = []Renderer{NewRodRenderer(s.timeout), NewChromedpRenderer(s.timeout)}
	}
	s.markdown = NewMarkdownRenderer()
	s.office = NewOffice(s.officeBin, s.runner)
	return s
}

// chainFor returns the strategies for kind, most faithful first.
func (s *Service) chainFor(kind Kind) (Chain, error) {
	c := Chain{Logger: s.logger.WithField("kind", string(kind))}

	switch kind {
	case KindText:
		c.Strategies = []Strategy{textStrategy(), asciiTextStrategy()}
	case KindImage:
		c.Strategies = []Strategy{imageStrategy()}
	case KindHTML, KindMarkdown:
		// Markdown is rendered to an HTML file first, so both share a chain.
		if !s.noBrowser {
			for _, r := range s.renderers {
				c.Strategies = append(c.Strategies, rendererStrategy(r))
			}
		}
		c.Strategies = append(c.Strategies, htmlTextStrategy())
	case KindDocument:
		c.Strategies = []Strategy{
			officeStrategy(s.office),
			ooxmlTextStrategy("docx-text", DocxText, ".docx"),
		}
	case KindPresentation:
		c.Strategies = []Strategy{
			officeStrategy(s.office),
			ooxmlTextStrategy("pptx-text", PptxText, ".pptx"),
		}
	default:
		return Chain{}, fmt.Errorf("%w: kind %q", ErrUnsupportedFormat, kind)
	}
	return c, nil
}

// Convert detects the kind of src from its extension and writes the PDF
// to dst.
func (s *Service) Convert(ctx context.Context, src, dst string) (*Result, error) {
	kind, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return s.ConvertKind(ctx, kind, src, dst)
}

// ConvertKind converts src as kind, whatever its extension. dst is only
// written when a strategy succeeds, and atomically.
func (s *Service) ConvertKind(ctx context.Context, kind Kind, src, dst string) (*Result, error) {
	if _, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	chain, err := s.chainFor(kind)
	if err != nil {
		return nil, err
	}

	input := src
	if kind == KindMarkdown {
		htmlPath, cleanup, err := s.markdownToHTMLFile(ctx, src)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		input = htmlPath
	}

	out, strategy, err := chain.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s produced empty output", ErrPDFGeneration, strategy)
	}

	if err := fileutil.WriteAtomic(dst, out); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"input":    src,
		"output":   dst,
		"strategy": strategy,
		"bytes":    len(out),
	}).Debug("converted")

	return &Result{Kind: kind, Strategy: strategy, Size: len(out)}, nil
}

// markdownToHTMLFile renders src to a temporary HTML file whose relative
// links resolve against the Markdown file's directory.
func (s *Service) markdownToHTMLFile(ctx context.Context, src string) (string, func(), error) {
	data, err := os.ReadFile(src) // #nosec G304 -- user-provided input path
	if err != nil {
		return "", nil, fmt.Errorf("reading input: %w", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return "", nil, err
	}

	doc, err := s.markdown.ToHTML(ctx, []byte(text))
	if err != nil {
		return "", nil, err
	}

	if dir, err := filepath.Abs(filepath.Dir(src)); err == nil {
		doc = withBaseHref(doc, dir)
	}

	path, cleanup, err := fileutil.WriteTempFile([]byte(doc), "html")
	if err != nil {
		return "", nil, err
	}
	return path, cleanup, nil
}

// withBaseHref adds a <base> element pointing at dir right after <head>.
func withBaseHref(doc, dir string) string {
	href := "file://" + filepath.ToSlash(dir) + "/"
	tag := `<head>` + "\n" + `<base href="` + html.EscapeString(href) + `">`
	return strings.Replace(doc, "<head>", tag, 1)
}

// Close releases every browser started by the service.
func (s *Service) Close() error {
	var errs []error
	for _, r := range s.renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		}
	}
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
	"github.com/alnah/go-pdfit/internal/convert"
	"github.com/alnah/go-pdfit/internal/fileutil"
	"github.com/alnah/go-pdfit/internal/hints"
	"github.com/alnah/go-pdfit/internal/yamlutil"
)

// ErrCreateOutputDir is returned when an output directory cannot be made.
var ErrCreateOutputDir = errors.New("failed to create output directory")

// pdfCommand holds what every PDF command needs once flags are parsed.
type pdfCommand struct {
	flags     *pdfFlags
	args      []string
	cfg       *config.Config
	engine    *pdfit.Engine
	presenter Presenter
}

// runPDFCommand parses flags, loads configuration and dispatches one of
// the commands operating on existing PDFs.
func runPDFCommand(ctx context.Context, cmd string, args []string, env *Environment) int {
	f, rest, err := parsePDFFlags(cmd, args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	presenter := newPresenter(env, f.common)
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(f.common, env, envCfg)
	if err != nil {
		return reportError(presenter, err)
	}
	logger := newLogger(env.Stderr, f.common)

	c := &pdfCommand{
		flags:     f,
		args:      rest,
		cfg:       cfg,
		engine:    env.NewEngine(cfg, logger),
		presenter: presenter,
	}

	handlers := map[string]func(context.Context) error{
		"merge":     c.merge,
		"split":     c.split,
		"text":      c.text,
		"protect":   c.protect,
		"unprotect": c.unprotect,
		"compress":  c.compress,
		"rotate":    c.rotate,
		"reorder":   c.reorder,
	}
	if err := handlers[cmd](ctx); err != nil {
		return reportError(presenter, err)
	}
	return ExitSuccess
}

// singleInput returns the only positional argument.
func (c *pdfCommand) singleInput(cmd string) (string, error) {
	switch len(c.args) {
	case 0:
		return "", fmt.Errorf("%w: %s needs an input PDF", ErrMissingArgument, cmd)
	case 1:
		return c.args[0], nil
	default:
		return "", fmt.Errorf("%w: %s takes one input, got %d", ErrInvalidFlag, cmd, len(c.args))
	}
}

// outputFor returns --output, or a path next to input (or under
// output.defaultDir) named with suffix and ext. The parent directory is
// created when missing.
func (c *pdfCommand) outputFor(input, suffix, ext string) (string, error) {
	out := c.flags.output
	if out == "" {
		out = fileutil.SiblingPath(input, c.cfg.Output.DefaultDir, suffix, ext)
	}
	if err := ensureDir(filepath.Dir(out)); err != nil {
		return "", err
	}
	return out, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrCreateOutputDir, err)
	}
	return nil
}

// withProgress shows a spinner while fn runs. The spinner is stopped
// before fn's outcome is reported.
func (c *pdfCommand) withProgress(message string, fn func() error) error {
	progress := c.presenter.ShowProgress(message, 0)
	err := fn()
	progress.Done()
	return err
}

func (c *pdfCommand) merge(ctx context.Context) error {
	if len(c.args) < 2 {
		return fmt.Errorf("%w: merge needs at least two PDFs, got %d", ErrMissingArgument, len(c.args))
	}

	out := c.flags.output
	if out == "" {
		out = filepath.Join(c.cfg.Output.DefaultDir, "merged.pdf")
	}
	if err := ensureDir(filepath.Dir(out)); err != nil {
		return err
	}

	var doc *pdfit.Document
	err := c.withProgress("Merging", func() (err error) {
		doc, err = c.engine.MergeFiles(ctx, c.args, out, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}
	c.presenter.ShowResult(fmt.Sprintf("Merged %d files (%d pages) into %s", len(c.args), doc.PageCount(), out))
	return nil
}

func (c *pdfCommand) split(context.Context) error {
	input, err := c.singleInput("split")
	if err != nil {
		return err
	}

	dir := c.flags.output
	if dir == "" {
		dir = c.cfg.Output.DefaultDir
	}
	if dir != "" {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}

	var paths []string
	err = c.withProgress("Splitting", func() (err error) {
		paths, err = c.engine.SplitFile(input, dir, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}
	for _, p := range paths {
		c.presenter.ShowResult("Created " + p)
	}
	c.presenter.ShowResult(fmt.Sprintf("Split %s into %d files", input, len(paths)))
	return nil
}

func (c *pdfCommand) text(context.Context) error {
	input, err := c.singleInput("text")
	if err != nil {
		return err
	}
	out, err := c.outputFor(input, "", ".txt")
	if err != nil {
		return err
	}

	err = c.withProgress("Extracting text", func() error {
		_, err := c.engine.ExtractTextFile(input, out, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}
	c.presenter.ShowResult("Created " + out)
	return nil
}

func (c *pdfCommand) protect(context.Context) error {
	input, err := c.singleInput("protect")
	if err != nil {
		return err
	}
	if c.flags.userPassword == "" {
		return fmt.Errorf("%w: --user-password is required", pdfit.ErrEmptyPassword)
	}
	out, err := c.outputFor(input, "_protected", ".pdf")
	if err != nil {
		return err
	}

	var owner *string
	if c.flags.ownerSet {
		owner = &c.flags.ownerPassword
	}

	err = c.withProgress("Encrypting", func() error {
		return c.engine.ProtectFile(input, out, c.flags.userPassword, owner)
	})
	if err != nil {
		return err
	}
	c.presenter.ShowResult("Created " + out)
	return nil
}

func (c *pdfCommand) unprotect(context.Context) error {
	input, err := c.singleInput("unprotect")
	if err != nil {
		return err
	}
	out, err := c.outputFor(input, "_decrypted", ".pdf")
	if err != nil {
		return err
	}

	err = c.withProgress("Decrypting", func() error {
		return c.engine.UnprotectFile(input, out, c.flags.password)
	})
	if errors.Is(err, pdfit.ErrNotEncrypted) {
		c.presenter.ShowWarning(input + " is not encrypted, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}
	c.presenter.ShowResult("Created " + out)
	return nil
}

func (c *pdfCommand) compress(ctx context.Context) error {
	input, err := c.singleInput("compress")
	if err != nil {
		return err
	}

	q := c.flags.quality
	if q == "" {
		q = c.cfg.Compress.Quality
	}
	quality, err := pdfit.ParseQuality(q)
	if err != nil {
		return err
	}

	out, err := c.outputFor(input, "_compressed", ".pdf")
	if err != nil {
		return err
	}

	var res *pdfit.CompressResult
	err = c.withProgress("Compressing", func() (err error) {
		res, err = c.engine.CompressFile(ctx, input, out, quality, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}

	switch res.Status {
	case pdfit.StatusFallback:
		c.presenter.ShowWarning("Ghostscript unavailable or failed, used pdfcpu optimization" + hints.ForGhostscript())
	case pdfit.StatusIneffective:
		c.presenter.ShowWarning("no method made the file smaller, wrote an unchanged copy")
	}
	c.presenter.ShowResult(fmt.Sprintf("Created %s (%s -> %s, %.1f%% smaller)",
		out, formatSize(res.InputSize), formatSize(res.OutputSize), res.Reduction()))
	return nil
}

func (c *pdfCommand) rotate(context.Context) error {
	input, err := c.singleInput("rotate")
	if err != nil {
		return err
	}

	angle := c.flags.angle
	if angle == 0 {
		angle = c.cfg.Rotate.Angle
	}

	out, err := c.outputFor(input, "_rotated", ".pdf")
	if err != nil {
		return err
	}

	var doc *pdfit.Document
	err = c.withProgress("Rotating", func() (err error) {
		doc, err = c.engine.RotateFile(input, out, c.flags.pages, angle, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}
	c.presenter.ShowResult(fmt.Sprintf("Created %s (%d pages)", out, doc.PageCount()))
	return nil
}

func (c *pdfCommand) reorder(context.Context) error {
	input, err := c.singleInput("reorder")
	if err != nil {
		return err
	}
	if c.flags.order == "" {
		return fmt.Errorf("%w: --order is required", ErrMissingArgument)
	}

	out, err := c.outputFor(input, "_reordered", ".pdf")
	if err != nil {
		return err
	}

	var doc *pdfit.Document
	err = c.withProgress("Reordering", func() (err error) {
		doc, err = c.engine.ReorderFile(input, out, c.flags.order, !c.flags.allowPartial, c.flags.password)
		return err
	})
	if err != nil {
		return err
	}
	c.presenter.ShowResult(fmt.Sprintf("Created %s (%d pages)", out, doc.PageCount()))
	return nil
}

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) int {
	f, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	presenter := newPresenter(env, *f)
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(*f, env, envCfg)
	if err != nil {
		return reportError(presenter, err)
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return reportError(presenter, err)
	}
	_, _ = env.Stdout.Write(out)
	return ExitSuccess
}

// reportError prints err with its hint and returns the matching exit code.
func reportError(p Presenter, err error) int {
	p.ShowError("error: " + err.Error() + hintFor(err))
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, pdfit.ErrWrongPassword), errors.Is(err, pdfit.ErrDocumentLocked):
		return hints.ForWrongPassword()
	case errors.Is(err, pdfit.ErrMalformed),
		errors.Is(err, pdfit.ErrOutOfRange),
		errors.Is(err, pdfit.ErrIndexOutOfRange),
		errors.Is(err, pdfit.ErrOrderLength):
		return hints.ForPageExpression()
	case errors.Is(err, convert.ErrOfficeUnavailable):
		return hints.ForOffice()
	case errors.Is(err, convert.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, pdfit.ErrBackendUnavailable):
		return hints.ForGhostscript()
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, convert.ErrUnsupportedFormat) && !errors.Is(err, convert.ErrAllStrategiesFailed):
		return hints.ForUnsupportedFormat(pdfit.SupportedExtensions())
	}
	return ""
}

// formatSize renders n bytes with a binary unit.
func formatSize(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // defaults; replaced when --config or PDFIT_CONFIG is set

	// NewEngine builds the engine used by the PDF commands.
	NewEngine func(cfg *config.Config, logger logrus.FieldLogger) *pdfit.Engine
	// NewPool builds the converter pool used by convert.
	NewPool func(size int, opts ...pdfit.ConverterOption) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Config:    config.DefaultConfig(),
		NewEngine: newEngine,
		NewPool:   newPool,
	}
}

// newEngine wires the pdfcpu codec and Ghostscript backend from cfg.
func newEngine(cfg *config.Config, logger logrus.FieldLogger) *pdfit.Engine {
	codec := pdfit.NewPDFCodec(pdfit.WithEncryption(cfg.Protect.UseAES(), cfg.Protect.KeyLength))
	gs := pdfit.NewGhostscript(pdfit.WithGhostscriptBinary(cfg.Compress.Ghostscript))
	return pdfit.NewEngine(
		pdfit.WithCodec(codec),
		pdfit.WithBackend(gs),
		pdfit.WithLogger(logger),
	)
}

// newLogger returns a text logger on w. Verbose enables debug entries;
// quiet keeps only errors.
func newLogger(w io.Writer, f commonFlags) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    f.noColor,
	})
	switch {
	case f.verbose:
		l.SetLevel(logrus.DebugLevel)
	case f.quiet:
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

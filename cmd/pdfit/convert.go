package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	flag "github.com/spf13/pflag"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
)

// dirPermissions is used for output directories: rwxr-x---.
const dirPermissions = 0o750

// Sentinel errors for batch conversion.
var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrOutputConflict     = errors.New("output path conflict")
	ErrConverterInit      = errors.New("failed to initialize converter")
)

// FileConverter converts one file. Implemented by *pdfit.Converter.
type FileConverter interface {
	ConvertAs(ctx context.Context, kind pdfit.InputKind, input, output string) (*pdfit.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ FileConverter = (*pdfit.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() FileConverter
	Release(FileConverter)
	Size() int
	Close() error
}

// poolAdapter exposes a *pdfit.ConverterPool as a Pool.
type poolAdapter struct {
	pool *pdfit.ConverterPool
}

// Compile-time interface implementation check.
var _ Pool = poolAdapter{}

func newPool(size int, opts ...pdfit.ConverterOption) Pool {
	return poolAdapter{pool: pdfit.NewConverterPool(size, opts...)}
}

func (a poolAdapter) Acquire() FileConverter {
	// Return an untyped nil so callers can compare against nil.
	if c := a.pool.Acquire(); c != nil {
		return c
	}
	return nil
}

func (a poolAdapter) Release(c FileConverter) {
	if conv, ok := c.(*pdfit.Converter); ok {
		a.pool.Release(conv)
	}
}

func (a poolAdapter) Size() int    { return a.pool.Size() }
func (a poolAdapter) Close() error { return a.pool.Close() }

// FileToConvert pairs an input with its output path and kind.
type FileToConvert struct {
	InputPath  string
	OutputPath string
	Kind       pdfit.InputKind
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Strategy   string
	Err        error
	Duration   time.Duration
}

// runConvert executes the convert command.
func runConvert(ctx context.Context, args []string, env *Environment) int {
	f, inputs, err := parseConvertFlags(args, env.Stderr)
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

	timeout, err := resolveTimeout(f.timeout, envCfg, cfg)
	if err != nil {
		return reportError(presenter, err)
	}

	workers := f.workers
	if workers == 0 {
		workers = cfg.Convert.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return reportError(presenter, err)
	}

	var kind pdfit.InputKind
	if f.kind != "" {
		if kind, err = pdfit.ParseKind(f.kind); err != nil {
			return reportError(presenter, err)
		}
	}

	if len(inputs) == 0 {
		return reportError(presenter, fmt.Errorf("%w: convert needs at least one input", ErrMissingArgument))
	}

	output := f.output
	if output == "" {
		output = cfg.Output.DefaultDir
	}

	files, err := discoverAll(inputs, output, kind)
	if err != nil {
		return reportError(presenter, err)
	}

	opts := []pdfit.ConverterOption{
		pdfit.WithTimeout(timeout),
		pdfit.WithConverterLogger(logger),
		pdfit.WithOfficeBinary(cfg.Office.Binary),
	}
	if f.noBrowser || cfg.Browser.Disabled {
		opts = append(opts, pdfit.WithoutBrowser())
	}

	size := pdfit.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}
	logger.WithField("workers", size).Debug("starting conversion")

	pool := env.NewPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.WithError(err).Warn("closing converters")
		}
	}()

	progress := presenter.ShowProgress("Converting", len(files))
	results := convertBatch(ctx, pool, files, progress.Advance)
	progress.Done()

	return printResults(results, presenter, f.common.verbose)
}

// convertBatch processes files concurrently using the converter pool.
// done is called after each file, from the worker goroutines.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, done func()) []ConversionResult {
	if len(files) == 0 {
		return nil
	}
	if done == nil {
		done = func() {}
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			if conv == nil {
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ErrConverterInit}
					done()
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
				} else {
					results[idx] = convertFile(ctx, conv, files[idx])
				}
				done()
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts a single file and returns the result.
func convertFile(ctx context.Context, conv FileConverter, f FileToConvert) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrCreateOutputDir, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := conv.ConvertAs(ctx, f.Kind, f.InputPath, f.OutputPath)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}
	result.Strategy = res.Strategy
	return result
}

// printResults reports each conversion and returns the exit code: the
// code of the first failure, or ExitSuccess.
func printResults(results []ConversionResult, p Presenter, verbose bool) int {
	var succeeded, failed int
	code := ExitSuccess

	for _, r := range results {
		if r.Err != nil {
			failed++
			p.ShowError(fmt.Sprintf("FAILED %s: %v%s", r.InputPath, r.Err, hintFor(r.Err)))
			if code == ExitSuccess {
				code = exitCodeFor(r.Err)
				if code == ExitSuccess {
					code = ExitGeneral
				}
			}
			continue
		}
		succeeded++

		if verbose {
			p.ShowResult(fmt.Sprintf("%s -> %s [%s] (%v)", r.InputPath, r.OutputPath, r.Strategy, r.Duration.Round(time.Millisecond)))
		} else {
			p.ShowResult("Created " + r.OutputPath)
		}
	}

	if len(results) > 1 {
		p.ShowResult(fmt.Sprintf("\n%d succeeded, %d failed", succeeded, failed))
	}
	return code
}

// discoverAll collects the files to convert from every input argument and
// rejects batches where two inputs would write the same PDF.
func discoverAll(inputs []string, output string, kind pdfit.InputKind) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, in := range inputs {
		found, err := discoverFiles(in, output, kind)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, strings.Join(inputs, ", "))
	}
	if len(files) > 1 && isPDFPath(output) {
		return nil, fmt.Errorf("%w: --output %s names one file but %d inputs were found", ErrOutputConflict, output, len(files))
	}

	seen := make(map[string]string, len(files))
	for _, f := range files {
		key := filepath.Clean(f.OutputPath)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrOutputConflict, prev, f.InputPath, f.OutputPath)
		}
		seen[key] = f.InputPath
	}
	return files, nil
}

// discoverFiles returns the files to convert for one input. A file is
// taken as is, using kind when set; a directory is walked recursively and
// only files with a supported extension are kept.
func discoverFiles(inputPath, output string, kind pdfit.InputKind) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		k := kind
		if k == "" {
			if k, err = pdfit.DetectKind(inputPath); err != nil {
				return nil, err
			}
		}
		return []FileToConvert{{
			InputPath:  inputPath,
			OutputPath: resolveOutputPath(inputPath, output, ""),
			Kind:       k,
		}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		k, err := pdfit.DetectKind(path)
		if err != nil {
			return nil
		}
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, output, inputPath),
			Kind:       k,
		})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the PDF path for inputPath. An output
// ending in .pdf is used as is; any other output is a directory, under
// which files found in baseInputDir keep their relative location.
func resolveOutputPath(inputPath, output, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if output == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if isPDFPath(output) {
		return output
	}

	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(output, filepath.Dir(rel), base+".pdf")
		}
	}

	return filepath.Join(output, base+".pdf")
}

func isPDFPath(p string) bool {
	return strings.EqualFold(filepath.Ext(p), ".pdf")
}

// validateWorkers checks the worker count; 0 means automatic.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

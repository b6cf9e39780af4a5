package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-pdfit/internal/config"
	"github.com/alnah/go-pdfit/internal/fileutil"
	"github.com/alnah/go-pdfit/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // PDFIT_CONFIG: config file name or path
	Timeout    time.Duration // PDFIT_TIMEOUT: browser page load timeout
	Workers    int           // PDFIT_WORKERS: parallel conversion workers
	GSBinary   string        // PDFIT_GS_BIN: Ghostscript executable
	Office     string        // PDFIT_SOFFICE_BIN: LibreOffice executable
	OutputDir  string        // PDFIT_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid PDFIT_* environment variables.
var knownEnvVars = map[string]bool{
	"PDFIT_CONFIG":      true,
	"PDFIT_TIMEOUT":     true,
	"PDFIT_WORKERS":     true,
	"PDFIT_GS_BIN":      true,
	"PDFIT_SOFFICE_BIN": true,
	"PDFIT_OUTPUT_DIR":  true,
	"PDFIT_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads the recognized PDFIT_* variables. Unparseable
// numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("PDFIT_CONFIG"),
		GSBinary:   os.Getenv("PDFIT_GS_BIN"),
		Office:     os.Getenv("PDFIT_SOFFICE_BIN"),
		OutputDir:  os.Getenv("PDFIT_OUTPUT_DIR"),
	}

	if timeout := os.Getenv("PDFIT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PDFIT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars reports unrecognized PDFIT_* variables, which are
// usually typos.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PDFIT_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig copies env values into cfg where the file left them unset.
// Precedence: flags > env > config file > defaults. Flags are applied by
// each command after this.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.GSBinary != "" && cfg.Compress.Ghostscript == "" {
		cfg.Compress.Ghostscript = env.GSBinary
	}
	if env.Office != "" && cfg.Office.Binary == "" {
		cfg.Office.Binary = env.Office
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 && cfg.Convert.Workers == 0 {
		cfg.Convert.Workers = env.Workers
	}
}

// resolveTimeout picks the browser timeout: flag, then env, then config.
func resolveTimeout(flagValue string, env *envConfig, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: --timeout %q: %v", ErrInvalidFlag, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive", ErrInvalidFlag)
		}
		return d, nil
	}
	if env.Timeout > 0 {
		return env.Timeout, nil
	}
	return cfg.Browser.TimeoutDuration()
}

// loadConfig resolves the configuration for one command: --config, then
// PDFIT_CONFIG, then env.Config, with env overrides applied on top.
// Browser settings are exported as the ROD_* variables the renderers read.
func loadConfig(f commonFlags, env *Environment, envCfg *envConfig) (*config.Config, error) {
	cfg := env.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	name := f.config
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
		cfg = loaded
	} else {
		copied := *cfg
		cfg = &copied
	}

	applyEnvConfig(envCfg, cfg)

	if cfg.Browser.NoSandbox && os.Getenv("ROD_NO_SANDBOX") == "" {
		_ = os.Setenv("ROD_NO_SANDBOX", "1")
	}
	if cfg.Browser.Binary != "" && os.Getenv("ROD_BROWSER_BIN") == "" {
		_ = os.Setenv("ROD_BROWSER_BIN", cfg.Browser.Binary)
	}
	return cfg, nil
}

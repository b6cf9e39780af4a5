// Package config loads the pdfit YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pdfit/internal/yamlutil"
)

// AppName names the user config directory.
const AppName = "go-pdfit"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength = 4096
	MaxWorkers    = 8 // one browser per worker
)

// Config holds the defaults applied to every command.
type Config struct {
	Output   OutputConfig   `yaml:"output"`
	Compress CompressConfig `yaml:"compress"`
	Office   OfficeConfig   `yaml:"office"`
	Browser  BrowserConfig  `yaml:"browser"`
	Protect  ProtectConfig  `yaml:"protect"`
	Rotate   RotateConfig   `yaml:"rotate"`
	Convert  ConvertConfig  `yaml:"convert"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the input
}

// CompressConfig defines compression defaults.
type CompressConfig struct {
	Quality     string `yaml:"quality"`     // low, medium, high (default: medium)
	Ghostscript string `yaml:"ghostscript"` // binary path; empty = PATH lookup
}

// OfficeConfig defines the LibreOffice executable.
type OfficeConfig struct {
	Binary string `yaml:"binary"` // empty = PATH lookup
}

// BrowserConfig defines headless Chrome options.
type BrowserConfig struct {
	Timeout   string `yaml:"timeout"` // Go duration, e.g. "45s" (default: 30s)
	NoSandbox bool   `yaml:"noSandbox"`
	Binary    string `yaml:"binary"`
	Disabled  bool   `yaml:"disabled"` // render HTML/Markdown as text only
}

// ProtectConfig defines encryption settings.
type ProtectConfig struct {
	AES       *bool `yaml:"aes"`       // default true
	KeyLength int   `yaml:"keyLength"` // 40, 128 or 256 (default: 256)
}

// RotateConfig defines the default rotation.
type RotateConfig struct {
	Angle int `yaml:"angle"` // 90, 180 or 270 (default: 90)
}

// ConvertConfig defines batch conversion options.
type ConvertConfig struct {
	Workers int `yaml:"workers"` // 0 = auto
}

// Defaults.
const (
	DefaultQuality   = "medium"
	DefaultAngle     = 90
	DefaultKeyLength = 256
	DefaultTimeout   = 30 * time.Second
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Compress: CompressConfig{Quality: DefaultQuality},
		Rotate:   RotateConfig{Angle: DefaultAngle},
		Protect:  ProtectConfig{KeyLength: DefaultKeyLength},
	}
}

// UseAES reports whether encryption uses AES (the default) rather than RC4.
func (p ProtectConfig) UseAES() bool {
	return p.AES == nil || *p.AES
}

// TimeoutDuration parses the browser timeout, falling back to DefaultTimeout.
func (b BrowserConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: browser.timeout %q: %v", ErrInvalidValue, b.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: browser.timeout must be positive, got %s", ErrInvalidValue, d)
	}
	return d, nil
}

// Validate checks enums and ranges. Called by LoadConfig, and available to
// callers who build a Config by hand.
func (c *Config) Validate() error {
	for field, value := range map[string]string{
		"output.defaultDir":    c.Output.DefaultDir,
		"compress.ghostscript": c.Compress.Ghostscript,
		"office.binary":        c.Office.Binary,
		"browser.binary":       c.Browser.Binary,
	} {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Compress.Quality) {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("%w: compress.quality %q (must be low, medium, or high)", ErrInvalidValue, c.Compress.Quality)
	}

	if _, err := c.Browser.TimeoutDuration(); err != nil {
		return err
	}

	switch c.Protect.KeyLength {
	case 0, 128, 256:
	case 40:
		if c.Protect.UseAES() {
			return fmt.Errorf("%w: protect.keyLength 40 requires aes: false", ErrInvalidValue)
		}
	default:
		return fmt.Errorf("%w: protect.keyLength %d (must be 40, 128, or 256)", ErrInvalidValue, c.Protect.KeyLength)
	}

	switch c.Rotate.Angle {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: rotate.angle %d (must be 90, 180, or 270)", ErrInvalidValue, c.Rotate.Angle)
	}

	if c.Convert.Workers < 0 || c.Convert.Workers > MaxWorkers {
		return fmt.Errorf("%w: convert.workers %d (must be between 0 and %d)", ErrInvalidValue, c.Convert.Workers, MaxWorkers)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// applyDefaults fills fields a file left empty.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Compress.Quality == "" {
		c.Compress.Quality = d.Compress.Quality
	}
	c.Compress.Quality = strings.ToLower(c.Compress.Quality)
	if c.Rotate.Angle == 0 {
		c.Rotate.Angle = d.Rotate.Angle
	}
	if c.Protect.KeyLength == 0 {
		c.Protect.KeyLength = d.Protect.KeyLength
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's searched as <name>.yaml or <name>.yml in the current
// directory, then in the user config directory.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yamlutil.ReadStrict(f, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists where LoadConfig looks for a config called name.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

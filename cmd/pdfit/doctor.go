package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
	"github.com/alnah/go-pdfit/internal/convert"
	"github.com/alnah/go-pdfit/internal/process"
)

// versionProbeTimeout bounds each "<tool> --version" call.
const versionProbeTimeout = 10 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string     `json:"status"` // "ready", "warnings", "errors"
	Chrome      toolInfo   `json:"chrome"`
	Ghostscript toolInfo   `json:"ghostscript"`
	Office      toolInfo   `json:"libreoffice"`
	Env         envInfo    `json:"environment"`
	System      systemInfo `json:"system"`
	Warnings    []string   `json:"warnings,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// toolInfo holds the detection result for one external program.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Missing tools are warnings since every conversion has a fallback.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	cfg, err := loadConfig(f.common, env, loadEnvConfig())
	if err != nil {
		return reportError(newPresenter(env, f.common), err)
	}

	result := runDoctor(cfg)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result, cfg)
	checkGhostscript(result, cfg)
	checkOffice(result, cfg)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// toolVersion runs "<bin> --version" and returns its first output line.
func toolVersion(bin string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	out, err := process.Output(ctx, bin, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

// checkChrome detects Chrome/Chromium for HTML and Markdown rendering.
func checkChrome(result *doctorResult, cfg *config.Config) {
	if cfg.Browser.Disabled {
		result.Warnings = append(result.Warnings,
			"Browser disabled in config; HTML and Markdown are rendered as plain text")
		return
	}

	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; HTML and Markdown fall back to plain text. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	if v, err := toolVersion(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkGhostscript detects the compression backend.
func checkGhostscript(result *doctorResult, cfg *config.Config) {
	bin, err := pdfit.NewGhostscript(pdfit.WithGhostscriptBinary(cfg.Compress.Ghostscript)).Binary()
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Ghostscript not found; compress falls back to pdfcpu optimization. Install gs or set PDFIT_GS_BIN")
		return
	}
	result.Ghostscript = probeTool(result, "Ghostscript", bin)
}

// checkOffice detects LibreOffice for word-processor and presentation files.
func checkOffice(result *doctorResult, cfg *config.Config) {
	bin := cfg.Office.Binary
	if bin == "" {
		var err error
		if bin, err = process.LookPath(convert.OfficeCandidates()...); err != nil {
			result.Warnings = append(result.Warnings,
				"LibreOffice not found; only .docx and .pptx convert, as plain text. Install soffice or set PDFIT_SOFFICE_BIN")
			return
		}
	}
	result.Office = probeTool(result, "LibreOffice", bin)
}

// probeTool records bin as found and asks it for its version. A binary
// configured by path that does not exist is an error.
func probeTool(result *doctorResult, name, bin string) toolInfo {
	if filepath.IsAbs(bin) {
		if _, err := os.Stat(bin); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s not found at %s", name, bin))
			return toolInfo{}
		}
	}

	info := toolInfo{Found: true, Path: bin}
	if v, err := toolVersion(bin); err == nil {
		info.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", name, err))
	}
	return info
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" && result.Chrome.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1 or browser.noSandbox")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("PDFIT_CONTAINER") == "1" {
		return true, "PDFIT_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used by every converter.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "pdfit-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	result.System.TempWritable = true
}

// printTool prints one tool section.
func printTool(w io.Writer, title string, t toolInfo, missing string) {
	fmt.Fprintln(w, title)
	if t.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", t.Path)
		if t.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", t.Version)
		}
	} else {
		fmt.Fprintf(w, "  [WARN] Not found (%s)\n", missing)
	}
	fmt.Fprintln(w)
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pdfit doctor")
	fmt.Fprintln(w)

	printTool(w, "Chrome/Chromium", r.Chrome, "HTML and Markdown as plain text")
	printTool(w, "Ghostscript", r.Ghostscript, "compress uses pdfcpu")
	printTool(w, "LibreOffice", r.Office, ".docx and .pptx as plain text")

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.NoSandbox == "1" {
		fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

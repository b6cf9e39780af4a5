// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-pdfit/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a common CI environment variable is set.
func InCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserConnect returns hints for browser connection errors.
func ForBrowserConnect() string {
	var hints []string

	if (InCI() || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --no-browser for a text-only rendering")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound suggests --config, or creating the first user-level
// path among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-pdfit") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForGhostscript explains how compression degrades without Ghostscript.
func ForGhostscript() string {
	return format("install Ghostscript (gs) for best compression, or set PDFIT_GS_BIN")
}

// ForOffice returns hints when LibreOffice is missing.
func ForOffice() string {
	return format("install LibreOffice (soffice) or set PDFIT_SOFFICE_BIN; only .docx/.pptx have a text-only fallback")
}

// ForWrongPassword returns hints for encrypted inputs.
func ForWrongPassword() string {
	return format("pass the document's user password with --password")
}

// ForPageExpression documents the page range syntax.
func ForPageExpression() string {
	return format(`pages are 1-based, e.g. "1,3-5,7" or "all"`)
}

// ForUnsupportedFormat lists the extensions convert accepts.
func ForUnsupportedFormat(extensions []string) string {
	if len(extensions) == 0 {
		return ""
	}
	return format("supported: " + strings.Join(extensions, ", ") + "; or force one with --kind")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

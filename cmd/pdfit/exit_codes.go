package main

import (
	"errors"
	"os"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
	"github.com/alnah/go-pdfit/internal/convert"
)

// Exit codes for the pdfit CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, page expression or argument
	ExitIO       = 3 // File not found, permission denied, unreadable PDF
	ExitBackend  = 4 // Browser, LibreOffice or Ghostscript failure
	ExitPassword = 5 // Wrong or missing password for an encrypted input
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Password errors (exit 5)
	if errors.Is(err, pdfit.ErrWrongPassword) ||
		errors.Is(err, pdfit.ErrDocumentLocked) {
		return ExitPassword
	}

	// Renderer and backend errors (exit 4)
	if errors.Is(err, convert.ErrAllStrategiesFailed) ||
		errors.Is(err, convert.ErrBrowserConnect) ||
		errors.Is(err, convert.ErrOfficeUnavailable) ||
		errors.Is(err, convert.ErrPDFGeneration) ||
		errors.Is(err, pdfit.ErrBackendUnavailable) {
		return ExitBackend
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, pdfit.ErrReadPDF) ||
		errors.Is(err, pdfit.ErrReadInput) ||
		errors.Is(err, pdfit.ErrWritePDF) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrCreateOutputDir) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pdfit.ErrMalformed) ||
		errors.Is(err, pdfit.ErrOutOfRange) ||
		errors.Is(err, pdfit.ErrIndexOutOfRange) ||
		errors.Is(err, pdfit.ErrInvalidAngle) ||
		errors.Is(err, pdfit.ErrInvalidQuality) ||
		errors.Is(err, pdfit.ErrNoDocuments) ||
		errors.Is(err, pdfit.ErrOrderLength) ||
		errors.Is(err, pdfit.ErrEmptyPassword) ||
		errors.Is(err, pdfit.ErrNotEncrypted) ||
		errors.Is(err, convert.ErrUnsupportedFormat) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrUnknownCommand) {
		return ExitUsage
	}

	return ExitGeneral
}

package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	pdfit "github.com/alnah/go-pdfit"
	"github.com/alnah/go-pdfit/internal/config"
	"github.com/alnah/go-pdfit/internal/convert"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown", errors.New("boom"), ExitGeneral},
		{"codec failure", pdfit.ErrCodec, ExitGeneral},

		{"wrong password", pdfit.ErrWrongPassword, ExitPassword},
		{"locked document", fmt.Errorf("rotate: %w", pdfit.ErrDocumentLocked), ExitPassword},

		{"all strategies failed", errors.Join(convert.ErrAllStrategiesFailed, convert.ErrUnsupportedFormat), ExitBackend},
		{"browser", fmt.Errorf("%w: no chrome", convert.ErrBrowserConnect), ExitBackend},
		{"office", convert.ErrOfficeUnavailable, ExitBackend},
		{"pdf generation", convert.ErrPDFGeneration, ExitBackend},
		{"ghostscript", pdfit.ErrBackendUnavailable, ExitBackend},

		{"not exist", fmt.Errorf("open: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read input", pdfit.ErrReadInput, ExitIO},
		{"write pdf", pdfit.ErrWritePDF, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"output dir", ErrCreateOutputDir, ExitIO},

		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"malformed range", &pdfit.ParseError{Expr: "x", Token: "x", Err: pdfit.ErrMalformed}, ExitUsage},
		{"out of range", pdfit.ErrOutOfRange, ExitUsage},
		{"index out of range", pdfit.ErrIndexOutOfRange, ExitUsage},
		{"angle", pdfit.ErrInvalidAngle, ExitUsage},
		{"quality", pdfit.ErrInvalidQuality, ExitUsage},
		{"order length", pdfit.ErrOrderLength, ExitUsage},
		{"empty password", pdfit.ErrEmptyPassword, ExitUsage},
		{"not encrypted", pdfit.ErrNotEncrypted, ExitUsage},
		{"unsupported format", convert.ErrUnsupportedFormat, ExitUsage},
		{"invalid flag", ErrInvalidFlag, ExitUsage},
		{"missing argument", ErrMissingArgument, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"output conflict", ErrOutputConflict, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

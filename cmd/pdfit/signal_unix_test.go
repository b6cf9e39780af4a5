//go:build !windows

package main

import (
	"os"
	"slices"
	"syscall"
	"testing"
)

func TestShutdownSignals_IncludeSIGTERM(t *testing.T) {
	t.Parallel()

	if !slices.Contains(shutdownSignals, os.Signal(syscall.SIGTERM)) {
		t.Errorf("shutdownSignals = %v, want SIGTERM", shutdownSignals)
	}
}

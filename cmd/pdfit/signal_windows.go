//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// shutdownSignals cancel the running command. Windows has no SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}

// notifyContext returns a context that is canceled on Ctrl+C.
// Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

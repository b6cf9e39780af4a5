// Package process runs external tools and cleans up their process trees.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrNotFound indicates the requested executable is not on PATH.
var ErrNotFound = errors.New("executable not found")

// Runner executes an external command. It exists so callers can be tested
// without the real tools installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Compile-time interface check.
var _ Runner = ExecRunner{}

// Run starts name with args and waits for it. When ctx is done before the
// command exits, the whole process group is killed and ctx.Err() is returned.
// A failing command's stderr is included in the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	return run(ctx, nil, name, args...)
}

// Output runs name like ExecRunner.Run and returns its standard output.
func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if err := run(ctx, &stdout, name, args...); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

func run(ctx context.Context, stdout io.Writer, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(name, args...) // #nosec G204 -- tool paths come from config or LookPath
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		KillProcessGroup(cmd.Process.Pid)
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				return fmt.Errorf("%s: %w: %s", name, err, msg)
			}
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

// LookPath returns the first candidate found on PATH.
func LookPath(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(candidates, ", "))
}

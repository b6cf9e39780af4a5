package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// spinnerInterval is how often the spinner advances.
const spinnerInterval = 100 * time.Millisecond

// Progress is a running progress indicator. Done stops it and must be
// called before anything else is printed.
type Progress interface {
	Advance()
	Done()
}

// Presenter renders user-facing output. Commands never print results
// directly so quiet mode and colors are handled in one place.
type Presenter interface {
	// ShowProgress starts a spinner when total <= 0, or a counter of total
	// steps otherwise.
	ShowProgress(message string, total int) Progress
	ShowResult(message string)
	ShowWarning(message string)
	ShowError(message string)
}

type consolePresenter struct {
	out     io.Writer
	err     io.Writer
	quiet   bool
	color   bool
	animate bool // progress bars only on an interactive stderr
}

// Compile-time interface implementation check.
var _ Presenter = (*consolePresenter)(nil)

// newPresenter builds the presenter for a command's output streams.
func newPresenter(env *Environment, f commonFlags) *consolePresenter {
	return &consolePresenter{
		out:     env.Stdout,
		err:     env.Stderr,
		quiet:   f.quiet,
		color:   !f.noColor && os.Getenv("NO_COLOR") == "" && isTerminal(env.Stdout),
		animate: !f.quiet && isTerminal(env.Stderr),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits in int
}

func (p *consolePresenter) paint(c color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}

func (p *consolePresenter) ShowProgress(message string, total int) Progress {
	if !p.animate {
		return nopProgress{}
	}
	if total > 0 {
		return &counter{bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.err),
			progressbar.OptionSetDescription(message),
			progressbar.OptionShowCount(),
			progressbar.OptionEnableColorCodes(p.color),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)}
	}

	s := &spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(p.err),
			progressbar.OptionSetDescription(message),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (p *consolePresenter) ShowResult(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, p.paint(color.Green, message))
}

func (p *consolePresenter) ShowWarning(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.err, p.paint(color.Yellow, "warning: "+message))
}

func (p *consolePresenter) ShowError(message string) {
	fmt.Fprintln(p.err, p.paint(color.Red, message))
}

type nopProgress struct{}

func (nopProgress) Advance() {}
func (nopProgress) Done()    {}

// counter is a determinate bar, safe for concurrent Advance calls.
type counter struct {
	bar  *progressbar.ProgressBar
	once sync.Once
}

func (c *counter) Advance() { _ = c.bar.Add(1) }

func (c *counter) Done() {
	c.once.Do(func() { _ = c.bar.Finish() })
}

// spinner animates on its own goroutine until Done, which joins it.
type spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func (s *spinner) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.bar.Add(1)
		}
	}
}

func (s *spinner) Advance() {}

func (s *spinner) Done() {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		_ = s.bar.Finish()
	})
}

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-pdfit/internal/process"
)

// Renderer prints a local HTML file to PDF with a browser engine.
type Renderer interface {
	Name() string
	Render(ctx context.Context, htmlPath string) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ Renderer = (*RodRenderer)(nil)
	_ Renderer = (*ChromedpRenderer)(nil)
)

// A4 page with half-inch margins.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// noSandbox reports whether Chrome must run without its sandbox,
// which is required in containers and most CI runners.
func noSandbox() bool {
	return os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true"
}

// fileURL returns a file:// URL for path.
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// RodRenderer renders with go-rod. The browser is launched on first use.
type RodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// NewRodRenderer creates a RodRenderer with the given page load timeout.
func NewRodRenderer(timeout time.Duration) *RodRenderer {
	return &RodRenderer{timeout: timeout}
}

// Name implements Renderer.
func (r *RodRenderer) Name() string { return "chrome-rod" }

func (r *RodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New().Leakless(false)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if noSandbox() || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	r.launcher = l
	return nil
}

// Render opens htmlPath in headless Chrome and prints it.
func (r *RodRenderer) Render(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	u, err := fileURL(htmlPath)
	if err != nil {
		return nil, err
	}

	p, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: u})
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrPDFGeneration, err)
	}
	defer p.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := p.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: loading page: %v", ErrPDFGeneration, err)
	}

	margin := marginInches
	width, height := paperWidthInches, paperHeightInches
	reader, err := p.PDF(&proto.PagePrintToPDF{
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return out, nil
}

// Close releases the browser and kills its process tree.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
	}
	r.browser = nil
	r.launcher = nil
	return err
}

// ChromedpRenderer renders with chromedp, used when rod cannot start.
type ChromedpRenderer struct {
	mu            sync.Mutex
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// NewChromedpRenderer creates a ChromedpRenderer with the given timeout.
func NewChromedpRenderer(timeout time.Duration) *ChromedpRenderer {
	return &ChromedpRenderer{timeout: timeout}
}

// Name implements Renderer.
func (r *ChromedpRenderer) Name() string { return "chrome-chromedp" }

func (r *ChromedpRenderer) ensureBrowser() error {
	if r.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	if noSandbox() {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so launch failures surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browserCtx = browserCtx
	r.allocCancel = allocCancel
	r.browserCancel = browserCancel
	return nil
}

// Render opens htmlPath in a new tab and prints it.
func (r *ChromedpRenderer) Render(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	u, err := fileURL(htmlPath)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, r.timeout)
		defer cancel()
	}

	// Propagate cancellation of the caller's context to the tab.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(u),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(paperWidthInches).
				WithPaperHeight(paperHeightInches).
				WithMarginTop(marginInches).
				WithMarginBottom(marginInches).
				WithMarginLeft(marginInches).
				WithMarginRight(marginInches).
				WithPrintBackground(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

// Close shuts the browser down.
func (r *ChromedpRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browserCtx == nil {
		return nil
	}
	r.browserCancel()
	r.allocCancel()
	r.browserCtx = nil
	return nil
}

// rendererStrategy adapts a Renderer to a Strategy.
func rendererStrategy(r Renderer) Strategy {
	return Strategy{Name: r.Name(), Run: r.Render}
}

// blockElements end a line of extracted text.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Pre: true, atom.Blockquote: true, atom.Section: true, atom.Article: true,
}

// skippedElements have no visible text.
var skippedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Head: true, atom.Noscript: true, atom.Template: true,
}

// HTMLText extracts readable text from an HTML document, one line per
// block element, collapsing whitespace inside each block.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var lines []string
	var cur strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteByte(' ')
		}
		isBlock := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if isBlock {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock {
			flush()
		}
	}
	walk(doc)
	flush()

	if len(lines) == 0 {
		return "", ErrEmptyInput
	}
	return strings.Join(lines, "\n"), nil
}

// htmlTextStrategy renders only the text of an HTML file, for when no
// browser is available.
func htmlTextStrategy() Strategy {
	return Strategy{
		Name: "html-text",
		Run: func(_ context.Context, src string) ([]byte, error) {
			f, err := os.Open(src) // #nosec G304 -- user-provided or temp path
			if err != nil {
				return nil, err
			}
			defer f.Close()

			text, err := HTMLText(f)
			if err != nil {
				return nil, err
			}
			return TextPDF(text)
		},
	}
}

package renderer

import (
	"context"
	"os"
	"os/exec"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/trezcool/matibabu/core"
	"github.com/trezcool/matibabu/core/report"
)

// ErrBrowserNotFound is fatal and expected in dev: the print engine needs a
// Chrome/Chromium install, which is a deliberately optional heavy dependency.
var ErrBrowserNotFound = errors.New(
	"no Chrome/Chromium executable found: install it (e.g. `apt-get install chromium`) " +
		"or point <ENV>_BROWSERPATH at an existing browser binary",
)

// browserCandidates are probed on $PATH when no explicit path is configured.
var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

var (
	lookPathFunc         = exec.LookPath             // mockable
	statFunc             = os.Stat                   // mockable
	newExecAllocatorFunc = chromedp.NewExecAllocator // mockable
	newContextFunc       = chromedp.NewContext       // mockable
	runFunc              = chromedp.Run              // mockable
)

// settleExpr is the content-settle heuristic polled before printing: the
// document must have finished loading and every image (the logo, mainly)
// must be painted.
const settleExpr = `document.readyState === 'complete' && Array.from(document.images).every(function (img) { return img.complete })`

// Standard paper dimensions in inches, keyed by the named formats the layout
// layer may request. CDP only speaks explicit dimensions.
var paperDimensions = map[string][2]float64{
	"A4":     {8.27, 11.69},
	"Letter": {8.5, 11},
}

// ChromeEngine rasterizes assembled HTML documents with a headless
// Chrome/Chromium process. Each render spawns and tears down its own
// isolated browser instance; nothing is shared across invocations.
type ChromeEngine struct {
	conf   *core.Config
	logger core.Logger
}

var _ report.Engine = (*ChromeEngine)(nil)

func NewChromeEngine(conf *core.Config, logger core.Logger) *ChromeEngine {
	return &ChromeEngine{conf: conf, logger: logger}
}

// findBrowser resolves the browser executable at call time, so a missing
// install fails loudly for this request instead of crashing the app at boot.
func (e *ChromeEngine) findBrowser() (string, error) {
	if p := e.conf.Renderer.BrowserPath; p != "" {
		if _, err := statFunc(p); err != nil {
			return "", errors.Wrapf(ErrBrowserNotFound, "configured browser path %q", p)
		}
		return p, nil
	}
	for _, name := range browserCandidates {
		if p, err := lookPathFunc(name); err == nil {
			return p, nil
		}
	}
	return "", ErrBrowserNotFound
}

// RenderPDF loads html into an off-screen page and prints it. The browser
// process is released on every exit path once launched.
func (e *ChromeEngine) RenderPDF(ctx context.Context, html string, opts report.PrintOptions) ([]byte, error) {
	browser, err := e.findBrowser()
	if err != nil {
		return nil, err
	}

	if e.conf.Renderer.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.conf.Renderer.Timeout)
		defer cancel()
	}

	// NoSandbox is required when the process runs as root (containers)
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	allocCtx, cancelAlloc := newExecAllocatorFunc(ctx, allocOpts...)
	defer cancelAlloc()

	taskCtx, cancelTask := newContextFunc(allocCtx)
	defer cancelTask()

	params := printParams(opts)

	var (
		pdf     []byte
		settled bool
	)
	err = runFunc(taskCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Poll(settleExpr, &settled),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// printParams maps the layout-layer print options onto CDP parameters. A
// named format is translated to its physical dimensions here, at the engine
// boundary; explicit dimensions pass through untouched.
func printParams(opts report.PrintOptions) *page.PrintToPDFParams {
	width, height := opts.WidthIn, opts.HeightIn
	if opts.Format != "" {
		dims, ok := paperDimensions[opts.Format]
		if !ok {
			dims = paperDimensions["A4"] // never print on a 0x0 page
		}
		width, height = dims[0], dims[1]
	}
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate(opts.HeaderHTML).
		WithFooterTemplate(opts.FooterHTML).
		WithPaperWidth(width).
		WithPaperHeight(height).
		WithMarginTop(opts.MarginTopIn).
		WithMarginBottom(opts.MarginBottomIn).
		WithMarginLeft(opts.MarginLeftIn).
		WithMarginRight(opts.MarginRightIn)
}

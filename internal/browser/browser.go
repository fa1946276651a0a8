// Package browser provides the headless Chrome session factory used by the
// crawler, built on chromedp.
//
// One [Browser] process is shared by every poll task; each task gets its own
// tab ([Tab]). Closing the browser invalidates any tab still open.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/jpalmerr/liveboard"
)

// defaultArgs match a containerised deployment: no sandbox, no /dev/shm.
var defaultArgs = []string{
	"no-sandbox",
	"disable-setuid-sandbox",
	"disable-dev-shm-usage",
}

// Options configure how Chrome is started.
type Options struct {
	// ExecPath is the Chrome/Chromium binary. Empty lets chromedp search
	// the usual locations.
	ExecPath string

	// Headless runs Chrome without a window.
	Headless bool

	// Args are extra command line switches without the leading "--",
	// e.g. "disable-gpu" or "lang=ko-KR". They are added after the defaults.
	Args []string
}

// Browser is a running Chrome process.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// Launcher returns a [liveboard.Launcher] that starts Chrome with opts.
func Launcher(opts Options) liveboard.Launcher {
	return func(ctx context.Context) (liveboard.Browser, error) {
		b, err := Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Launch starts Chrome and waits until it accepts commands.
//
// ctx bounds the browser's lifetime: cancelling it kills the process. Use
// [Browser.Close] for an orderly shutdown.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	for _, arg := range append(append([]string{}, defaultArgs...), opts.Args...) {
		name, value := splitArg(arg)
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// running an empty action list starts the process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewSession opens a new tab.
func (b *Browser) NewSession(ctx context.Context) (liveboard.Session, error) {
	if err := b.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser closed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)

	// the first Run creates the target and binds it to the context it is
	// given, so it must run on tabCtx itself rather than a derived context.
	// The caller's deadline is enforced by cancelling the tab instead.
	stop := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx)
	if !stop() {
		// ctx ended first and the tab is already being torn down
		tabCancel()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("open tab: %w", err)
	}
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &Tab{ctx: tabCtx, cancel: tabCancel}, nil
}

// Close shuts Chrome down gracefully and releases the allocator.
// Safe to call multiple times.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = chromedp.Cancel(b.browserCtx)
		b.browserCancel()
		b.allocCancel()
		if errors.Is(b.closeErr, context.Canceled) {
			b.closeErr = nil
		}
	})
	return b.closeErr
}

// Tab is one browser tab. It implements [liveboard.Session].
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// Navigate loads address and waits for the page's load event.
func (t *Tab) Navigate(ctx context.Context, address string) error {
	return run(ctx, t.ctx, chromedp.Navigate(address))
}

// HTML returns the outer HTML of the document element.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	var html string
	if err := run(ctx, t.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Title returns the document title.
func (t *Tab) Title(ctx context.Context) (string, error) {
	var title string
	if err := run(ctx, t.ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Close closes the tab. Safe to call multiple times.
func (t *Tab) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = chromedp.Cancel(t.ctx)
		t.cancel()
		if errors.Is(t.closeErr, context.Canceled) {
			t.closeErr = nil
		}
	})
	return t.closeErr
}

// run executes actions on the chromedp context target, bounded by the
// caller's ctx. Cancelling ctx aborts the actions but leaves the tab open.
func run(ctx, target context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(target)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		runCtx, dcancel = context.WithDeadline(runCtx, deadline)
		defer dcancel()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// splitArg turns "name=value" into a string flag and a bare "name" into a
// boolean one.
func splitArg(arg string) (string, interface{}) {
	for i := 0; i < len(arg); i++ {
		if arg[i] == '=' {
			return arg[:i], arg[i+1:]
		}
	}
	return arg, true
}

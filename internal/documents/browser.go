package documents

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"
)

// BrowserSession owns the single long-lived headless Chrome process shared
// by all PDF generations. The process is launched lazily on first use and
// relaunched transparently if it dies; each generation runs in its own tab.
type BrowserSession struct {
	execPath string
	group    singleflight.Group

	mu            sync.Mutex
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowserSession creates a session. execPath overrides the Chrome binary
// discovery when non-empty.
func NewBrowserSession(execPath string) *BrowserSession {
	return &BrowserSession{execPath: execPath}
}

// Acquire returns a live browser context, launching the shared process when
// needed. Concurrent callers during startup share a single launch; a dead
// browser is detected here and replaced before the next render.
func (b *BrowserSession) Acquire(ctx context.Context) (context.Context, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: browser session closed", ErrPDFGeneration)
	}
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		browserCtx := b.browserCtx
		b.mu.Unlock()
		return browserCtx, nil
	}
	b.mu.Unlock()

	v, err, _ := b.group.Do("launch", func() (any, error) {
		return b.launch()
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.(context.Context), nil
}

func (b *BrowserSession) launch() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("%w: browser session closed", ErrPDFGeneration)
	}
	// Another caller may have finished launching between the fast-path
	// check and entering singleflight.
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}
	b.teardownLocked()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	// The allocator is anchored to the background context so the browser
	// outlives the request that triggered the launch.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: launch headless browser: %v", ErrPDFGeneration, err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	return browserCtx, nil
}

// Close tears down the shared browser process. The session cannot be
// reused afterwards. Safe to call more than once.
func (b *BrowserSession) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
	b.closed = true
}

func (b *BrowserSession) teardownLocked() {
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.browserCtx = nil
}

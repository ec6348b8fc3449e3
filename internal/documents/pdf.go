package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Fixed print geometry shared by every generated document. Quote and
// invoice PDFs must look identical page-wise, so these are constants
// rather than per-call options.
const (
	pdfPaperWidthInches  = 8.27  // A4
	pdfPaperHeightInches = 11.69 // A4
	pdfMarginInches      = 0.5

	// pdfLoadTimeout bounds the whole load-and-print sequence so a broken
	// embedded resource (e.g. an unreachable logo URL) cannot hang a
	// request indefinitely.
	pdfLoadTimeout = 30 * time.Second

	// pdfErrorHTMLPreview caps how much rendered HTML an error message may
	// carry, keeping customer data out of logs by default.
	pdfErrorHTMLPreview = 200
)

// PDFRenderer prints rendered HTML to PDF bytes through the shared browser
// session. Each call opens its own tab so concurrent generations never
// share rendering state.
type PDFRenderer struct {
	session *BrowserSession
	timeout time.Duration
}

// NewPDFRenderer constructs a PDFRenderer over session.
func NewPDFRenderer(session *BrowserSession) *PDFRenderer {
	return &PDFRenderer{
		session: session,
		timeout: pdfLoadTimeout,
	}
}

// RenderPDF loads html into a fresh tab and prints it to A4 with
// background graphics enabled and uniform margins. The tab is closed on
// every path; the shared browser stays up for the next call.
func (p *PDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	browserCtx, err := p.session.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, p.timeout)
	defer cancelTimeout()

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		// Set the document and hold until the load event fires, so
		// sub-resources such as the company logo and web fonts are in
		// before printing. The listener is registered before
		// SetDocumentContent so a fast load cannot slip past it.
		chromedp.ActionFunc(func(ctx context.Context) error {
			loaded := make(chan struct{}, 1)
			listenCtx, cancelListen := context.WithCancel(ctx)
			defer cancelListen()
			chromedp.ListenTarget(listenCtx, func(ev any) {
				if _, ok := ev.(*page.EventLoadEventFired); ok {
					select {
					case loaded <- struct{}{}:
					default:
					}
				}
			})

			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			if err := page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx); err != nil {
				return err
			}
			select {
			case <-loaded:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pdfPaperWidthInches).
				WithPaperHeight(pdfPaperHeightInches).
				WithMarginTop(pdfMarginInches).
				WithMarginBottom(pdfMarginInches).
				WithMarginLeft(pdfMarginInches).
				WithMarginRight(pdfMarginInches).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (html prefix: %s)", ErrPDFGeneration, err, truncate(html, pdfErrorHTMLPreview))
	}
	return pdf, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TemplateLoader resolves a template name to its raw content.
type TemplateLoader interface {
	Load(ctx context.Context, name string) (string, error)
}

// HTMLRenderer renders a template against a context tree.
type HTMLRenderer interface {
	Render(tpl string, context map[string]any) (string, error)
}

// PDFConverter prints HTML to PDF bytes.
type PDFConverter interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// MetricsRecorder receives one observation per generation attempt.
type MetricsRecorder interface {
	ObserveDocument(kind string, err error, elapsed time.Duration)
}

// Service is the document generation facade: it composes the data mapper,
// the template renderer and the PDF converter for each document kind, and
// owns the shared browser-session lifecycle.
type Service struct {
	logger   *slog.Logger
	store    TemplateLoader
	renderer HTMLRenderer
	pdf      PDFConverter
	session  *BrowserSession
	metrics  MetricsRecorder
}

// NewService wires the pipeline. session may be nil when pdf does not run
// through a shared browser (tests substitute a fake converter).
func NewService(logger *slog.Logger, store TemplateLoader, renderer HTMLRenderer, pdf PDFConverter, session *BrowserSession) *Service {
	return &Service{
		logger:   logger,
		store:    store,
		renderer: renderer,
		pdf:      pdf,
		session:  session,
	}
}

// WithMetrics attaches a metrics recorder. Returns the service for
// chaining during wiring.
func (s *Service) WithMetrics(metrics MetricsRecorder) *Service {
	s.metrics = metrics
	return s
}

// GenerateQuotePDF produces the printable PDF for a quote.
func (s *Service) GenerateQuotePDF(ctx context.Context, in QuoteInput) ([]byte, error) {
	return s.generate(ctx, KindQuote, QuoteContext(in))
}

// GenerateInvoicePDF produces the printable PDF for an invoice.
func (s *Service) GenerateInvoicePDF(ctx context.Context, in InvoiceInput) ([]byte, error) {
	return s.generate(ctx, KindInvoice, InvoiceContext(in))
}

// generate runs the pipeline stages in order. The template is resolved
// before any browser work so a bad template name never launches Chrome.
// Each stage failure is wrapped with the stage that produced it.
func (s *Service) generate(ctx context.Context, kind DocumentKind, docCtx map[string]any) (pdfBytes []byte, genErr error) {
	name := string(kind)
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveDocument(name, genErr, time.Since(start))
		}
	}()

	tpl, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s template: %w", name, err)
	}

	html, err := s.renderer.Render(tpl, docCtx)
	if err != nil {
		return nil, fmt.Errorf("render %s document: %w", name, err)
	}

	pdf, err := s.pdf.RenderPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("convert %s document to pdf: %w", name, err)
	}

	s.logger.Info("document generated",
		slog.String("kind", name),
		slog.Int("pdf_bytes", len(pdf)),
	)
	return pdf, nil
}

// Cleanup tears down the shared browser session. Invoked at process
// shutdown.
func (s *Service) Cleanup() {
	if s.session != nil {
		s.session.Close()
	}
}

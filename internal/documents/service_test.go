package documents

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeLoader struct {
	templates map[string]string
	loads     int
}

func (f *fakeLoader) Load(_ context.Context, name string) (string, error) {
	f.loads++
	tpl, ok := f.templates[name]
	if !ok {
		return "", ErrTemplateNotFound
	}
	return tpl, nil
}

type fakeConverter struct {
	calls   int
	lastHTML string
	pdf     []byte
	err     error
}

func (f *fakeConverter) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.calls++
	f.lastHTML = html
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func newTestService(loader TemplateLoader, converter PDFConverter) *Service {
	return NewService(slog.Default(), loader, NewRenderer(), converter, nil)
}

// ============================================================================
// SERVICE TESTS
// ============================================================================

func TestService_GenerateQuotePDF(t *testing.T) {
	loader := &fakeLoader{templates: map[string]string{
		"quote": "<html><body>{{number}} for {{customer.name}}</body></html>",
	}}
	converter := &fakeConverter{pdf: []byte("%PDF-1.4 fake")}
	svc := newTestService(loader, converter)

	pdf, err := svc.GenerateQuotePDF(context.Background(), minimalQuote())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), pdf)
	assert.Equal(t, 1, converter.calls)
	assert.Contains(t, converter.lastHTML, "Q-1001")
	assert.Contains(t, converter.lastHTML, "Bob")
}

func TestService_UnknownTemplateFailsBeforeConversion(t *testing.T) {
	loader := &fakeLoader{templates: map[string]string{}}
	converter := &fakeConverter{pdf: []byte("%PDF")}
	svc := newTestService(loader, converter)

	_, err := svc.GenerateQuotePDF(context.Background(), minimalQuote())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "load quote template")
	assert.Zero(t, converter.calls, "pdf conversion must not run without a template")
}

func TestService_RenderFailureIsStageTagged(t *testing.T) {
	loader := &fakeLoader{templates: map[string]string{
		"invoice": "{{#broken}}no closing tag",
	}}
	converter := &fakeConverter{}
	svc := newTestService(loader, converter)

	_, err := svc.GenerateInvoicePDF(context.Background(), InvoiceInput{Number: "INV-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "render invoice document")
	assert.Zero(t, converter.calls)
}

func TestService_ConversionFailureIsStageTagged(t *testing.T) {
	loader := &fakeLoader{templates: map[string]string{
		"quote": "<html>{{number}}</html>",
	}}
	converter := &fakeConverter{err: ErrPDFGeneration}
	svc := newTestService(loader, converter)

	_, err := svc.GenerateQuotePDF(context.Background(), minimalQuote())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPDFGeneration)
	assert.Contains(t, err.Error(), "convert quote document to pdf")
}

func TestService_CleanupWithoutSession(t *testing.T) {
	svc := newTestService(&fakeLoader{}, &fakeConverter{})
	assert.NotPanics(t, svc.Cleanup)
}

package quotes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-hq/fieldline/internal/documents"
	"github.com/fieldline-hq/fieldline/internal/masterdata"
	"github.com/fieldline-hq/fieldline/internal/shared"
)

// The masterdata service is the production MasterDataSource, so the
// configured default currency symbol reaches generated documents.
var _ MasterDataSource = (*masterdata.Service)(nil)

// ============================================================================
// MOCKS
// ============================================================================

type mockRepo struct {
	quotes      map[int64]Quote
	nextID      int64
	sentTo      map[int64]string
	markSentErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{quotes: map[int64]Quote{}, sentTo: map[int64]string{}}
}

func (m *mockRepo) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	var out []Quote
	for _, q := range m.quotes {
		if req.Status == "" || string(q.Status) == req.Status {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return Quote{}, shared.ErrNotFound
	}
	return q, nil
}

func (m *mockRepo) Create(ctx context.Context, quote Quote) (Quote, error) {
	m.nextID++
	quote.ID = m.nextID
	quote.Number = "Q-00001"
	quote.Status = QuoteStatusDraft
	m.quotes[quote.ID] = quote
	return quote, nil
}

func (m *mockRepo) MarkSent(ctx context.Context, id int64, recipient string) error {
	if m.markSentErr != nil {
		return m.markSentErr
	}
	if _, ok := m.quotes[id]; !ok {
		return shared.ErrNotFound
	}
	m.sentTo[id] = recipient
	return nil
}

type mockMaster struct {
	profileErr  error
	customerErr error
	projectErr  error
}

func (m *mockMaster) GetCompanyProfile(ctx context.Context) (masterdata.CompanyProfile, error) {
	if m.profileErr != nil {
		return masterdata.CompanyProfile{}, m.profileErr
	}
	return masterdata.CompanyProfile{
		ID: 1, Name: "Fieldline Ltd", CurrencySymbol: "$",
		DefaultTerms: "Payment due within 14 days.",
	}, nil
}

func (m *mockMaster) GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error) {
	if m.customerErr != nil {
		return masterdata.Customer{}, m.customerErr
	}
	return masterdata.Customer{ID: id, Name: "Acme Builders", Email: "ops@acme.test"}, nil
}

func (m *mockMaster) GetProject(ctx context.Context, id int64) (masterdata.Project, error) {
	if m.projectErr != nil {
		return masterdata.Project{}, m.projectErr
	}
	return masterdata.Project{ID: id, Name: "Loft conversion", Description: "Second floor"}, nil
}

type mockGenerator struct {
	lastInput documents.QuoteInput
	err       error
}

func (m *mockGenerator) GenerateQuotePDF(ctx context.Context, in documents.QuoteInput) ([]byte, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.7 quote"), nil
}

type mockEnqueuer struct {
	kind      documents.DocumentKind
	id        int64
	recipient string
	calls     int
	err       error
}

func (m *mockEnqueuer) EnqueueDocumentEmail(ctx context.Context, kind documents.DocumentKind, documentID int64, recipient, message string) error {
	m.calls++
	m.kind = kind
	m.id = documentID
	m.recipient = recipient
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedQuote(repo *mockRepo) Quote {
	expiry := time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)
	projectID := int64(9)
	q := Quote{
		ID:         1,
		Number:     "Q-00042",
		CustomerID: 5,
		ProjectID:  &projectID,
		IssueDate:  time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		ExpiryDate: &expiry,
		Status:     QuoteStatusDraft,
		Subtotal:   decimal.RequireFromString("19.00"),
		Total:      decimal.RequireFromString("19.00"),
		Lines: []QuoteLine{{
			ID: 1, QuoteID: 1, Position: 1, Description: "Widget",
			Quantity:  decimal.RequireFromString("2"),
			UnitPrice: decimal.RequireFromString("9.5"),
			LineTotal: decimal.RequireFromString("19.00"),
		}},
	}
	repo.quotes[1] = q
	repo.nextID = 1
	return q
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateComputesTotals(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(testLogger(), repo, &mockMaster{}, &mockGenerator{}, &mockEnqueuer{})

	tax := "3.80"
	discount := "1.00"
	quote, err := svc.Create(context.Background(), CreateQuoteRequest{
		CustomerID:     5,
		IssueDate:      "2026-03-12",
		TaxAmount:      &tax,
		DiscountAmount: &discount,
		Lines: []CreateQuoteLineRequest{
			{Description: "Widget", Quantity: "2", UnitPrice: "9.5"},
			{Description: "Fitting", Quantity: "1.5", UnitPrice: "10"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "34", quote.Subtotal.String())
	assert.Equal(t, "19", quote.Lines[0].LineTotal.String())
	assert.Equal(t, "15", quote.Lines[1].LineTotal.String())
	// 34 - 1 discount + 3.80 tax
	assert.Equal(t, "36.8", quote.Total.String())
	assert.Equal(t, QuoteStatusDraft, quote.Status)
}

func TestCreateRejectsBadDecimal(t *testing.T) {
	svc := NewService(testLogger(), newMockRepo(), &mockMaster{}, &mockGenerator{}, &mockEnqueuer{})

	_, err := svc.Create(context.Background(), CreateQuoteRequest{
		CustomerID: 5,
		IssueDate:  "2026-03-12",
		Lines:      []CreateQuoteLineRequest{{Description: "Widget", Quantity: "two", UnitPrice: "9.5"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")
}

func TestDocumentInputAssemblesAllSources(t *testing.T) {
	repo := newMockRepo()
	seedQuote(repo)
	svc := NewService(testLogger(), repo, &mockMaster{}, &mockGenerator{}, &mockEnqueuer{})

	in, err := svc.DocumentInput(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Q-00042", in.Number)
	assert.Equal(t, "Fieldline Ltd", in.Company.Name)
	assert.Equal(t, "Acme Builders", in.Customer.Name)
	assert.Equal(t, "Loft conversion", in.ProjectName)
	assert.Equal(t, "$", in.CurrencySymbol)
	require.Len(t, in.Items, 1)
	assert.Equal(t, "Widget", in.Items[0].Description)
	// no quote-level terms, so the company default applies
	assert.Equal(t, "Payment due within 14 days.", in.Terms)
}

func TestDocumentInputWrapsUpstreamFailures(t *testing.T) {
	cases := []struct {
		name   string
		master *mockMaster
	}{
		{"company profile lookup fails", &mockMaster{profileErr: errors.New("db down")}},
		{"customer lookup fails", &mockMaster{customerErr: errors.New("db down")}},
		{"project lookup fails", &mockMaster{projectErr: errors.New("db down")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMockRepo()
			seedQuote(repo)
			svc := NewService(testLogger(), repo, tc.master, &mockGenerator{}, &mockEnqueuer{})

			_, err := svc.DocumentInput(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, documents.ErrUpstreamData)
		})
	}
}

func TestDocumentInputMissingQuoteKeepsNotFound(t *testing.T) {
	svc := NewService(testLogger(), newMockRepo(), &mockMaster{}, &mockGenerator{}, &mockEnqueuer{})

	_, err := svc.DocumentInput(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, documents.ErrUpstreamData)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGeneratePDFReturnsFilename(t *testing.T) {
	repo := newMockRepo()
	seedQuote(repo)
	gen := &mockGenerator{}
	svc := NewService(testLogger(), repo, &mockMaster{}, gen, &mockEnqueuer{})

	pdf, filename, err := svc.GeneratePDF(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "quote-Q-00042.pdf", filename)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "Q-00042", gen.lastInput.Number)
}

func TestSendEnqueuesDeliveryTask(t *testing.T) {
	repo := newMockRepo()
	seedQuote(repo)
	enq := &mockEnqueuer{}
	svc := NewService(testLogger(), repo, &mockMaster{}, &mockGenerator{}, enq)

	err := svc.Send(context.Background(), 1, SendQuoteRequest{Recipient: "ops@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, 1, enq.calls)
	assert.Equal(t, documents.KindQuote, enq.kind)
	assert.Equal(t, int64(1), enq.id)
	assert.Equal(t, "ops@acme.test", enq.recipient)
}

func TestSendDeclinedQuoteRejected(t *testing.T) {
	repo := newMockRepo()
	q := seedQuote(repo)
	q.Status = QuoteStatusDeclined
	repo.quotes[1] = q
	enq := &mockEnqueuer{}
	svc := NewService(testLogger(), repo, &mockMaster{}, &mockGenerator{}, enq)

	err := svc.Send(context.Background(), 1, SendQuoteRequest{Recipient: "ops@acme.test"})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
	assert.Zero(t, enq.calls)
}

func TestSendUnknownQuoteDoesNotEnqueue(t *testing.T) {
	enq := &mockEnqueuer{}
	svc := NewService(testLogger(), newMockRepo(), &mockMaster{}, &mockGenerator{}, enq)

	err := svc.Send(context.Background(), 404, SendQuoteRequest{Recipient: "ops@acme.test"})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Zero(t, enq.calls)
}

func TestMarkSentRecordsRecipient(t *testing.T) {
	repo := newMockRepo()
	seedQuote(repo)
	svc := NewService(testLogger(), repo, &mockMaster{}, &mockGenerator{}, &mockEnqueuer{})

	require.NoError(t, svc.MarkSent(context.Background(), 1, "ops@acme.test"))
	assert.Equal(t, "ops@acme.test", repo.sentTo[1])
}

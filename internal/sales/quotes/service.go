package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldline-hq/fieldline/internal/documents"
	"github.com/fieldline-hq/fieldline/internal/masterdata"
	"github.com/fieldline-hq/fieldline/internal/shared"
)

// MasterDataSource provides the reference records a quote document needs.
type MasterDataSource interface {
	GetCompanyProfile(ctx context.Context) (masterdata.CompanyProfile, error)
	GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error)
	GetProject(ctx context.Context, id int64) (masterdata.Project, error)
}

// DocumentGenerator produces the printable PDF for a quote.
type DocumentGenerator interface {
	GenerateQuotePDF(ctx context.Context, in documents.QuoteInput) ([]byte, error)
}

// TaskEnqueuer schedules background delivery of a generated document.
type TaskEnqueuer interface {
	EnqueueDocumentEmail(ctx context.Context, kind documents.DocumentKind, documentID int64, recipient, message string) error
}

type Service struct {
	logger *slog.Logger
	repo   Repository
	master MasterDataSource
	docs   DocumentGenerator
	tasks  TaskEnqueuer
}

func NewService(logger *slog.Logger, repo Repository, master MasterDataSource, docs DocumentGenerator, tasks TaskEnqueuer) *Service {
	return &Service{
		logger: logger,
		repo:   repo,
		master: master,
		docs:   docs,
		tasks:  tasks,
	}
}

func (s *Service) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Quote, error) {
	if id <= 0 {
		return Quote{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create builds a quote from the request, deriving line totals and the
// document totals from the submitted quantities and unit prices.
func (s *Service) Create(ctx context.Context, req CreateQuoteRequest) (Quote, error) {
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return Quote{}, fmt.Errorf("parse issue date: %w", err)
	}

	quote := Quote{
		CustomerID: req.CustomerID,
		ProjectID:  req.ProjectID,
		IssueDate:  issueDate,
		Reference:  req.Reference,
		Terms:      req.Terms,
	}
	if req.ExpiryDate != nil {
		expiry, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return Quote{}, fmt.Errorf("parse expiry date: %w", err)
		}
		quote.ExpiryDate = &expiry
	}

	subtotal := decimal.Zero
	for _, lr := range req.Lines {
		qty, err := decimal.NewFromString(lr.Quantity)
		if err != nil {
			return Quote{}, fmt.Errorf("parse quantity %q: %w", lr.Quantity, err)
		}
		price, err := decimal.NewFromString(lr.UnitPrice)
		if err != nil {
			return Quote{}, fmt.Errorf("parse unit price %q: %w", lr.UnitPrice, err)
		}
		lineTotal := qty.Mul(price).Round(2)
		subtotal = subtotal.Add(lineTotal)
		quote.Lines = append(quote.Lines, QuoteLine{
			Description: lr.Description,
			Quantity:    qty,
			UnitPrice:   price,
			LineTotal:   lineTotal,
		})
	}
	quote.Subtotal = subtotal

	total := subtotal
	if req.DiscountAmount != nil {
		discount, err := decimal.NewFromString(*req.DiscountAmount)
		if err != nil {
			return Quote{}, fmt.Errorf("parse discount: %w", err)
		}
		quote.DiscountAmount = &discount
		total = total.Sub(discount)
	}
	if req.TaxAmount != nil {
		tax, err := decimal.NewFromString(*req.TaxAmount)
		if err != nil {
			return Quote{}, fmt.Errorf("parse tax: %w", err)
		}
		quote.TaxAmount = &tax
		total = total.Add(tax)
	}
	quote.Total = total

	return s.repo.Create(ctx, quote)
}

// DocumentInput assembles the normalized document view for a quote.
// Every upstream lookup failure is surfaced, never papered over with
// placeholder data.
func (s *Service) DocumentInput(ctx context.Context, id int64) (documents.QuoteInput, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return documents.QuoteInput{}, upstream(fmt.Sprintf("load quote %d", id), err)
	}

	profile, err := s.master.GetCompanyProfile(ctx)
	if err != nil {
		return documents.QuoteInput{}, upstream("load company profile", err)
	}
	customer, err := s.master.GetCustomer(ctx, quote.CustomerID)
	if err != nil {
		return documents.QuoteInput{}, upstream(fmt.Sprintf("load customer %d", quote.CustomerID), err)
	}

	in := documents.QuoteInput{
		Number:         quote.Number,
		IssueDate:      quote.IssueDate,
		ExpiryDate:     quote.ExpiryDate,
		Reference:      quote.Reference,
		Company:        companyParty(profile),
		Customer:       customerParty(customer),
		Subtotal:       quote.Subtotal,
		Tax:            quote.TaxAmount,
		Discount:       quote.DiscountAmount,
		Total:          quote.Total,
		CurrencySymbol: profile.CurrencySymbol,
		Terms:          quote.Terms,
	}
	if in.Terms == "" {
		in.Terms = profile.DefaultTerms
	}
	for _, line := range quote.Lines {
		in.Items = append(in.Items, documents.LineItemInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}

	if quote.ProjectID != nil {
		project, err := s.master.GetProject(ctx, *quote.ProjectID)
		if err != nil {
			return documents.QuoteInput{}, upstream(fmt.Sprintf("load project %d", *quote.ProjectID), err)
		}
		in.ProjectName = project.Name
		in.ProjectDescription = project.Description
	}
	return in, nil
}

// GeneratePDF renders the quote document and returns the bytes with a
// download filename.
func (s *Service) GeneratePDF(ctx context.Context, id int64) ([]byte, string, error) {
	in, err := s.DocumentInput(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.docs.GenerateQuotePDF(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("quote-%s.pdf", in.Number), nil
}

// Send schedules email delivery of the quote PDF. The status flip to
// SENT happens in the background worker once the mail is accepted.
func (s *Service) Send(ctx context.Context, id int64, req SendQuoteRequest) error {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if quote.Status == QuoteStatusDeclined {
		return fmt.Errorf("%w: quote %s is declined", shared.ErrInvalidStatus, quote.Number)
	}
	if err := s.tasks.EnqueueDocumentEmail(ctx, documents.KindQuote, id, req.Recipient, req.Message); err != nil {
		return fmt.Errorf("enqueue quote email: %w", err)
	}
	s.logger.Info("quote email enqueued", "quote_id", id, "recipient", req.Recipient)
	return nil
}

// MarkSent records successful delivery. Called by the background worker.
func (s *Service) MarkSent(ctx context.Context, id int64, recipient string) error {
	return s.repo.MarkSent(ctx, id, recipient)
}

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, documents.ErrUpstreamData, err)
}

func companyParty(p masterdata.CompanyProfile) documents.PartyInput {
	return documents.PartyInput{
		Name:         p.Name,
		AddressLine1: p.AddressLine1,
		AddressLine2: p.AddressLine2,
		City:         p.City,
		PostalCode:   p.PostalCode,
		Country:      p.Country,
		Email:        p.Email,
		Phone:        p.Phone,
		LogoURL:      p.LogoURL,
	}
}

func customerParty(c masterdata.Customer) documents.PartyInput {
	return documents.PartyInput{
		Name:         c.Name,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		City:         c.City,
		PostalCode:   c.PostalCode,
		Country:      c.Country,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}

package invoices

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

// MasterDataSource provides the reference records an invoice document needs.
type MasterDataSource interface {
	GetCompanyProfile(ctx context.Context) (masterdata.CompanyProfile, error)
	GetCustomer(ctx context.Context, id int64) (masterdata.Customer, error)
	GetProject(ctx context.Context, id int64) (masterdata.Project, error)
}

// DocumentGenerator produces the printable PDF for an invoice.
type DocumentGenerator interface {
	GenerateInvoicePDF(ctx context.Context, in documents.InvoiceInput) ([]byte, error)
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

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	if id <= 0 {
		return Invoice{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return Invoice{}, fmt.Errorf("parse issue date: %w", err)
	}

	invoice := Invoice{
		CustomerID: req.CustomerID,
		ProjectID:  req.ProjectID,
		QuoteID:    req.QuoteID,
		IssueDate:  issueDate,
		Reference:  req.Reference,
		Terms:      req.Terms,
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return Invoice{}, fmt.Errorf("parse due date: %w", err)
		}
		invoice.DueDate = &due
	}

	subtotal := decimal.Zero
	for _, lr := range req.Lines {
		qty, err := decimal.NewFromString(lr.Quantity)
		if err != nil {
			return Invoice{}, fmt.Errorf("parse quantity %q: %w", lr.Quantity, err)
		}
		price, err := decimal.NewFromString(lr.UnitPrice)
		if err != nil {
			return Invoice{}, fmt.Errorf("parse unit price %q: %w", lr.UnitPrice, err)
		}
		lineTotal := qty.Mul(price).Round(2)
		subtotal = subtotal.Add(lineTotal)
		invoice.Lines = append(invoice.Lines, InvoiceLine{
			Description: lr.Description,
			Quantity:    qty,
			UnitPrice:   price,
			LineTotal:   lineTotal,
		})
	}
	invoice.Subtotal = subtotal

	total := subtotal
	if req.DiscountAmount != nil {
		discount, err := decimal.NewFromString(*req.DiscountAmount)
		if err != nil {
			return Invoice{}, fmt.Errorf("parse discount: %w", err)
		}
		invoice.DiscountAmount = &discount
		total = total.Sub(discount)
	}
	if req.TaxAmount != nil {
		tax, err := decimal.NewFromString(*req.TaxAmount)
		if err != nil {
			return Invoice{}, fmt.Errorf("parse tax: %w", err)
		}
		invoice.TaxAmount = &tax
		total = total.Add(tax)
	}
	invoice.Total = total

	return s.repo.Create(ctx, invoice)
}

// DocumentInput assembles the normalized document view for an invoice.
// Upstream lookup failures are surfaced, never replaced with placeholders.
func (s *Service) DocumentInput(ctx context.Context, id int64) (documents.InvoiceInput, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return documents.InvoiceInput{}, upstream(fmt.Sprintf("load invoice %d", id), err)
	}

	profile, err := s.master.GetCompanyProfile(ctx)
	if err != nil {
		return documents.InvoiceInput{}, upstream("load company profile", err)
	}
	customer, err := s.master.GetCustomer(ctx, invoice.CustomerID)
	if err != nil {
		return documents.InvoiceInput{}, upstream(fmt.Sprintf("load customer %d", invoice.CustomerID), err)
	}

	in := documents.InvoiceInput{
		Number:         invoice.Number,
		IssueDate:      invoice.IssueDate,
		DueDate:        invoice.DueDate,
		Reference:      invoice.Reference,
		Company:        companyParty(profile),
		Customer:       customerParty(customer),
		Subtotal:       invoice.Subtotal,
		Tax:            invoice.TaxAmount,
		Discount:       invoice.DiscountAmount,
		Total:          invoice.Total,
		CurrencySymbol: profile.CurrencySymbol,
		Terms:          invoice.Terms,
	}
	if in.Terms == "" {
		in.Terms = profile.DefaultTerms
	}
	for _, line := range invoice.Lines {
		in.Items = append(in.Items, documents.LineItemInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}

	if invoice.ProjectID != nil {
		project, err := s.master.GetProject(ctx, *invoice.ProjectID)
		if err != nil {
			return documents.InvoiceInput{}, upstream(fmt.Sprintf("load project %d", *invoice.ProjectID), err)
		}
		in.ProjectName = project.Name
		in.ProjectDescription = project.Description
	}
	return in, nil
}

func (s *Service) GeneratePDF(ctx context.Context, id int64) ([]byte, string, error) {
	in, err := s.DocumentInput(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.docs.GenerateInvoicePDF(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("invoice-%s.pdf", in.Number), nil
}

// Send schedules email delivery of the invoice PDF.
func (s *Service) Send(ctx context.Context, id int64, req SendInvoiceRequest) error {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status == InvoiceStatusVoid {
		return fmt.Errorf("%w: invoice %s is void", shared.ErrInvalidStatus, invoice.Number)
	}
	if err := s.tasks.EnqueueDocumentEmail(ctx, documents.KindInvoice, id, req.Recipient, req.Message); err != nil {
		return fmt.Errorf("enqueue invoice email: %w", err)
	}
	s.logger.Info("invoice email enqueued", "invoice_id", id, "recipient", req.Recipient)
	return nil
}

// MarkSent records successful delivery. Called by the background worker.
func (s *Service) MarkSent(ctx context.Context, id int64, recipient string) error {
	return s.repo.MarkSent(ctx, id, recipient)
}

func (s *Service) MarkPaid(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.MarkPaid(ctx, id)
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

// Package invoices manages customer invoices and their printable PDFs.
package invoices

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

type Invoice struct {
	ID             int64            `json:"id"`
	Number         string           `json:"number"`
	CustomerID     int64            `json:"customer_id"`
	ProjectID      *int64           `json:"project_id,omitempty"`
	QuoteID        *int64           `json:"quote_id,omitempty"`
	IssueDate      time.Time        `json:"issue_date"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	Status         InvoiceStatus    `json:"status"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	Total          decimal.Decimal  `json:"total"`
	Terms          string           `json:"terms,omitempty"`
	PaidAt         *time.Time       `json:"paid_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Lines          []InvoiceLine    `json:"lines,omitempty"`
}

type InvoiceLine struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

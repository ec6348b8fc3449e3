// Package quotes manages sales quotes from draft through acceptance,
// including the printable PDF and email delivery.
package quotes

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusDeclined QuoteStatus = "DECLINED"
)

type Quote struct {
	ID             int64            `json:"id"`
	Number         string           `json:"number"`
	CustomerID     int64            `json:"customer_id"`
	ProjectID      *int64           `json:"project_id,omitempty"`
	IssueDate      time.Time        `json:"issue_date"`
	ExpiryDate     *time.Time       `json:"expiry_date,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	Status         QuoteStatus      `json:"status"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	Total          decimal.Decimal  `json:"total"`
	Terms          string           `json:"terms,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Lines          []QuoteLine      `json:"lines,omitempty"`
}

type QuoteLine struct {
	ID          int64           `json:"id"`
	QuoteID     int64           `json:"quote_id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

package invoices

type CreateInvoiceRequest struct {
	CustomerID     int64                      `json:"customer_id" validate:"required,gt=0"`
	ProjectID      *int64                     `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	QuoteID        *int64                     `json:"quote_id,omitempty" validate:"omitempty,gt=0"`
	IssueDate      string                     `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate        *string                    `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reference      string                     `json:"reference,omitempty" validate:"max=100"`
	TaxAmount      *string                    `json:"tax_amount,omitempty"`
	DiscountAmount *string                    `json:"discount_amount,omitempty"`
	Terms          string                     `json:"terms,omitempty"`
	Lines          []CreateInvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CreateInvoiceLineRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Quantity    string `json:"quantity" validate:"required"`
	UnitPrice   string `json:"unit_price" validate:"required"`
}

type SendInvoiceRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Message   string `json:"message,omitempty" validate:"max=2000"`
}

type ListInvoicesRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

package documents

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tags the supported business document types. The kind doubles
// as the template name resolved by the Store.
type DocumentKind string

const (
	KindQuote   DocumentKind = "quote"
	KindInvoice DocumentKind = "invoice"
)

const (
	fallbackCompanyName   = "Your Company"
	fallbackCustomerName  = "Customer Name"
	defaultCurrencySymbol = "$"
	displayDateFormat     = "January 2, 2006"
)

// PartyInput carries the name, address and contact block for one side of a
// document (the issuing company or the receiving customer).
type PartyInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string
	Email        string
	Phone        string
	LogoURL      string
}

// LineItemInput is a single priced line on a quote or invoice. LineTotal is
// trusted as supplied; the pipeline does not re-verify the arithmetic.
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// QuoteInput is the normalized quote view consumed by the mapper. Optional
// amounts are pointers so absent values stay out of the template context
// and their display blocks are suppressed.
type QuoteInput struct {
	Number             string
	IssueDate          time.Time
	ExpiryDate         *time.Time
	Reference          string
	Company            PartyInput
	Customer           PartyInput
	ProjectName        string
	ProjectDescription string
	Items              []LineItemInput
	Subtotal           decimal.Decimal
	Tax                *decimal.Decimal
	Discount           *decimal.Decimal
	Total              decimal.Decimal
	CurrencySymbol     string
	Terms              string
}

// InvoiceInput mirrors QuoteInput for invoices: a due date instead of an
// expiry date, otherwise the same shape.
type InvoiceInput struct {
	Number             string
	IssueDate          time.Time
	DueDate            *time.Time
	Reference          string
	Company            PartyInput
	Customer           PartyInput
	ProjectName        string
	ProjectDescription string
	Items              []LineItemInput
	Subtotal           decimal.Decimal
	Tax                *decimal.Decimal
	Discount           *decimal.Decimal
	Total              decimal.Decimal
	CurrencySymbol     string
	Terms              string
}

// QuoteContext flattens a quote into the context tree the renderer
// consumes. Missing required display names fall back to placeholder
// literals so the document stays generable on incomplete upstream data;
// missing optional fields are omitted so their template sections collapse.
func QuoteContext(in QuoteInput) map[string]any {
	symbol := currencySymbol(in.CurrencySymbol)

	ctx := map[string]any{
		"documentLabel": "Quotation",
		"number":        in.Number,
		"issueDate":     formatDate(in.IssueDate),
		"company":       partyContext(in.Company, fallbackCompanyName),
		"customer":      partyContext(in.Customer, fallbackCustomerName),
		"items":         itemsContext(in.Items, symbol),
		"subtotal":      money(symbol, in.Subtotal),
		"total":         money(symbol, in.Total),
	}
	if in.ExpiryDate != nil && !in.ExpiryDate.IsZero() {
		ctx["hasExpiry"] = true
		ctx["expiryDate"] = formatDate(*in.ExpiryDate)
	}
	addCommonOptional(ctx, symbol, in.Reference, in.Tax, in.Discount, in.ProjectName, in.ProjectDescription, in.Terms)
	return ctx
}

// InvoiceContext is the invoice counterpart of QuoteContext.
func InvoiceContext(in InvoiceInput) map[string]any {
	symbol := currencySymbol(in.CurrencySymbol)

	ctx := map[string]any{
		"documentLabel": "Invoice",
		"number":        in.Number,
		"issueDate":     formatDate(in.IssueDate),
		"company":       partyContext(in.Company, fallbackCompanyName),
		"customer":      partyContext(in.Customer, fallbackCustomerName),
		"items":         itemsContext(in.Items, symbol),
		"subtotal":      money(symbol, in.Subtotal),
		"total":         money(symbol, in.Total),
	}
	if in.DueDate != nil && !in.DueDate.IsZero() {
		ctx["hasDueDate"] = true
		ctx["dueDate"] = formatDate(*in.DueDate)
	}
	addCommonOptional(ctx, symbol, in.Reference, in.Tax, in.Discount, in.ProjectName, in.ProjectDescription, in.Terms)
	return ctx
}

func addCommonOptional(ctx map[string]any, symbol, reference string, tax, discount *decimal.Decimal, projectName, projectDescription, terms string) {
	if reference != "" {
		ctx["hasReference"] = true
		ctx["reference"] = reference
	}
	if tax != nil {
		ctx["hasTax"] = true
		ctx["tax"] = money(symbol, *tax)
	}
	if discount != nil {
		ctx["hasDiscount"] = true
		ctx["discount"] = money(symbol, *discount)
	}
	if projectName != "" || projectDescription != "" {
		project := map[string]any{}
		if projectName != "" {
			project["name"] = projectName
		}
		if projectDescription != "" {
			project["description"] = projectDescription
		}
		ctx["hasProject"] = true
		ctx["project"] = project
	}
	if t := strings.TrimSpace(terms); t != "" {
		ctx["hasTerms"] = true
		ctx["terms"] = t
	}
}

func partyContext(p PartyInput, fallbackName string) map[string]any {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = fallbackName
	}
	ctx := map[string]any{"name": name}

	lines := addressLines(p)
	if len(lines) > 0 {
		wrapped := make([]map[string]any, 0, len(lines))
		for _, line := range lines {
			wrapped = append(wrapped, map[string]any{"line": line})
		}
		ctx["hasAddress"] = true
		ctx["addressLines"] = wrapped
	}
	if p.Email != "" {
		ctx["hasEmail"] = true
		ctx["email"] = p.Email
	}
	if p.Phone != "" {
		ctx["hasPhone"] = true
		ctx["phone"] = p.Phone
	}
	if p.LogoURL != "" {
		ctx["hasLogo"] = true
		ctx["logoUrl"] = p.LogoURL
	}
	return ctx
}

func addressLines(p PartyInput) []string {
	var lines []string
	if p.AddressLine1 != "" {
		lines = append(lines, p.AddressLine1)
	}
	if p.AddressLine2 != "" {
		lines = append(lines, p.AddressLine2)
	}
	locality := strings.TrimSpace(strings.TrimSpace(p.PostalCode) + " " + strings.TrimSpace(p.City))
	if locality != "" {
		lines = append(lines, locality)
	}
	if p.Country != "" {
		lines = append(lines, p.Country)
	}
	return lines
}

func itemsContext(items []LineItemInput, symbol string) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		out = append(out, map[string]any{
			"position":    i + 1,
			"description": item.Description,
			"quantity":    formatQuantity(item.Quantity),
			"unitPrice":   money(symbol, item.UnitPrice),
			"lineTotal":   money(symbol, item.LineTotal),
		})
	}
	return out
}

func currencySymbol(symbol string) string {
	if symbol == "" {
		return defaultCurrencySymbol
	}
	return symbol
}

// money renders an amount with exactly two decimal places and the currency
// symbol prefixed, e.g. "$9.50".
func money(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// formatQuantity drops trailing zeros so whole quantities display as
// integers ("2" rather than "2.00").
func formatQuantity(q decimal.Decimal) string {
	return q.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDateFormat)
}

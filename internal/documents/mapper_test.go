package documents

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-hq/fieldline/web"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func minimalQuote() QuoteInput {
	return QuoteInput{
		Number:    "Q-1001",
		IssueDate: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Company:   PartyInput{Name: "Acme"},
		Customer:  PartyInput{Name: "Bob"},
		Items: []LineItemInput{
			{
				Description: "Widget",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromFloat(9.5),
				LineTotal:   decimal.NewFromFloat(19.0),
			},
		},
		Subtotal: decimal.NewFromFloat(19.0),
		Total:    decimal.NewFromFloat(19.0),
	}
}

// ============================================================================
// CONTEXT MAPPING
// ============================================================================

func TestQuoteContext_RequiredFields(t *testing.T) {
	ctx := QuoteContext(minimalQuote())

	assert.Equal(t, "Quotation", ctx["documentLabel"])
	assert.Equal(t, "Q-1001", ctx["number"])
	assert.Equal(t, "March 12, 2026", ctx["issueDate"])
	assert.Equal(t, "$19.00", ctx["subtotal"])
	assert.Equal(t, "$19.00", ctx["total"])

	company, ok := ctx["company"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", company["name"])

	customer, ok := ctx["customer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Bob", customer["name"])
}

func TestQuoteContext_MinimalQuoteOmitsOptionalKeys(t *testing.T) {
	ctx := QuoteContext(minimalQuote())

	for _, key := range []string{"hasTax", "tax", "hasDiscount", "discount", "hasExpiry", "expiryDate", "hasReference", "reference", "hasProject", "project", "hasTerms", "terms"} {
		_, present := ctx[key]
		assert.False(t, present, "key %q should be omitted", key)
	}
}

func TestQuoteContext_OptionalFieldsPresent(t *testing.T) {
	in := minimalQuote()
	expiry := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	in.ExpiryDate = &expiry
	in.Reference = "PO-7788"
	in.Tax = decimalPtr(decimal.NewFromFloat(1.9))
	in.Discount = decimalPtr(decimal.NewFromFloat(0.5))
	in.ProjectName = "Garage conversion"
	in.Terms = "Payment within 14 days."

	ctx := QuoteContext(in)

	assert.Equal(t, true, ctx["hasExpiry"])
	assert.Equal(t, "April 12, 2026", ctx["expiryDate"])
	assert.Equal(t, true, ctx["hasReference"])
	assert.Equal(t, "PO-7788", ctx["reference"])
	assert.Equal(t, true, ctx["hasTax"])
	assert.Equal(t, "$1.90", ctx["tax"])
	assert.Equal(t, true, ctx["hasDiscount"])
	assert.Equal(t, "$0.50", ctx["discount"])
	assert.Equal(t, true, ctx["hasProject"])
	assert.Equal(t, true, ctx["hasTerms"])
}

func TestQuoteContext_FallbackNames(t *testing.T) {
	in := minimalQuote()
	in.Company.Name = ""
	in.Customer.Name = "   "

	ctx := QuoteContext(in)

	company := ctx["company"].(map[string]any)
	customer := ctx["customer"].(map[string]any)
	assert.Equal(t, "Your Company", company["name"])
	assert.Equal(t, "Customer Name", customer["name"])
}

func TestQuoteContext_CurrencySymbol(t *testing.T) {
	in := minimalQuote()
	in.CurrencySymbol = "€"

	ctx := QuoteContext(in)
	assert.Equal(t, "€19.00", ctx["total"])

	items := ctx["items"].([]map[string]any)
	require.Len(t, items, 1)
	assert.Equal(t, "€9.50", items[0]["unitPrice"])
}

func TestQuoteContext_ItemFormatting(t *testing.T) {
	in := minimalQuote()
	in.Items = []LineItemInput{
		{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(9.5), LineTotal: decimal.NewFromFloat(19.0)},
		{Description: "Cable run", Quantity: decimal.NewFromFloat(12.5), UnitPrice: decimal.NewFromFloat(3.2), LineTotal: decimal.NewFromFloat(40.0)},
		{Description: "Call-out fee", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(75.0), LineTotal: decimal.NewFromFloat(75.0)},
	}

	ctx := QuoteContext(in)
	items := ctx["items"].([]map[string]any)
	require.Len(t, items, 3)

	assert.Equal(t, 1, items[0]["position"])
	assert.Equal(t, "2", items[0]["quantity"])
	assert.Equal(t, "$9.50", items[0]["unitPrice"])

	assert.Equal(t, 2, items[1]["position"])
	assert.Equal(t, "12.5", items[1]["quantity"])
	assert.Equal(t, "$3.20", items[1]["unitPrice"])

	assert.Equal(t, 3, items[2]["position"])
	assert.Equal(t, "1", items[2]["quantity"])
	assert.Equal(t, "$75.00", items[2]["lineTotal"])
}

func TestQuoteContext_AddressLines(t *testing.T) {
	in := minimalQuote()
	in.Customer = PartyInput{
		Name:         "Bob",
		AddressLine1: "12 High Street",
		City:         "Leeds",
		PostalCode:   "LS1 4AB",
		Country:      "United Kingdom",
	}

	ctx := QuoteContext(in)
	customer := ctx["customer"].(map[string]any)
	require.Equal(t, true, customer["hasAddress"])

	lines := customer["addressLines"].([]map[string]any)
	require.Len(t, lines, 3)
	assert.Equal(t, "12 High Street", lines[0]["line"])
	assert.Equal(t, "LS1 4AB Leeds", lines[1]["line"])
	assert.Equal(t, "United Kingdom", lines[2]["line"])
}

func TestInvoiceContext_DueDate(t *testing.T) {
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ctx := InvoiceContext(InvoiceInput{
		Number:    "INV-2041",
		IssueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   &due,
		Company:   PartyInput{Name: "Acme"},
		Customer:  PartyInput{Name: "Bob"},
		Subtotal:  decimal.NewFromFloat(100),
		Total:     decimal.NewFromFloat(100),
	})

	assert.Equal(t, "Invoice", ctx["documentLabel"])
	assert.Equal(t, true, ctx["hasDueDate"])
	assert.Equal(t, "May 1, 2026", ctx["dueDate"])
	_, present := ctx["hasExpiry"]
	assert.False(t, present)
}

// ============================================================================
// END-TO-END HTML RENDERING AGAINST THE SHIPPED TEMPLATES
// ============================================================================

func renderQuoteHTML(t *testing.T, in QuoteInput) string {
	t.Helper()
	fsys, err := fs.Sub(web.Templates, "templates/documents")
	require.NoError(t, err)

	tpl, err := NewStore(fsys).Load(context.Background(), "quote")
	require.NoError(t, err)

	html, err := NewRenderer().Render(tpl, QuoteContext(in))
	require.NoError(t, err)
	return html
}

func TestQuoteHTML_Scenario(t *testing.T) {
	html := renderQuoteHTML(t, minimalQuote())

	for _, want := range []string{"Q-1001", "Acme", "Bob", "Widget", "2", "$9.50", "$19.00"} {
		assert.Contains(t, html, want)
	}
	assert.NotContains(t, html, "Tax")
	assert.NotContains(t, html, "Discount")
	assert.NotContains(t, html, "Valid until")
	assert.NotContains(t, html, "undefined")
	assert.NotContains(t, html, "null")
}

func TestQuoteHTML_ThreeItemRows(t *testing.T) {
	in := minimalQuote()
	in.Items = []LineItemInput{
		{Description: "Survey visit", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(120), LineTotal: decimal.NewFromFloat(120)},
		{Description: "Boiler install", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1800), LineTotal: decimal.NewFromFloat(1800)},
		{Description: "Radiator", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromFloat(85), LineTotal: decimal.NewFromFloat(340)},
	}

	html := renderQuoteHTML(t, in)

	assert.Equal(t, 3, strings.Count(html, "<tr>")-1, "one header row plus one row per item")
	assert.Contains(t, html, "Survey visit")
	assert.Contains(t, html, "Boiler install")
	assert.Contains(t, html, "Radiator")
	assert.Contains(t, html, "$1800.00")
	assert.Contains(t, html, "$340.00")
	assert.Equal(t, 1, strings.Count(html, "Survey visit"), "first item must not repeat")
}

func TestQuoteHTML_MissingCompanyNameUsesFallback(t *testing.T) {
	in := minimalQuote()
	in.Company = PartyInput{}

	html := renderQuoteHTML(t, in)
	assert.Contains(t, html, "Your Company")
}

func TestQuoteHTML_EscapesCustomerFreeText(t *testing.T) {
	in := minimalQuote()
	in.Customer.Name = "<img src=x onerror=alert(1)>"
	in.Terms = "All amounts < gross & final."

	html := renderQuoteHTML(t, in)
	assert.NotContains(t, html, "<img src=x")
	assert.Contains(t, html, "&lt;img")
	assert.Contains(t, html, "&amp; final.")
}

func TestQuoteHTML_Deterministic(t *testing.T) {
	in := minimalQuote()
	first := renderQuoteHTML(t, in)
	second := renderQuoteHTML(t, in)
	assert.Equal(t, first, second)
}

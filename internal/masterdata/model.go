// Package masterdata holds the reference records the rest of the
// platform builds documents from: the company profile, customers and
// projects.
package masterdata

import "time"

// CompanyProfile is the issuing business. A deployment has exactly one
// profile; its branding and default terms flow onto every generated
// document.
type CompanyProfile struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	AddressLine1   string    `json:"address_line1"`
	AddressLine2   string    `json:"address_line2"`
	City           string    `json:"city"`
	PostalCode     string    `json:"postal_code"`
	Country        string    `json:"country"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	LogoURL        string    `json:"logo_url"`
	CurrencySymbol string    `json:"currency_symbol"`
	DefaultTerms   string    `json:"default_terms"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Customer is a billable party.
type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project groups quotes and invoices under a piece of work for a
// customer.
type Project struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

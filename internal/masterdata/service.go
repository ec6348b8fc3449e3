package masterdata

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo            Repository
	defaultCurrency string
}

// NewService wires the repository. defaultCurrency fills in the company
// currency symbol when the profile leaves it blank.
func NewService(repo Repository, defaultCurrency string) *Service {
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = "$"
	}
	return &Service{repo: repo, defaultCurrency: defaultCurrency}
}

// GetCompanyProfile returns the company profile with the configured
// default currency symbol applied when the stored one is blank. The
// quote and invoice document paths read the profile through this method,
// so the default reaches generated PDFs as well as the settings API.
func (s *Service) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	profile, err := s.repo.GetCompanyProfile(ctx)
	if err != nil {
		return CompanyProfile{}, err
	}
	if strings.TrimSpace(profile.CurrencySymbol) == "" {
		profile.CurrencySymbol = s.defaultCurrency
	}
	return profile, nil
}

func (s *Service) UpdateCompanyProfile(ctx context.Context, profile CompanyProfile) error {
	if strings.TrimSpace(profile.CurrencySymbol) == "" {
		profile.CurrencySymbol = s.defaultCurrency
	}
	return s.repo.UpdateCompanyProfile(ctx, profile)
}

func (s *Service) ListCustomers(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	return s.repo.ListCustomers(ctx, search, limit, offset)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, errors.New("invalid customer ID")
	}
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	if err := s.validateCustomer(c); err != nil {
		return Customer{}, err
	}
	return s.repo.CreateCustomer(ctx, c)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, c Customer) error {
	if id <= 0 {
		return errors.New("invalid customer ID")
	}
	if err := s.validateCustomer(c); err != nil {
		return err
	}
	return s.repo.UpdateCustomer(ctx, id, c)
}

func (s *Service) GetProject(ctx context.Context, id int64) (Project, error) {
	if id <= 0 {
		return Project{}, errors.New("invalid project ID")
	}
	return s.repo.GetProject(ctx, id)
}

func (s *Service) CreateProject(ctx context.Context, p Project) (Project, error) {
	if p.CustomerID <= 0 {
		return Project{}, errors.New("project requires a customer")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Project{}, errors.New("project name is required")
	}
	return s.repo.CreateProject(ctx, p)
}

func (s *Service) validateCustomer(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	return nil
}

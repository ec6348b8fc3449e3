package masterdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline-hq/fieldline/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepo struct {
	profile   CompanyProfile
	customers map[int64]Customer
	projects  map[int64]Project
	nextID    int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		profile:   CompanyProfile{ID: 1, Name: "Fieldline Ltd", CurrencySymbol: "$"},
		customers: map[int64]Customer{},
		projects:  map[int64]Project{},
		nextID:    1,
	}
}

func (m *mockRepo) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	return m.profile, nil
}

func (m *mockRepo) UpdateCompanyProfile(ctx context.Context, profile CompanyProfile) error {
	m.profile = profile
	return nil
}

func (m *mockRepo) ListCustomers(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockRepo) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	m.nextID++
	c.ID = m.nextID
	m.customers[c.ID] = c
	return c, nil
}

func (m *mockRepo) UpdateCustomer(ctx context.Context, id int64, c Customer) error {
	if _, ok := m.customers[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	m.customers[id] = c
	return nil
}

func (m *mockRepo) GetProject(ctx context.Context, id int64) (Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return Project{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) CreateProject(ctx context.Context, p Project) (Project, error) {
	m.nextID++
	p.ID = m.nextID
	m.projects[p.ID] = p
	return p, nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateCustomerRequiresName(t *testing.T) {
	svc := NewService(newMockRepo(), "$")

	_, err := svc.CreateCustomer(context.Background(), Customer{Name: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestCreateAndGetCustomer(t *testing.T) {
	svc := NewService(newMockRepo(), "$")

	created, err := svc.CreateCustomer(context.Background(), Customer{Name: "Acme Builders"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.GetCustomer(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Builders", got.Name)
}

func TestGetCustomerRejectsInvalidID(t *testing.T) {
	svc := NewService(newMockRepo(), "$")

	_, err := svc.GetCustomer(context.Background(), 0)
	assert.Error(t, err)
}

func TestGetCompanyProfileDefaultsCurrencySymbol(t *testing.T) {
	repo := newMockRepo()
	repo.profile.CurrencySymbol = ""
	svc := NewService(repo, "€")

	profile, err := svc.GetCompanyProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "€", profile.CurrencySymbol)
}

func TestUpdateCompanyProfileDefaultsCurrencySymbol(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, "£")

	err := svc.UpdateCompanyProfile(context.Background(), CompanyProfile{ID: 1, Name: "Fieldline Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "£", repo.profile.CurrencySymbol)
}

func TestCreateProjectValidation(t *testing.T) {
	svc := NewService(newMockRepo(), "$")

	_, err := svc.CreateProject(context.Background(), Project{Name: "Loft conversion"})
	assert.Error(t, err, "missing customer must be rejected")

	_, err = svc.CreateProject(context.Background(), Project{CustomerID: 7})
	assert.Error(t, err, "missing name must be rejected")

	p, err := svc.CreateProject(context.Background(), Project{CustomerID: 7, Name: "Loft conversion"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}

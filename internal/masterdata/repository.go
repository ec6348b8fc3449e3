package masterdata

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldline-hq/fieldline/internal/shared"
)

type Repository interface {
	GetCompanyProfile(ctx context.Context) (CompanyProfile, error)
	UpdateCompanyProfile(ctx context.Context, profile CompanyProfile) error

	ListCustomers(ctx context.Context, search string, limit, offset int) ([]Customer, int, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, id int64, c Customer) error

	GetProject(ctx context.Context, id int64) (Project, error)
	CreateProject(ctx context.Context, p Project) (Project, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const companyProfileColumns = `id, name, address_line1, address_line2, city, postal_code, country,
	email, phone, logo_url, currency_symbol, default_terms, updated_at`

func (r *repository) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	query := `SELECT ` + companyProfileColumns + ` FROM company_profile ORDER BY id LIMIT 1`
	var p CompanyProfile
	err := r.db.QueryRow(ctx, query).Scan(
		&p.ID, &p.Name, &p.AddressLine1, &p.AddressLine2, &p.City, &p.PostalCode, &p.Country,
		&p.Email, &p.Phone, &p.LogoURL, &p.CurrencySymbol, &p.DefaultTerms, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CompanyProfile{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) UpdateCompanyProfile(ctx context.Context, profile CompanyProfile) error {
	query := `UPDATE company_profile SET
		name = $1, address_line1 = $2, address_line2 = $3, city = $4, postal_code = $5,
		country = $6, email = $7, phone = $8, logo_url = $9, currency_symbol = $10,
		default_terms = $11, updated_at = $12
		WHERE id = $13`
	tag, err := r.db.Exec(ctx, query,
		profile.Name, profile.AddressLine1, profile.AddressLine2, profile.City, profile.PostalCode,
		profile.Country, profile.Email, profile.Phone, profile.LogoURL, profile.CurrencySymbol,
		profile.DefaultTerms, time.Now(), profile.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const customerColumns = `id, name, address_line1, address_line2, city, postal_code, country,
	email, phone, created_at, updated_at`

func (r *repository) ListCustomers(ctx context.Context, search string, limit, offset int) ([]Customer, int, error) {
	countQuery := `SELECT COUNT(*) FROM customers`
	query := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if search != "" {
		countQuery += ` WHERE name ILIKE $1`
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query += ` ORDER BY name LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.AddressLine1, &c.AddressLine2, &c.City, &c.PostalCode, &c.Country,
			&c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.AddressLine1, &c.AddressLine2, &c.City, &c.PostalCode, &c.Country,
		&c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	query := `INSERT INTO customers
		(name, address_line1, address_line2, city, postal_code, country, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query,
		c.Name, c.AddressLine1, c.AddressLine2, c.City, c.PostalCode, c.Country, c.Email, c.Phone, now,
	).Scan(&c.ID)
	if err != nil {
		return Customer{}, err
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

func (r *repository) UpdateCustomer(ctx context.Context, id int64, c Customer) error {
	query := `UPDATE customers SET
		name = $1, address_line1 = $2, address_line2 = $3, city = $4, postal_code = $5,
		country = $6, email = $7, phone = $8, updated_at = $9
		WHERE id = $10`
	tag, err := r.db.Exec(ctx, query,
		c.Name, c.AddressLine1, c.AddressLine2, c.City, c.PostalCode, c.Country, c.Email, c.Phone,
		time.Now(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GetProject(ctx context.Context, id int64) (Project, error) {
	query := `SELECT id, customer_id, name, description, created_at, updated_at FROM projects WHERE id = $1`
	var p Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CustomerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) CreateProject(ctx context.Context, p Project) (Project, error) {
	query := `INSERT INTO projects (customer_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, p.CustomerID, p.Name, p.Description, now).Scan(&p.ID)
	if err != nil {
		return Project{}, err
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

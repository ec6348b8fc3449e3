package invoices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fieldline-hq/fieldline/internal/platform/db"
	"github.com/fieldline-hq/fieldline/internal/shared"
)

type Repository interface {
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	Create(ctx context.Context, invoice Invoice) (Invoice, error)
	MarkSent(ctx context.Context, id int64, recipient string) error
	MarkPaid(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// Monetary columns come back as ::text so values reach decimals exactly.
const invoiceColumns = `id, number, customer_id, project_id, quote_id, issue_date, due_date, reference, status,
	subtotal::text, tax_amount::text, discount_amount::text, total::text, terms, paid_at, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	countQuery := `SELECT COUNT(*) FROM invoices`
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []any{}
	if req.Status != "" {
		countQuery += ` WHERE status = $1`
		query += ` WHERE status = $1`
		args = append(args, req.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` ORDER BY issue_date DESC, id DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, shared.ErrNotFound
	}
	if err != nil {
		return Invoice{}, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Lines = lines
	return inv, nil
}

func (r *repository) loadLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	query := `SELECT id, invoice_id, position, description, quantity::text, unit_price::text, line_total::text
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []InvoiceLine
	for rows.Next() {
		var (
			l                  InvoiceLine
			qty, price, lineTo string
		)
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.Description, &qty, &price, &lineTo); err != nil {
			return nil, err
		}
		if l.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("invoice line %d quantity: %w", l.ID, err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("invoice line %d unit price: %w", l.ID, err)
		}
		if l.LineTotal, err = decimal.NewFromString(lineTo); err != nil {
			return nil, fmt.Errorf("invoice line %d total: %w", l.ID, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
			return err
		}
		invoice.Number = fmt.Sprintf("INV-%05d", seq)

		now := time.Now()
		err := tx.QueryRow(ctx, `INSERT INTO invoices
			(number, customer_id, project_id, quote_id, issue_date, due_date, reference, status,
			 subtotal, tax_amount, discount_amount, total, terms, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
			RETURNING id`,
			invoice.Number, invoice.CustomerID, invoice.ProjectID, invoice.QuoteID, invoice.IssueDate,
			invoice.DueDate, invoice.Reference, InvoiceStatusDraft, invoice.Subtotal, invoice.TaxAmount,
			invoice.DiscountAmount, invoice.Total, invoice.Terms, now,
		).Scan(&invoice.ID)
		if err != nil {
			return err
		}
		invoice.Status = InvoiceStatusDraft
		invoice.CreatedAt = now
		invoice.UpdatedAt = now

		for i := range invoice.Lines {
			line := &invoice.Lines[i]
			line.InvoiceID = invoice.ID
			line.Position = i + 1
			err := tx.QueryRow(ctx, `INSERT INTO invoice_lines
				(invoice_id, position, description, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				line.InvoiceID, line.Position, line.Description, line.Quantity, line.UnitPrice, line.LineTotal,
			).Scan(&line.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

// MarkSent mirrors the quote flow: the status change and the delivery
// log entry commit together.
func (r *repository) MarkSent(ctx context.Context, id int64, recipient string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3 AND status <> $4`,
			InvoiceStatusSent, time.Now(), id, InvoiceStatusPaid,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO document_log (document_kind, document_id, recipient, sent_at)
			 VALUES ('invoice', $1, $2, $3)`,
			id, recipient, time.Now(),
		)
		return err
	})
}

func (r *repository) MarkPaid(ctx context.Context, id int64) error {
	now := time.Now()
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET status = $1, paid_at = $2, updated_at = $2 WHERE id = $3`,
		InvoiceStatusPaid, now, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var (
		inv                       Invoice
		subtotal, total           string
		taxAmount, discountAmount *string
	)
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.ProjectID, &inv.QuoteID, &inv.IssueDate, &inv.DueDate,
		&inv.Reference, &inv.Status, &subtotal, &taxAmount, &discountAmount, &total,
		&inv.Terms, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return Invoice{}, fmt.Errorf("invoice %d subtotal: %w", inv.ID, err)
	}
	if inv.Total, err = decimal.NewFromString(total); err != nil {
		return Invoice{}, fmt.Errorf("invoice %d total: %w", inv.ID, err)
	}
	if inv.TaxAmount, err = parseOptionalDecimal(taxAmount); err != nil {
		return Invoice{}, fmt.Errorf("invoice %d tax amount: %w", inv.ID, err)
	}
	if inv.DiscountAmount, err = parseOptionalDecimal(discountAmount); err != nil {
		return Invoice{}, fmt.Errorf("invoice %d discount amount: %w", inv.ID, err)
	}
	return inv, nil
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

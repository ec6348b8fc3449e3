package quotes

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
	List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error)
	Get(ctx context.Context, id int64) (Quote, error)
	Create(ctx context.Context, quote Quote) (Quote, error)
	MarkSent(ctx context.Context, id int64, recipient string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// Monetary columns are selected as ::text so the exact numeric value
// survives the wire; scanning through float64 would round it.
const quoteColumns = `id, number, customer_id, project_id, issue_date, expiry_date, reference, status,
	subtotal::text, tax_amount::text, discount_amount::text, total::text, terms, created_at, updated_at`

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
	countQuery := `SELECT COUNT(*) FROM quotes`
	query := `SELECT ` + quoteColumns + ` FROM quotes`
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

	var quotes []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	q, err := scanQuote(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, shared.ErrNotFound
	}
	if err != nil {
		return Quote{}, err
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	q.Lines = lines
	return q, nil
}

func (r *repository) loadLines(ctx context.Context, quoteID int64) ([]QuoteLine, error) {
	query := `SELECT id, quote_id, position, description, quantity::text, unit_price::text, line_total::text
		FROM quote_lines WHERE quote_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []QuoteLine
	for rows.Next() {
		var (
			l                  QuoteLine
			qty, price, lineTo string
		)
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.Position, &l.Description, &qty, &price, &lineTo); err != nil {
			return nil, err
		}
		if l.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("quote line %d quantity: %w", l.ID, err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("quote line %d unit price: %w", l.ID, err)
		}
		if l.LineTotal, err = decimal.NewFromString(lineTo); err != nil {
			return nil, fmt.Errorf("quote line %d total: %w", l.ID, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Create(ctx context.Context, quote Quote) (Quote, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx, `SELECT nextval('quote_number_seq')`).Scan(&seq); err != nil {
			return err
		}
		quote.Number = fmt.Sprintf("Q-%05d", seq)

		now := time.Now()
		err := tx.QueryRow(ctx, `INSERT INTO quotes
			(number, customer_id, project_id, issue_date, expiry_date, reference, status,
			 subtotal, tax_amount, discount_amount, total, terms, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
			RETURNING id`,
			quote.Number, quote.CustomerID, quote.ProjectID, quote.IssueDate, quote.ExpiryDate,
			quote.Reference, QuoteStatusDraft, quote.Subtotal, quote.TaxAmount, quote.DiscountAmount,
			quote.Total, quote.Terms, now,
		).Scan(&quote.ID)
		if err != nil {
			return err
		}
		quote.Status = QuoteStatusDraft
		quote.CreatedAt = now
		quote.UpdatedAt = now

		for i := range quote.Lines {
			line := &quote.Lines[i]
			line.QuoteID = quote.ID
			line.Position = i + 1
			err := tx.QueryRow(ctx, `INSERT INTO quote_lines
				(quote_id, position, description, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				line.QuoteID, line.Position, line.Description, line.Quantity, line.UnitPrice, line.LineTotal,
			).Scan(&line.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	return quote, nil
}

// MarkSent flips the quote to SENT and records the delivery in
// document_log in the same transaction, so the audit trail never drifts
// from the status.
func (r *repository) MarkSent(ctx context.Context, id int64, recipient string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE quotes SET status = $1, updated_at = $2 WHERE id = $3`,
			QuoteStatusSent, time.Now(), id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO document_log (document_kind, document_id, recipient, sent_at)
			 VALUES ('quote', $1, $2, $3)`,
			id, recipient, time.Now(),
		)
		return err
	})
}

func scanQuote(row pgx.Row) (Quote, error) {
	var (
		q                        Quote
		subtotal, total          string
		taxAmount, discountAmount *string
	)
	err := row.Scan(
		&q.ID, &q.Number, &q.CustomerID, &q.ProjectID, &q.IssueDate, &q.ExpiryDate,
		&q.Reference, &q.Status, &subtotal, &taxAmount, &discountAmount, &total,
		&q.Terms, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return Quote{}, err
	}
	if q.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return Quote{}, fmt.Errorf("quote %d subtotal: %w", q.ID, err)
	}
	if q.Total, err = decimal.NewFromString(total); err != nil {
		return Quote{}, fmt.Errorf("quote %d total: %w", q.ID, err)
	}
	if q.TaxAmount, err = parseOptionalDecimal(taxAmount); err != nil {
		return Quote{}, fmt.Errorf("quote %d tax amount: %w", q.ID, err)
	}
	if q.DiscountAmount, err = parseOptionalDecimal(discountAmount); err != nil {
		return Quote{}, fmt.Errorf("quote %d discount amount: %w", q.ID, err)
	}
	return q, nil
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

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/fieldline-hq/fieldline/internal/documents"
	jobmetrics "github.com/fieldline-hq/fieldline/internal/jobs"
	"github.com/fieldline-hq/fieldline/internal/platform/mail"
)

// QuoteSource renders quote PDFs and records deliveries.
type QuoteSource interface {
	GeneratePDF(ctx context.Context, id int64) ([]byte, string, error)
	MarkSent(ctx context.Context, id int64, recipient string) error
}

// InvoiceSource is the invoice counterpart of QuoteSource.
type InvoiceSource interface {
	GeneratePDF(ctx context.Context, id int64) ([]byte, string, error)
	MarkSent(ctx context.Context, id int64, recipient string) error
}

// EmailDocumentJob renders a document, emails it, and marks the record
// sent once the relay accepts the message.
type EmailDocumentJob struct {
	Quotes   QuoteSource
	Invoices InvoiceSource
	Sender   mail.Sender
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewEmailDocumentJob wires the delivery handler.
func NewEmailDocumentJob(quotes QuoteSource, invoices InvoiceSource, sender mail.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *EmailDocumentJob {
	return &EmailDocumentJob{
		Quotes:   quotes,
		Invoices: invoices,
		Sender:   sender,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Handle processes TaskTypeEmailDocument tasks. Malformed payloads are
// not retried; transient render or delivery failures are.
func (j *EmailDocumentJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("email document: handler not configured")
	}
	var payload EmailDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Recipient == "" || payload.DocumentID <= 0 {
		return asynq.SkipRetry
	}

	var source QuoteSource
	var subjectLabel string
	switch payload.Kind {
	case documents.KindQuote:
		source = j.Quotes
		subjectLabel = "Quote"
	case documents.KindInvoice:
		source = j.Invoices
		subjectLabel = "Invoice"
	default:
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeEmailDocument)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	pdf, filename, err := source.GeneratePDF(ctx, payload.DocumentID)
	if err != nil {
		resultErr = fmt.Errorf("generate %s %d: %w", payload.Kind, payload.DocumentID, err)
		return resultErr
	}

	body := payload.Message
	if body == "" {
		body = fmt.Sprintf("Please find your %s attached.", payload.Kind)
	}
	err = j.Sender.Send(ctx, mail.Message{
		To:             payload.Recipient,
		Subject:        fmt.Sprintf("%s %s", subjectLabel, documentNumber(filename)),
		Body:           body,
		AttachmentName: filename,
		Attachment:     pdf,
	})
	if err != nil {
		resultErr = fmt.Errorf("deliver %s %d: %w", payload.Kind, payload.DocumentID, err)
		return resultErr
	}

	if err := source.MarkSent(ctx, payload.DocumentID, payload.Recipient); err != nil {
		// The mail went out; log the bookkeeping failure but retry the
		// status update rather than re-sending.
		j.Logger.Error("mark document sent failed",
			slog.String("kind", string(payload.Kind)),
			slog.Int64("document_id", payload.DocumentID),
			slog.Any("error", err),
		)
		resultErr = err
		return resultErr
	}

	j.Logger.Info("document emailed",
		slog.String("kind", string(payload.Kind)),
		slog.Int64("document_id", payload.DocumentID),
		slog.String("recipient", payload.Recipient),
	)
	return nil
}

// documentNumber extracts "Q-00042" from "quote-Q-00042.pdf".
func documentNumber(filename string) string {
	name := strings.TrimSuffix(filename, ".pdf")
	if _, number, ok := strings.Cut(name, "-"); ok {
		return number
	}
	return name
}

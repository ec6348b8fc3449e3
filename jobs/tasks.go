// Package jobs defines the background tasks and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/fieldline-hq/fieldline/internal/documents"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeEmailDocument delivers a generated quote or invoice PDF
	// to a recipient by email.
	TaskTypeEmailDocument = "documents:email"
)

// EmailDocumentPayload identifies the document to render and where to
// send it.
type EmailDocumentPayload struct {
	Kind       documents.DocumentKind `json:"kind"`
	DocumentID int64                  `json:"document_id"`
	Recipient  string                 `json:"recipient"`
	Message    string                 `json:"message,omitempty"`
}

// NewEmailDocumentTask constructs the Asynq task for a document delivery.
func NewEmailDocumentTask(payload EmailDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEmailDocument, data, asynq.MaxRetry(3)), nil
}

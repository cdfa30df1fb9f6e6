package port

import (
	"context"

	"github.com/google/uuid"
)

// ParseJob is the message handed to the external parse worker. The
// request id lets the worker's logs be correlated with the upload.
type ParseJob struct {
	ReportID   uuid.UUID `json:"report_id"`
	StorageKey string    `json:"storage_key"`
	RequestID  string    `json:"request_id"`
}

// ParseQueue abstracts the at-least-once queue feeding the parse worker.
type ParseQueue interface {
	SendParseJob(ctx context.Context, job ParseJob) error
}

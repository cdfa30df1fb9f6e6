package port

import (
	"context"

	"github.com/shopspring/decimal"

	"reportsvc/internal/domain"
)

// PaymentRequest carries everything the gateway needs to open a
// redirect checkout session for a report.
type PaymentRequest struct {
	User      domain.User
	Report    *domain.Report
	Amount    decimal.Decimal
	Promocode *string
	RequestID string
}

// PaymentGateway abstracts the redirect-based checkout provider.
type PaymentGateway interface {
	// CreatePayment opens a checkout session and returns the
	// confirmation URL the user is redirected to.
	CreatePayment(ctx context.Context, req PaymentRequest) (string, error)
	// ParseNotification decodes a webhook body, verifies the embedded
	// signed token and maps the gateway event to its neutral form.
	// Verification failure and unknown events are errors: they indicate
	// tampering or a contract change, never user mistakes.
	ParseNotification(body []byte) (*domain.PaymentNotification, error)
}

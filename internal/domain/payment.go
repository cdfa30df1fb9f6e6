package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TargetCountryCode is the jurisdiction of the service operator; every
// detailed row is derived with this as the tax-treaty target side.
const TargetCountryCode = "RU"

// PriceQuote is the promo-evaluated price breakdown for a report.
type PriceQuote struct {
	StartPrice     decimal.Decimal `json:"start_price"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	Discount       int             `json:"discount"`
	PromocodeUsage PromocodeUsage  `json:"promocode_usage"`
	UsedPromocode  *string         `json:"used_promocode"`
}

// PaymentMetadata travels to the gateway on payment creation and comes
// back embedded in every webhook delivery for that payment.
type PaymentMetadata struct {
	UserID    uuid.UUID `json:"user_id"`
	ReportID  uuid.UUID `json:"report_id"`
	RequestID string    `json:"request_id"`
	Promocode *string   `json:"promocode"`
	Token     string    `json:"token"`
}

// PaymentEventKind is the gateway-neutral classification of a webhook
// delivery. Mapping from gateway event names happens in the gateway
// adapter only.
type PaymentEventKind string

const (
	PaymentEventSucceeded PaymentEventKind = "succeeded"
	PaymentEventCanceled  PaymentEventKind = "canceled"
)

// CancellationReasonExpiredOnConfirmation marks a checkout the user
// simply abandoned; any other cancellation reason is a real failure.
const CancellationReasonExpiredOnConfirmation = "expired_on_confirmation"

// PaymentNotification is a verified, decoded webhook delivery.
type PaymentNotification struct {
	Event              PaymentEventKind
	PaymentID          string
	CancellationReason string
	Metadata           PaymentMetadata
}

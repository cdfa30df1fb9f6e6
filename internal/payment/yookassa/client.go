package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

const (
	rubleCurrency = "RUB"
	pendingStatus = "pending"

	eventSucceeded = "payment.succeeded"
	eventCanceled  = "payment.canceled"
)

type client struct {
	cfg        *config.PaymentConfig
	httpClient *http.Client
}

// NewClient creates a YooKassa-backed PaymentGateway.
func NewClient(cfg *config.PaymentConfig) port.PaymentGateway {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type receiptItem struct {
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Amount         amount `json:"amount"`
	VATCode        int    `json:"vat_code"`
	PaymentSubject string `json:"payment_subject"`
	PaymentMode    string `json:"payment_mode"`
	ProductCode    string `json:"product_code"`
}

type receipt struct {
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Items []receiptItem `json:"items"`
}

type confirmation struct {
	Type      string `json:"type"`
	Locale    string `json:"locale,omitempty"`
	ReturnURL string `json:"return_url,omitempty"`

	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createPaymentBody struct {
	Amount       amount                 `json:"amount"`
	Description  string                 `json:"description"`
	Receipt      receipt                `json:"receipt"`
	Confirmation confirmation           `json:"confirmation"`
	Capture      bool                   `json:"capture"`
	Metadata     domain.PaymentMetadata `json:"metadata"`
}

type createPaymentResponse struct {
	Status       string        `json:"status"`
	Confirmation *confirmation `json:"confirmation"`
}

func (c *client) CreatePayment(ctx context.Context, req port.PaymentRequest) (string, error) {
	body, err := c.makeBody(req)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("yookassa: marshaling payment body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.CreatePaymentURL, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("yookassa: building request: %w", err)
	}
	httpReq.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("yookassa: create payment request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("yookassa: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yookassa: create payment status %d: %s",
			resp.StatusCode, respBody)
	}

	var created createPaymentResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("yookassa: decoding response: %w", err)
	}
	if created.Status != pendingStatus {
		return "", fmt.Errorf("yookassa: unexpected payment status %q", created.Status)
	}
	if created.Confirmation == nil || created.Confirmation.ConfirmationURL == "" {
		return "", fmt.Errorf("yookassa: no confirmation_url in response")
	}
	return created.Confirmation.ConfirmationURL, nil
}

func (c *client) makeBody(req port.PaymentRequest) (*createPaymentBody, error) {
	report := req.Report

	broker := ""
	if report.Broker != nil {
		broker = *report.Broker
	}

	paymentAmount := amount{
		Value:    req.Amount.StringFixed(2),
		Currency: rubleCurrency,
	}

	var rcpt receipt
	rcpt.Customer.Email = req.User.Email
	rcpt.Items = []receiptItem{{
		Description:    fmt.Sprintf("Отчет %s", report.ReportID),
		Quantity:       "1",
		Amount:         paymentAmount,
		VATCode:        c.cfg.VATCode,
		PaymentSubject: c.cfg.PaymentSubject,
		PaymentMode:    c.cfg.PaymentMode,
		ProductCode:    c.cfg.ProductCode,
	}}

	token, err := c.signToken()
	if err != nil {
		return nil, err
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = "-"
	}

	return &createPaymentBody{
		Amount: paymentAmount,
		Description: fmt.Sprintf("Оплата отчета %s от %s",
			broker, report.CreatedAt.Format("2006-01-02")),
		Receipt: rcpt,
		Confirmation: confirmation{
			Type:      "redirect",
			Locale:    "ru_RU",
			ReturnURL: c.cfg.ReturnURL,
		},
		Capture: true,
		Metadata: domain.PaymentMetadata{
			UserID:    req.User.UserID,
			ReportID:  report.ReportID,
			RequestID: requestID,
			Promocode: req.Promocode,
			Token:     token,
		},
	}, nil
}

// signToken issues a short random-id token embedded in payment metadata.
// The webhook handler verifies it to make sure a notification originated
// from a payment this service created.
func (c *client) signToken() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": uuid.NewString(),
	})
	signed, err := token.SignedString([]byte(c.cfg.JWTKey))
	if err != nil {
		return "", fmt.Errorf("yookassa: signing metadata token: %w", err)
	}
	return signed, nil
}

type eventBody struct {
	Type   string `json:"type"`
	Event  string `json:"event"`
	Object struct {
		ID                  string `json:"id"`
		CancellationDetails struct {
			Reason string `json:"reason"`
		} `json:"cancellation_details"`
		Metadata domain.PaymentMetadata `json:"metadata"`
	} `json:"object"`
}

func (c *client) ParseNotification(body []byte) (*domain.PaymentNotification, error) {
	var event eventBody
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("yookassa: decoding event body: %w", err)
	}

	if err := c.verifyToken(event.Object.Metadata.Token); err != nil {
		return nil, err
	}

	var kind domain.PaymentEventKind
	switch event.Event {
	case eventSucceeded:
		kind = domain.PaymentEventSucceeded
	case eventCanceled:
		kind = domain.PaymentEventCanceled
	default:
		return nil, fmt.Errorf("yookassa: unexpected event %q", event.Event)
	}

	return &domain.PaymentNotification{
		Event:              kind,
		PaymentID:          event.Object.ID,
		CancellationReason: event.Object.CancellationDetails.Reason,
		Metadata:           event.Object.Metadata,
	}, nil
}

func (c *client) verifyToken(tokenString string) error {
	_, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(c.cfg.JWTKey), nil
	})
	if err != nil {
		return fmt.Errorf("yookassa: verifying metadata token: %w", err)
	}
	return nil
}

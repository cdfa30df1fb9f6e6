package yookassa

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

const testJWTKey = "test-key"

func uuidMust(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func testConfig(url string) *config.PaymentConfig {
	return &config.PaymentConfig{
		CreatePaymentURL: url,
		ShopID:           "shop-1",
		SecretKey:        "secret-1",
		ReturnURL:        "https://front.example.com/reports",
		JWTKey:           testJWTKey,
		VATCode:          1,
		PaymentSubject:   "service",
		PaymentMode:      "full_payment",
		ProductCode:      "report",
		Timeout:          5 * time.Second,
	}
}

func testPaymentRequest() port.PaymentRequest {
	broker := "tinkoff"
	report := &domain.Report{
		ReportID:  uuidMust("7a7dfac1-5b05-4233-a4e5-ae0a4ecc2ecf"),
		UserID:    uuidMust("4e2fd08f-468f-49f5-bb6a-2e4ea8ea77e0"),
		CreatedAt: time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC),
		Broker:    &broker,
	}
	return port.PaymentRequest{
		User: domain.User{
			UserID: report.UserID,
			Email:  "payer@example.com",
		},
		Report:    report,
		Amount:    decimal.RequireFromString("132.87"),
		RequestID: "req-42",
	}
}

func TestCreatePayment_Success(t *testing.T) {
	var captured struct {
		body    createPaymentBody
		headers http.Header
		user    string
		pass    string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.headers = r.Header.Clone()
		captured.user, captured.pass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"status": "pending",
			"confirmation": {"type": "redirect", "confirmation_url": "https://pay.example.com/go"}
		}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	url, err := c.CreatePayment(t.Context(), testPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/go", url)

	assert.Equal(t, "shop-1", captured.user)
	assert.Equal(t, "secret-1", captured.pass)
	assert.NotEmpty(t, captured.headers.Get("Idempotence-Key"))

	body := captured.body
	assert.Equal(t, "132.87", body.Amount.Value)
	assert.Equal(t, "RUB", body.Amount.Currency)
	assert.True(t, body.Capture)
	assert.Equal(t, "redirect", body.Confirmation.Type)
	assert.Equal(t, "ru_RU", body.Confirmation.Locale)
	assert.Equal(t, "https://front.example.com/reports", body.Confirmation.ReturnURL)
	require.Len(t, body.Receipt.Items, 1)
	assert.Equal(t, "payer@example.com", body.Receipt.Customer.Email)
	assert.Equal(t, 1, body.Receipt.Items[0].VATCode)
	assert.Equal(t, "req-42", body.Metadata.RequestID)

	// Metadata token must verify against the configured key.
	_, err = jwt.Parse(body.Metadata.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTKey), nil
	})
	assert.NoError(t, err)
}

func TestCreatePayment_NonPendingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "canceled"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.CreatePayment(t.Context(), testPaymentRequest())
	assert.Error(t, err)
}

func TestCreatePayment_BadStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"description": "invalid request"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.CreatePayment(t.Context(), testPaymentRequest())
	assert.Error(t, err)
}

func signedTestToken(t *testing.T, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "some-id"})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func notificationBody(t *testing.T, event, reason, tokenKey string) []byte {
	t.Helper()
	body := map[string]interface{}{
		"type":  "notification",
		"event": event,
		"object": map[string]interface{}{
			"id": "pay-123",
			"cancellation_details": map[string]string{
				"reason": reason,
			},
			"metadata": map[string]interface{}{
				"user_id":    "4e2fd08f-468f-49f5-bb6a-2e4ea8ea77e0",
				"report_id":  "7a7dfac1-5b05-4233-a4e5-ae0a4ecc2ecf",
				"request_id": "-",
				"promocode":  nil,
				"token":      signedTestToken(t, tokenKey),
			},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func TestParseNotification_Succeeded(t *testing.T) {
	c := NewClient(testConfig(""))

	notif, err := c.ParseNotification(notificationBody(t, "payment.succeeded", "", testJWTKey))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentEventSucceeded, notif.Event)
	assert.Equal(t, "pay-123", notif.PaymentID)
	assert.Equal(t, "7a7dfac1-5b05-4233-a4e5-ae0a4ecc2ecf", notif.Metadata.ReportID.String())
}

func TestParseNotification_Canceled(t *testing.T) {
	c := NewClient(testConfig(""))

	notif, err := c.ParseNotification(
		notificationBody(t, "payment.canceled", "expired_on_confirmation", testJWTKey))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentEventCanceled, notif.Event)
	assert.Equal(t, domain.CancellationReasonExpiredOnConfirmation, notif.CancellationReason)
}

func TestParseNotification_BadToken(t *testing.T) {
	c := NewClient(testConfig(""))

	_, err := c.ParseNotification(notificationBody(t, "payment.succeeded", "", "wrong-key"))
	assert.Error(t, err)
}

func TestParseNotification_UnknownEvent(t *testing.T) {
	c := NewClient(testConfig(""))

	_, err := c.ParseNotification(notificationBody(t, "refund.succeeded", "", testJWTKey))
	assert.Error(t, err)
}

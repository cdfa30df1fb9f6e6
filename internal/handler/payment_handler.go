package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"reportsvc/internal/middleware"
	"reportsvc/internal/service"
)

// PaymentHandler handles price preview, payment creation and the
// gateway webhook.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func promocodeQuery(c *gin.Context) *string {
	if code := c.Query("promo"); code != "" {
		return &code
	}
	return nil
}

// GetPrice handles GET /reports/:report_id/price
func (h *PaymentHandler) GetPrice(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}

	quote, err := h.paymentService.GetPrice(
		c.Request.Context(), *user, reportID, promocodeQuery(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CreatePayment handles POST /reports/:report_id/payment
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}

	confirmationURL, err := h.paymentService.CreatePayment(
		c.Request.Context(), *user, reportID,
		promocodeQuery(c), middleware.GetRequestID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"confirmation_url": confirmationURL})
}

// Webhook handles POST /yookassa/webhook. The request carries no bearer
// token; authenticity rests on the signed token inside the body.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusInternalServerError,
			"internal_error", "reading webhook body failed")
		return
	}

	if err := h.paymentService.ApplyNotification(c.Request.Context(), body); err != nil {
		HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

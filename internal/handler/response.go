package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reportsvc/internal/domain"
	"reportsvc/internal/middleware"
)

// APIError is one element of the error envelope.
type APIError struct {
	ErrorKey     string   `json:"error_key"`
	ErrorMessage string   `json:"error_message"`
	ErrorLoc     []string `json:"error_loc,omitempty"`
}

// ErrorsBody is the uniform error envelope for all endpoints.
type ErrorsBody struct {
	Errors []APIError `json:"errors"`
}

// RespondError sends an error envelope with the given status code.
func RespondError(c *gin.Context, status int, key, msg string) {
	c.JSON(status, ErrorsBody{
		Errors: []APIError{{ErrorKey: key, ErrorMessage: msg}},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error keys.
func MapDomainError(err error) (status int, key, msg string) {
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound, "not_found", "report not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "authorization", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "forbidden"
	case errors.Is(err, domain.ErrReportNotParsed):
		return http.StatusConflict, "report_not_parsed", "report is not parsed"
	case errors.Is(err, domain.ErrReportAlreadyPayed):
		return http.StatusConflict, "report_already_payed", "report already payed"
	case errors.Is(err, domain.ErrPaymentInProgress):
		return http.StatusConflict, "report_payment_in_progress", "report payment in progress"
	case errors.Is(err, domain.ErrPriceNotSet):
		return http.StatusConflict, "no_price", "report price is not set yet"
	case errors.Is(err, domain.ErrTooManyReports):
		return http.StatusConflict, "too_many_reports", "report limit reached"
	case errors.Is(err, domain.ErrReportNotPayed):
		return http.StatusPaymentRequired, "report_not_payed", "report is not payed"
	case errors.Is(err, domain.ErrUnknownBroker):
		return http.StatusUnprocessableEntity, "validation_error", "unknown broker"
	case errors.Is(err, domain.ErrFilenameTooLong):
		return http.StatusUnprocessableEntity, "filename_too_long", "filename exceeds maximum allowed length"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds maximum allowed size"
	default:
		return http.StatusInternalServerError, "internal_error", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, key, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", middleware.GetRequestID(c), err)
	}
	RespondError(c, status, key, msg)
}

// requestUser extracts the authenticated user or writes a 401 response.
func requestUser(c *gin.Context) (*domain.User, bool) {
	user, err := middleware.GetUser(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "authorization", "missing user context")
		return nil, false
	}
	return user, true
}

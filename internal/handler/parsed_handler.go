package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reportsvc/internal/domain"
	"reportsvc/internal/service"
)

// ParsedHandler accepts parse results from the worker fleet.
type ParsedHandler struct {
	reportService service.ReportService
}

// NewParsedHandler creates a new ParsedHandler.
func NewParsedHandler(reportService service.ReportService) *ParsedHandler {
	return &ParsedHandler{reportService: reportService}
}

// UploadParsingResult handles PUT /reports/:report_id/parsed
func (h *ParsedHandler) UploadParsingResult(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}

	var result domain.ParsingResult
	if err := c.ShouldBindJSON(&result); err != nil {
		RespondError(c, http.StatusUnprocessableEntity,
			"validation_error", "malformed parsing result body")
		return
	}

	log.Printf("parsedHandler: service %s sent parsing result for report %s, is_parsed: %t",
		user.UserID, reportID, result.IsParsed)

	if err := h.reportService.IngestParseResult(c.Request.Context(), reportID, &result); err != nil {
		HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportsvc/internal/csvexport"
	"reportsvc/internal/middleware"
	"reportsvc/internal/service"
)

// ReportHandler handles report upload, listing, deletion and row access.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// reportIDParam parses the report id path parameter or writes a 422.
func reportIDParam(c *gin.Context) (uuid.UUID, bool) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity,
			"validation_error", "invalid report id")
		return uuid.Nil, false
	}
	return reportID, true
}

// yearQuery parses the optional year query parameter or writes a 422.
func yearQuery(c *gin.Context) (*int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return nil, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity,
			"validation_error", "invalid year")
		return nil, false
	}
	return &year, true
}

// Upload handles POST /reports
func (h *ReportHandler) Upload(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity,
			"validation_error", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	report, err := h.reportService.Upload(c.Request.Context(), &service.UploadReportInput{
		User:      *user,
		Filename:  header.Filename,
		File:      file,
		RequestID: middleware.GetRequestID(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// List handles GET /reports
func (h *ReportHandler) List(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}

	reports, err := h.reportService.List(c.Request.Context(), *user)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// Delete handles DELETE /reports/:report_id
func (h *ReportHandler) Delete(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), *user, reportID); err != nil {
		HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRows handles GET /reports/:report_id/rows
func (h *ReportHandler) GetRows(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}
	year, ok := yearQuery(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetRows(c.Request.Context(), *user, reportID, year)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetDetailedRows handles GET /reports/:report_id/rows/detailed
func (h *ReportHandler) GetDetailedRows(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}
	year, ok := yearQuery(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetDetailedRows(c.Request.Context(), *user, reportID, year)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ExportDetailedRows handles GET /reports/:report_id/rows/detailed/export
func (h *ReportHandler) ExportDetailedRows(c *gin.Context) {
	user, ok := requestUser(c)
	if !ok {
		return
	}
	reportID, ok := reportIDParam(c)
	if !ok {
		return
	}
	year, ok := yearQuery(c)
	if !ok {
		return
	}

	rows, err := h.reportService.GetDetailedRows(c.Request.Context(), *user, reportID, year)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(reportID.String())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteRows(rows); err != nil {
		return
	}
	w.Flush()
}

package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
	"reportsvc/internal/port"
	"reportsvc/internal/pricing"
)

// UploadReportInput is the DTO for uploading a new report file.
type UploadReportInput struct {
	User      domain.User
	Filename  string
	File      io.Reader
	RequestID string
}

// ReportService defines the report lifecycle contract.
type ReportService interface {
	Upload(ctx context.Context, input *UploadReportInput) (*domain.Report, error)
	List(ctx context.Context, user domain.User) ([]domain.ReportWithParts, error)
	Delete(ctx context.Context, user domain.User, reportID uuid.UUID) error
	IngestParseResult(ctx context.Context, reportID uuid.UUID, result *domain.ParsingResult) error
	GetRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.ReportRow, error)
	GetDetailedRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.DetailedReportRow, error)
}

type reportService struct {
	repo      port.ReportRepository
	storage   port.ObjectStorage
	queue     port.ParseQueue
	pricer    *pricing.Engine
	s3Bucket  string
	uploadCfg config.UploadConfig
}

// NewReportService creates a new ReportService implementation.
func NewReportService(
	repo port.ReportRepository,
	storage port.ObjectStorage,
	queue port.ParseQueue,
	pricer *pricing.Engine,
	s3Bucket string,
	uploadCfg config.UploadConfig,
) ReportService {
	return &reportService{
		repo:      repo,
		storage:   storage,
		queue:     queue,
		pricer:    pricer,
		s3Bucket:  s3Bucket,
		uploadCfg: uploadCfg,
	}
}

// cappedReader fails the read once more than limit bytes have been
// consumed, so an oversized upload is aborted mid-stream instead of
// being buffered whole.
type cappedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.exceeded {
		return 0, domain.ErrFileTooLarge
	}
	// Read at most one byte past the cap so the overflow is observable
	// without buffering more of the stream.
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	if int64(n) > c.remaining {
		c.exceeded = true
		return 0, domain.ErrFileTooLarge
	}
	c.remaining -= int64(n)
	return n, err
}

func (s *reportService) Upload(ctx context.Context, input *UploadReportInput) (*domain.Report, error) {
	if len(input.Filename) > s.uploadCfg.MaxFilenameLength {
		return nil, domain.ErrFilenameTooLong
	}

	total, err := s.repo.CountByUser(ctx, input.User.UserID)
	if err != nil {
		return nil, fmt.Errorf("reportService.Upload: %w", err)
	}
	if total >= s.uploadCfg.MaxReportsPerUser {
		return nil, domain.ErrTooManyReports
	}

	report := &domain.Report{
		ReportID:      uuid.New(),
		UserID:        input.User.UserID,
		Filename:      input.Filename,
		CreatedAt:     time.Now().UTC(),
		ParseStatus:   domain.ParseStatusInProgress,
		PaymentStatus: domain.PaymentStatusNotPayed,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("reportService.Upload: %w", err)
	}
	log.Printf("reportService.Upload: report %s created for user %s",
		report.ReportID, input.User.UserID)

	key := fmt.Sprintf("reports/%s/%s/%s",
		report.UserID, report.ReportID, report.Filename)
	body := &cappedReader{
		r:         input.File,
		remaining: s.uploadCfg.MaxFileSizeMB * 1024 * 1024,
	}
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Bucket,
		Key:         key,
		Body:        body,
		ContentType: "application/octet-stream",
	}); err != nil {
		if body.exceeded {
			return nil, domain.ErrFileTooLarge
		}
		return nil, fmt.Errorf("reportService.Upload: %w", err)
	}
	log.Printf("reportService.Upload: report %s saved to storage", report.ReportID)

	if err := s.queue.SendParseJob(ctx, port.ParseJob{
		ReportID:   report.ReportID,
		StorageKey: key,
		RequestID:  input.RequestID,
	}); err != nil {
		return nil, fmt.Errorf("reportService.Upload: %w", err)
	}
	log.Printf("reportService.Upload: parse job for report %s enqueued", report.ReportID)

	return report, nil
}

func (s *reportService) List(ctx context.Context, user domain.User) ([]domain.ReportWithParts, error) {
	reports, err := s.repo.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("reportService.List: %w", err)
	}
	counts, err := s.repo.YearCountsByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("reportService.List: %w", err)
	}

	partsByReport := make(map[uuid.UUID][]domain.YearRowsCount)
	for _, c := range counts {
		partsByReport[c.ReportID] = append(partsByReport[c.ReportID], c)
	}

	result := make([]domain.ReportWithParts, len(reports))
	for i, r := range reports {
		result[i] = domain.ReportWithParts{
			Report: r,
			Parts:  partsByReport[r.ReportID],
		}
	}
	return result, nil
}

func (s *reportService) Delete(ctx context.Context, user domain.User, reportID uuid.UUID) error {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report.UserID != user.UserID {
		return domain.ErrForbidden
	}

	if err := s.repo.SoftDelete(ctx, reportID, time.Now().UTC()); err != nil {
		return err
	}
	if err := s.repo.DeleteRows(ctx, reportID); err != nil {
		return fmt.Errorf("reportService.Delete: %w", err)
	}
	log.Printf("reportService.Delete: report %s deleted by user %s", reportID, user.UserID)
	return nil
}

func (s *reportService) IngestParseResult(ctx context.Context, reportID uuid.UUID, result *domain.ParsingResult) error {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	// Reject bad payloads before the existing rows are wiped.
	if result.IsParsed && result.ParsedReport != nil &&
		!domain.KnownBroker(result.ParsedReport.Broker) {
		return domain.ErrUnknownBroker
	}

	if err := s.repo.DeleteRows(ctx, reportID); err != nil {
		return fmt.Errorf("reportService.IngestParseResult: %w", err)
	}

	if !result.IsParsed || result.ParsedReport == nil {
		if err := s.repo.UpdateParseResult(ctx, reportID, domain.ParseStatusNotParsed, nil); err != nil {
			return fmt.Errorf("reportService.IngestParseResult: %w", err)
		}
		log.Printf("reportService.IngestParseResult: report %s marked not parsed", reportID)
		return nil
	}

	parsed := result.ParsedReport

	var year *int
	if y := parsed.Period.Start.Year(); y == parsed.Period.End.Year() {
		year = &y
	} else {
		log.Printf("reportService.IngestParseResult: report %s period spans several years, year left unset",
			reportID)
	}

	price, err := s.pricer.Calc(len(parsed.Rows), report.CreatedAt)
	if err != nil {
		return fmt.Errorf("reportService.IngestParseResult: %w", err)
	}
	// A re-parse never raises the price the user already saw.
	if report.Price.Valid && price.GreaterThan(report.Price.Decimal) {
		price = report.Price.Decimal
	}

	info := &domain.ParsedReportInfo{
		Broker:      parsed.Broker,
		Version:     parsed.Version,
		Note:        parsed.Note,
		PeriodStart: parsed.Period.Start,
		PeriodEnd:   parsed.Period.End,
		Year:        year,
		Price:       price,
		ParsedAt:    time.Now().UTC(),
	}
	if err := s.repo.UpdateParseResult(ctx, reportID, domain.ParseStatusParsed, info); err != nil {
		return fmt.Errorf("reportService.IngestParseResult: %w", err)
	}
	if err := s.repo.InsertRows(ctx, reportID, parsed.Rows); err != nil {
		return fmt.Errorf("reportService.IngestParseResult: %w", err)
	}
	log.Printf("reportService.IngestParseResult: report %s parsed, %d rows, price %s",
		reportID, len(parsed.Rows), price)
	return nil
}

// getOwnedParsedReport fetches a report and applies the shared row
// access guards: existence, ownership, parse completion.
func (s *reportService) getOwnedParsedReport(ctx context.Context, user domain.User, reportID uuid.UUID) (*domain.Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.UserID != user.UserID {
		return nil, domain.ErrForbidden
	}
	if report.ParseStatus != domain.ParseStatusParsed {
		return nil, domain.ErrReportNotParsed
	}
	return report, nil
}

func (s *reportService) GetRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.ReportRow, error) {
	if _, err := s.getOwnedParsedReport(ctx, user, reportID); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetRows(ctx, reportID, year)
	if err != nil {
		return nil, fmt.Errorf("reportService.GetRows: %w", err)
	}
	return rows, nil
}

func (s *reportService) GetDetailedRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.DetailedReportRow, error) {
	report, err := s.getOwnedParsedReport(ctx, user, reportID)
	if err != nil {
		return nil, err
	}
	if !report.IsReadyToUse() {
		return nil, domain.ErrReportNotPayed
	}

	rows, err := s.repo.GetRows(ctx, reportID, year)
	if err != nil {
		return nil, fmt.Errorf("reportService.GetDetailedRows: %w", err)
	}

	detailed := make([]domain.DetailedReportRow, len(rows))
	for i, row := range rows {
		detailed[i] = domain.DetailedReportRow{
			ReportRow:         row,
			SourceCountryCode: row.CountryCode,
			TargetCountryCode: domain.TargetCountryCode,
		}
	}
	return detailed, nil
}

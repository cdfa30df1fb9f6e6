package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportsvc/internal/config"
	"reportsvc/internal/domain"
	"reportsvc/internal/port"
	"reportsvc/internal/pricing"
	"reportsvc/internal/service"
	"reportsvc/mocks"
)

func testPricer(t *testing.T) *pricing.Engine {
	t.Helper()
	engine, err := pricing.New([]pricing.Strategy{{
		StartedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Calculator: pricing.LinearWithMinThreshold{
			MinThreshold: decimal.NewFromInt(99),
			RowPrice:     decimal.RequireFromString("3.5"),
		},
	}})
	require.NoError(t, err)
	return engine
}

func setupReportService(t *testing.T) (*mocks.MockReportRepo, *mocks.MockObjectStorage, *mocks.MockParseQueue, service.ReportService) {
	repo := new(mocks.MockReportRepo)
	storage := new(mocks.MockObjectStorage)
	queue := new(mocks.MockParseQueue)
	svc := service.NewReportService(repo, storage, queue, testPricer(t), "report-uploads", config.UploadConfig{
		MaxFileSizeMB:     1,
		MaxFilenameLength: 128,
		MaxReportsPerUser: 10,
	})
	return repo, storage, queue, svc
}

func testUser() domain.User {
	return domain.User{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Name:   "Test User",
		Role:   domain.RoleUser,
	}
}

func parsedReport(user domain.User, price string) *domain.Report {
	return &domain.Report{
		ReportID:      uuid.New(),
		UserID:        user.UserID,
		Filename:      "broker.xlsx",
		CreatedAt:     time.Date(2022, 3, 1, 12, 0, 0, 0, time.UTC),
		ParseStatus:   domain.ParseStatusParsed,
		PaymentStatus: domain.PaymentStatusNotPayed,
		Price:         decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

func TestUpload_Success(t *testing.T) {
	repo, storage, queue, svc := setupReportService(t)
	user := testUser()

	repo.On("CountByUser", mock.Anything, user.UserID).Return(3, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "somewhere"}, nil)
	queue.On("SendParseJob", mock.Anything, mock.AnythingOfType("port.ParseJob")).Return(nil)

	report, err := svc.Upload(context.Background(), &service.UploadReportInput{
		User:      user,
		Filename:  "statement.xlsx",
		File:      strings.NewReader("file content"),
		RequestID: "req-1",
	})

	require.NoError(t, err)
	assert.Equal(t, user.UserID, report.UserID)
	assert.Equal(t, domain.ParseStatusInProgress, report.ParseStatus)
	assert.Equal(t, domain.PaymentStatusNotPayed, report.PaymentStatus)

	uploadInput := storage.Calls[0].Arguments.Get(1).(port.UploadInput)
	assert.Equal(t, "report-uploads", uploadInput.Bucket)
	assert.Contains(t, uploadInput.Key, report.UserID.String())
	assert.Contains(t, uploadInput.Key, report.ReportID.String())
	assert.Contains(t, uploadInput.Key, "statement.xlsx")

	job := queue.Calls[0].Arguments.Get(1).(port.ParseJob)
	assert.Equal(t, report.ReportID, job.ReportID)
	assert.Equal(t, uploadInput.Key, job.StorageKey)
	assert.Equal(t, "req-1", job.RequestID)
}

func TestUpload_FilenameTooLong(t *testing.T) {
	_, _, _, svc := setupReportService(t)

	_, err := svc.Upload(context.Background(), &service.UploadReportInput{
		User:     testUser(),
		Filename: strings.Repeat("a", 129),
		File:     strings.NewReader("x"),
	})

	assert.ErrorIs(t, err, domain.ErrFilenameTooLong)
}

func TestUpload_TooManyReports(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()

	repo.On("CountByUser", mock.Anything, user.UserID).Return(10, nil)

	_, err := svc.Upload(context.Background(), &service.UploadReportInput{
		User:     user,
		Filename: "statement.xlsx",
		File:     strings.NewReader("x"),
	})

	assert.ErrorIs(t, err, domain.ErrTooManyReports)
}

func TestUpload_FileTooLarge(t *testing.T) {
	repo, storage, _, svc := setupReportService(t)
	user := testUser()

	repo.On("CountByUser", mock.Anything, user.UserID).Return(0, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Report")).Return(nil)
	// The uploader drains the body and propagates the reader failure.
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Run(func(args mock.Arguments) {
			input := args.Get(1).(port.UploadInput)
			buf := make([]byte, 64*1024)
			for {
				if _, err := input.Body.Read(buf); err != nil {
					return
				}
			}
		}).
		Return(nil, domain.ErrFileTooLarge)

	oversized := strings.NewReader(strings.Repeat("a", 2*1024*1024))
	_, err := svc.Upload(context.Background(), &service.UploadReportInput{
		User:     user,
		Filename: "statement.xlsx",
		File:     oversized,
	})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestIngestParseResult_Success(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "100")
	report.ParseStatus = domain.ParseStatusInProgress
	report.Price = decimal.NullDecimal{}

	rows := make([]domain.ReportRowData, 40)
	for i := range rows {
		rows[i] = domain.ReportRowData{
			Isin:         "US0378331005",
			Name:         "Apple",
			TaxRate:      "13%",
			CountryCode:  "US",
			CurrencyCode: "USD",
			IncomeAmount: 1.5,
			IncomeDate:   domain.NewDate(2022, time.January, 10),
		}
	}
	note := "ok"
	result := &domain.ParsingResult{
		IsParsed: true,
		ParsedReport: &domain.ParsedReport{
			Broker:  "tinkoff",
			Version: "v1.2",
			Note:    &note,
			Period: domain.Period{
				Start: domain.NewDate(2022, time.January, 1),
				End:   domain.NewDate(2022, time.December, 31),
			},
			Rows: rows,
		},
	}

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("DeleteRows", mock.Anything, report.ReportID).Return(nil)
	repo.On("UpdateParseResult", mock.Anything, report.ReportID,
		domain.ParseStatusParsed, mock.AnythingOfType("*domain.ParsedReportInfo")).Return(nil)
	repo.On("InsertRows", mock.Anything, report.ReportID, rows).Return(nil)

	err := svc.IngestParseResult(context.Background(), report.ReportID, result)
	require.NoError(t, err)

	info := repo.Calls[2].Arguments.Get(3).(*domain.ParsedReportInfo)
	assert.Equal(t, "tinkoff", info.Broker)
	require.NotNil(t, info.Year)
	assert.Equal(t, 2022, *info.Year)
	// 40 rows at 3.5 each clears the 99 floor.
	assert.True(t, info.Price.Equal(decimal.RequireFromString("140")),
		"price was %s", info.Price)
}

func TestIngestParseResult_MultiYearPeriodLeavesYearUnset(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	report := parsedReport(testUser(), "100")
	report.Price = decimal.NullDecimal{}

	result := &domain.ParsingResult{
		IsParsed: true,
		ParsedReport: &domain.ParsedReport{
			Broker:  "vtb",
			Version: "v1",
			Period: domain.Period{
				Start: domain.NewDate(2021, time.July, 1),
				End:   domain.NewDate(2022, time.June, 30),
			},
			Rows: []domain.ReportRowData{},
		},
	}

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("DeleteRows", mock.Anything, report.ReportID).Return(nil)
	repo.On("UpdateParseResult", mock.Anything, report.ReportID,
		domain.ParseStatusParsed, mock.AnythingOfType("*domain.ParsedReportInfo")).Return(nil)
	repo.On("InsertRows", mock.Anything, report.ReportID, mock.Anything).Return(nil)

	err := svc.IngestParseResult(context.Background(), report.ReportID, result)
	require.NoError(t, err)

	info := repo.Calls[2].Arguments.Get(3).(*domain.ParsedReportInfo)
	assert.Nil(t, info.Year)
}

func TestIngestParseResult_UnknownBrokerRejected(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	report := parsedReport(testUser(), "100")

	result := &domain.ParsingResult{
		IsParsed: true,
		ParsedReport: &domain.ParsedReport{
			Broker:  "robinhood",
			Version: "v1",
			Period: domain.Period{
				Start: domain.NewDate(2022, time.January, 1),
				End:   domain.NewDate(2022, time.December, 31),
			},
			Rows: []domain.ReportRowData{},
		},
	}

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)

	err := svc.IngestParseResult(context.Background(), report.ReportID, result)

	assert.ErrorIs(t, err, domain.ErrUnknownBroker)
	// Existing rows stay intact when the payload is rejected.
	repo.AssertNotCalled(t, "DeleteRows", mock.Anything, mock.Anything)
}

func TestIngestParseResult_RepriceNeverRaises(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	report := parsedReport(testUser(), "99")

	// 40 rows would price at 140, above the stored 99.
	rows := make([]domain.ReportRowData, 40)
	result := &domain.ParsingResult{
		IsParsed: true,
		ParsedReport: &domain.ParsedReport{
			Broker:  "tinkoff",
			Version: "v2",
			Period: domain.Period{
				Start: domain.NewDate(2022, time.January, 1),
				End:   domain.NewDate(2022, time.December, 31),
			},
			Rows: rows,
		},
	}

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("DeleteRows", mock.Anything, report.ReportID).Return(nil)
	repo.On("UpdateParseResult", mock.Anything, report.ReportID,
		domain.ParseStatusParsed, mock.AnythingOfType("*domain.ParsedReportInfo")).Return(nil)
	repo.On("InsertRows", mock.Anything, report.ReportID, mock.Anything).Return(nil)

	err := svc.IngestParseResult(context.Background(), report.ReportID, result)
	require.NoError(t, err)

	info := repo.Calls[2].Arguments.Get(3).(*domain.ParsedReportInfo)
	assert.True(t, info.Price.Equal(decimal.RequireFromString("99")),
		"price was %s", info.Price)
}

func TestIngestParseResult_NotParsedWipesDerivedFields(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	report := parsedReport(testUser(), "100")

	msg := "unreadable file"
	result := &domain.ParsingResult{IsParsed: false, Message: &msg}

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("DeleteRows", mock.Anything, report.ReportID).Return(nil)
	repo.On("UpdateParseResult", mock.Anything, report.ReportID,
		domain.ParseStatusNotParsed, (*domain.ParsedReportInfo)(nil)).Return(nil)

	err := svc.IngestParseResult(context.Background(), report.ReportID, result)
	require.NoError(t, err)

	repo.AssertCalled(t, "UpdateParseResult", mock.Anything, report.ReportID,
		domain.ParseStatusNotParsed, (*domain.ParsedReportInfo)(nil))
	repo.AssertNotCalled(t, "InsertRows", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_Forbidden(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	owner := testUser()
	other := testUser()
	report := parsedReport(owner, "100")

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)

	err := svc.Delete(context.Background(), other, report.ReportID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDelete_Success(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "100")

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("SoftDelete", mock.Anything, report.ReportID, mock.AnythingOfType("time.Time")).Return(nil)
	repo.On("DeleteRows", mock.Anything, report.ReportID).Return(nil)

	err := svc.Delete(context.Background(), user, report.ReportID)
	require.NoError(t, err)
	repo.AssertCalled(t, "DeleteRows", mock.Anything, report.ReportID)
}

func TestGetRows_Guards(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	owner := testUser()
	stranger := testUser()

	missing := uuid.New()
	repo.On("GetByID", mock.Anything, missing).Return(nil, domain.ErrReportNotFound)
	_, err := svc.GetRows(context.Background(), owner, missing, nil)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	report := parsedReport(owner, "100")
	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	_, err = svc.GetRows(context.Background(), stranger, report.ReportID, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	unparsed := parsedReport(owner, "100")
	unparsed.ParseStatus = domain.ParseStatusInProgress
	repo.On("GetByID", mock.Anything, unparsed.ReportID).Return(unparsed, nil)
	_, err = svc.GetRows(context.Background(), owner, unparsed.ReportID, nil)
	assert.ErrorIs(t, err, domain.ErrReportNotParsed)
}

func TestGetRows_YearFilterPassedThrough(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "100")
	year := 2021

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("GetRows", mock.Anything, report.ReportID, &year).Return([]domain.ReportRow{}, nil)

	_, err := svc.GetRows(context.Background(), user, report.ReportID, &year)
	require.NoError(t, err)
	repo.AssertCalled(t, "GetRows", mock.Anything, report.ReportID, &year)
}

func TestGetDetailedRows_NotPayed(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "100")

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)

	_, err := svc.GetDetailedRows(context.Background(), user, report.ReportID, nil)
	assert.ErrorIs(t, err, domain.ErrReportNotPayed)
}

func TestGetDetailedRows_FreeReportAccessible(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "0")

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("GetRows", mock.Anything, report.ReportID, (*int)(nil)).Return([]domain.ReportRow{
		{ReportID: report.ReportID, RowN: 1, ReportRowData: domain.ReportRowData{CountryCode: "US"}},
	}, nil)

	rows, err := svc.GetDetailedRows(context.Background(), user, report.ReportID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "US", rows[0].SourceCountryCode)
	assert.Equal(t, "RU", rows[0].TargetCountryCode)
}

func TestGetDetailedRows_PayedReportAccessible(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	report := parsedReport(user, "100")
	report.PaymentStatus = domain.PaymentStatusPayed

	repo.On("GetByID", mock.Anything, report.ReportID).Return(report, nil)
	repo.On("GetRows", mock.Anything, report.ReportID, (*int)(nil)).Return([]domain.ReportRow{}, nil)

	_, err := svc.GetDetailedRows(context.Background(), user, report.ReportID, nil)
	assert.NoError(t, err)
}

func TestList_AttachesYearParts(t *testing.T) {
	repo, _, _, svc := setupReportService(t)
	user := testUser()
	first := parsedReport(user, "100")
	second := parsedReport(user, "50")

	repo.On("ListByUser", mock.Anything, user.UserID).
		Return([]domain.Report{*first, *second}, nil)
	repo.On("YearCountsByUser", mock.Anything, user.UserID).
		Return([]domain.YearRowsCount{
			{ReportID: first.ReportID, Year: 2021, Count: 5},
			{ReportID: first.ReportID, Year: 2022, Count: 7},
		}, nil)

	reports, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Len(t, reports[0].Parts, 2)
	assert.Empty(t, reports[1].Parts)
}

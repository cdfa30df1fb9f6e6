package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
	"reportsvc/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Upload(ctx context.Context, input *service.UploadReportInput) (*domain.Report, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, user domain.User) ([]domain.ReportWithParts, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportWithParts), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, user domain.User, reportID uuid.UUID) error {
	args := m.Called(ctx, user, reportID)
	return args.Error(0)
}

func (m *MockReportService) IngestParseResult(ctx context.Context, reportID uuid.UUID, result *domain.ParsingResult) error {
	args := m.Called(ctx, reportID, result)
	return args.Error(0)
}

func (m *MockReportService) GetRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.ReportRow, error) {
	args := m.Called(ctx, user, reportID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportRow), args.Error(1)
}

func (m *MockReportService) GetDetailedRows(ctx context.Context, user domain.User, reportID uuid.UUID, year *int) ([]domain.DetailedReportRow, error) {
	args := m.Called(ctx, user, reportID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetailedReportRow), args.Error(1)
}

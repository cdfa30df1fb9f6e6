package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
)

// MockReportRepo is a mock implementation of port.ReportRepository.
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepo) GetByID(ctx context.Context, reportID uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Report, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Report), args.Error(1)
}

func (m *MockReportRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockReportRepo) SoftDelete(ctx context.Context, reportID uuid.UUID, deletedAt time.Time) error {
	args := m.Called(ctx, reportID, deletedAt)
	return args.Error(0)
}

func (m *MockReportRepo) UpdateParseResult(ctx context.Context, reportID uuid.UUID, status domain.ParseStatus, info *domain.ParsedReportInfo) error {
	args := m.Called(ctx, reportID, status, info)
	return args.Error(0)
}

func (m *MockReportRepo) UpdatePaymentStatus(ctx context.Context, reportID uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error {
	args := m.Called(ctx, reportID, status, updatedAt)
	return args.Error(0)
}

func (m *MockReportRepo) DeleteRows(ctx context.Context, reportID uuid.UUID) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *MockReportRepo) InsertRows(ctx context.Context, reportID uuid.UUID, rows []domain.ReportRowData) error {
	args := m.Called(ctx, reportID, rows)
	return args.Error(0)
}

func (m *MockReportRepo) GetRows(ctx context.Context, reportID uuid.UUID, year *int) ([]domain.ReportRow, error) {
	args := m.Called(ctx, reportID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportRow), args.Error(1)
}

func (m *MockReportRepo) YearCountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.YearRowsCount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearRowsCount), args.Error(1)
}

package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reportsvc/internal/domain"
)

// ReportRepository defines the persistence contract for reports and
// their rows. Every mutation is a single atomic statement scoped to one
// report; read methods exclude soft-deleted reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, reportID uuid.UUID) (*domain.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Report, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	SoftDelete(ctx context.Context, reportID uuid.UUID, deletedAt time.Time) error

	UpdateParseResult(ctx context.Context, reportID uuid.UUID, status domain.ParseStatus, info *domain.ParsedReportInfo) error
	UpdatePaymentStatus(ctx context.Context, reportID uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error

	DeleteRows(ctx context.Context, reportID uuid.UUID) error
	// InsertRows assigns row_n = 1..N following slice order.
	InsertRows(ctx context.Context, reportID uuid.UUID, rows []domain.ReportRowData) error
	// GetRows returns rows ordered by row_n, restricted to the given
	// income year when year is non-nil.
	GetRows(ctx context.Context, reportID uuid.UUID, year *int) ([]domain.ReportRow, error)
	// YearCountsByUser returns per-report, per-income-year row counts
	// for all non-deleted reports of the user.
	YearCountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.YearRowsCount, error)
}

// PromocodeRepository defines the persistence contract for promo codes.
type PromocodeRepository interface {
	// GetByCode looks up a code (already uppercased by the caller) and
	// returns (nil, nil) when no record matches: absence is a normal
	// evaluation outcome, not an error.
	GetByCode(ctx context.Context, code string) (*domain.Promocode, error)
	// AdjustUsages changes rest_usages by delta as one atomic update so
	// concurrent redemptions of the same code cannot lose updates.
	AdjustUsages(ctx context.Context, code string, delta int) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	query := `INSERT INTO reports (
		report_id, user_id, filename, created_at,
		parse_status, payment_status, is_deleted
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		report.ReportID, report.UserID, report.Filename, report.CreatedAt,
		report.ParseStatus, report.PaymentStatus, report.IsDeleted)
	if err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, reportID uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.GetContext(ctx, &report,
		"SELECT * FROM reports WHERE report_id = $1 AND NOT is_deleted", reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}
	return &report, nil
}

func (r *reportRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.SelectContext(ctx, &reports,
		`SELECT * FROM reports WHERE user_id = $1 AND NOT is_deleted
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.ListByUser: %w", err)
	}
	return reports, nil
}

func (r *reportRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM reports WHERE user_id = $1 AND NOT is_deleted", userID)
	if err != nil {
		return 0, fmt.Errorf("reportRepo.CountByUser: %w", err)
	}
	return total, nil
}

func (r *reportRepo) SoftDelete(ctx context.Context, reportID uuid.UUID, deletedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reports SET is_deleted = TRUE, deleted_at = $2
		 WHERE report_id = $1 AND NOT is_deleted`,
		reportID, deletedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.SoftDelete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *reportRepo) UpdateParseResult(ctx context.Context, reportID uuid.UUID, status domain.ParseStatus, info *domain.ParsedReportInfo) error {
	var (
		result sql.Result
		err    error
	)
	if info != nil {
		result, err = r.db.ExecContext(ctx,
			`UPDATE reports SET
				parse_status = $2, broker = $3, period_start = $4, period_end = $5,
				year = $6, parse_note = $7, parser_version = $8, price = $9, parsed_at = $10
			 WHERE report_id = $1`,
			reportID, status, info.Broker, info.PeriodStart, info.PeriodEnd,
			info.Year, info.Note, info.Version, info.Price, info.ParsedAt)
	} else {
		result, err = r.db.ExecContext(ctx,
			`UPDATE reports SET
				parse_status = $2, broker = NULL, period_start = NULL, period_end = NULL,
				year = NULL, parse_note = NULL, parser_version = NULL, price = NULL, parsed_at = NULL
			 WHERE report_id = $1`,
			reportID, status)
	}
	if err != nil {
		return fmt.Errorf("reportRepo.UpdateParseResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *reportRepo) UpdatePaymentStatus(ctx context.Context, reportID uuid.UUID, status domain.PaymentStatus, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reports SET payment_status = $2, payment_status_updated_at = $3
		 WHERE report_id = $1 AND NOT is_deleted`,
		reportID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("reportRepo.UpdatePaymentStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *reportRepo) DeleteRows(ctx context.Context, reportID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM report_rows WHERE report_id = $1", reportID)
	if err != nil {
		return fmt.Errorf("reportRepo.DeleteRows: %w", err)
	}
	return nil
}

func (r *reportRepo) InsertRows(ctx context.Context, reportID uuid.UUID, rows []domain.ReportRowData) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]domain.ReportRow, len(rows))
	for i, row := range rows {
		records[i] = domain.ReportRow{
			ReportID:      reportID,
			RowN:          i + 1,
			ReportRowData: row,
		}
	}

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO report_rows (
			report_id, row_n, isin, name, tax_rate, country_code, currency_code,
			income_amount, income_date, income_currency_rate,
			tax_payment_date, payed_tax_amount, tax_payment_currency_rate
		) VALUES (
			:report_id, :row_n, :isin, :name, :tax_rate, :country_code, :currency_code,
			:income_amount, :income_date, :income_currency_rate,
			:tax_payment_date, :payed_tax_amount, :tax_payment_currency_rate
		)`, records)
	if err != nil {
		return fmt.Errorf("reportRepo.InsertRows: %w", err)
	}
	return nil
}

func (r *reportRepo) GetRows(ctx context.Context, reportID uuid.UUID, year *int) ([]domain.ReportRow, error) {
	var (
		rows []domain.ReportRow
		err  error
	)
	if year != nil {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT * FROM report_rows
			 WHERE report_id = $1 AND EXTRACT(YEAR FROM income_date) = $2
			 ORDER BY row_n`, reportID, *year)
	} else {
		err = r.db.SelectContext(ctx, &rows,
			"SELECT * FROM report_rows WHERE report_id = $1 ORDER BY row_n", reportID)
	}
	if err != nil {
		return nil, fmt.Errorf("reportRepo.GetRows: %w", err)
	}
	return rows, nil
}

func (r *reportRepo) YearCountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.YearRowsCount, error) {
	var counts []domain.YearRowsCount
	err := r.db.SelectContext(ctx, &counts,
		`SELECT rr.report_id, EXTRACT(YEAR FROM rr.income_date)::int AS year, COUNT(*)::int AS count
		 FROM report_rows rr
		 JOIN reports r ON r.report_id = rr.report_id
		 WHERE r.user_id = $1 AND NOT r.is_deleted
		 GROUP BY rr.report_id, year
		 ORDER BY rr.report_id, year`, userID)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.YearCountsByUser: %w", err)
	}
	return counts, nil
}

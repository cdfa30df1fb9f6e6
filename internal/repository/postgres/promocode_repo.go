package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

type promocodeRepo struct {
	db *sqlx.DB
}

// NewPromocodeRepo creates a new PostgreSQL-backed PromocodeRepository.
func NewPromocodeRepo(db *sqlx.DB) port.PromocodeRepository {
	return &promocodeRepo{db: db}
}

func (r *promocodeRepo) GetByCode(ctx context.Context, code string) (*domain.Promocode, error) {
	var promocode domain.Promocode
	err := r.db.GetContext(ctx, &promocode,
		"SELECT * FROM promocodes WHERE promocode = $1", code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("promocodeRepo.GetByCode: %w", err)
	}
	return &promocode, nil
}

func (r *promocodeRepo) AdjustUsages(ctx context.Context, code string, delta int) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE promocodes SET rest_usages = rest_usages + $2 WHERE promocode = $1",
		code, delta)
	if err != nil {
		return fmt.Errorf("promocodeRepo.AdjustUsages: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("promocodeRepo.AdjustUsages: code %s not found", code)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (*entity.Discount, error)
	FindActiveByCode(ctx context.Context, code string, at time.Time) (*entity.Discount, error)
}

type discountRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDiscountRepository(db database.PgxIface, log *zap.Logger) DiscountRepository {
	return &discountRepository{
		db:  db,
		log: log.With(zap.String("repository", "discount")),
	}
}

const discountColumns = `id, code, percentage, valid_from, valid_until, is_active, created_at, updated_at`

func scanDiscount(row pgx.Row) (*entity.Discount, error) {
	var discount entity.Discount
	err := row.Scan(
		&discount.ID,
		&discount.Code,
		&discount.Percentage,
		&discount.ValidFrom,
		&discount.ValidUntil,
		&discount.IsActive,
		&discount.CreatedAt,
		&discount.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (*entity.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`

	discount, err := scanDiscount(r.db.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find discount by code",
			zap.Error(err),
			zap.String("code", code),
		)
		return nil, fmt.Errorf("find discount by code %s: %w", code, err)
	}

	return discount, nil
}

func (r *discountRepository) FindActiveByCode(ctx context.Context, code string, at time.Time) (*entity.Discount, error) {
	query := `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE code = $1 AND is_active = TRUE AND valid_from <= $2 AND valid_until >= $2
	`

	discount, err := scanDiscount(r.db.QueryRow(ctx, query, code, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active discount by code",
			zap.Error(err),
			zap.String("code", code),
		)
		return nil, fmt.Errorf("find active discount by code %s: %w", code, err)
	}

	return discount, nil
}

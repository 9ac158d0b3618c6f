package repository

import (
	"context"
	"fmt"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TourRepository interface {
	Create(ctx context.Context, tour *entity.Tour) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Tour, error)
	FindAll(ctx context.Context, offset, limit int) ([]*entity.Tour, error)
	FindFeatured(ctx context.Context, limit int) ([]*entity.Tour, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, tour *entity.Tour) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	AddImage(ctx context.Context, tourID uuid.UUID, filename string) error
	UpdateRatingStats(ctx context.Context, tourID uuid.UUID, average float64, count int64) error
}

type tourRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTourRepository(db database.PgxIface, log *zap.Logger) TourRepository {
	return &tourRepository{
		db:  db,
		log: log.With(zap.String("repository", "tour")),
	}
}

const tourColumns = `id, name, description, price, images, duration, destination,
	departure_location, featured, rating_average, rating_count, created_at, updated_at`

func scanTour(row pgx.Row) (*entity.Tour, error) {
	var tour entity.Tour
	err := row.Scan(
		&tour.ID,
		&tour.Name,
		&tour.Description,
		&tour.Price,
		&tour.Images,
		&tour.Duration,
		&tour.Destination,
		&tour.DepartureLocation,
		&tour.Featured,
		&tour.RatingAverage,
		&tour.RatingCount,
		&tour.CreatedAt,
		&tour.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (r *tourRepository) Create(ctx context.Context, tour *entity.Tour) error {
	query := `
		INSERT INTO tours (id, name, description, price, images, duration, destination,
			departure_location, featured, rating_average, rating_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		tour.ID,
		tour.Name,
		tour.Description,
		tour.Price,
		tour.Images,
		tour.Duration,
		tour.Destination,
		tour.DepartureLocation,
		tour.Featured,
		tour.RatingAverage,
		tour.RatingCount,
		tour.CreatedAt,
		tour.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create tour",
			zap.Error(err),
			zap.String("name", tour.Name),
		)
		return fmt.Errorf("create tour %s: %w", tour.Name, err)
	}

	return nil
}

func (r *tourRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1`

	tour, err := scanTour(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tour by ID",
			zap.Error(err),
			zap.String("tour_id", id.String()),
		)
		return nil, fmt.Errorf("find tour by ID %s: %w", id.String(), err)
	}

	return tour, nil
}

func (r *tourRepository) FindAll(ctx context.Context, offset, limit int) ([]*entity.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find tours",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find tours: %w", err)
	}
	defer rows.Close()

	var tours []*entity.Tour
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			r.log.Error("Failed to scan tour row", zap.Error(err))
			return nil, fmt.Errorf("scan tour row: %w", err)
		}
		tours = append(tours, tour)
	}

	return tours, nil
}

func (r *tourRepository) FindFeatured(ctx context.Context, limit int) ([]*entity.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE featured = TRUE
		ORDER BY rating_average DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find featured tours", zap.Error(err))
		return nil, fmt.Errorf("find featured tours: %w", err)
	}
	defer rows.Close()

	var tours []*entity.Tour
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			r.log.Error("Failed to scan tour row", zap.Error(err))
			return nil, fmt.Errorf("scan tour row: %w", err)
		}
		tours = append(tours, tour)
	}

	return tours, nil
}

func (r *tourRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM tours`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count tours", zap.Error(err))
		return 0, fmt.Errorf("count tours: %w", err)
	}

	return count, nil
}

func (r *tourRepository) Update(ctx context.Context, tour *entity.Tour) error {
	query := `
		UPDATE tours
		SET name = $2, description = $3, price = $4, images = $5, duration = $6,
		    destination = $7, departure_location = $8, featured = $9, updated_at = $10
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query,
		tour.ID,
		tour.Name,
		tour.Description,
		tour.Price,
		tour.Images,
		tour.Duration,
		tour.Destination,
		tour.DepartureLocation,
		tour.Featured,
		tour.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update tour",
			zap.Error(err),
			zap.String("tour_id", tour.ID.String()),
		)
		return fmt.Errorf("update tour %s: %w", tour.ID.String(), err)
	}

	return nil
}

func (r *tourRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tours WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete tour",
			zap.Error(err),
			zap.String("tour_id", id.String()),
		)
		return fmt.Errorf("delete tour %s: %w", id.String(), err)
	}

	return nil
}

func (r *tourRepository) AddImage(ctx context.Context, tourID uuid.UUID, filename string) error {
	query := `
		UPDATE tours
		SET images = array_append(images, $2), updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, tourID, filename)
	if err != nil {
		r.log.Error("Failed to add tour image",
			zap.Error(err),
			zap.String("tour_id", tourID.String()),
			zap.String("filename", filename),
		)
		return fmt.Errorf("add image to tour %s: %w", tourID.String(), err)
	}

	return nil
}

func (r *tourRepository) UpdateRatingStats(ctx context.Context, tourID uuid.UUID, average float64, count int64) error {
	query := `
		UPDATE tours
		SET rating_average = $2, rating_count = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, tourID, average, count)
	if err != nil {
		r.log.Error("Failed to update tour rating stats",
			zap.Error(err),
			zap.String("tour_id", tourID.String()),
		)
		return fmt.Errorf("update rating stats for tour %s: %w", tourID.String(), err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.Schedule) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Schedule, error)
	FindByTourID(ctx context.Context, tourID uuid.UUID) ([]*entity.Schedule, error)
	Update(ctx context.Context, schedule *entity.Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Inventory operations. Seat mutation is a single conditional update so
	// two concurrent reservations can never oversell a schedule.
	ReserveSeats(ctx context.Context, id uuid.UUID, seats int) (bool, error)
	RestoreSeats(ctx context.Context, id uuid.UUID, seats int) error
}

type scheduleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewScheduleRepository(db database.PgxIface, log *zap.Logger) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: log.With(zap.String("repository", "schedule")),
	}
}

const scheduleColumns = `id, tour_id, departure_date, departure_time, return_date,
	return_time, transportation, available_seats, price_override, created_at, updated_at`

func scanSchedule(row pgx.Row) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := row.Scan(
		&schedule.ID,
		&schedule.TourID,
		&schedule.DepartureDate,
		&schedule.DepartureTime,
		&schedule.ReturnDate,
		&schedule.ReturnTime,
		&schedule.Transportation,
		&schedule.AvailableSeats,
		&schedule.PriceOverride,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.Schedule) error {
	query := `
		INSERT INTO schedules (id, tour_id, departure_date, departure_time, return_date,
			return_time, transportation, available_seats, price_override, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		schedule.ID,
		schedule.TourID,
		schedule.DepartureDate,
		schedule.DepartureTime,
		schedule.ReturnDate,
		schedule.ReturnTime,
		schedule.Transportation,
		schedule.AvailableSeats,
		schedule.PriceOverride,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create schedule",
			zap.Error(err),
			zap.String("tour_id", schedule.TourID.String()),
		)
		return fmt.Errorf("create schedule for tour %s: %w", schedule.TourID.String(), err)
	}

	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`

	schedule, err := scanSchedule(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find schedule by ID",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return nil, fmt.Errorf("find schedule by ID %s: %w", id.String(), err)
	}

	return schedule, nil
}

func (r *scheduleRepository) FindByTourID(ctx context.Context, tourID uuid.UUID) ([]*entity.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE tour_id = $1
		ORDER BY departure_date ASC
	`

	rows, err := r.db.Query(ctx, query, tourID)
	if err != nil {
		r.log.Error("Failed to find schedules by tour ID",
			zap.Error(err),
			zap.String("tour_id", tourID.String()),
		)
		return nil, fmt.Errorf("find schedules by tour ID %s: %w", tourID.String(), err)
	}
	defer rows.Close()

	var schedules []*entity.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			r.log.Error("Failed to scan schedule row", zap.Error(err))
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.Schedule) error {
	query := `
		UPDATE schedules
		SET departure_date = $2, departure_time = $3, return_date = $4, return_time = $5,
		    transportation = $6, available_seats = $7, price_override = $8, updated_at = $9
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query,
		schedule.ID,
		schedule.DepartureDate,
		schedule.DepartureTime,
		schedule.ReturnDate,
		schedule.ReturnTime,
		schedule.Transportation,
		schedule.AvailableSeats,
		schedule.PriceOverride,
		schedule.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update schedule",
			zap.Error(err),
			zap.String("schedule_id", schedule.ID.String()),
		)
		return fmt.Errorf("update schedule %s: %w", schedule.ID.String(), err)
	}

	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM schedules WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete schedule",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
		)
		return fmt.Errorf("delete schedule %s: %w", id.String(), err)
	}

	return nil
}

// ReserveSeats decrements available_seats only when enough seats remain.
// Returns false when the guard fails, which the caller reports as
// insufficient inventory. The compare-and-swap removes the read-then-write
// race between concurrent reservations.
func (r *scheduleRepository) ReserveSeats(ctx context.Context, id uuid.UUID, seats int) (bool, error) {
	query := `
		UPDATE schedules
		SET available_seats = available_seats - $2, updated_at = $3
		WHERE id = $1 AND available_seats >= $2
	`

	tag, err := r.db.Exec(ctx, query, id, seats, time.Now())
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
			zap.Int("seats", seats),
		)
		return false, fmt.Errorf("reserve %d seats on schedule %s: %w", seats, id.String(), err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *scheduleRepository) RestoreSeats(ctx context.Context, id uuid.UUID, seats int) error {
	query := `
		UPDATE schedules
		SET available_seats = available_seats + $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id, seats, time.Now())
	if err != nil {
		r.log.Error("Failed to restore seats",
			zap.Error(err),
			zap.String("schedule_id", id.String()),
			zap.Int("seats", seats),
		)
		return fmt.Errorf("restore %d seats on schedule %s: %w", seats, id.String(), err)
	}

	return nil
}

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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context) (int64, error)

	// Business queries
	TransitionPayment(ctx context.Context, id uuid.UUID, to entity.PaymentStatus) (bool, error)
	UpdateTourStatus(ctx context.Context, id uuid.UUID, status entity.TourStatus) error
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error)
	HasPaidBooking(ctx context.Context, customerID, tourID uuid.UUID) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, tour_id, schedule_id, customer_id, customer_name,
	customer_email, customer_phone, adults, children, notes, payment_method,
	agreed_to_policy, tour_name, departure_date, departure_time, return_date,
	return_time, transportation, discount_code, total_price, tour_status,
	payment_status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.TourID,
		&booking.ScheduleID,
		&booking.CustomerID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.Adults,
		&booking.Children,
		&booking.Notes,
		&booking.PaymentMethod,
		&booking.AgreedToPolicy,
		&booking.TourName,
		&booking.DepartureDate,
		&booking.DepartureTime,
		&booking.ReturnDate,
		&booking.ReturnTime,
		&booking.Transportation,
		&booking.DiscountCode,
		&booking.TotalPrice,
		&booking.TourStatus,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, order_id, tour_id, schedule_id, customer_id, customer_name,
			customer_email, customer_phone, adults, children, notes, payment_method,
			agreed_to_policy, tour_name, departure_date, departure_time, return_date,
			return_time, transportation, discount_code, total_price, tour_status,
			payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.TourID,
		booking.ScheduleID,
		booking.CustomerID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.Adults,
		booking.Children,
		booking.Notes,
		booking.PaymentMethod,
		booking.AgreedToPolicy,
		booking.TourName,
		booking.DepartureDate,
		booking.DepartureTime,
		booking.ReturnDate,
		booking.ReturnTime,
		booking.Transportation,
		booking.DiscountCode,
		booking.TotalPrice,
		booking.TourStatus,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("tour_id", booking.TourID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by order ID",
			zap.Error(err),
			zap.String("order_id", orderID),
		)
		return nil, fmt.Errorf("find booking by order ID %s: %w", orderID, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return nil, fmt.Errorf("find bookings by customer ID %s: %w", customerID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows, r.log)
}

func (r *bookingRepository) CountByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE customer_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, customerID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by customer ID",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
		)
		return 0, fmt.Errorf("count bookings by customer ID %s: %w", customerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings", zap.Error(err))
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, r.log)
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

// TransitionPayment applies a payment status transition guarded by the
// state machine in entity: the row is updated only when the current
// payment_status is a valid predecessor of the target. The fulfillment
// status is forced in the same statement so the two fields cannot
// disagree. Returns false when the guard rejects the transition, which
// callers treat as a duplicate delivery no-op.
func (r *bookingRepository) TransitionPayment(ctx context.Context, id uuid.UUID, to entity.PaymentStatus) (bool, error) {
	preds := entity.PaymentPredecessors(to)
	if len(preds) == 0 {
		return false, fmt.Errorf("payment status %s is not a reachable target", to)
	}

	predStrs := make([]string, len(preds))
	for i, p := range preds {
		predStrs[i] = string(p)
	}

	var tourStatus *entity.TourStatus
	switch to {
	case entity.PaymentStatusCompleted:
		ts := entity.TourStatusPaid
		tourStatus = &ts
	case entity.PaymentStatusCancelled:
		ts := entity.TourStatusCancelled
		tourStatus = &ts
	}

	query := `
		UPDATE bookings
		SET payment_status = $2, tour_status = COALESCE($3, tour_status), updated_at = $4
		WHERE id = $1 AND payment_status = ANY($5)
	`

	tag, err := r.db.Exec(ctx, query, id, to, tourStatus, time.Now(), predStrs)
	if err != nil {
		r.log.Error("Failed to transition payment status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("transition booking %s payment to %s: %w", id.String(), to, err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *bookingRepository) UpdateTourStatus(ctx context.Context, id uuid.UUID, status entity.TourStatus) error {
	query := `UPDATE bookings SET tour_status = $2, updated_at = $3 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		r.log.Error("Failed to update tour status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update tour status of booking %s: %w", id.String(), err)
	}

	return nil
}

// FindExpiredPending returns bookings still awaiting payment that were
// created before cutoff. Used by the expiry sweep.
func (r *bookingRepository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE payment_status IN ('pending', 'processing') AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, cutoff, limit)
	if err != nil {
		r.log.Error("Failed to find expired pending bookings",
			zap.Error(err),
			zap.Time("cutoff", cutoff),
		)
		return nil, fmt.Errorf("find expired pending bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, r.log)
}

// HasPaidBooking reports whether the customer has a paid (or completed)
// booking for the tour. Gates review creation.
func (r *bookingRepository) HasPaidBooking(ctx context.Context, customerID, tourID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE customer_id = $1 AND tour_id = $2 AND payment_status = 'completed'
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, customerID, tourID).Scan(&exists); err != nil {
		r.log.Error("Failed to check paid booking",
			zap.Error(err),
			zap.String("customer_id", customerID.String()),
			zap.String("tour_id", tourID.String()),
		)
		return false, fmt.Errorf("check paid booking: %w", err)
	}

	return exists, nil
}

func collectBookings(rows pgx.Rows, log *zap.Logger) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, nil
}

package repository

import (
	"tour-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	OTP      OTPRepository
	Tour     TourRepository
	Schedule ScheduleRepository
	Booking  BookingRepository
	Review   ReviewRepository
	Discount DiscountRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Session:  NewSessionRepository(db, log),
		OTP:      NewOTPRepository(db, log),
		Tour:     NewTourRepository(db, log),
		Schedule: NewScheduleRepository(db, log),
		Booking:  NewBookingRepository(db, log),
		Review:   NewReviewRepository(db, log),
		Discount: NewDiscountRepository(db, log),
	}
}

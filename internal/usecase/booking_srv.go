package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking reserves seats, persists the booking and opens a payment
	// with the chosen gateway. customerID is nil for guest checkouts.
	CreateBooking(ctx context.Context, customerID *uuid.UUID, req *request.CreateBookingRequest) (*response.CheckoutResponse, error)
	GetBooking(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isAdmin bool) (*response.BookingResponse, error)
	LookupByOrder(ctx context.Context, orderID, email string) (*response.BookingResponse, error)
	MyBookings(ctx context.Context, customerID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	CancelBooking(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isAdmin bool) error

	// Admin methods
	ListBookings(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	MarkTourCompleted(ctx context.Context, id uuid.UUID) error
}

type bookingService struct {
	repo     *repository.Repository
	payments PaymentService
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, payments PaymentService, log *zap.Logger) BookingService {
	return &bookingService{
		repo:     repo,
		payments: payments,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, customerID *uuid.UUID, req *request.CreateBookingRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	tourID, err := uuid.Parse(req.TourID)
	if err != nil {
		return nil, fmt.Errorf("invalid tour id")
	}
	scheduleID, err := uuid.Parse(req.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule id")
	}

	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to load tour", zap.Error(err), zap.String("tour_id", req.TourID))
		return nil, fmt.Errorf("failed to create booking")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		s.log.Error("Failed to load schedule", zap.Error(err), zap.String("schedule_id", req.ScheduleID))
		return nil, fmt.Errorf("failed to create booking")
	}
	if schedule == nil || schedule.TourID != tourID {
		return nil, fmt.Errorf("schedule not found")
	}

	if !schedule.DepartureDate.After(time.Now()) {
		return nil, fmt.Errorf("cannot book a departed schedule")
	}

	seats := req.Adults + req.Children
	if seats < 1 {
		return nil, fmt.Errorf("at least one seat is required")
	}

	// Price: per-adult rate from the schedule, children at 80%, then the
	// discount percentage off the subtotal.
	pricePerAdult := tour.EffectivePrice(schedule)
	total := utils.CalculateBookingPrice(req.Adults, req.Children, pricePerAdult)

	var discountCode *string
	if req.DiscountCode != nil && *req.DiscountCode != "" {
		code := strings.ToUpper(strings.TrimSpace(*req.DiscountCode))
		discount, err := s.repo.Discount.FindActiveByCode(ctx, code, time.Now())
		if err != nil {
			s.log.Error("Failed to check discount", zap.Error(err), zap.String("code", code))
			return nil, fmt.Errorf("failed to create booking")
		}
		if discount == nil {
			return nil, fmt.Errorf("invalid or expired discount code")
		}
		total = utils.ApplyDiscount(total, discount.Percentage)
		discountCode = &code
	}

	// Claim inventory before writing the booking. The conditional update
	// refuses the claim when fewer than `seats` remain.
	reserved, err := s.repo.Schedule.ReserveSeats(ctx, scheduleID, seats)
	if err != nil {
		s.log.Error("Failed to reserve seats", zap.Error(err), zap.String("schedule_id", req.ScheduleID))
		return nil, fmt.Errorf("failed to create booking")
	}
	if !reserved {
		s.log.Info("Booking rejected, not enough seats",
			zap.String("schedule_id", req.ScheduleID),
			zap.Int("requested", seats))
		return nil, fmt.Errorf("not enough seats available")
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:        utils.GenerateOrderID(),
		TourID:         tourID,
		ScheduleID:     scheduleID,
		CustomerID:     customerID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Adults:         req.Adults,
		Children:       req.Children,
		Notes:          req.Notes,
		PaymentMethod:  entity.PaymentMethod(req.PaymentMethod),
		AgreedToPolicy: req.AgreedToPolicy,
		TourName:       tour.Name,
		DepartureDate:  schedule.DepartureDate,
		DepartureTime:  schedule.DepartureTime,
		ReturnDate:     schedule.ReturnDate,
		ReturnTime:     schedule.ReturnTime,
		Transportation: schedule.Transportation,
		DiscountCode:   discountCode,
		TotalPrice:     total,
		TourStatus:     entity.TourStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.log.Error("Failed to persist booking", zap.Error(err), zap.String("order_id", booking.OrderID))
		// Seats were already claimed, give them back
		if restoreErr := s.repo.Schedule.RestoreSeats(ctx, scheduleID, seats); restoreErr != nil {
			s.log.Error("Failed to restore seats after create failure",
				zap.Error(restoreErr), zap.String("schedule_id", req.ScheduleID))
		}
		return nil, fmt.Errorf("failed to create booking")
	}

	payURL, err := s.payments.OpenPayment(ctx, booking)
	if err != nil {
		s.log.Error("Failed to open payment, cancelling booking",
			zap.Error(err), zap.String("order_id", booking.OrderID))
		if cancelErr := s.payments.ReleaseBooking(ctx, booking.ID); cancelErr != nil {
			s.log.Error("Failed to release booking after gateway failure",
				zap.Error(cancelErr), zap.String("order_id", booking.OrderID))
		}
		return nil, fmt.Errorf("failed to initiate payment")
	}

	s.log.Info("Booking created",
		zap.String("order_id", booking.OrderID),
		zap.String("schedule_id", req.ScheduleID),
		zap.Int("seats", seats),
		zap.Float64("total", total))

	return &response.CheckoutResponse{
		Booking:    response.BookingToResponse(booking),
		PaymentURL: payURL,
	}, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isAdmin bool) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("failed to load booking")
	}
	if booking == nil {
		return nil, fmt.Errorf("booking not found")
	}

	if !isAdmin {
		if booking.CustomerID == nil || requesterID == nil || *booking.CustomerID != *requesterID {
			// Hide existence from non-owners
			return nil, fmt.Errorf("booking not found")
		}
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// LookupByOrder lets guests retrieve their booking with the order ID plus
// the email used at checkout.
func (s *bookingService) LookupByOrder(ctx context.Context, orderID, email string) (*response.BookingResponse, error) {
	if orderID == "" || email == "" {
		return nil, fmt.Errorf("validation failed: order id and email are required")
	}

	booking, err := s.repo.Booking.FindByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("order_id", orderID))
		return nil, fmt.Errorf("failed to load booking")
	}
	if booking == nil || !strings.EqualFold(booking.CustomerEmail, email) {
		return nil, fmt.Errorf("booking not found")
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) MyBookings(ctx context.Context, customerID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByCustomerID(ctx, customerID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, fmt.Errorf("failed to list bookings")
	}

	total, err := s.repo.Booking.CountByCustomerID(ctx, customerID)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, fmt.Errorf("failed to list bookings")
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), page.Page, page.Limit(), total), nil
}

// CancelBooking cancels an unpaid booking and releases its seats. The
// release only runs when the status transition actually applied, so a
// double cancel never restores seats twice.
func (s *bookingService) CancelBooking(ctx context.Context, id uuid.UUID, requesterID *uuid.UUID, isAdmin bool) error {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("failed to cancel booking")
	}
	if booking == nil {
		return fmt.Errorf("booking not found")
	}

	if !isAdmin {
		if booking.CustomerID == nil || requesterID == nil || *booking.CustomerID != *requesterID {
			return fmt.Errorf("booking not found")
		}
	}

	if booking.PaymentStatus == entity.PaymentStatusCompleted {
		return fmt.Errorf("cannot cancel a paid booking")
	}

	if err := s.payments.ReleaseBooking(ctx, id); err != nil {
		return err
	}

	s.log.Info("Booking cancelled",
		zap.String("order_id", booking.OrderID),
		zap.Bool("by_admin", isAdmin))

	return nil
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) ListBookings(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to list bookings")
	}

	total, err := s.repo.Booking.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("failed to list bookings")
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), page.Page, page.Limit(), total), nil
}

// MarkTourCompleted flags a paid booking's tour as fulfilled after the
// trip has taken place.
func (s *bookingService) MarkTourCompleted(ctx context.Context, id uuid.UUID) error {
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("failed to update booking")
	}
	if booking == nil {
		return fmt.Errorf("booking not found")
	}

	if booking.PaymentStatus != entity.PaymentStatusCompleted || booking.TourStatus != entity.TourStatusPaid {
		return fmt.Errorf("cannot complete an unpaid booking")
	}

	if err := s.repo.Booking.UpdateTourStatus(ctx, id, entity.TourStatusCompleted); err != nil {
		s.log.Error("Failed to update tour status", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("failed to update booking")
	}

	s.log.Info("Booking tour completed", zap.String("order_id", booking.OrderID))

	return nil
}

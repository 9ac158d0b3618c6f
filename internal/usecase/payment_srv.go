package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/internal/queue"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// ErrInvalidSignature marks a gateway callback whose signature did not
// verify. Handlers may refuse these with a 4xx; anything else that goes
// wrong after verification must still be acknowledged to the gateway.
var ErrInvalidSignature = errors.New("invalid callback signature")

// PaymentService bridges gateway callbacks onto the booking state
// machine. All transitions go through BookingRepository.TransitionPayment,
// which applies them at most once; duplicate webhook deliveries and racing
// sweeps fall out as no-ops.
type PaymentService interface {
	// OpenPayment starts a gateway payment for a fresh booking and moves it
	// to processing. Returns the URL the customer pays at.
	OpenPayment(ctx context.Context, booking *entity.Booking) (string, error)

	// ReleaseBooking cancels the payment and, when the transition applied,
	// returns the booking's seats to its schedule. Safe to call repeatedly.
	ReleaseBooking(ctx context.Context, bookingID uuid.UUID) error

	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	HandleMoMoIPN(ctx context.Context, callback gateway.MoMoIPNRequest) error

	// Admin override for gateway outages and offline payments.
	UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error

	// StartExpirySweeper cancels bookings that out-waited the payment
	// window. Runs until ctx is cancelled.
	StartExpirySweeper(ctx context.Context)
}

type paymentService struct {
	repo      *repository.Repository
	config    *utils.Config
	stripe    gateway.StripeGateway
	momo      gateway.MoMoGateway
	publisher queue.Publisher
	log       *zap.Logger
}

func NewPaymentService(
	repo *repository.Repository,
	config *utils.Config,
	stripeGw gateway.StripeGateway,
	momoGw gateway.MoMoGateway,
	publisher queue.Publisher,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		repo:      repo,
		config:    config,
		stripe:    stripeGw,
		momo:      momoGw,
		publisher: publisher,
		log:       log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) OpenPayment(ctx context.Context, booking *entity.Booking) (string, error) {
	var payURL string
	var err error

	switch booking.PaymentMethod {
	case entity.PaymentMethodStripe:
		_, payURL, err = s.stripe.CreateCheckoutSession(booking.OrderID, booking.TourName, booking.TotalPrice)
	case entity.PaymentMethodMoMo:
		redirectURL := s.config.App.ClientURL + "/booking/success?order_id=" + booking.OrderID
		payURL, err = s.momo.CreatePayment(ctx, booking.OrderID,
			fmt.Sprintf("Tour booking %s", booking.OrderID),
			int64(booking.TotalPrice), redirectURL)
	default:
		return "", fmt.Errorf("unsupported payment method %q", booking.PaymentMethod)
	}

	if err != nil {
		return "", fmt.Errorf("open %s payment: %w", booking.PaymentMethod, err)
	}

	applied, err := s.repo.Booking.TransitionPayment(ctx, booking.ID, entity.PaymentStatusProcessing)
	if err != nil {
		s.log.Error("Failed to mark payment processing",
			zap.Error(err), zap.String("order_id", booking.OrderID))
		return "", fmt.Errorf("update payment status: %w", err)
	}
	if applied {
		booking.PaymentStatus = entity.PaymentStatusProcessing
	}

	return payURL, nil
}

func (s *paymentService) ReleaseBooking(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return fmt.Errorf("failed to release booking")
	}
	if booking == nil {
		return fmt.Errorf("booking not found")
	}

	applied, err := s.repo.Booking.TransitionPayment(ctx, bookingID, entity.PaymentStatusCancelled)
	if err != nil {
		s.log.Error("Failed to cancel payment", zap.Error(err), zap.String("order_id", booking.OrderID))
		return fmt.Errorf("failed to release booking")
	}

	// Seats go back only on the delivery that actually cancelled; a repeat
	// call finds the transition already applied and restores nothing.
	if applied {
		if err := s.repo.Schedule.RestoreSeats(ctx, booking.ScheduleID, booking.Seats()); err != nil {
			s.log.Error("Failed to restore seats",
				zap.Error(err),
				zap.String("order_id", booking.OrderID),
				zap.String("schedule_id", booking.ScheduleID.String()))
			return fmt.Errorf("failed to restore seats")
		}

		s.log.Info("Booking released",
			zap.String("order_id", booking.OrderID),
			zap.Int("seats", booking.Seats()))
	}

	return nil
}

// ==================== GATEWAY CALLBACKS ====================

func (s *paymentService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripe.VerifyWebhook(payload, signature)
	if err != nil {
		s.log.Warn("Rejected stripe webhook", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.log.Error("Failed to decode checkout session", zap.Error(err))
			return fmt.Errorf("decode checkout session: %w", err)
		}

		orderID := sess.ClientReferenceID
		if orderID == "" {
			orderID = sess.Metadata["order_id"]
		}

		return s.settleByOrder(ctx, orderID, true)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			s.log.Error("Failed to decode checkout session", zap.Error(err))
			return fmt.Errorf("decode checkout session: %w", err)
		}

		orderID := sess.ClientReferenceID
		if orderID == "" {
			orderID = sess.Metadata["order_id"]
		}

		return s.settleByOrder(ctx, orderID, false)

	default:
		s.log.Debug("Ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *paymentService) HandleMoMoIPN(ctx context.Context, callback gateway.MoMoIPNRequest) error {
	if !s.momo.VerifyIPNSignature(callback) {
		s.log.Warn("Rejected momo callback, bad signature",
			zap.String("order_id", callback.OrderID))
		return ErrInvalidSignature
	}

	return s.settleByOrder(ctx, callback.OrderID, callback.ResultCode == 0)
}

// settleByOrder applies the gateway verdict to the booking.
func (s *paymentService) settleByOrder(ctx context.Context, orderID string, success bool) error {
	if orderID == "" {
		return fmt.Errorf("callback missing order id")
	}

	booking, err := s.repo.Booking.FindByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("Failed to find booking for callback",
			zap.Error(err), zap.String("order_id", orderID))
		return fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		s.log.Warn("Callback for unknown order", zap.String("order_id", orderID))
		return fmt.Errorf("unknown order %s", orderID)
	}

	if !success {
		return s.ReleaseBooking(ctx, booking.ID)
	}

	return s.completePayment(ctx, booking)
}

// completePayment moves the booking to completed/paid and publishes the
// confirmation event. The event fires only when the transition applied,
// which keeps the confirmation email exactly-once per booking.
func (s *paymentService) completePayment(ctx context.Context, booking *entity.Booking) error {
	applied, err := s.repo.Booking.TransitionPayment(ctx, booking.ID, entity.PaymentStatusCompleted)
	if err != nil {
		s.log.Error("Failed to complete payment",
			zap.Error(err), zap.String("order_id", booking.OrderID))
		return fmt.Errorf("complete payment: %w", err)
	}

	if !applied {
		s.log.Info("Duplicate completion ignored", zap.String("order_id", booking.OrderID))
		return nil
	}

	s.log.Info("Payment completed",
		zap.String("order_id", booking.OrderID),
		zap.Float64("amount", booking.TotalPrice))

	event := queue.BookingConfirmedEvent{
		BookingID:     booking.ID.String(),
		OrderID:       booking.OrderID,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		TourName:      booking.TourName,
		DepartureDate: booking.DepartureDate.Format("2006-01-02"),
		TotalPrice:    booking.TotalPrice,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	// Broker trouble must not fail the webhook; the payment is already
	// settled and the gateway would retry forever.
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.log.Error("Failed to publish confirmation event",
			zap.Error(err), zap.String("order_id", booking.OrderID))
	}

	return nil
}

// ==================== ADMIN METHODS ====================

func (s *paymentService) UpdatePaymentStatus(ctx context.Context, bookingID uuid.UUID, status entity.PaymentStatus) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return fmt.Errorf("failed to update payment status")
	}
	if booking == nil {
		return fmt.Errorf("booking not found")
	}

	if !entity.CanTransitionPayment(booking.PaymentStatus, status) {
		return fmt.Errorf("cannot change payment status from %s to %s", booking.PaymentStatus, status)
	}

	switch status {
	case entity.PaymentStatusCancelled:
		return s.ReleaseBooking(ctx, bookingID)
	case entity.PaymentStatusCompleted:
		return s.completePayment(ctx, booking)
	default:
		applied, err := s.repo.Booking.TransitionPayment(ctx, bookingID, status)
		if err != nil {
			s.log.Error("Failed to update payment status",
				zap.Error(err), zap.String("order_id", booking.OrderID))
			return fmt.Errorf("failed to update payment status")
		}
		if !applied {
			return fmt.Errorf("cannot change payment status from %s to %s", booking.PaymentStatus, status)
		}

		s.log.Info("Payment status updated",
			zap.String("order_id", booking.OrderID),
			zap.String("status", string(status)))

		return nil
	}
}

// ==================== EXPIRY SWEEP ====================

const sweepBatchSize = 100

func (s *paymentService) StartExpirySweeper(ctx context.Context) {
	interval := time.Duration(s.config.Booking.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("Expiry sweeper started",
		zap.Duration("interval", interval),
		zap.Int("window_minutes", s.config.Booking.PaymentWindowMinutes))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweepExpired(ctx)
		}
	}
}

func (s *paymentService) sweepExpired(ctx context.Context) {
	cutoff := time.Now().Add(-time.Duration(s.config.Booking.PaymentWindowMinutes) * time.Minute)

	expired, err := s.repo.Booking.FindExpiredPending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.log.Error("Expiry sweep query failed", zap.Error(err))
		return
	}

	for _, booking := range expired {
		// ReleaseBooking is transition-guarded, so a webhook landing
		// between the query and this call wins and the sweep skips it.
		if err := s.ReleaseBooking(ctx, booking.ID); err != nil {
			s.log.Error("Failed to expire booking",
				zap.Error(err), zap.String("order_id", booking.OrderID))
			continue
		}

		s.log.Info("Unpaid booking expired",
			zap.String("order_id", booking.OrderID),
			zap.Time("created_at", booking.CreatedAt))
	}
}

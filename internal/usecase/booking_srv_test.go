package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	store     *fakeStore
	booking   BookingService
	payment   PaymentService
	stripe    *fakeStripeGateway
	momo      *fakeMoMoGateway
	publisher *fakePublisher
	tour      *entity.Tour
	schedule  *entity.Schedule
}

func newTestEnv(t *testing.T, seats int) *testEnv {
	t.Helper()

	store := newFakeStore()
	repo := store.repo()

	now := time.Now()
	tour := &entity.Tour{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:        "Ha Long Bay Cruise",
		Description: "Three days on the bay",
		Price:       100,
		Duration:    "3 days 2 nights",
		Destination: "Ha Long",
	}
	schedule := &entity.Schedule{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TourID:         tour.ID,
		DepartureDate:  now.AddDate(0, 1, 0),
		DepartureTime:  "08:00",
		ReturnDate:     now.AddDate(0, 1, 3),
		ReturnTime:     "18:00",
		Transportation: "Bus",
		AvailableSeats: seats,
	}
	store.tours[tour.ID] = tour
	store.schedules[schedule.ID] = schedule

	config := &utils.Config{}
	config.App.ClientURL = "http://localhost:3000"
	config.Booking.PaymentWindowMinutes = 30
	config.Booking.SweepIntervalMinutes = 5

	stripeGw := &fakeStripeGateway{}
	momoGw := &fakeMoMoGateway{}
	publisher := &fakePublisher{}

	payment := NewPaymentService(repo, config, stripeGw, momoGw, publisher, zap.NewNop())
	booking := NewBookingService(repo, payment, zap.NewNop())

	return &testEnv{
		store:     store,
		booking:   booking,
		payment:   payment,
		stripe:    stripeGw,
		momo:      momoGw,
		publisher: publisher,
		tour:      tour,
		schedule:  schedule,
	}
}

func (e *testEnv) createRequest() *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		TourID:         e.tour.ID.String(),
		ScheduleID:     e.schedule.ID.String(),
		CustomerName:   "Linh Tran",
		CustomerEmail:  "linh@example.com",
		CustomerPhone:  "0912345678",
		Adults:         2,
		Children:       1,
		PaymentMethod:  "stripe",
		AgreedToPolicy: true,
	}
}

func (e *testEnv) seatsLeft() int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.schedules[e.schedule.ID].AvailableSeats
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves seats and opens payment", func(t *testing.T) {
		env := newTestEnv(t, 10)

		checkout, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.NoError(t, err)

		// 2 adults at 100 + 1 child at 80
		assert.Equal(t, 280.0, checkout.Booking.TotalPrice)
		assert.Equal(t, entity.PaymentStatusProcessing, checkout.Booking.PaymentStatus)
		assert.Equal(t, entity.TourStatusPending, checkout.Booking.TourStatus)
		assert.Contains(t, checkout.PaymentURL, checkout.Booking.OrderID)
		assert.Equal(t, 7, env.seatsLeft())
	})

	t.Run("applies discount percentage", func(t *testing.T) {
		env := newTestEnv(t, 10)
		now := time.Now()
		env.store.discounts["SUMMER10"] = &entity.Discount{
			Base:       entity.Base{ID: uuid.New()},
			Code:       "SUMMER10",
			Percentage: 10,
			ValidFrom:  now.AddDate(0, 0, -1),
			ValidUntil: now.AddDate(0, 0, 1),
			IsActive:   true,
		}

		req := env.createRequest()
		code := "summer10"
		req.DiscountCode = &code

		checkout, err := env.booking.CreateBooking(ctx, nil, req)
		require.NoError(t, err)
		assert.InDelta(t, 252.0, checkout.Booking.TotalPrice, 0.001)
		require.NotNil(t, checkout.Booking.DiscountCode)
		assert.Equal(t, "SUMMER10", *checkout.Booking.DiscountCode)
	})

	t.Run("rejects expired discount", func(t *testing.T) {
		env := newTestEnv(t, 10)
		now := time.Now()
		env.store.discounts["OLD"] = &entity.Discount{
			Code:       "OLD",
			Percentage: 50,
			ValidFrom:  now.AddDate(0, -2, 0),
			ValidUntil: now.AddDate(0, -1, 0),
			IsActive:   true,
		}

		req := env.createRequest()
		code := "OLD"
		req.DiscountCode = &code

		_, err := env.booking.CreateBooking(ctx, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "discount")
		// Nothing reserved on rejection
		assert.Equal(t, 10, env.seatsLeft())
	})

	t.Run("rejects when not enough seats", func(t *testing.T) {
		env := newTestEnv(t, 2)

		_, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not enough seats")
		assert.Equal(t, 2, env.seatsLeft())
	})

	t.Run("releases seats when gateway fails", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.stripe.fail = true

		_, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.Error(t, err)
		assert.Equal(t, 10, env.seatsLeft())
	})

	t.Run("rejects departed schedule", func(t *testing.T) {
		env := newTestEnv(t, 10)
		env.schedule.DepartureDate = time.Now().AddDate(0, 0, -1)

		_, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "departed")
	})

	t.Run("rejects without policy agreement", func(t *testing.T) {
		env := newTestEnv(t, 10)
		req := env.createRequest()
		req.AgreedToPolicy = false

		_, err := env.booking.CreateBooking(ctx, nil, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

// Concurrent checkouts against a small schedule must never oversell:
// exactly floor(capacity/seats) bookings win, the rest are turned away,
// and the counter never goes negative.
func TestCreateBookingConcurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 9) // room for exactly 3 bookings of 3 seats

	const attempts = 20

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, env.seatsLeft())
}

func TestCreateBookingConcurrentSingleSeat(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 5)

	const attempts = 8

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := env.createRequest()
			req.Adults = 1
			req.Children = 0
			_, err := env.booking.CreateBooking(ctx, nil, req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, env.seatsLeft())
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel restores seats exactly once", func(t *testing.T) {
		env := newTestEnv(t, 10)

		checkout, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.NoError(t, err)
		require.Equal(t, 7, env.seatsLeft())

		bookingID := uuid.MustParse(checkout.Booking.ID)

		require.NoError(t, env.booking.CancelBooking(ctx, bookingID, nil, true))
		assert.Equal(t, 10, env.seatsLeft())

		// Second cancel is a no-op, seats stay put
		require.NoError(t, env.booking.CancelBooking(ctx, bookingID, nil, true))
		assert.Equal(t, 10, env.seatsLeft())
	})

	t.Run("cannot cancel a paid booking", func(t *testing.T) {
		env := newTestEnv(t, 10)

		checkout, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
		require.NoError(t, err)

		bookingID := uuid.MustParse(checkout.Booking.ID)
		require.NoError(t, env.payment.UpdatePaymentStatus(ctx, bookingID, entity.PaymentStatusCompleted))

		err = env.booking.CancelBooking(ctx, bookingID, nil, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot cancel")
		assert.Equal(t, 7, env.seatsLeft())
	})

	t.Run("customer cannot cancel someone else's booking", func(t *testing.T) {
		env := newTestEnv(t, 10)

		owner := uuid.New()
		checkout, err := env.booking.CreateBooking(ctx, &owner, env.createRequest())
		require.NoError(t, err)

		stranger := uuid.New()
		bookingID := uuid.MustParse(checkout.Booking.ID)

		err = env.booking.CancelBooking(ctx, bookingID, &stranger, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Equal(t, 7, env.seatsLeft())
	})
}

func TestGuestLookup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)

	checkout, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
	require.NoError(t, err)

	found, err := env.booking.LookupByOrder(ctx, checkout.Booking.OrderID, "LINH@example.com")
	require.NoError(t, err)
	assert.Equal(t, checkout.Booking.ID, found.ID)

	_, err = env.booking.LookupByOrder(ctx, checkout.Booking.OrderID, "someone-else@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMarkTourCompleted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)

	checkout, err := env.booking.CreateBooking(ctx, nil, env.createRequest())
	require.NoError(t, err)
	bookingID := uuid.MustParse(checkout.Booking.ID)

	// Unpaid bookings cannot be completed
	err = env.booking.MarkTourCompleted(ctx, bookingID)
	require.Error(t, err)

	require.NoError(t, env.payment.UpdatePaymentStatus(ctx, bookingID, entity.PaymentStatusCompleted))
	require.NoError(t, env.booking.MarkTourCompleted(ctx, bookingID))

	booking, err := env.booking.GetBooking(ctx, bookingID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, entity.TourStatusCompleted, booking.TourStatus)
	assert.Equal(t, entity.PaymentStatusCompleted, booking.PaymentStatus)
}

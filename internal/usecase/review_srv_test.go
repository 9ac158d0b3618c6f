package usecase

import (
	"context"
	"testing"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strptr(s string) *string { return &s }

func seedPaidCustomer(env *testEnv, t *testing.T) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	env.store.mu.Lock()
	env.store.users[userID] = &entity.User{
		Base:     entity.Base{ID: userID},
		Username: "linhtran",
		Email:    "linh@example.com",
		Role:     entity.RoleCustomer,
		IsActive: true,
	}
	env.store.mu.Unlock()

	checkout, err := env.booking.CreateBooking(context.Background(), &userID, env.createRequest())
	require.NoError(t, err)
	require.NoError(t, env.payment.UpdatePaymentStatus(context.Background(),
		uuid.MustParse(checkout.Booking.ID), entity.PaymentStatusCompleted))

	return userID
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("paying customer can review once", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews := NewReviewService(env.store.repo(), zap.NewNop())
		userID := seedPaidCustomer(env, t)

		created, err := reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  5,
			Comment: strptr("Unforgettable trip"),
		})
		require.NoError(t, err)
		assert.Equal(t, 5, created.Rating)
		assert.Equal(t, "linhtran", created.Username)

		// Aggregate refreshed on the tour
		env.store.mu.Lock()
		assert.Equal(t, 5.0, env.store.tours[env.tour.ID].RatingAverage)
		assert.Equal(t, 1, env.store.tours[env.tour.ID].RatingCount)
		env.store.mu.Unlock()

		_, err = reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  1,
			Comment: strptr("Changed my mind"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already reviewed")
	})

	t.Run("rejected without a paid booking", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews := NewReviewService(env.store.repo(), zap.NewNop())

		userID := uuid.New()
		env.store.mu.Lock()
		env.store.users[userID] = &entity.User{
			Base:     entity.Base{ID: userID},
			Username: "window-shopper",
			IsActive: true,
		}
		env.store.mu.Unlock()

		_, err := reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  4,
			Comment: strptr("Looks nice"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "have not booked")
	})

	t.Run("pending payment is not enough", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews := NewReviewService(env.store.repo(), zap.NewNop())

		userID := uuid.New()
		env.store.mu.Lock()
		env.store.users[userID] = &entity.User{Base: entity.Base{ID: userID}, IsActive: true}
		env.store.mu.Unlock()

		_, err := env.booking.CreateBooking(ctx, &userID, env.createRequest())
		require.NoError(t, err)

		_, err = reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  5,
			Comment: strptr("Paying later, promise"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "have not booked")
	})

	t.Run("rating out of range fails validation", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews := NewReviewService(env.store.repo(), zap.NewNop())
		userID := seedPaidCustomer(env, t)

		_, err := reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  6,
			Comment: strptr("Off the scale"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("unknown tour", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews := NewReviewService(env.store.repo(), zap.NewNop())
		userID := seedPaidCustomer(env, t)

		_, err := reviews.CreateReview(ctx, userID, uuid.New(), &request.CreateReviewRequest{
			Rating:  3,
			Comment: strptr("Which tour was this again"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tour not found")
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	newReview := func(env *testEnv, t *testing.T) (ReviewService, uuid.UUID, uuid.UUID) {
		t.Helper()
		reviews := NewReviewService(env.store.repo(), zap.NewNop())
		userID := seedPaidCustomer(env, t)
		created, err := reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
			Rating:  4,
			Comment: strptr("Solid"),
		})
		require.NoError(t, err)
		return reviews, userID, uuid.MustParse(created.ID)
	}

	t.Run("owner can delete and the aggregate resets", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews, userID, reviewID := newReview(env, t)

		require.NoError(t, reviews.DeleteReview(ctx, reviewID, userID, false))

		env.store.mu.Lock()
		assert.Equal(t, 0.0, env.store.tours[env.tour.ID].RatingAverage)
		assert.Equal(t, 0, env.store.tours[env.tour.ID].RatingCount)
		env.store.mu.Unlock()
	})

	t.Run("admin can delete anyone's review", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews, _, reviewID := newReview(env, t)

		require.NoError(t, reviews.DeleteReview(ctx, reviewID, uuid.New(), true))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		env := newTestEnv(t, 10)
		reviews, _, reviewID := newReview(env, t)

		err := reviews.DeleteReview(ctx, reviewID, uuid.New(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestListReviewsByTour(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 10)
	reviews := NewReviewService(env.store.repo(), zap.NewNop())
	userID := seedPaidCustomer(env, t)

	_, err := reviews.CreateReview(ctx, userID, env.tour.ID, &request.CreateReviewRequest{
		Rating:  5,
		Comment: strptr("Would go again"),
	})
	require.NoError(t, err)

	page, err := reviews.ListByTour(ctx, env.tour.ID, &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "linhtran", page.Data[0].Username)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.WithinDuration(t, time.Now(), page.Data[0].CreatedAt, time.Minute)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID, tourID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	ListByTour(ctx context.Context, tourID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	DeleteReview(ctx context.Context, reviewID, requesterID uuid.UUID, isAdmin bool) error
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, userID, tourID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to create review")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	// Only paying customers review
	hasBooking, err := s.repo.Booking.HasPaidBooking(ctx, userID, tourID)
	if err != nil {
		s.log.Error("Failed to check bookings", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create review")
	}
	if !hasBooking {
		return nil, fmt.Errorf("cannot review a tour you have not booked")
	}

	existing, err := s.repo.Review.FindByUserAndTour(ctx, userID, tourID)
	if err != nil {
		s.log.Error("Failed to check existing review", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to create review")
	}
	if existing != nil {
		return nil, fmt.Errorf("you have already reviewed this tour")
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:  userID,
		TourID:  tourID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to create review")
	}

	s.refreshTourRating(ctx, tourID)

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("tour_id", tourID.String()),
		zap.Int("rating", req.Rating))

	username := ""
	if user, err := s.repo.User.FindByID(ctx, userID); err == nil && user != nil {
		username = user.Username
	}

	resp := response.ReviewToResponse(review, username)
	return &resp, nil
}

func (s *reviewService) ListByTour(ctx context.Context, tourID uuid.UUID, page *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	reviews, err := s.repo.Review.FindByTourID(ctx, tourID, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list reviews", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to list reviews")
	}

	total, err := s.repo.Review.CountByTourID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to count reviews", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to list reviews")
	}

	data := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		username := ""
		if user, err := s.repo.User.FindByID(ctx, review.UserID); err == nil && user != nil {
			username = user.Username
		}
		data = append(data, response.ReviewToResponse(review, username))
	}

	return response.NewPaginatedResponse(data, page.Page, page.Limit(), total), nil
}

func (s *reviewService) DeleteReview(ctx context.Context, reviewID, requesterID uuid.UUID, isAdmin bool) error {
	review, err := s.repo.Review.FindByID(ctx, reviewID)
	if err != nil {
		s.log.Error("Failed to find review", zap.Error(err), zap.String("review_id", reviewID.String()))
		return fmt.Errorf("failed to delete review")
	}
	if review == nil {
		return fmt.Errorf("review not found")
	}

	if !isAdmin && review.UserID != requesterID {
		return fmt.Errorf("review not found")
	}

	if err := s.repo.Review.Delete(ctx, reviewID); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID.String()))
		return fmt.Errorf("failed to delete review")
	}

	s.refreshTourRating(ctx, review.TourID)

	s.log.Info("Review deleted", zap.String("review_id", reviewID.String()))

	return nil
}

// refreshTourRating recomputes the tour's denormalized rating aggregate.
// Failures only leave the aggregate stale; the next write fixes it.
func (s *reviewService) refreshTourRating(ctx context.Context, tourID uuid.UUID) {
	average, count, err := s.repo.Review.GetTourReviewStats(ctx, tourID)
	if err != nil {
		s.log.Warn("Failed to compute review stats", zap.Error(err), zap.String("tour_id", tourID.String()))
		return
	}

	if err := s.repo.Tour.UpdateRatingStats(ctx, tourID, average, count); err != nil {
		s.log.Warn("Failed to update rating stats", zap.Error(err), zap.String("tour_id", tourID.String()))
	}
}

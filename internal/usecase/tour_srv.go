package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/request"
	"tour-booking/internal/dto/response"
	"tour-booking/pkg/cache"
	"tour-booking/pkg/imagestore"
	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TourService interface {
	ListTours(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.TourResponse], error)
	FeaturedTours(ctx context.Context, limit int) ([]response.TourResponse, error)
	GetTour(ctx context.Context, id uuid.UUID) (*response.TourResponse, error)
	GetSchedules(ctx context.Context, tourID uuid.UUID) ([]response.ScheduleResponse, error)

	// Admin methods
	CreateTour(ctx context.Context, req *request.TourRequest) (*response.TourResponse, error)
	UpdateTour(ctx context.Context, id uuid.UUID, req *request.TourUpdateRequest) (*response.TourResponse, error)
	DeleteTour(ctx context.Context, id uuid.UUID) error
	UploadTourImage(ctx context.Context, id uuid.UUID, file io.Reader, filename string) (string, error)
	CreateSchedule(ctx context.Context, tourID uuid.UUID, req *request.ScheduleRequest) (*response.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, scheduleID uuid.UUID, req *request.ScheduleUpdateRequest) (*response.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error
	DeductSeats(ctx context.Context, scheduleID uuid.UUID, req *request.DeductSeatsRequest) (*response.ScheduleResponse, error)
}

type tourService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	images *imagestore.Store
	log    *zap.Logger
}

func NewTourService(repo *repository.Repository, c *cache.Cache, images *imagestore.Store, log *zap.Logger) TourService {
	return &tourService{
		repo:   repo,
		cache:  c,
		images: images,
		log:    log.With(zap.String("service", "tour")),
	}
}

const dateLayout = "2006-01-02"

func (s *tourService) ListTours(ctx context.Context, page *request.PaginatedRequest) (*response.PaginatedResponse[response.TourResponse], error) {
	cacheKey := fmt.Sprintf("tours:list:%d:%d", page.Page, page.Limit())

	var cached response.PaginatedResponse[response.TourResponse]
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	tours, err := s.repo.Tour.FindAll(ctx, page.Offset(), page.Limit())
	if err != nil {
		s.log.Error("Failed to list tours", zap.Error(err))
		return nil, fmt.Errorf("failed to list tours")
	}

	total, err := s.repo.Tour.CountAll(ctx)
	if err != nil {
		s.log.Error("Failed to count tours", zap.Error(err))
		return nil, fmt.Errorf("failed to list tours")
	}

	data := make([]response.TourResponse, 0, len(tours))
	for _, t := range tours {
		data = append(data, response.TourToResponse(t, nil))
	}

	result := response.NewPaginatedResponse(data, page.Page, page.Limit(), total)
	s.cache.SetJSON(ctx, cacheKey, result)

	return result, nil
}

func (s *tourService) FeaturedTours(ctx context.Context, limit int) ([]response.TourResponse, error) {
	if limit < 1 || limit > 20 {
		limit = 8
	}

	cacheKey := fmt.Sprintf("tours:featured:%d", limit)

	var cached []response.TourResponse
	if s.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	tours, err := s.repo.Tour.FindFeatured(ctx, limit)
	if err != nil {
		s.log.Error("Failed to list featured tours", zap.Error(err))
		return nil, fmt.Errorf("failed to list featured tours")
	}

	data := make([]response.TourResponse, 0, len(tours))
	for _, t := range tours {
		data = append(data, response.TourToResponse(t, nil))
	}

	s.cache.SetJSON(ctx, cacheKey, data)

	return data, nil
}

func (s *tourService) GetTour(ctx context.Context, id uuid.UUID) (*response.TourResponse, error) {
	tour, err := s.repo.Tour.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", id.String()))
		return nil, fmt.Errorf("failed to load tour")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	schedules, err := s.repo.Schedule.FindByTourID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load schedules", zap.Error(err), zap.String("tour_id", id.String()))
		return nil, fmt.Errorf("failed to load tour")
	}

	resp := response.TourToResponse(tour, schedules)
	return &resp, nil
}

func (s *tourService) GetSchedules(ctx context.Context, tourID uuid.UUID) ([]response.ScheduleResponse, error) {
	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to load schedules")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	schedules, err := s.repo.Schedule.FindByTourID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to load schedules", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to load schedules")
	}

	data := make([]response.ScheduleResponse, 0, len(schedules))
	for _, sch := range schedules {
		data = append(data, response.ScheduleToResponse(tour, sch))
	}

	return data, nil
}

// ==================== ADMIN METHODS ====================

func (s *tourService) CreateTour(ctx context.Context, req *request.TourRequest) (*response.TourResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	tour := &entity.Tour{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Images:            []string{},
		Duration:          req.Duration,
		Destination:       req.Destination,
		DepartureLocation: req.DepartureLocation,
		Featured:          req.Featured,
	}

	if err := s.repo.Tour.Create(ctx, tour); err != nil {
		s.log.Error("Failed to create tour", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("failed to create tour")
	}

	s.invalidateTourCache(ctx)

	s.log.Info("Tour created",
		zap.String("tour_id", tour.ID.String()),
		zap.String("name", tour.Name))

	resp := response.TourToResponse(tour, nil)
	return &resp, nil
}

func (s *tourService) UpdateTour(ctx context.Context, id uuid.UUID, req *request.TourUpdateRequest) (*response.TourResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	tour, err := s.repo.Tour.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", id.String()))
		return nil, fmt.Errorf("failed to update tour")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	if req.Name != nil {
		tour.Name = *req.Name
	}
	if req.Description != nil {
		tour.Description = *req.Description
	}
	if req.Price != nil {
		tour.Price = *req.Price
	}
	if req.Duration != nil {
		tour.Duration = *req.Duration
	}
	if req.Destination != nil {
		tour.Destination = *req.Destination
	}
	if req.DepartureLocation != nil {
		tour.DepartureLocation = *req.DepartureLocation
	}
	if req.Featured != nil {
		tour.Featured = *req.Featured
	}
	tour.UpdatedAt = time.Now()

	if err := s.repo.Tour.Update(ctx, tour); err != nil {
		s.log.Error("Failed to update tour", zap.Error(err), zap.String("tour_id", id.String()))
		return nil, fmt.Errorf("failed to update tour")
	}

	s.invalidateTourCache(ctx)

	s.log.Info("Tour updated", zap.String("tour_id", id.String()))

	resp := response.TourToResponse(tour, nil)
	return &resp, nil
}

func (s *tourService) DeleteTour(ctx context.Context, id uuid.UUID) error {
	tour, err := s.repo.Tour.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", id.String()))
		return fmt.Errorf("failed to delete tour")
	}
	if tour == nil {
		return fmt.Errorf("tour not found")
	}

	if err := s.repo.Tour.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete tour", zap.Error(err), zap.String("tour_id", id.String()))
		return fmt.Errorf("failed to delete tour")
	}

	s.invalidateTourCache(ctx)

	s.log.Info("Tour deleted", zap.String("tour_id", id.String()))

	return nil
}

func (s *tourService) UploadTourImage(ctx context.Context, id uuid.UUID, file io.Reader, filename string) (string, error) {
	tour, err := s.repo.Tour.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", id.String()))
		return "", fmt.Errorf("failed to upload image")
	}
	if tour == nil {
		return "", fmt.Errorf("tour not found")
	}

	url, err := s.images.Save(file, filename)
	if err != nil {
		s.log.Error("Failed to store image", zap.Error(err), zap.String("tour_id", id.String()))
		return "", fmt.Errorf("invalid image file")
	}

	if err := s.repo.Tour.AddImage(ctx, id, url); err != nil {
		s.log.Error("Failed to attach image", zap.Error(err), zap.String("tour_id", id.String()))
		return "", fmt.Errorf("failed to upload image")
	}

	s.invalidateTourCache(ctx)

	s.log.Info("Tour image uploaded",
		zap.String("tour_id", id.String()),
		zap.String("url", url))

	return url, nil
}

func (s *tourService) CreateSchedule(ctx context.Context, tourID uuid.UUID, req *request.ScheduleRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		s.log.Error("Failed to find tour", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to create schedule")
	}
	if tour == nil {
		return nil, fmt.Errorf("tour not found")
	}

	departureDate, _ := time.Parse(dateLayout, req.DepartureDate)
	returnDate, _ := time.Parse(dateLayout, req.ReturnDate)
	if returnDate.Before(departureDate) {
		return nil, fmt.Errorf("return date cannot be before departure date")
	}

	now := time.Now()
	schedule := &entity.Schedule{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TourID:         tourID,
		DepartureDate:  departureDate,
		DepartureTime:  req.DepartureTime,
		ReturnDate:     returnDate,
		ReturnTime:     req.ReturnTime,
		Transportation: req.Transportation,
		AvailableSeats: req.AvailableSeats,
		PriceOverride:  req.PriceOverride,
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.log.Error("Failed to create schedule", zap.Error(err), zap.String("tour_id", tourID.String()))
		return nil, fmt.Errorf("failed to create schedule")
	}

	s.log.Info("Schedule created",
		zap.String("schedule_id", schedule.ID.String()),
		zap.String("tour_id", tourID.String()))

	resp := response.ScheduleToResponse(tour, schedule)
	return &resp, nil
}

func (s *tourService) UpdateSchedule(ctx context.Context, scheduleID uuid.UUID, req *request.ScheduleUpdateRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		s.log.Error("Failed to find schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return nil, fmt.Errorf("failed to update schedule")
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule not found")
	}

	if req.DepartureDate != nil {
		schedule.DepartureDate, _ = time.Parse(dateLayout, *req.DepartureDate)
	}
	if req.DepartureTime != nil {
		schedule.DepartureTime = *req.DepartureTime
	}
	if req.ReturnDate != nil {
		schedule.ReturnDate, _ = time.Parse(dateLayout, *req.ReturnDate)
	}
	if req.ReturnTime != nil {
		schedule.ReturnTime = *req.ReturnTime
	}
	if req.Transportation != nil {
		schedule.Transportation = *req.Transportation
	}
	if req.AvailableSeats != nil {
		schedule.AvailableSeats = *req.AvailableSeats
	}
	if req.PriceOverride != nil {
		schedule.PriceOverride = req.PriceOverride
	}
	if schedule.ReturnDate.Before(schedule.DepartureDate) {
		return nil, fmt.Errorf("return date cannot be before departure date")
	}
	schedule.UpdatedAt = time.Now()

	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		s.log.Error("Failed to update schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return nil, fmt.Errorf("failed to update schedule")
	}

	tour, err := s.repo.Tour.FindByID(ctx, schedule.TourID)
	if err != nil {
		s.log.Warn("Failed to load tour for schedule response", zap.Error(err))
	}

	s.log.Info("Schedule updated", zap.String("schedule_id", scheduleID.String()))

	resp := response.ScheduleToResponse(tour, schedule)
	return &resp, nil
}

func (s *tourService) DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		s.log.Error("Failed to find schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return fmt.Errorf("failed to delete schedule")
	}
	if schedule == nil {
		return fmt.Errorf("schedule not found")
	}

	if err := s.repo.Schedule.Delete(ctx, scheduleID); err != nil {
		s.log.Error("Failed to delete schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return fmt.Errorf("failed to delete schedule")
	}

	s.log.Info("Schedule deleted", zap.String("schedule_id", scheduleID.String()))

	return nil
}

// DeductSeats takes seats out of a schedule through the same conditional
// decrement bookings use, so it can never push the counter negative.
func (s *tourService) DeductSeats(ctx context.Context, scheduleID uuid.UUID, req *request.DeductSeatsRequest) (*response.ScheduleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	schedule, err := s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil {
		s.log.Error("Failed to find schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return nil, fmt.Errorf("failed to deduct seats")
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule not found")
	}

	reserved, err := s.repo.Schedule.ReserveSeats(ctx, scheduleID, req.Seats)
	if err != nil {
		s.log.Error("Failed to deduct seats", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return nil, fmt.Errorf("failed to deduct seats")
	}
	if !reserved {
		// The count read before the decrement may already be behind a
		// concurrent deduction; report the current one.
		if latest, err := s.repo.Schedule.FindByID(ctx, scheduleID); err == nil && latest != nil {
			schedule = latest
		}
		return nil, fmt.Errorf("not enough seats available: %d remaining", schedule.AvailableSeats)
	}

	schedule, err = s.repo.Schedule.FindByID(ctx, scheduleID)
	if err != nil || schedule == nil {
		s.log.Error("Failed to reload schedule", zap.Error(err), zap.String("schedule_id", scheduleID.String()))
		return nil, fmt.Errorf("failed to deduct seats")
	}

	tour, err := s.repo.Tour.FindByID(ctx, schedule.TourID)
	if err != nil {
		s.log.Warn("Failed to load tour for schedule response", zap.Error(err))
	}

	s.log.Info("Seats deducted",
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("seats", req.Seats),
		zap.Int("remaining", schedule.AvailableSeats))

	resp := response.ScheduleToResponse(tour, schedule)
	return &resp, nil
}

func (s *tourService) invalidateTourCache(ctx context.Context) {
	s.cache.Invalidate(ctx, "tours:*")
}

package response

import (
	"time"

	"tour-booking/internal/data/entity"
)

type TourResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Price             float64            `json:"price"`
	Images            []string           `json:"images"`
	Duration          string             `json:"duration"`
	Destination       string             `json:"destination"`
	DepartureLocation string             `json:"departure_location"`
	Featured          bool               `json:"featured"`
	RatingAverage     float64            `json:"rating_average"`
	RatingCount       int                `json:"rating_count"`
	Schedules         []ScheduleResponse `json:"schedules,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

type ScheduleResponse struct {
	ID             string   `json:"id"`
	TourID         string   `json:"tour_id"`
	DepartureDate  string   `json:"departure_date"`
	DepartureTime  string   `json:"departure_time"`
	ReturnDate     string   `json:"return_date"`
	ReturnTime     string   `json:"return_time"`
	Transportation string   `json:"transportation"`
	AvailableSeats int      `json:"available_seats"`
	PriceOverride  *float64 `json:"price_override,omitempty"`
	EffectivePrice float64  `json:"effective_price"`
}

// Helper converters
func ScheduleToResponse(tour *entity.Tour, schedule *entity.Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             schedule.ID.String(),
		TourID:         schedule.TourID.String(),
		DepartureDate:  schedule.DepartureDate.Format("2006-01-02"),
		DepartureTime:  schedule.DepartureTime,
		ReturnDate:     schedule.ReturnDate.Format("2006-01-02"),
		ReturnTime:     schedule.ReturnTime,
		Transportation: schedule.Transportation,
		AvailableSeats: schedule.AvailableSeats,
		PriceOverride:  schedule.PriceOverride,
	}

	if tour != nil {
		resp.EffectivePrice = tour.EffectivePrice(schedule)
	} else if schedule.PriceOverride != nil {
		resp.EffectivePrice = *schedule.PriceOverride
	}

	return resp
}

func TourToResponse(tour *entity.Tour, schedules []*entity.Schedule) TourResponse {
	resp := TourResponse{
		ID:                tour.ID.String(),
		Name:              tour.Name,
		Description:       tour.Description,
		Price:             tour.Price,
		Images:            tour.Images,
		Duration:          tour.Duration,
		Destination:       tour.Destination,
		DepartureLocation: tour.DepartureLocation,
		Featured:          tour.Featured,
		RatingAverage:     tour.RatingAverage,
		RatingCount:       tour.RatingCount,
		CreatedAt:         tour.CreatedAt,
	}

	for _, s := range schedules {
		resp.Schedules = append(resp.Schedules, ScheduleToResponse(tour, s))
	}

	return resp
}

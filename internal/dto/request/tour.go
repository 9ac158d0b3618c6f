package request

type TourRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=200"`
	Description       string  `json:"description" validate:"required"`
	Price             float64 `json:"price" validate:"required,gt=0"`
	Duration          string  `json:"duration" validate:"required,max=100"`
	Destination       string  `json:"destination" validate:"required,max=200"`
	DepartureLocation string  `json:"departure_location" validate:"required,max=200"`
	Featured          bool    `json:"featured"`
}

type TourUpdateRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description       *string  `json:"description,omitempty"`
	Price             *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Duration          *string  `json:"duration,omitempty" validate:"omitempty,max=100"`
	Destination       *string  `json:"destination,omitempty" validate:"omitempty,max=200"`
	DepartureLocation *string  `json:"departure_location,omitempty" validate:"omitempty,max=200"`
	Featured          *bool    `json:"featured,omitempty"`
}

type TourListRequest struct {
	PaginatedRequest
	Destination string `json:"destination,omitempty"`
	Featured    *bool  `json:"featured,omitempty"`
}

type ScheduleRequest struct {
	DepartureDate  string   `json:"departure_date" validate:"required,datetime=2006-01-02"`
	DepartureTime  string   `json:"departure_time" validate:"required,datetime=15:04"`
	ReturnDate     string   `json:"return_date" validate:"required,datetime=2006-01-02"`
	ReturnTime     string   `json:"return_time" validate:"required,datetime=15:04"`
	Transportation string   `json:"transportation" validate:"required,max=100"`
	AvailableSeats int      `json:"available_seats" validate:"required,gte=1,lte=1000"`
	PriceOverride  *float64 `json:"price_override,omitempty" validate:"omitempty,gt=0"`
}

type DeductSeatsRequest struct {
	Seats int `json:"seats" validate:"required,gte=1"`
}

type ScheduleUpdateRequest struct {
	DepartureDate  *string  `json:"departure_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DepartureTime  *string  `json:"departure_time,omitempty" validate:"omitempty,datetime=15:04"`
	ReturnDate     *string  `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReturnTime     *string  `json:"return_time,omitempty" validate:"omitempty,datetime=15:04"`
	Transportation *string  `json:"transportation,omitempty" validate:"omitempty,max=100"`
	AvailableSeats *int     `json:"available_seats,omitempty" validate:"omitempty,gte=0,lte=1000"`
	PriceOverride  *float64 `json:"price_override,omitempty" validate:"omitempty,gt=0"`
}

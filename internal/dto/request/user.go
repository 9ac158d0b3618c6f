package request

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,max=500"`
}

type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

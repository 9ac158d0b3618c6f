package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tour-booking/internal/data/repository"
	"tour-booking/internal/dto/response"

	"go.uber.org/zap"
)

type DiscountService interface {
	// Validate checks a discount code and returns its percentage. An
	// unknown, inactive or out-of-window code comes back with Valid=false,
	// never an error, so the checkout form can show it inline.
	Validate(ctx context.Context, code string) (*response.DiscountValidationResponse, error)
}

type discountService struct {
	discountRepo repository.DiscountRepository
	log          *zap.Logger
}

func NewDiscountService(discountRepo repository.DiscountRepository, log *zap.Logger) DiscountService {
	return &discountService{
		discountRepo: discountRepo,
		log:          log.With(zap.String("service", "discount")),
	}
}

func (s *discountService) Validate(ctx context.Context, code string) (*response.DiscountValidationResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("validation failed: code is required")
	}

	discount, err := s.discountRepo.FindActiveByCode(ctx, code, time.Now())
	if err != nil {
		s.log.Error("Failed to check discount", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("failed to validate discount")
	}

	if discount == nil {
		return &response.DiscountValidationResponse{Valid: false, Code: code}, nil
	}

	return &response.DiscountValidationResponse{
		Valid:      true,
		Code:       discount.Code,
		Percentage: discount.Percentage,
	}, nil
}

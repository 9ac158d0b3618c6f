package usecase

import (
	"tour-booking/internal/data/repository"
	"tour-booking/internal/gateway"
	"tour-booking/internal/queue"
	"tour-booking/pkg/cache"
	"tour-booking/pkg/imagestore"
	"tour-booking/pkg/mailer"
	"tour-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Tour     TourService
	Booking  BookingService
	Payment  PaymentService
	Review   ReviewService
	Discount DiscountService
}

// Deps groups the infrastructure the services are built on.
type Deps struct {
	Repo      *repository.Repository
	Config    *utils.Config
	Cache     *cache.Cache
	Mailer    mailer.Mailer
	Publisher queue.Publisher
	Stripe    gateway.StripeGateway
	MoMo      gateway.MoMoGateway
	Images    *imagestore.Store
}

func NewService(deps Deps, log *zap.Logger) *Service {
	payment := NewPaymentService(deps.Repo, deps.Config, deps.Stripe, deps.MoMo, deps.Publisher, log)

	return &Service{
		Auth:     NewAuthService(deps.Repo, deps.Config, deps.Mailer, log),
		User:     NewUserService(deps.Repo.User, log),
		Tour:     NewTourService(deps.Repo, deps.Cache, deps.Images, log),
		Booking:  NewBookingService(deps.Repo, payment, log),
		Payment:  payment,
		Review:   NewReviewService(deps.Repo, log),
		Discount: NewDiscountService(deps.Repo.Discount, log),
	}
}

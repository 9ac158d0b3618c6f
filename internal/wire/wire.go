package wire

import (
	"net/http"

	"tour-booking/internal/adaptor"
	"tour-booking/internal/data/repository"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/middleware"
	"tour-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router.
func Wiring(deps usecase.Deps, logger *zap.Logger) *App {
	service := usecase.NewService(deps, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, deps.Repo, deps.Config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	wireAuth(r, handler.Auth, repo, logger)
	wireUser(r, handler.User, repo, logger)
	wireTour(r, handler.Tour, repo, logger)
	wireBooking(r, handler.Booking, repo, logger)
	wirePayment(r, handler.Payment, repo, logger)
	wireReview(r, handler.Review, repo, logger)
	wireDiscount(r, handler.Discount)

	// Uploaded tour images
	fileServer := http.StripPrefix(config.Upload.BaseURL, http.FileServer(http.Dir(config.Upload.Dir)))
	r.Get(config.Upload.BaseURL+"*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

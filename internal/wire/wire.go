package wire

import (
	"net/http"

	"local-services/internal/adaptor"
	"local-services/internal/data/repository"
	"local-services/internal/notify"
	"local-services/internal/realtime"
	"local-services/internal/usecase"
	"local-services/pkg/middleware"
	"local-services/pkg/payment"
	"local-services/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired router.
type App struct {
	Router *chi.Mux
}

// Wiring builds services and handlers on top of the collaborators the
// composition root constructed, and mounts every route group.
func Wiring(
	repo *repository.Repository,
	dispatcher *notify.Dispatcher,
	gateway payment.Gateway,
	verifier *payment.Verifier,
	hub *realtime.Hub,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, dispatcher, gateway, verifier, hub, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, hub, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	hub *realtime.Hub,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Route groups
	wireAuth(r, handler.Auth)
	wireBooking(r, handler.Booking, repo, config, logger)
	wireCatalog(r, handler.Catalog, repo, config, logger)
	wireProvider(r, handler.Provider, repo, config, logger)
	wireAdmin(r, handler.Admin, repo, config, logger)
	wireContact(r, handler.Contact)

	// Realtime channel for booking status broadcasts
	r.Get("/ws", hub.ServeWS)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

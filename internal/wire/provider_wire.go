package wire

import (
	"local-services/internal/adaptor"
	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/pkg/middleware"
	"local-services/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProvider(
	r chi.Router,
	providerHandler *adaptor.ProviderHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/provider", func(r chi.Router) {
		r.Use(middleware.Auth(repo, config, log))
		r.Use(middleware.RequireRoles(log, entity.RoleProvider))

		r.Get("/profile", providerHandler.GetProfile)
		r.Get("/status", providerHandler.GetStatus)
		r.Put("/profile", providerHandler.UpdateProfile)
	})
}

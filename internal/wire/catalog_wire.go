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

func wireCatalog(
	r chi.Router,
	catalogHandler *adaptor.CatalogHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/services", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/public", catalogHandler.PublicServices)
		r.Get("/categories", catalogHandler.Categories)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(repo, config, log))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleProvider))

				r.Post("/", catalogHandler.CreateService)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleProvider, entity.RoleAdmin))

				r.Put("/{id}", catalogHandler.UpdateService)
				r.Delete("/{id}", catalogHandler.DeleteService)
				r.Get("/provider/{providerID}", catalogHandler.ProviderServices)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleAdmin))

				r.Get("/pending", catalogHandler.PendingServices)
				r.Put("/{id}/approve", catalogHandler.ApproveService)
				r.Put("/{id}/reject", catalogHandler.RejectService)
			})
		})

		// Keep last so it does not shadow the named routes above
		r.Get("/{id}", catalogHandler.GetService)
	})
}

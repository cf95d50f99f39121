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

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(repo, config, log))
		r.Use(middleware.RequireRoles(log, entity.RoleAdmin))

		r.Get("/providers/pending", adminHandler.PendingProviders)
		r.Put("/providers/{id}/approve", adminHandler.ApproveProvider)
		r.Put("/providers/{id}/reject", adminHandler.RejectProvider)
		r.Get("/stats", adminHandler.Stats)
		r.Get("/queue-status", adminHandler.QueueStatus)
	})
}

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

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/bookings", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/available-slots/{serviceID}/{date}", bookingHandler.AvailableSlots)

		// Payment verification is called by the checkout callback before a
		// session exists
		r.Post("/verify-payment", bookingHandler.VerifyPayment)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(repo, config, log))

			// User side
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleUser))

				r.Post("/", bookingHandler.CreateBooking)
				r.Get("/user", bookingHandler.GetUserBookings)
				r.Post("/{id}/review", bookingHandler.AddReview)
			})

			// Provider inbox
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleProvider))

				r.Get("/provider", bookingHandler.GetProviderBookings)
			})

			// Status pipeline: provider or admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleProvider, entity.RoleAdmin))

				r.Put("/{id}/status", bookingHandler.UpdateStatus)
				r.Put("/bulk/status", bookingHandler.BulkUpdateStatus)
			})

			// Cancellation: owning user or admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(log, entity.RoleUser, entity.RoleAdmin))

				r.Patch("/{id}/cancel", bookingHandler.CancelBooking)
			})

			// Detail view checks ownership in the service layer
			r.Get("/{id}", bookingHandler.GetBooking)
		})
	})
}

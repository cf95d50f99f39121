package usecase

import (
	"local-services/internal/data/repository"
	"local-services/internal/notify"
	"local-services/internal/realtime"
	"local-services/pkg/payment"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	Booking  BookingService
	Catalog  CatalogService
	Provider ProviderService
	Admin    AdminService
	Contact  ContactService
}

func NewService(repo *repository.Repository, dispatcher *notify.Dispatcher, gateway payment.Gateway, verifier *payment.Verifier, hub *realtime.Hub, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, dispatcher, config, log),
		Booking:  NewBookingService(repo, dispatcher, gateway, verifier, config, log),
		Catalog:  NewCatalogService(repo, dispatcher, log),
		Provider: NewProviderService(repo, log),
		Admin:    NewAdminService(repo, dispatcher, hub, log),
		Contact:  NewContactService(dispatcher, config, log),
	}
}

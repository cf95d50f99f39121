package usecase

import (
	"context"
	"fmt"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/response"
	"local-services/internal/notify"
	"local-services/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AdminService interface {
	PendingProviders(ctx context.Context) ([]response.ProviderResponse, error)
	ModerateProvider(ctx context.Context, providerID string, approve bool, notes *string) (*response.ProviderResponse, error)
	Stats(ctx context.Context) (*response.StatsResponse, error)
	QueueStatus(ctx context.Context) (*response.QueueStatusResponse, error)
}

type adminService struct {
	repo       *repository.Repository
	dispatcher *notify.Dispatcher
	hub        *realtime.Hub
	log        *zap.Logger
}

func NewAdminService(repo *repository.Repository, dispatcher *notify.Dispatcher, hub *realtime.Hub, log *zap.Logger) AdminService {
	return &adminService{
		repo:       repo,
		dispatcher: dispatcher,
		hub:        hub,
		log:        log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) PendingProviders(ctx context.Context) ([]response.ProviderResponse, error) {
	providers, err := s.repo.Provider.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending providers: %w", err)
	}
	return response.ProvidersToResponse(providers), nil
}

func (s *adminService) ModerateProvider(ctx context.Context, providerID string, approve bool, notes *string) (*response.ProviderResponse, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, fmt.Errorf("invalid provider ID format %s: %w", providerID, err)
	}

	provider, err := s.repo.Provider.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s not found", providerID)
	}

	status := entity.ApprovalApproved
	kind := notify.EmailProviderApproval
	if !approve {
		status = entity.ApprovalRejected
		kind = notify.EmailProviderRejection
	}

	if err := s.repo.Provider.UpdateApproval(ctx, id, status, notes); err != nil {
		return nil, fmt.Errorf("update provider approval: %w", err)
	}

	provider.ApprovalStatus = status
	provider.IsApproved = status == entity.ApprovalApproved
	provider.AdminNotes = notes

	payload := notify.EmailPayload{
		Email: provider.Email,
		Name:  provider.Name,
	}
	if notes != nil {
		payload.Notes = *notes
	}
	s.dispatcher.EnqueueEmail(kind, payload)

	s.log.Info("Provider moderated",
		zap.String("provider_id", providerID),
		zap.String("status", string(status)),
	)

	resp := response.ProviderToResponse(provider)
	return &resp, nil
}

func (s *adminService) Stats(ctx context.Context) (*response.StatsResponse, error) {
	users, err := s.repo.User.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	providers, err := s.repo.Provider.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count providers: %w", err)
	}
	services, err := s.repo.Service.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	bookings, err := s.repo.Booking.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return &response.StatsResponse{
		Users:     users,
		Providers: providers,
		Services:  services,
		Bookings:  bookings,
	}, nil
}

func (s *adminService) QueueStatus(ctx context.Context) (*response.QueueStatusResponse, error) {
	return &response.QueueStatusResponse{
		Queues:  s.dispatcher.Counts(),
		Clients: s.hub.ClientCount(),
	}, nil
}

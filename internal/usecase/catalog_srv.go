package usecase

import (
	"context"
	"fmt"
	"time"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/dto/response"
	"local-services/internal/notify"
	"local-services/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages the service listings providers offer.
type CatalogService interface {
	PublicServices(ctx context.Context, filter repository.ServiceFilter) ([]response.ServiceResponse, error)
	Categories(ctx context.Context) ([]string, error)
	GetService(ctx context.Context, serviceID string) (*response.ServiceResponse, error)
	CreateService(ctx context.Context, actor entity.Actor, req *request.CreateServiceRequest) (*response.ServiceResponse, error)
	UpdateService(ctx context.Context, actor entity.Actor, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error)
	DeleteService(ctx context.Context, actor entity.Actor, serviceID string) error
	ProviderServices(ctx context.Context, actor entity.Actor, providerID string) ([]response.ServiceResponse, error)
	PendingServices(ctx context.Context) ([]response.ServiceResponse, error)
	ModerateService(ctx context.Context, serviceID string, approve bool, notes *string) (*response.ServiceResponse, error)
}

type catalogService struct {
	repo       *repository.Repository
	dispatcher notify.Notifier
	log        *zap.Logger
}

func NewCatalogService(repo *repository.Repository, dispatcher notify.Notifier, log *zap.Logger) CatalogService {
	return &catalogService{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) PublicServices(ctx context.Context, filter repository.ServiceFilter) ([]response.ServiceResponse, error) {
	services, err := s.repo.Service.FindApproved(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	return response.ServicesToResponse(services), nil
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Service.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) GetService(ctx context.Context, serviceID string) (*response.ServiceResponse, error) {
	service, err := s.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) CreateService(ctx context.Context, actor entity.Actor, req *request.CreateServiceRequest) (*response.ServiceResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create service validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	provider, err := s.repo.Provider.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s not found", actor.ID.String())
	}
	if !provider.IsApproved {
		return nil, fmt.Errorf("access denied: provider account not approved yet")
	}

	now := time.Now()
	service := &entity.Service{
		Base:        entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ProviderID:  actor.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Location:    req.Location,
		Duration:    req.Duration,
		Status:      entity.ApprovalPending,
	}

	if err := s.repo.Service.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.log.Info("Service created",
		zap.String("service_id", service.ID.String()),
		zap.String("provider_id", actor.ID.String()),
	)

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) UpdateService(ctx context.Context, actor entity.Actor, serviceID string, req *request.UpdateServiceRequest) (*response.ServiceResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	service, err := s.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && service.ProviderID != actor.ID {
		return nil, fmt.Errorf("access denied: service %s does not belong to you", serviceID)
	}

	service.Name = req.Name
	service.Description = req.Description
	service.Category = req.Category
	service.Price = req.Price
	service.Location = req.Location
	service.Duration = req.Duration

	// A provider edit re-enters moderation; admin edits keep the status.
	if !actor.IsAdmin() {
		service.Status = entity.ApprovalPending
	}

	if err := s.repo.Service.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) DeleteService(ctx context.Context, actor entity.Actor, serviceID string) error {
	service, err := s.findService(ctx, serviceID)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && service.ProviderID != actor.ID {
		return fmt.Errorf("access denied: service %s does not belong to you", serviceID)
	}

	if err := s.repo.Service.Delete(ctx, service.ID); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	return nil
}

func (s *catalogService) ProviderServices(ctx context.Context, actor entity.Actor, providerID string) ([]response.ServiceResponse, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, fmt.Errorf("invalid provider ID format %s: %w", providerID, err)
	}

	if !actor.IsAdmin() && actor.ID != id {
		return nil, fmt.Errorf("access denied: not your listings")
	}

	services, err := s.repo.Service.FindByProviderID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	return response.ServicesToResponse(services), nil
}

func (s *catalogService) PendingServices(ctx context.Context) ([]response.ServiceResponse, error) {
	services, err := s.repo.Service.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending services: %w", err)
	}
	return response.ServicesToResponse(services), nil
}

func (s *catalogService) ModerateService(ctx context.Context, serviceID string, approve bool, notes *string) (*response.ServiceResponse, error) {
	service, err := s.findService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	status := entity.ApprovalApproved
	kind := notify.EmailServiceApproval
	if !approve {
		status = entity.ApprovalRejected
		kind = notify.EmailServiceRejection
	}

	if err := s.repo.Service.UpdateStatus(ctx, service.ID, status, notes); err != nil {
		return nil, fmt.Errorf("update service status: %w", err)
	}

	service.Status = status
	service.AdminNotes = notes

	provider, err := s.repo.Provider.FindByID(ctx, service.ProviderID)
	if err == nil && provider != nil {
		payload := notify.EmailPayload{
			Email:       provider.Email,
			Name:        provider.Name,
			ServiceName: service.Name,
		}
		if notes != nil {
			payload.Notes = *notes
		}
		s.dispatcher.EnqueueEmail(kind, payload)
	}

	s.log.Info("Service moderated",
		zap.String("service_id", serviceID),
		zap.String("status", string(status)),
	)

	resp := response.ServiceToResponse(service)
	return &resp, nil
}

func (s *catalogService) findService(ctx context.Context, serviceID string) (*entity.Service, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return nil, fmt.Errorf("invalid service ID format %s: %w", serviceID, err)
	}

	service, err := s.repo.Service.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s not found", serviceID)
	}

	return service, nil
}

package usecase

import (
	"context"
	"fmt"

	"local-services/internal/data/entity"
	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/dto/response"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

type ProviderService interface {
	GetProfile(ctx context.Context, actor entity.Actor) (*response.ProviderResponse, error)
	GetStatus(ctx context.Context, actor entity.Actor) (*response.ProviderStatusResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, req *request.UpdateProviderProfileRequest) (*response.ProviderResponse, error)
}

type providerService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewProviderService(repo *repository.Repository, log *zap.Logger) ProviderService {
	return &providerService{
		repo: repo,
		log:  log.With(zap.String("service", "provider")),
	}
}

func (s *providerService) GetProfile(ctx context.Context, actor entity.Actor) (*response.ProviderResponse, error) {
	provider, err := s.repo.Provider.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s not found", actor.ID.String())
	}

	resp := response.ProviderToResponse(provider)
	return &resp, nil
}

func (s *providerService) GetStatus(ctx context.Context, actor entity.Actor) (*response.ProviderStatusResponse, error) {
	provider, err := s.repo.Provider.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s not found", actor.ID.String())
	}

	return &response.ProviderStatusResponse{
		ApprovalStatus: provider.ApprovalStatus,
		IsApproved:     provider.IsApproved,
		AdminNotes:     provider.AdminNotes,
	}, nil
}

func (s *providerService) UpdateProfile(ctx context.Context, actor entity.Actor, req *request.UpdateProviderProfileRequest) (*response.ProviderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update profile validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	provider, err := s.repo.Provider.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %s not found", actor.ID.String())
	}

	provider.Name = req.Name
	provider.Phone = req.Phone
	provider.Company = req.Company
	provider.Location = req.Location

	// A rejected provider resubmits by editing the profile; an approved one
	// stays approved.
	if provider.ApprovalStatus == entity.ApprovalRejected {
		provider.ApprovalStatus = entity.ApprovalPending
		provider.IsApproved = false
	}

	if err := s.repo.Provider.UpdateProfile(ctx, provider); err != nil {
		return nil, fmt.Errorf("update provider profile: %w", err)
	}

	s.log.Info("Provider profile updated", zap.String("provider_id", actor.ID.String()))

	resp := response.ProviderToResponse(provider)
	return &resp, nil
}

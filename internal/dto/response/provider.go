package response

import (
	"time"

	"local-services/internal/data/entity"
)

type ProviderResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Phone          *string               `json:"phone,omitempty"`
	Company        *string               `json:"company,omitempty"`
	Location       *string               `json:"location,omitempty"`
	IsVerified     bool                  `json:"is_verified"`
	ApprovalStatus entity.ApprovalStatus `json:"approval_status"`
	IsApproved     bool                  `json:"is_approved"`
	AdminNotes     *string               `json:"admin_notes,omitempty"`
	Rating         float64               `json:"rating"`
	ReviewCount    int64                 `json:"review_count"`
	CreatedAt      time.Time             `json:"created_at"`
}

type ProviderStatusResponse struct {
	ApprovalStatus entity.ApprovalStatus `json:"approval_status"`
	IsApproved     bool                  `json:"is_approved"`
	AdminNotes     *string               `json:"admin_notes,omitempty"`
}

// Helper converters
func ProviderToResponse(provider *entity.Provider) ProviderResponse {
	return ProviderResponse{
		ID:             provider.ID.String(),
		Name:           provider.Name,
		Email:          provider.Email,
		Phone:          provider.Phone,
		Company:        provider.Company,
		Location:       provider.Location,
		IsVerified:     provider.IsVerified,
		ApprovalStatus: provider.ApprovalStatus,
		IsApproved:     provider.IsApproved,
		AdminNotes:     provider.AdminNotes,
		Rating:         provider.Rating,
		ReviewCount:    provider.ReviewCount,
		CreatedAt:      provider.CreatedAt,
	}
}

func ProvidersToResponse(providers []*entity.Provider) []ProviderResponse {
	responses := make([]ProviderResponse, 0, len(providers))
	for _, provider := range providers {
		responses = append(responses, ProviderToResponse(provider))
	}
	return responses
}

package response

import (
	"time"

	"local-services/internal/data/entity"
)

type ServiceResponse struct {
	ID          string                `json:"id"`
	ProviderID  string                `json:"provider_id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Price       float64               `json:"price"`
	Location    string                `json:"location"`
	Duration    string                `json:"duration"`
	Status      entity.ApprovalStatus `json:"status"`
	AdminNotes  *string               `json:"admin_notes,omitempty"`
	Rating      float64               `json:"rating"`
	ReviewCount int64                 `json:"review_count"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Helper converters
func ServiceToResponse(service *entity.Service) ServiceResponse {
	return ServiceResponse{
		ID:          service.ID.String(),
		ProviderID:  service.ProviderID.String(),
		Name:        service.Name,
		Description: service.Description,
		Category:    service.Category,
		Price:       service.Price,
		Location:    service.Location,
		Duration:    service.Duration,
		Status:      service.Status,
		AdminNotes:  service.AdminNotes,
		Rating:      service.Rating,
		ReviewCount: service.ReviewCount,
		CreatedAt:   service.CreatedAt,
	}
}

func ServicesToResponse(services []*entity.Service) []ServiceResponse {
	responses := make([]ServiceResponse, 0, len(services))
	for _, service := range services {
		responses = append(responses, ServiceToResponse(service))
	}
	return responses
}

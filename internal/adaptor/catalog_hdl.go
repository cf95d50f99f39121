package adaptor

import (
	"encoding/json"
	"net/http"

	"local-services/internal/data/repository"
	"local-services/internal/dto/request"
	"local-services/internal/usecase"
	"local-services/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// PublicServices handles GET /api/services/public
func (h *CatalogHandler) PublicServices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repository.ServiceFilter{
		Category: query.Get("category"),
		Location: query.Get("location"),
		Search:   query.Get("search"),
	}

	services, err := h.service.PublicServices(r.Context(), filter)
	if err != nil {
		handleServiceError(h.log, w, err, "list services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// Categories handles GET /api/services/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list categories")
		return
	}

	utils.ResponseSuccess(w, "success", categories)
}

// GetService handles GET /api/services/{id}
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.service.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get service")
		return
	}

	utils.ResponseSuccess(w, "success", service)
}

// CreateService handles POST /api/services (provider)
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	service, err := h.service.CreateService(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create service")
		return
	}

	utils.ResponseCreated(w, "success", service)
}

// UpdateService handles PUT /api/services/{id} (owner/admin)
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	service, err := h.service.UpdateService(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update service")
		return
	}

	utils.ResponseSuccess(w, "success", service)
}

// DeleteService handles DELETE /api/services/{id} (owner/admin)
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteService(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, "delete service")
		return
	}

	utils.ResponseSuccess(w, "Service deleted", nil)
}

// ProviderServices handles GET /api/services/provider/{providerID} (owner/admin)
func (h *CatalogHandler) ProviderServices(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	services, err := h.service.ProviderServices(r.Context(), actor, chi.URLParam(r, "providerID"))
	if err != nil {
		handleServiceError(h.log, w, err, "list provider services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// PendingServices handles GET /api/services/pending (admin)
func (h *CatalogHandler) PendingServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.PendingServices(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list pending services")
		return
	}

	utils.ResponseSuccess(w, "success", services)
}

// ApproveService handles PUT /api/services/{id}/approve (admin)
func (h *CatalogHandler) ApproveService(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, true)
}

// RejectService handles PUT /api/services/{id}/reject (admin)
func (h *CatalogHandler) RejectService(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, false)
}

func (h *CatalogHandler) moderate(w http.ResponseWriter, r *http.Request, approve bool) {
	var req request.ModerateServiceRequest
	if r.Body != nil {
		// Notes are optional; an empty body is fine
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	service, err := h.service.ModerateService(r.Context(), chi.URLParam(r, "id"), approve, req.Notes)
	if err != nil {
		handleServiceError(h.log, w, err, "moderate service")
		return
	}

	utils.ResponseSuccess(w, "success", service)
}

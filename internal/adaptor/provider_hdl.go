package adaptor

import (
	"encoding/json"
	"net/http"

	"local-services/internal/dto/request"
	"local-services/internal/usecase"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

type ProviderHandler struct {
	service usecase.ProviderService
	log     *zap.Logger
}

func NewProviderHandler(service usecase.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log.With(zap.String("handler", "provider")),
	}
}

// GetProfile handles GET /api/provider/profile
func (h *ProviderHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "get provider profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

// GetStatus handles GET /api/provider/status
func (h *ProviderHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	status, err := h.service.GetStatus(r.Context(), actor)
	if err != nil {
		handleServiceError(h.log, w, err, "get provider status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// UpdateProfile handles PUT /api/provider/profile
func (h *ProviderHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.UpdateProviderProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update provider profile")
		return
	}

	utils.ResponseSuccess(w, "success", profile)
}

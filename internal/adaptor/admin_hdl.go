package adaptor

import (
	"encoding/json"
	"net/http"

	"local-services/internal/dto/request"
	"local-services/internal/usecase"
	"local-services/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// PendingProviders handles GET /api/admin/providers/pending
func (h *AdminHandler) PendingProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.service.PendingProviders(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list pending providers")
		return
	}

	utils.ResponseSuccess(w, "success", providers)
}

// ApproveProvider handles PUT /api/admin/providers/{id}/approve
func (h *AdminHandler) ApproveProvider(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, true)
}

// RejectProvider handles PUT /api/admin/providers/{id}/reject
func (h *AdminHandler) RejectProvider(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, false)
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "get stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}

// QueueStatus handles GET /api/admin/queue-status
func (h *AdminHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.QueueStatus(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "get queue status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, approve bool) {
	var req request.ModerateProviderRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	provider, err := h.service.ModerateProvider(r.Context(), chi.URLParam(r, "id"), approve, req.Notes)
	if err != nil {
		handleServiceError(h.log, w, err, "moderate provider")
		return
	}

	utils.ResponseSuccess(w, "success", provider)
}

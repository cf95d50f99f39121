package adaptor

import (
	"net/http"
	"strings"

	"local-services/internal/usecase"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Booking  *BookingHandler
	Catalog  *CatalogHandler
	Provider *ProviderHandler
	Admin    *AdminHandler
	Contact  *ContactHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Catalog:  NewCatalogHandler(service.Catalog, log),
		Provider: NewProviderHandler(service.Provider, log),
		Admin:    NewAdminHandler(service.Admin, log),
		Contact:  NewContactHandler(service.Contact, log),
	}
}

// handleServiceError maps service error phrases onto HTTP status codes.
// Services phrase their errors consistently, so string matching stays in one
// place.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "access denied"):
		log.Warn(operation+" failed - forbidden",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseForbidden(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"),
		strings.Contains(errMsg, "already"),
		strings.Contains(errMsg, "cannot"):
		log.Warn(operation+" failed - bad request",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

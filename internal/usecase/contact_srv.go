package usecase

import (
	"context"
	"fmt"

	"local-services/internal/dto/request"
	"local-services/internal/notify"
	"local-services/pkg/utils"

	"go.uber.org/zap"
)

type ContactService interface {
	Submit(ctx context.Context, req *request.ContactRequest) error
}

type contactService struct {
	dispatcher notify.Notifier
	config     *utils.Config
	log        *zap.Logger
}

func NewContactService(dispatcher notify.Notifier, config *utils.Config, log *zap.Logger) ContactService {
	return &contactService{
		dispatcher: dispatcher,
		config:     config,
		log:        log.With(zap.String("service", "contact")),
	}
}

func (s *contactService) Submit(ctx context.Context, req *request.ContactRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Contact validation failed", zap.Any("errors", errs))
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	s.dispatcher.EnqueueEmail(notify.EmailContactForm, notify.EmailPayload{
		Email:     s.config.Contact.Inbox,
		Name:      req.Name,
		FromEmail: req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
	})

	s.log.Info("Contact form submitted", zap.String("subject", req.Subject))
	return nil
}

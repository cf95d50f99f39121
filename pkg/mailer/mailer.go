package mailer

import (
	"fmt"

	"local-services/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender is the outbound mail transport. Implementations may be unavailable
// at any given send; callers treat errors as retryable.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail over SMTP. The dialer connects per send,
// so a transport that is down at startup only fails the sends that hit it.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func New(config utils.EmailConfig, log *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{
		from: config.From,
		log:  log.With(zap.String("component", "mailer")),
	}

	if config.Host == "" || config.Port == 0 {
		m.log.Warn("SMTP not configured, mail sends will fail until configured")
		return m
	}

	m.dialer = gomail.NewDialer(config.Host, config.Port, config.User, config.Password)
	if m.from == "" {
		m.from = config.User
	}

	return m
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.dialer == nil {
		return fmt.Errorf("mail transport not ready")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.log.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Package mailer sends the contact and quote emails through a transactional
// email provider.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"pycsa-web/internal/config"

	"go.uber.org/zap"
)

var ErrUnknownProvider = errors.New("unknown email provider")

// Sender sends one templated email. params are the template variables.
type Sender interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

// New builds the Sender selected by cfg.Provider.
func New(cfg config.EmailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "emailjs":
		if cfg.ServiceID == "" || cfg.PublicKey == "" {
			return nil, fmt.Errorf("emailjs requires EMAILJS_SERVICE_ID and EMAILJS_PUBLIC_KEY")
		}
		return NewEmailJSSender(cfg.ServiceID, cfg.PublicKey, cfg.PrivateKey, logger), nil
	case "smtp":
		if cfg.SMTPHost == "" || cfg.To == "" {
			return nil, fmt.Errorf("smtp requires SMTP_HOST and EMAIL_TO")
		}
		return NewSMTPSender(cfg, logger), nil
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

type logSender struct {
	logger *zap.Logger
}

// NewLogSender creates a Sender that only logs, for development.
func NewLogSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	fields := []zap.Field{zap.String("template", templateID)}
	for k, v := range params {
		fields = append(fields, zap.String(k, v))
	}
	s.logger.Info("Email not sent (log provider)", fields...)
	return nil
}

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

type emailJSSender struct {
	serviceID  string
	publicKey  string
	privateKey string
	endpoint   string
	client     *http.Client
	logger     *zap.Logger
}

// NewEmailJSSender creates a Sender for the EmailJS REST API
func NewEmailJSSender(serviceID, publicKey, privateKey string, logger *zap.Logger) Sender {
	return &emailJSSender{
		serviceID:  serviceID,
		publicKey:  publicKey,
		privateKey: privateKey,
		endpoint:   emailJSEndpoint,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
	AccessToken    string            `json:"accessToken,omitempty"`
}

func (s *emailJSSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     templateID,
		UserID:         s.publicKey,
		TemplateParams: params,
		AccessToken:    s.privateKey,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("EmailJS rejected the email",
			zap.String("template", templateID),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, body)
	}

	s.logger.Info("Email sent", zap.String("provider", "emailjs"), zap.String("template", templateID))
	return nil
}

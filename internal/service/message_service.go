package service

import (
	"context"
	"fmt"

	"pycsa-web/internal/form"
	"pycsa-web/internal/mailer"

	"go.uber.org/zap"
)

// MessageService sends the contact and quote forms by email
type MessageService interface {
	SendContact(ctx context.Context, in *form.ContactInput) error
	SendQuote(ctx context.Context, in *form.QuoteInput) error
}

type messageService struct {
	sender          mailer.Sender
	contactTemplate string
	quoteTemplate   string
	logger          *zap.Logger
}

// NewMessageService creates a new instance of MessageService
func NewMessageService(sender mailer.Sender, contactTemplate, quoteTemplate string, logger *zap.Logger) MessageService {
	return &messageService{
		sender:          sender,
		contactTemplate: contactTemplate,
		quoteTemplate:   quoteTemplate,
		logger:          logger,
	}
}

func (s *messageService) SendContact(ctx context.Context, in *form.ContactInput) error {
	if err := s.sender.Send(ctx, s.contactTemplate, in.Params()); err != nil {
		s.logger.Error("Failed to send contact email", zap.String("email", in.Email), zap.Error(err))
		return fmt.Errorf("failed to send contact email: %w", err)
	}
	return nil
}

func (s *messageService) SendQuote(ctx context.Context, in *form.QuoteInput) error {
	if err := s.sender.Send(ctx, s.quoteTemplate, in.Params()); err != nil {
		s.logger.Error("Failed to send quote email", zap.String("email", in.Correo), zap.Error(err))
		return fmt.Errorf("failed to send quote email: %w", err)
	}
	return nil
}

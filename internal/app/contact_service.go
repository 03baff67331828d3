package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"growt/internal/domain"
)

const maxContactMessage = 5000

// ContactService forwards contact form submissions to the mail relay.
type ContactService struct {
	mailer domain.Mailer
}

// NewContactService creates a ContactService.
func NewContactService(mailer domain.Mailer) *ContactService {
	return &ContactService{mailer: mailer}
}

// Send validates and relays a contact message.
func (s *ContactService) Send(ctx context.Context, msg domain.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	if msg.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(msg.Email)
	if err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	msg.Email = addr.Address
	if msg.Message == "" || len(msg.Message) > maxContactMessage {
		return fmt.Errorf("%w: message must be 1-%d characters", ErrInvalidInput, maxContactMessage)
	}
	if err := s.mailer.SendContact(ctx, msg); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}

package domain

import "context"

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Mailer is the port for the outbound mail relay.
type Mailer interface {
	SendContact(ctx context.Context, msg ContactMessage) error
}

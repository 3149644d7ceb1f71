package email

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("email: sender not configured")

type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Disabled fails every send; used when SMTP credentials are absent.
type Disabled struct{}

func (Disabled) Send(context.Context, *Message) error { return ErrNotConfigured }

package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type SMTPSender struct {
	config SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.FromName == "" {
		cfg.FromName = "Storefront"
	}
	return &SMTPSender{config: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	l := logging.FromContext(ctx).With("component", "email.smtp", "to", m.To, "subject", m.Subject)

	msg, err := s.build(m)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		l.Error("email_send_failed", "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	l.Info("email_sent")
	return nil
}

func (s *SMTPSender) build(m *Message) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.config.FromName, s.config.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(m.Subject)

	switch {
	case m.HTMLBody != "" && m.TextBody != "":
		msg.SetBodyString(mail.TypeTextPlain, m.TextBody)
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTMLBody)
	case m.HTMLBody != "":
		msg.SetBodyString(mail.TypeTextHTML, m.HTMLBody)
	default:
		msg.SetBodyString(mail.TypeTextPlain, m.TextBody)
	}
	return msg, nil
}

func (s *SMTPSender) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	switch s.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if s.config.Username != "" && s.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}
	return opts
}

// LogValue keeps credentials out of logs.
func (s *SMTPSender) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", s.config.Host),
		slog.Int("port", s.config.Port),
		slog.String("from", s.config.From),
	)
}

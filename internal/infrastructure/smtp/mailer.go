package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/config"
	"github.com/wneessen/go-mail"
)

// Message is a transactional email. HTML is sent as an alternative part when
// Text is also set.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends emails.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type mailer struct {
	client  *mail.Client
	from    string
	timeout time.Duration
}

func NewMailer(cfg *config.Config) (Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(cfg.SMTPTimeout),
	}
	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	if cfg.SMTPTLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &mailer{client: client, from: cfg.SMTPFrom, timeout: cfg.SMTPTimeout}, nil
}

func (m *mailer) Send(ctx context.Context, msg Message) error {
	mm, err := buildMsg(m.from, msg)
	if err != nil {
		return err
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	if err := m.client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMsg(from string, m Message) (*mail.Msg, error) {
	if m.To == "" {
		return nil, fmt.Errorf("email requires a recipient")
	}
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(m.Subject)

	switch {
	case m.Text != "" && m.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, m.HTML)
	case m.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, m.Text)
	}
	return msg, nil
}

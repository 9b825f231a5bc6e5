// Package mailer sends transactional mail. The only message the system sends
// today is the password reset link.
package mailer

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers transactional messages.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, username, resetURL string) error
}

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail over an authenticated SMTP connection.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer from SMTP settings.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build mail client")
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
	}, nil
}

// SendPasswordReset mails the single-use reset link to the account's address.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid sender address")
	}
	if err := msg.To(to); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid recipient address")
	}

	msg.Subject("Password Reset")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received a request to reset your password. Follow the link below "+
			"to choose a new one. The link expires shortly and can be used once.\n\n"+
			"%s\n\n"+
			"If you did not request this, you can safely ignore this email.\n",
		username, resetURL,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send reset email")
	}

	return nil
}

package mail

import (
	"context"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"tradeline-server/internal/observability"
)

// SMTPClient sends mail through a plain SMTP relay, for deployments that
// would rather not hand transcripts to a third-party email API.
type SMTPClient struct {
	addr   string
	auth   smtp.Auth
	logger *observability.Logger
}

// NewSMTPClient creates an SMTP relay client. Username/password are optional
// for relays that authenticate by network.
func NewSMTPClient(host string, port int, username, password string, logger *observability.Logger) (*SMTPClient, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPClient{
		addr:   fmt.Sprintf("%s:%d", host, port),
		auth:   auth,
		logger: logger,
	}, nil
}

// SendEmail sends a single HTML email. The returned id is always empty:
// SMTP has no message id to report.
func (c *SMTPClient) SendEmail(ctx context.Context, from, to, subject, htmlContent string) (string, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "email_to", Value: to},
		observability.Field{Key: "email_subject", Value: subject},
	)

	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)

	if err := smtp.SendMail(c.addr, c.auth, envelopeAddress(from), []string{envelopeAddress(to)}, []byte(msg.String())); err != nil {
		c.logger.Error(ctx, "failed to send email", err)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Info(ctx, "email sent successfully")
	return "", nil
}

// envelopeAddress strips a display name ("Name <a@b>" -> "a@b") for the
// SMTP envelope.
func envelopeAddress(s string) string {
	if addr, err := mail.ParseAddress(s); err == nil {
		return addr.Address
	}
	return s
}

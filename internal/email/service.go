package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"tradeline-server/internal/observability"
)

var (
	ErrSendingEmail  = errors.New("error sending email")
	ErrEmptyTemplate = errors.New("email template is empty")
	ErrNoRecipient   = errors.New("no transcript recipient configured")
)

// Mailer sends a single HTML email. Implemented by the Resend and SMTP
// clients.
type Mailer interface {
	SendEmail(ctx context.Context, from, to, subject, htmlContent string) (string, error)
}

// TranscriptData is everything the transcript notification template needs.
type TranscriptData struct {
	OrgName       string
	CallerNumber  string
	HotlineNumber string
	CallSid       string
	Duration      string
	ReceivedAt    string
	Transcript    string
	Summary       string
}

// Service composes and dispatches transcript notification emails.
type Service struct {
	mailClient    Mailer
	logger        *observability.Logger
	defaultSender string
	recipient     string
	templates     map[string]string
}

// New creates the email service. recipient is the operator inbox transcripts
// are delivered to.
func New(mailClient Mailer, defaultSender, recipient string, logger *observability.Logger) *Service {
	return &Service{
		mailClient:    mailClient,
		logger:        logger,
		defaultSender: defaultSender,
		recipient:     recipient,
		templates: map[string]string{
			"call_transcript": `
			<html>
				<body>
					<h1>New call for {{.OrgName}}</h1>
					<p><strong>From:</strong> {{.CallerNumber}}<br/>
					<strong>Hotline:</strong> {{.HotlineNumber}}<br/>
					<strong>Duration:</strong> {{.Duration}} seconds<br/>
					<strong>Received:</strong> {{.ReceivedAt}}<br/>
					<strong>Call ID:</strong> {{.CallSid}}</p>
					<h2>Summary</h2>
					<p>{{.Summary}}</p>
					<h2>Transcript</h2>
					<p>{{.Transcript}}</p>
				</body>
			</html>
			`,
		},
	}
}

// renderTemplate renders a template with the provided data
func (s *Service) renderTemplate(templateName string, data TranscriptData) (string, error) {
	tmplStr, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	tmpl, err := template.New(templateName).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// SendTranscriptEmail delivers a call transcript notification to the
// configured operator inbox.
func (s *Service) SendTranscriptEmail(ctx context.Context, data TranscriptData) error {
	if s.recipient == "" {
		return ErrNoRecipient
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "email_type", Value: "call_transcript"},
		observability.Field{Key: "call_sid", Value: data.CallSid},
	)

	subject := fmt.Sprintf("New call from %s", data.CallerNumber)
	if data.CallerNumber == "" {
		subject = "New call recording"
	}

	htmlContent, err := s.renderTemplate("call_transcript", data)
	if err != nil {
		s.logger.Error(ctx, "failed to render transcript email template", err)
		return fmt.Errorf("%w: %s", ErrEmptyTemplate, err.Error())
	}

	_, err = s.mailClient.SendEmail(ctx, s.defaultSender, s.recipient, subject, htmlContent)
	if err != nil {
		s.logger.Error(ctx, "failed to send transcript email", err)
		return fmt.Errorf("%w: %s", ErrSendingEmail, err.Error())
	}

	return nil
}

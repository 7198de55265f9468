package bootstrap

import (
	"context"
	"fmt"

	"tradeline-server/internal/auth"
	"tradeline-server/internal/clients/googleai"
	"tradeline-server/internal/clients/mail"
	openaiClient "tradeline-server/internal/clients/openai"
	twilioClient "tradeline-server/internal/clients/twilio"
	"tradeline-server/internal/config"
	"tradeline-server/internal/email"
	"tradeline-server/internal/greetings"
	"tradeline-server/internal/hours"
	"tradeline-server/internal/observability"
	recordingProcessor "tradeline-server/internal/recording/processor"
	"tradeline-server/internal/static"
	"tradeline-server/internal/voice/calllog"
	voiceHandler "tradeline-server/internal/voice/handler"
	voiceProcessor "tradeline-server/internal/voice/processor"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Logger *observability.Logger

	// Handlers and middleware
	VoiceHandler voiceHandler.Handler
	Guard        auth.Guard
	Site         static.Server

	// Background pipeline
	Recordings *recordingProcessor.RecordingProcessor

	// Resources needing cleanup
	GreetingStore *greetings.Store
	GeminiClient  *googleai.Client
}

// Initialize sets up all application dependencies. Missing vendor credentials
// disable the matching feature instead of failing startup: the relay keeps
// answering calls with whatever downstream services it still has.
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Optional greeting store
	var greetingSource voiceProcessor.GreetingStore
	if cfg.Database.URL != "" {
		store, err := greetings.New(cfg.Database.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to greeting store: %w", err)
		}
		deps.GreetingStore = store
		greetingSource = store
	} else {
		logger.Info(ctx, "no database configured, greeting overrides disabled")
	}

	// Business-hours window
	window, err := hours.New(cfg.Hours.Span, cfg.Hours.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to parse business hours: %w", err)
	}

	// Voice call-control processor
	voiceProc := voiceProcessor.New(cfg, window, greetingSource, logger)

	// Recording pipeline collaborators, each optional
	var fetcher recordingProcessor.MediaFetcher
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		client, err := twilioClient.New(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create telephony media client: %w", err)
		}
		fetcher = client
	} else {
		logger.Info(ctx, "no telephony credentials, recording fetch disabled")
	}

	var transcriber recordingProcessor.Transcriber
	var openAI *openaiClient.Client
	if cfg.Services.OpenAIAPIKey != "" {
		openAI, err = openaiClient.New(cfg.Services.OpenAIAPIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		transcriber = openAI
	} else {
		logger.Info(ctx, "no openai key, transcription disabled")
	}

	summarizer, err := buildSummarizer(ctx, cfg, openAI, deps, logger)
	if err != nil {
		return nil, err
	}

	mailer, err := buildMailer(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var transcriptMailer recordingProcessor.TranscriptMailer
	if mailer != nil {
		transcriptMailer = email.New(mailer, cfg.Services.DefaultEmailSender,
			cfg.Services.TranscriptRecipient, logger)
	}

	deps.Recordings = recordingProcessor.New(fetcher, transcriber, summarizer,
		transcriptMailer, cfg.Voice.OrgName, logger)

	// Diagnostics call log and webhook handler
	callLog := calllog.New(cfg.Diagnostics.CallLogSize)
	deps.VoiceHandler = voiceHandler.New(voiceProc, deps.Recordings, callLog,
		cfg.Twilio.AuthToken, cfg.Twilio.ValidateSignature, cfg.Server.PublicHostname, logger)

	deps.Guard = auth.NewGuard(cfg.Diagnostics.JWTSecret, logger)
	deps.Site = static.New(cfg.Server.DistDir, logger)

	return deps, nil
}

// buildSummarizer picks the configured summary provider. "off" or a missing
// key returns nil, which makes the pipeline skip the summary stage.
func buildSummarizer(ctx context.Context, cfg *config.Config, openAI *openaiClient.Client,
	deps *Dependencies, logger *observability.Logger) (recordingProcessor.Summarizer, error) {
	switch cfg.Services.SummaryProvider {
	case "openai":
		if openAI == nil {
			logger.Info(ctx, "no openai key, summaries disabled")
			return nil, nil
		}
		return openAI, nil
	case "gemini":
		if cfg.Services.GoogleAIAPIKey == "" {
			logger.Info(ctx, "no google ai key, summaries disabled")
			return nil, nil
		}
		client, err := googleai.New(ctx, cfg.Services.GoogleAIAPIKey, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create google ai client: %w", err)
		}
		deps.GeminiClient = client
		return client, nil
	case "off":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q", cfg.Services.SummaryProvider)
	}
}

// buildMailer picks the configured email provider, or nil when no provider
// is usable.
func buildMailer(ctx context.Context, cfg *config.Config, logger *observability.Logger) (email.Mailer, error) {
	switch cfg.Services.EmailProvider {
	case "resend":
		if cfg.Services.ResendAPIKey == "" {
			logger.Info(ctx, "no resend key, transcript email disabled")
			return nil, nil
		}
		return mail.NewResendClient(cfg.Services.ResendAPIKey, logger)
	case "smtp":
		if cfg.Services.SMTPHost == "" {
			logger.Info(ctx, "no smtp host, transcript email disabled")
			return nil, nil
		}
		return mail.NewSMTPClient(cfg.Services.SMTPHost, cfg.Services.SMTPPort,
			cfg.Services.SMTPUsername, cfg.Services.SMTPPassword, logger)
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Services.EmailProvider)
	}
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if d.GreetingStore != nil {
		_ = d.GreetingStore.Close()
	}
	if d.GeminiClient != nil {
		_ = d.GeminiClient.Close()
	}
}

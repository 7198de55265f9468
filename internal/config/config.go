package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Twilio      TwilioConfig
	Voice       VoiceConfig
	Hours       HoursConfig
	Services    ServicesConfig
	Database    DatabaseConfig
	Diagnostics DiagnosticsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	PublicHostname string // external hostname Twilio signs requests against
	DistDir        string // pre-built SPA bundle location
}

// TwilioConfig holds telephony provider credentials and call routing settings
type TwilioConfig struct {
	AccountSID        string
	AuthToken         string
	ValidateSignature bool
	ForwardToNumber   string // bridge target; empty means voicemail-only
	DialTimeoutSecs   int
}

// VoiceConfig holds greeting and locale settings for the hotline
type VoiceConfig struct {
	OrgName          string
	AgentName        string
	DefaultLocale    string
	TaglineOn        bool
	GreetingTemplate string
	// LocaleOverrides is the parsed LOCALE_VOICE_OVERRIDES JSON map, keyed by locale.
	LocaleOverrides map[string]LocaleVoice
	// EnvPairOverrides holds per-locale VOICE_<SLUG>_LANGUAGE / VOICE_<SLUG>_VOICE pairs.
	EnvPairOverrides map[string]LocaleVoice
}

// LocaleVoice is a (language tag, synthesized voice) pair for a locale.
type LocaleVoice struct {
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// HoursConfig holds the optional business-hours window
type HoursConfig struct {
	Span     string // "HH:MM-HH:MM", empty disables the feature
	Timezone string
}

// ServicesConfig holds external service API keys and configuration
type ServicesConfig struct {
	OpenAIAPIKey        string
	GoogleAIAPIKey      string
	SummaryProvider     string // "openai", "gemini" or "off"
	EmailProvider       string // "resend" or "smtp"
	ResendAPIKey        string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	DefaultEmailSender  string
	TranscriptRecipient string
}

// DatabaseConfig holds the optional greeting-store connection
type DatabaseConfig struct {
	URL string // empty disables the store
}

// DiagnosticsConfig holds operator diagnostics settings
type DiagnosticsConfig struct {
	JWTSecret   string // empty leaves /twilioz unauthenticated
	CallLogSize int
}

// builtinLocales mirrors the locale set the voice resolver supports out of the box.
// Kept here so env pair overrides are read for every known locale at load time.
var builtinLocales = []string{
	"en-CA", "en-US", "fr-CA", "zh-CN", "fil-PH", "hi-IN", "vi-VN", "uk-UA",
}

// Load reads environment variables into a Config. Missing vendor keys are not
// errors: the relay degrades feature by feature instead of refusing to boot.
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		_ = godotenv.Load("env.local")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Host = getEnvWithDefault("HOST", "0.0.0.0")
	port, err := strconv.Atoi(getEnvWithDefault("PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PORT: %w", err)
	}
	cfg.Server.Port = port
	cfg.Server.PublicHostname = os.Getenv("PUBLIC_HOSTNAME")
	cfg.Server.DistDir = getEnvWithDefault("DIST_DIR", "dist")

	// Twilio configuration
	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.ValidateSignature = cfg.Twilio.AuthToken != "" &&
		getEnvWithDefault("VALIDATE_TWILIO_SIGNATURE", "1") != "0"
	cfg.Twilio.ForwardToNumber = os.Getenv("FORWARD_TO_NUMBER")
	cfg.Twilio.DialTimeoutSecs, err = strconv.Atoi(getEnvWithDefault("DIAL_TIMEOUT_SECONDS", "25"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DIAL_TIMEOUT_SECONDS: %w", err)
	}

	// Voice configuration
	cfg.Voice.OrgName = getEnvWithDefault("ORG_NAME", "Apex Business Systems")
	cfg.Voice.AgentName = getEnvWithDefault("AGENT_NAME", "Nova")
	cfg.Voice.DefaultLocale = getEnvWithDefault("LOCALE", "en-CA")
	cfg.Voice.TaglineOn = strings.EqualFold(getEnvWithDefault("TAGLINE_ON", "true"), "true")
	cfg.Voice.GreetingTemplate = getEnvWithDefault("GREETING_TEMPLATE",
		"Hi, this is {{biz}} support, powered by TradeLine 24/7! I'm {{agent}}, always here to help.")
	cfg.Voice.LocaleOverrides = parseLocaleOverrides(os.Getenv("LOCALE_VOICE_OVERRIDES"))
	cfg.Voice.EnvPairOverrides = readEnvPairOverrides()

	// Business hours
	cfg.Hours.Span = os.Getenv("BUSINESS_HOURS")
	cfg.Hours.Timezone = getEnvWithDefault("TIMEZONE", "America/Edmonton")

	// Services configuration
	cfg.Services.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Services.GoogleAIAPIKey = os.Getenv("GOOGLE_AI_API_KEY")
	cfg.Services.SummaryProvider = getEnvWithDefault("SUMMARY_PROVIDER", "openai")
	cfg.Services.EmailProvider = getEnvWithDefault("EMAIL_PROVIDER", "resend")
	cfg.Services.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.Services.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Services.SMTPPort, err = strconv.Atoi(getEnvWithDefault("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SMTP_PORT: %w", err)
	}
	cfg.Services.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.Services.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Services.DefaultEmailSender = getEnvWithDefault("DEFAULT_EMAIL_SENDER_ADDRESS",
		"TradeLine 24/7 <no-reply@tradeline247ai.com>")
	cfg.Services.TranscriptRecipient = os.Getenv("TRANSCRIPT_RECIPIENT")

	// Optional greeting store
	cfg.Database.URL = os.Getenv("DATABASE_URL")

	// Diagnostics configuration
	cfg.Diagnostics.JWTSecret = os.Getenv("DIAGNOSTICS_JWT_SECRET")
	cfg.Diagnostics.CallLogSize, err = strconv.Atoi(getEnvWithDefault("CALL_LOG_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CALL_LOG_SIZE: %w", err)
	}

	return cfg, nil
}

// parseLocaleOverrides parses the LOCALE_VOICE_OVERRIDES JSON map.
// Malformed JSON is treated as absent, matching the degrade-don't-crash policy.
func parseLocaleOverrides(raw string) map[string]LocaleVoice {
	if raw == "" {
		return nil
	}
	var m map[string]LocaleVoice
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

// readEnvPairOverrides reads VOICE_<SLUG>_LANGUAGE / VOICE_<SLUG>_VOICE pairs
// for every built-in locale (en-CA -> VOICE_EN_CA_*).
func readEnvPairOverrides() map[string]LocaleVoice {
	out := make(map[string]LocaleVoice)
	for _, locale := range builtinLocales {
		slug := strings.ToUpper(strings.ReplaceAll(locale, "-", "_"))
		language := os.Getenv("VOICE_" + slug + "_LANGUAGE")
		voice := os.Getenv("VOICE_" + slug + "_VOICE")
		if language == "" && voice == "" {
			continue
		}
		out[locale] = LocaleVoice{Language: language, Voice: voice}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradeline-server/internal/config"
	"tradeline-server/internal/greetings"
	"tradeline-server/internal/hours"
	"tradeline-server/internal/observability"

	"github.com/twilio/twilio-go/twiml"
)

// Dial outcome statuses reported by Twilio.
const (
	DialStatusCompleted = "completed"
	DialStatusNoAnswer  = "no-answer"
	DialStatusBusy      = "busy"
	DialStatusFailed    = "failed"
)

// InboundCall is one inbound-call notification from the provider.
type InboundCall struct {
	CallSid       string
	From          string
	To            string
	ForwardedFrom string
	FromCountry   string
}

// DialOutcome is the result of a previously bridged call leg.
type DialOutcome struct {
	CallSid      string
	From         string
	To           string
	DialStatus   string
	DialDuration string
}

// VoiceProcessor builds call-control documents for inbound calls.
type VoiceProcessor struct {
	voiceCfg     config.VoiceConfig
	forwardTo    string // normalized bridge target; empty means voicemail-only
	dialTimeout  int
	callbackBase string
	locales      LocaleResolver
	window       hours.Window
	greetings    GreetingStore
	now          func() time.Time
	logger       *observability.Logger
}

// New creates a VoiceProcessor. store may be nil when no greeting database is
// configured.
func New(cfg *config.Config, window hours.Window, store GreetingStore, logger *observability.Logger) *VoiceProcessor {
	callbackBase := ""
	if cfg.Server.PublicHostname != "" {
		callbackBase = "https://" + cfg.Server.PublicHostname
	}
	return &VoiceProcessor{
		voiceCfg:     cfg.Voice,
		forwardTo:    NormalizeNumber(cfg.Twilio.ForwardToNumber),
		dialTimeout:  cfg.Twilio.DialTimeoutSecs,
		callbackBase: callbackBase,
		locales:      NewLocaleResolver(cfg.Voice),
		window:       window,
		greetings:    store,
		now:          time.Now,
		logger:       logger,
	}
}

// NormalizeNumber reduces a phone number to canonical form: digits plus an
// optional leading +.
func NormalizeNumber(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AnswerInbound answers an inbound-call notification with a call-control
// document. The bridge target is never dialed when the call was forwarded
// from that same number: redialing it would bounce the call between the
// hotline and the line that forwards to it.
func (p *VoiceProcessor) AnswerInbound(ctx context.Context, call InboundCall) (string, error) {
	caller := NormalizeNumber(call.From)
	forwardedFrom := NormalizeNumber(call.ForwardedFrom)

	greeting, profile := p.resolveGreeting(ctx, call)

	hairpin := p.forwardTo != "" && (forwardedFrom == p.forwardTo || caller == p.forwardTo)
	switch {
	case hairpin:
		ctx = observability.WithFields(ctx, observability.Field{Key: "reason", Value: "hairpin"})
		p.logger.Info(ctx, "skipping bridge, recording directly")
		return p.voicemailDocument(greeting, profile)
	case p.forwardTo == "":
		p.logger.Warn(ctx, "no forward target configured, voicemail only")
		return p.voicemailDocument(greeting, profile)
	case p.window.ClosedAt(p.now()):
		return p.voicemailDocument(greeting, profile)
	default:
		return p.bridgeDocument(call, greeting, profile)
	}
}

// HandleDialOutcome reacts to the outcome of the bridged leg. Anything other
// than a completed dial falls through to voicemail.
func (p *VoiceProcessor) HandleDialOutcome(ctx context.Context, outcome DialOutcome) (string, error) {
	if outcome.DialStatus == DialStatusCompleted {
		return twiml.Voice(nil)
	}

	profile := p.locales.Resolve(p.voiceCfg.DefaultLocale)
	say := &twiml.VoiceSay{
		Message:  "We couldn't connect you right now. Please leave a message after the tone.",
		Voice:    profile.Voice,
		Language: profile.Language,
	}
	return twiml.Voice([]twiml.Element{say, p.recordVerb(), &twiml.VoiceHangup{}})
}

// TechnicalDifficulties is the spoken fallback when inbound handling fails.
// A caller must always hear a prompt rather than a dropped call.
func (p *VoiceProcessor) TechnicalDifficulties() string {
	say := &twiml.VoiceSay{
		Message: "We're experiencing technical difficulties. Please try again later.",
	}
	doc, err := twiml.Voice([]twiml.Element{say, &twiml.VoiceHangup{}})
	if err != nil {
		return `<?xml version="1.0" encoding="UTF-8"?><Response><Say>We're experiencing technical difficulties. Please try again later.</Say><Hangup/></Response>`
	}
	return doc
}

// resolveGreeting picks the greeting text and voice for this call, preferring
// the per-hotline database row over env configuration.
func (p *VoiceProcessor) resolveGreeting(ctx context.Context, call InboundCall) (string, VoiceProfile) {
	agent := p.voiceCfg.AgentName
	template := p.voiceCfg.GreetingTemplate
	taglineOn := p.voiceCfg.TaglineOn

	locale := p.voiceCfg.DefaultLocale
	if l, ok := countryLocale[call.FromCountry]; ok {
		locale = l
	}

	if p.greetings != nil {
		h, err := p.greetings.HotlineByNumber(ctx, call.To)
		switch {
		case err == nil:
			if h.AgentName != "" {
				agent = h.AgentName
			}
			if h.GreetingTemplate != "" {
				template = h.GreetingTemplate
			}
			if h.Locale != "" {
				locale = h.Locale
			}
			taglineOn = h.TaglineOn
		case errors.Is(err, greetings.ErrNotFound):
			// fall through to env configuration
		default:
			p.logger.Error(ctx, "greeting lookup failed, using configured greeting", err)
		}
	}

	return renderGreeting(template, p.voiceCfg.OrgName, agent, taglineOn), p.locales.Resolve(locale)
}

// renderGreeting fills the {{biz}}/{{agent}} placeholders. With the tagline
// switched off the brand mention is stripped from the stock template.
func renderGreeting(template, org, agent string, taglineOn bool) string {
	greeting := strings.NewReplacer("{{biz}}", org, "{{agent}}", agent).Replace(template)
	if !taglineOn {
		greeting = strings.ReplaceAll(greeting, ", powered by TradeLine 24/7", "")
	}
	return greeting
}

func (p *VoiceProcessor) bridgeDocument(call InboundCall, greeting string, profile VoiceProfile) (string, error) {
	say := &twiml.VoiceSay{
		Message:  greeting,
		Voice:    profile.Voice,
		Language: profile.Language,
	}
	dial := &twiml.VoiceDial{
		Number:                        p.forwardTo,
		Timeout:                       strconv.Itoa(p.dialTimeout),
		CallerId:                      call.To,
		Action:                        p.callbackURL("/voice/after-dial"),
		Method:                        "POST",
		Record:                        "record-from-answer-dual",
		RecordingStatusCallback:       p.callbackURL("/voice/recording-status"),
		RecordingStatusCallbackMethod: "POST",
	}
	return twiml.Voice([]twiml.Element{say, dial})
}

func (p *VoiceProcessor) voicemailDocument(greeting string, profile VoiceProfile) (string, error) {
	sayGreeting := &twiml.VoiceSay{
		Message:  greeting,
		Voice:    profile.Voice,
		Language: profile.Language,
	}
	sayPrompt := &twiml.VoiceSay{
		Message:  "Please leave a message after the tone.",
		Voice:    profile.Voice,
		Language: profile.Language,
	}
	return twiml.Voice([]twiml.Element{sayGreeting, sayPrompt, p.recordVerb(), &twiml.VoiceHangup{}})
}

func (p *VoiceProcessor) recordVerb() *twiml.VoiceRecord {
	return &twiml.VoiceRecord{
		MaxLength:                     "120",
		PlayBeep:                      "true",
		FinishOnKey:                   "#",
		RecordingStatusCallback:       p.callbackURL("/voice/recording-status"),
		RecordingStatusCallbackMethod: "POST",
	}
}

// callbackURL builds an absolute callback URL when the public hostname is
// known; Twilio resolves relative URLs against the current webhook otherwise.
func (p *VoiceProcessor) callbackURL(path string) string {
	if p.callbackBase == "" {
		return path
	}
	return fmt.Sprintf("%s%s", p.callbackBase, path)
}

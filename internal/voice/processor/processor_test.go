package processor

import (
	"context"
	"strings"
	"testing"
	"time"

	"tradeline-server/internal/config"
	"tradeline-server/internal/greetings"
	"tradeline-server/internal/hours"
	"tradeline-server/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGreetingStore struct {
	hotline greetings.Hotline
	err     error
	gotTo   string
}

func (f *fakeGreetingStore) HotlineByNumber(ctx context.Context, phoneE164 string) (greetings.Hotline, error) {
	f.gotTo = phoneE164
	return f.hotline, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		Twilio: config.TwilioConfig{
			ForwardToNumber: "+15557654321",
			DialTimeoutSecs: 25,
		},
		Voice: config.VoiceConfig{
			OrgName:       "Apex Business Systems",
			AgentName:     "Nova",
			DefaultLocale: "en-CA",
			TaglineOn:     true,
			GreetingTemplate: "Hi, this is {{biz}} support, powered by TradeLine 24/7! " +
				"I'm {{agent}}, always here to help.",
		},
	}
}

func newTestProcessor(t *testing.T, cfg *config.Config, store GreetingStore) *VoiceProcessor {
	t.Helper()
	window, err := hours.New("", "America/Edmonton")
	require.NoError(t, err)
	return New(cfg, window, store, observability.NewLogger())
}

func TestNormalizeNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want string
	}{
		{"+1 (555) 765-4321", "+15557654321"},
		{"15557654321", "15557654321"},
		{"555.765.4321", "5557654321"},
		{"", ""},
		{"words only", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeNumber(tt.raw), "raw %q", tt.raw)
	}
}

func TestAnswerInbound_BridgesToForwardTarget(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA123",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "<Dial")
	assert.Contains(t, doc, "+15557654321")
	assert.Contains(t, doc, `timeout="25"`)
	assert.Contains(t, doc, `callerId="+15559990000"`)
	assert.Contains(t, doc, `record="record-from-answer-dual"`)
	assert.Contains(t, doc, `action="/voice/after-dial"`)
	assert.Contains(t, doc, "Apex Business Systems")
	assert.Contains(t, doc, "Nova")
	assert.NotContains(t, doc, "<Record")
}

func TestAnswerInbound_ForwardedFromTargetSkipsDial(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid:       "CA124",
		From:          "+15550001111",
		To:            "+15559990000",
		ForwardedFrom: "(555) 765-4321", // normalizes to the bridge target minus +1
	})
	require.NoError(t, err)

	// Different canonical forms of the same digits are not equal, so this
	// one still bridges.
	assert.Contains(t, doc, "<Dial")

	doc, err = p.AnswerInbound(context.Background(), InboundCall{
		CallSid:       "CA125",
		From:          "+15550001111",
		To:            "+15559990000",
		ForwardedFrom: "+1 555 765 4321",
	})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<Dial")
	assert.Contains(t, doc, "<Record")
	assert.Contains(t, doc, "Please leave a message after the tone.")
}

func TestAnswerInbound_CallerIsTargetSkipsDial(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA126",
		From:    "+15557654321",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<Dial")
	assert.Contains(t, doc, "<Record")
}

func TestAnswerInbound_NoForwardTargetGoesToVoicemail(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Twilio.ForwardToNumber = ""
	p := newTestProcessor(t, cfg, nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA127",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<Dial")
	assert.Contains(t, doc, "<Record")
	assert.Contains(t, doc, `maxLength="120"`)
	assert.Contains(t, doc, `finishOnKey="#"`)
}

func TestAnswerInbound_ClosedHoursGoToVoicemail(t *testing.T) {
	t.Parallel()
	window, err := hours.New("09:00-17:00", "UTC")
	require.NoError(t, err)
	p := New(testConfig(), window, nil, observability.NewLogger())
	p.now = func() time.Time {
		return time.Date(2026, 8, 28, 22, 30, 0, 0, time.UTC)
	}

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA140",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<Dial")
	assert.Contains(t, doc, "<Record")
	assert.Contains(t, doc, "Please leave a message after the tone.")
}

func TestAnswerInbound_OpenHoursStillBridge(t *testing.T) {
	t.Parallel()
	window, err := hours.New("09:00-17:00", "UTC")
	require.NoError(t, err)
	p := New(testConfig(), window, nil, observability.NewLogger())
	p.now = func() time.Time {
		return time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC)
	}

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA141",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "<Dial")
	assert.NotContains(t, doc, "<Record")
}

func TestAnswerInbound_GreetingLocaleFollowsCallerCountry(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid:     "CA128",
		From:        "+33123456789",
		To:          "+15559990000",
		FromCountry: "IN",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, `language="en-IN"`)
}

func TestAnswerInbound_HotlineRowOverridesGreeting(t *testing.T) {
	t.Parallel()
	store := &fakeGreetingStore{
		hotline: greetings.Hotline{
			PhoneE164:        "+15559990000",
			AgentName:        "Sam",
			GreetingTemplate: "You have reached {{biz}}. {{agent}} speaking.",
			Locale:           "fr-CA",
			TaglineOn:        true,
		},
	}
	p := newTestProcessor(t, testConfig(), store)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA129",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.Equal(t, "+15559990000", store.gotTo)
	assert.Contains(t, doc, "You have reached Apex Business Systems. Sam speaking.")
	assert.Contains(t, doc, `language="fr-CA"`)
}

func TestAnswerInbound_StoreMissUsesConfiguredGreeting(t *testing.T) {
	t.Parallel()
	store := &fakeGreetingStore{err: greetings.ErrNotFound}
	p := newTestProcessor(t, testConfig(), store)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA130",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "Hi, this is Apex Business Systems support")
}

func TestRenderGreeting_TaglineOffStripsBrand(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	greeting := renderGreeting(cfg.Voice.GreetingTemplate, cfg.Voice.OrgName, cfg.Voice.AgentName, false)

	assert.NotContains(t, greeting, "TradeLine 24/7")
	assert.Contains(t, greeting, "Hi, this is Apex Business Systems support! I'm Nova")
}

func TestHandleDialOutcome_CompletedAnswersEmptyDocument(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc, err := p.HandleDialOutcome(context.Background(), DialOutcome{
		CallSid:    "CA131",
		DialStatus: DialStatusCompleted,
	})
	require.NoError(t, err)

	assert.NotContains(t, doc, "<Say")
	assert.NotContains(t, doc, "<Record")
	assert.Contains(t, doc, "<Response")
}

func TestHandleDialOutcome_NonCompletedFallsToVoicemail(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	for _, status := range []string{DialStatusNoAnswer, DialStatusBusy, DialStatusFailed} {
		doc, err := p.HandleDialOutcome(context.Background(), DialOutcome{
			CallSid:    "CA132",
			DialStatus: status,
		})
		require.NoError(t, err)

		assert.Contains(t, doc, "<Record", "status %s", status)
		assert.Contains(t, doc, "<Hangup", "status %s", status)
		assert.Contains(t, doc, "We couldn't connect you right now.", "status %s", status)
	}
}

func TestCallbackURL_AbsoluteWithPublicHostname(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Server.PublicHostname = "www.tradeline247ai.com"
	p := newTestProcessor(t, cfg, nil)

	doc, err := p.AnswerInbound(context.Background(), InboundCall{
		CallSid: "CA133",
		From:    "+15550001111",
		To:      "+15559990000",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "https://www.tradeline247ai.com/voice/after-dial")
	assert.Contains(t, doc, "https://www.tradeline247ai.com/voice/recording-status")
}

func TestTechnicalDifficulties_AlwaysYieldsDocument(t *testing.T) {
	t.Parallel()
	p := newTestProcessor(t, testConfig(), nil)

	doc := p.TechnicalDifficulties()
	assert.True(t, strings.Contains(doc, "technical difficulties"))
	assert.Contains(t, doc, "<Hangup")
}

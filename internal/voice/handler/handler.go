package handler

import (
	"net/http"
	"strconv"
	"time"

	"tradeline-server/internal/metrics"
	"tradeline-server/internal/observability"
	recording "tradeline-server/internal/recording/processor"
	"tradeline-server/internal/voice/calllog"
	"tradeline-server/internal/voice/processor"

	"github.com/gin-gonic/gin"
	twclient "github.com/twilio/twilio-go/client"
)

// Handler answers Twilio voice webhooks.
type Handler struct {
	voiceProcessor *processor.VoiceProcessor
	recordings     *recording.RecordingProcessor
	callLog        *calllog.Log
	validator      twclient.RequestValidator
	validate       bool
	publicHostname string
	logger         *observability.Logger
}

// New creates a Handler. Signature validation is skipped entirely when
// validate is false (no auth token configured, or explicitly disabled).
func New(voiceProcessor *processor.VoiceProcessor, recordings *recording.RecordingProcessor,
	callLog *calllog.Log, authToken string, validate bool, publicHostname string,
	logger *observability.Logger) Handler {
	return Handler{
		voiceProcessor: voiceProcessor,
		recordings:     recordings,
		callLog:        callLog,
		validator:      twclient.NewRequestValidator(authToken),
		validate:       validate,
		publicHostname: publicHostname,
		logger:         logger,
	}
}

// HandleInboundCall answers an inbound-call notification with TwiML.
// Internal failures still answer 200 with a spoken apology: a caller must
// never be dropped because of a server bug.
func (h *Handler) HandleInboundCall(c *gin.Context) {
	ctx := c.Request.Context()

	call := processor.InboundCall{
		CallSid:       c.PostForm("CallSid"),
		From:          c.PostForm("From"),
		To:            c.PostForm("To"),
		ForwardedFrom: firstNonEmpty(c.PostForm("ForwardedFrom"), c.PostForm("CalledVia")),
		FromCountry:   c.PostForm("FromCountry"),
	}

	doc, err := h.voiceProcessor.AnswerInbound(ctx, call)
	if err != nil {
		h.logger.Error(ctx, "failed to build call-control document", err)
		doc = h.voiceProcessor.TechnicalDifficulties()
	}

	h.respondTwiML(c, "answer", doc)
}

// HandleDialOutcome reacts to the dial outcome of a bridged call and records
// the outcome for operator diagnostics.
func (h *Handler) HandleDialOutcome(c *gin.Context) {
	ctx := c.Request.Context()

	outcome := processor.DialOutcome{
		CallSid:      c.PostForm("CallSid"),
		From:         c.PostForm("From"),
		To:           c.PostForm("To"),
		DialStatus:   c.PostForm("DialCallStatus"),
		DialDuration: c.PostForm("DialCallDuration"),
	}

	h.callLog.Append(calllog.Entry{
		CallSid:      outcome.CallSid,
		From:         outcome.From,
		To:           outcome.To,
		DialStatus:   outcome.DialStatus,
		DialDuration: outcome.DialDuration,
		At:           time.Now().UTC(),
	})

	doc, err := h.voiceProcessor.HandleDialOutcome(ctx, outcome)
	if err != nil {
		h.logger.Error(ctx, "failed to build dial-outcome document", err)
		doc = h.voiceProcessor.TechnicalDifficulties()
	}

	h.respondTwiML(c, "after-dial", doc)
}

// HandleRecordingStatus acknowledges a recording-completed notification
// immediately and hands the event to the background pipeline. The provider's
// redelivery timer must never wait on our downstream API calls.
func (h *Handler) HandleRecordingStatus(c *gin.Context) {
	event := recording.Event{
		RecordingSid: c.PostForm("RecordingSid"),
		RecordingURL: c.PostForm("RecordingUrl"),
		CallSid:      c.PostForm("CallSid"),
		From:         c.PostForm("From"),
		To:           c.PostForm("To"),
		Duration:     c.PostForm("RecordingDuration"),
	}

	h.recordings.Enqueue(event)

	metrics.VoiceRequestsTotal.WithLabelValues("recording-status", strconv.Itoa(http.StatusNoContent)).Inc()
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondTwiML(c *gin.Context, route, doc string) {
	metrics.VoiceRequestsTotal.WithLabelValues(route, strconv.Itoa(http.StatusOK)).Inc()
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, doc)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

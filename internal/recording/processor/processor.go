package processor

import (
	"context"
	"fmt"
	"time"

	"tradeline-server/internal/email"
	"tradeline-server/internal/metrics"
	"tradeline-server/internal/observability"
)

// Placeholder texts used when a pipeline stage cannot run. The email still
// goes out with whatever survived.
const (
	TranscriptUnavailable = "(transcript unavailable: transcription service not configured)"
	TranscriptFetchFailed = "(transcript unavailable: recording could not be retrieved)"
	SummaryUnavailable    = "Summary unavailable."
)

// Event is one recording-completed notification from the provider.
type Event struct {
	RecordingSid string
	RecordingURL string
	CallSid      string
	From         string
	To           string
	Duration     string
}

// RecordingProcessor turns a completed call recording into a delivered
// transcript email, best effort. The provider may redeliver the same
// notification; there is no dedup store, so a redelivery produces a
// duplicate email.
type RecordingProcessor struct {
	fetcher     MediaFetcher
	transcriber Transcriber
	summarizer  Summarizer
	mailer      TranscriptMailer
	orgName     string
	logger      *observability.Logger
}

// New creates a RecordingProcessor. Any collaborator may be nil; the
// corresponding stage is skipped and its placeholder used instead.
func New(fetcher MediaFetcher, transcriber Transcriber, summarizer Summarizer,
	mailer TranscriptMailer, orgName string, logger *observability.Logger) *RecordingProcessor {
	return &RecordingProcessor{
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		mailer:      mailer,
		orgName:     orgName,
		logger:      logger,
	}
}

// Enqueue runs the pipeline on a background goroutine, detached from the
// webhook request so the provider gets its acknowledgment immediately.
// Errors and panics are captured at the task boundary and logged.
func (p *RecordingProcessor) Enqueue(event Event) {
	ctx := observability.WithFields(context.Background(),
		observability.Field{Key: "call_sid", Value: event.CallSid},
		observability.Field{Key: "recording_sid", Value: event.RecordingSid},
	)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error(ctx, "recording pipeline panicked", fmt.Errorf("reason: %+v", r))
			}
		}()
		p.Process(ctx, event)
	}()
}

// Process runs the fetch, transcribe, summarize, email pipeline. Each stage
// is failure-isolated: a stage that cannot run degrades the email rather
// than aborting it.
func (p *RecordingProcessor) Process(ctx context.Context, event Event) {
	metrics.RecordingsProcessed.Inc()

	if event.RecordingURL == "" {
		p.logger.Warn(ctx, "recording notification without a recording URL, skipping")
		return
	}

	var audio []byte
	if p.fetcher != nil {
		fetched, err := p.fetcher.FetchRecording(ctx, event.RecordingURL)
		if err != nil {
			p.logger.Error(ctx, "failed to fetch recording audio", err)
		} else {
			audio = fetched
		}
	} else {
		p.logger.Warn(ctx, "no media credentials configured, skipping recording fetch")
	}

	transcript := p.transcribe(ctx, audio)
	summary := p.summarize(ctx, transcript)

	if p.mailer == nil {
		p.logger.Warn(ctx, "no transcript mailer configured, dropping transcript")
		return
	}

	data := email.TranscriptData{
		OrgName:       p.orgName,
		CallerNumber:  event.From,
		HotlineNumber: event.To,
		CallSid:       event.CallSid,
		Duration:      event.Duration,
		ReceivedAt:    time.Now().UTC().Format(time.RFC1123),
		Transcript:    transcript,
		Summary:       summary,
	}
	if err := p.mailer.SendTranscriptEmail(ctx, data); err != nil {
		metrics.EmailFailures.Inc()
		p.logger.Error(ctx, "failed to deliver transcript email", err)
		return
	}
	metrics.TranscriptsEmailed.Inc()
}

func (p *RecordingProcessor) transcribe(ctx context.Context, audio []byte) string {
	if len(audio) == 0 {
		return TranscriptFetchFailed
	}
	if p.transcriber == nil {
		p.logger.Warn(ctx, "transcription service not configured, using placeholder transcript")
		return TranscriptUnavailable
	}
	transcript, err := p.transcriber.TranscribeRecording(ctx, audio)
	if err != nil {
		p.logger.Error(ctx, "transcription failed", err)
		return TranscriptUnavailable
	}
	if transcript == "" {
		return TranscriptUnavailable
	}
	return transcript
}

func (p *RecordingProcessor) summarize(ctx context.Context, transcript string) string {
	if p.summarizer == nil {
		return SummaryUnavailable
	}
	if transcript == TranscriptUnavailable || transcript == TranscriptFetchFailed {
		return SummaryUnavailable
	}
	summary, err := p.summarizer.Summarize(ctx, transcript)
	if err != nil {
		p.logger.Error(ctx, "summarization failed", err)
		return SummaryUnavailable
	}
	return summary
}

package processor

import (
	"context"

	"tradeline-server/internal/email"
)

// MediaFetcher downloads recording audio from the telephony provider.
type MediaFetcher interface {
	FetchRecording(ctx context.Context, recordingURL string) ([]byte, error)
}

// Transcriber turns recording audio into a plain-text transcript.
type Transcriber interface {
	TranscribeRecording(ctx context.Context, audio []byte) (string, error)
}

// Summarizer produces a short summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// TranscriptMailer delivers the finished transcript notification.
type TranscriptMailer interface {
	SendTranscriptEmail(ctx context.Context, data email.TranscriptData) error
}

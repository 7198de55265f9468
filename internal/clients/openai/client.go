package openai

import (
	"bytes"
	"context"
	"fmt"

	"tradeline-server/internal/observability"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const summarySystemPrompt = "You summarize voicemail and call transcripts for a small business owner. " +
	"Reply with a brief summary, key points, and any follow-up actions. Keep it short."

// Client wraps the OpenAI API for recording transcription and transcript
// summarization.
type Client struct {
	api    openai.Client
	logger *observability.Logger
}

// New creates an OpenAI client.
func New(apiKey string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &Client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}, nil
}

// TranscribeRecording runs Whisper over the recording audio and returns the
// plain-text transcript.
func (c *Client) TranscribeRecording(ctx context.Context, audio []byte) (string, error) {
	transcription, err := c.api.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(bytes.NewReader(audio), "recording.mp3", "audio/mpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return transcription.Text, nil
}

// Summarize asks a chat model for a short summary of a call transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(transcript),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("summary response had no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

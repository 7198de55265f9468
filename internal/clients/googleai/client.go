package googleai

import (
	"context"
	"fmt"
	"strings"

	"tradeline-server/internal/observability"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const summaryPrompt = "Summarize this voicemail or call transcript for a small business owner. " +
	"Give a brief summary, key points, and any follow-up actions. Keep it short.\n\nTranscript:\n"

// Client summarizes transcripts using Gemini.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *observability.Logger
}

// New creates a Google AI client.
func New(ctx context.Context, apiKey string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}
	return &Client{
		client: client,
		model:  client.GenerativeModel("gemini-1.5-flash"),
		logger: logger,
	}, nil
}

// Summarize asks Gemini for a short summary of a call transcript.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(summaryPrompt+transcript))
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("summary response had no text content")
	}
	return b.String(), nil
}

// Close releases the underlying API connection.
func (c *Client) Close() error {
	return c.client.Close()
}

package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tradeline-server/internal/observability"
)

// Client downloads call recording media from Twilio's REST API using
// account basic auth.
type Client struct {
	accountSID string
	authToken  string
	httpClient *http.Client
	logger     *observability.Logger
}

// New creates a media client for the given account credentials.
func New(accountSID, authToken string, logger *observability.Logger) (*Client, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("Twilio account SID and auth token are required")
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: http.DefaultClient,
		logger:     logger,
	}, nil
}

// FetchRecording downloads the audio artifact behind a RecordingUrl. The
// bare URL Twilio posts has no extension; the canonical audio resource is
// the .mp3 sibling.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	url := recordingURL
	if !strings.HasSuffix(url, ".mp3") && !strings.HasSuffix(url, ".wav") {
		url += ".mp3"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recording download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recording download returned %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording body: %w", err)
	}

	c.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "recording_bytes", Value: len(audio)},
	), "recording downloaded")
	return audio, nil
}

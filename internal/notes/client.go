// Package notes talks to the upstream Notes service that turns document
// text into practice question and answer pairs.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnavailable covers every upstream failure mode: connection errors,
// timeouts, non-2xx responses and malformed payloads. Callers never see
// upstream details beyond this error.
var ErrUnavailable = errors.New("notes service unavailable")

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("notes service not configured")

// Pair is one generated question with its answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generator produces question pairs for document content.
type Generator interface {
	Generate(ctx context.Context, documentTitle string, content []byte) ([]Pair, error)
}

// Client is an HTTP Generator against the Notes service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Title   string `json:"title"`
	Content []byte `json:"content"`
}

type generateResponse struct {
	Questions []Pair `json:"questions"`
}

// Generate posts the document to the Notes service and returns the
// generated pairs. Any failure is reported as ErrUnavailable.
func (c *Client) Generate(ctx context.Context, documentTitle string, content []byte) ([]Pair, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{Title: documentTitle, Content: content})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/questions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid response body", ErrUnavailable)
	}
	// An empty question list is a valid answer for thin documents.
	return parsed.Questions, nil
}

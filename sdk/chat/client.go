// Package chat implements the streaming chat session controller behind
// the chatkit widget: an HTTP client for the agent backend, an SSE frame
// decoder, a typed event interpreter, and a Session that folds the event
// stream into observable conversation state with mid-stream cancellation.
//
// Example usage:
//
//	client, err := chat.NewClient("http://localhost:8000")
//	if err != nil {
//	    // handle error
//	}
//
//	session := chat.NewSession(client, "default-agent")
//	updates, err := session.Send(ctx, "Hello!")
//	if err != nil {
//	    // handle error
//	}
//	for snapshot := range updates {
//	    // render snapshot.Messages
//	}
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP client for the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	model      *string
	userID     *string
	logger     *Logger
	metadata   *metadataCache
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for request/response calls.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout. Streaming requests are not
// subject to it.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithModel sets the model identifier sent with every chat request.
func WithModel(model string) ClientOption {
	return func(client *Client) {
		client.model = &model
	}
}

// WithUser sets the user identifier sent with every chat request.
func WithUser(userID string) ClientOption {
	return func(client *Client) {
		client.userID = &userID
	}
}

// WithLogger sets the logger. Logging is disabled by default.
func WithLogger(l *Logger) ClientOption {
	return func(client *Client) {
		client.logger = l
	}
}

// WithMetadataTTL sets how long metadata responses are cached.
func WithMetadataTTL(ttl time.Duration) ClientOption {
	return func(client *Client) {
		client.metadata = newMetadataCache(ttl)
	}
}

// NewClient creates a new client. The base URL is required; everything
// else has defaults.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   NewLoggerFromEnv(),
		metadata: newMetadataCache(defaultMetadataTTL),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// String creates a string pointer (helper for optional fields).
func String(s string) *string {
	return &s
}

// doRequest performs an HTTP request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// openStream sends the chat request and returns the raw event-stream
// body. The caller owns the stream and must close it.
func (c *Client) openStream(ctx context.Context, agentID string, chatReq *ChatRequest) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	path := "/agents/" + agentID + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Use a client without timeout for streaming
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp.Body, nil
}

// Metadata returns the agents and models the backend exposes. Responses
// are cached for a bounded window; concurrent callers share one fetch.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	return c.metadata.get(ctx, c.baseURL+"/metadata", func(ctx context.Context) (*Metadata, error) {
		var result Metadata
		if err := c.doRequest(ctx, http.MethodGet, "/metadata", nil, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// FlushMetadata drops the cached metadata so the next call refetches.
func (c *Client) FlushMetadata() {
	c.metadata.flush()
}

// SendFeedback records a score for a completed run.
func (c *Client) SendFeedback(ctx context.Context, runID, key string, score float64) error {
	req := FeedbackRequest{RunID: runID, Key: key, Score: score}
	var result bool
	return c.doRequest(ctx, http.MethodPost, "/feedback", req, &result)
}

// GetHistory retrieves the stored messages of a thread.
func (c *Client) GetHistory(ctx context.Context, threadID string) ([]Message, error) {
	var result HistoryResponse
	if err := c.doRequest(ctx, http.MethodGet, "/history/"+threadID, nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

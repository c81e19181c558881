// Package gemini implements a text-generation client for the Google Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/askbox/pkg/llm"
)

const (
	// DefaultModel is the model askbox asks when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultBaseURL is the public Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single round trip.
	DefaultTimeout = 2 * time.Minute
)

// ErrMissingAPIKey is returned before any network I/O when the client has no key.
var ErrMissingAPIKey = errors.New("gemini: API key is not set")

// Client calls generateContent for one model.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides DefaultModel. Empty strings are ignored.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at a different endpoint (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. It applies regardless of option order and
// never modifies a client passed to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client authorized by apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Model returns the model identifier the client asks.
func (c *Client) Model() string {
	return c.model
}

// Complete submits the conversation and returns the first candidate's text.
// It makes exactly one HTTP request and never retries.
func (c *Client) Complete(ctx context.Context, conv llm.Conversation) (*llm.Completion, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	reqBody, err := json.Marshal(buildRequest(conv))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, decodeError(httpResp.StatusCode, body)
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return c.toCompletion(&resp)
}

func buildRequest(conv llm.Conversation) generateRequest {
	req := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: conv.User.Content}},
		}},
	}
	if conv.System.Content != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: conv.System.Content}}}
	}
	return req
}

func (c *Client) toCompletion(resp *generateResponse) (*llm.Completion, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, errors.New("no candidates in response")
	}

	first := resp.Candidates[0]
	var text strings.Builder
	for _, p := range first.Content.Parts {
		text.WriteString(p.Text)
	}

	completion := &llm.Completion{
		Model:        c.model,
		Text:         text.String(),
		FinishReason: first.FinishReason,
	}
	if resp.ModelVersion != "" {
		completion.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		completion.PromptTokens = u.PromptTokenCount
		completion.OutputTokens = u.CandidatesTokenCount
	}
	return completion, nil
}

func decodeError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		if env.Error.Code == 0 {
			env.Error.Code = status
		}
		return env.Error
	}
	return &APIError{Code: status, Message: strings.TrimSpace(string(body))}
}

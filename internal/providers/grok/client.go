package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.x.ai/v1"

const defaultTimeout = 10 * time.Minute

// Message is one conversational turn. Content is either a plain string or a
// slice of ContentPart when the turn mixes an image reference with text.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part message content.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

// ImageRef wraps an image URL or base64 data reference.
type ImageRef struct {
	URL string `json:"url"`
}

// ChatRequest is a non-streaming chat-completions request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ChatResponse is the decoded completion payload.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

// Choice holds one completion candidate.
type Choice struct {
	Message ChoiceMessage `json:"message"`
}

// ChoiceMessage carries the textual body of a completion choice.
type ChoiceMessage struct {
	Content string `json:"content"`
}

// Content returns the body of the first choice, or "" when there is none.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// chatEnvelope is the wire shape: completion choices plus any media URLs the
// upstream attached alongside the textual body.
type chatEnvelope struct {
	ChatResponse
	MediaURLs []string `json:"media_urls"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Options controls how the Grok client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client invokes the upstream Grok chat API. It performs a single
// non-streaming call per request and applies no retry; the HTTP client
// timeout is the only latency bound.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a Grok client with defaults applied.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, client: client}
}

// CreateCompletion posts the request with the given credential and returns the
// decoded response plus any media URLs the upstream supplied.
func (c *Client) CreateCompletion(ctx context.Context, credential string, req ChatRequest) (*ChatResponse, []string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, nil, fmt.Errorf("grok: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("grok: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("grok: http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		var failure errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr == nil && failure.Error.Message != "" {
			return nil, nil, fmt.Errorf("grok: status %d: %s", resp.StatusCode, failure.Error.Message)
		}
		return nil, nil, fmt.Errorf("grok: status %d", resp.StatusCode)
	}

	var out chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("grok: decode response: %w", err)
	}
	if len(out.Choices) == 0 && len(out.MediaURLs) == 0 {
		return nil, nil, errors.New("grok: empty response")
	}
	return &out.ChatResponse, out.MediaURLs, nil
}

package grok

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCreateCompletionSuccess(t *testing.T) {
	t.Parallel()
	var captured *http.Request
	var capturedBody []byte
	client := NewClient(Options{
		BaseURL: "https://upstream.test/v1",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			capturedBody, _ = io.ReadAll(req.Body)
			return jsonResponse(http.StatusOK, `{
				"choices": [{"message": {"content": "<video src=\"https://assets.test/images/u-1-video.mp4\">"}}],
				"media_urls": ["https://assets.test/images/u-1-video.mp4"]
			}`), nil
		})},
	})

	resp, media, err := client.CreateCompletion(context.Background(), "sso-token-123", ChatRequest{
		Model:    "grok-imagine-0.9",
		Messages: []Message{{Role: "user", Content: "a dog running"}},
	})
	if err != nil {
		t.Fatalf("CreateCompletion returned error: %v", err)
	}
	if got := captured.URL.String(); got != "https://upstream.test/v1/chat/completions" {
		t.Fatalf("request URL = %q", got)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sso-token-123" {
		t.Fatalf("Authorization = %q", got)
	}
	var sent ChatRequest
	if err := json.Unmarshal(capturedBody, &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent.Model != "grok-imagine-0.9" || sent.Stream {
		t.Fatalf("sent request mismatch: %+v", sent)
	}
	if !strings.Contains(resp.Content(), "u-1-video.mp4") {
		t.Fatalf("Content = %q", resp.Content())
	}
	if len(media) != 1 || media[0] != "https://assets.test/images/u-1-video.mp4" {
		t.Fatalf("media urls = %v", media)
	}
}

func TestCreateCompletionOmitsAuthWithoutCredential(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "" {
				t.Fatalf("Authorization = %q, want unset", got)
			}
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`), nil
		})},
	})
	if _, _, err := client.CreateCompletion(context.Background(), "", ChatRequest{Model: "grok-imagine-0.9"}); err != nil {
		t.Fatalf("CreateCompletion returned error: %v", err)
	}
}

func TestCreateCompletionUpstreamError(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`), nil
		})},
	})
	_, _, err := client.CreateCompletion(context.Background(), "tok", ChatRequest{Model: "grok-imagine-0.9"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}

func TestCreateCompletionEmptyResponse(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
		})},
	})
	if _, _, err := client.CreateCompletion(context.Background(), "tok", ChatRequest{Model: "grok-imagine-0.9"}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{BaseURL: "  https://upstream.test/v1/  "})
	if client.baseURL != "https://upstream.test/v1" {
		t.Fatalf("baseURL = %q", client.baseURL)
	}
	if NewClient(Options{}).baseURL != defaultBaseURL {
		t.Fatal("empty base url should take the default")
	}
}

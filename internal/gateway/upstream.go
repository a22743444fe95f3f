package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is one chat message in the OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Upstream opens streaming chat completions against an OpenAI-compatible
// LLM gateway.
type Upstream struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewUpstream returns an Upstream for baseURL (without the
// /chat/completions suffix). A nil httpClient means http.DefaultClient.
func NewUpstream(httpClient *http.Client, baseURL, apiKey, model string) *Upstream {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Upstream{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// Model returns the model name sent with every request.
func (u *Upstream) Model() string {
	return u.model
}

// Open starts a streaming completion and returns the event-stream body.
// The caller must close it. A non-200 answer is an *Error and the body is
// already closed.
func (u *Upstream) Open(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	body, err := json.Marshal(chatRequest{Model: u.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, fmt.Errorf("gateway/upstream: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway/upstream: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway/upstream: sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp.Body, nil
}

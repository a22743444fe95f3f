// Package gateway talks HTTP to AI text-generation endpoints that answer
// with an event stream.
//
// Client is the caller side of the platform's generation endpoint: it posts
// {type, data} with a bearer token and decodes the streamed reply. Upstream
// is the server side's view of the OpenAI-compatible LLM gateway it proxies.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"growth_hub/internal/stream"

	"github.com/sirupsen/logrus"
)

// GenerateRequest is the body posted to the generation endpoint.
type GenerateRequest struct {
	Type string         `json:"type"` // Generation kind, e.g. marketing_copy
	Data map[string]any `json:"data"` // Kind-specific input fields
}

// Client streams generations from a single endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	log        *logrus.Entry
}

// NewClient returns a Client posting to endpoint with token as bearer.
// A nil httpClient means http.DefaultClient.
func NewClient(httpClient *http.Client, endpoint, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      token,
		log:        logrus.WithField("component", "gateway-client"),
	}
}

// Stream sends req and feeds the response body through a fresh decoder.
// Transport failures and non-2xx answers are returned before any callback
// fires; a non-2xx answer is an *Error. Once decoding starts, a read error
// is returned and onDone is not called.
func (c *Client) Stream(ctx context.Context, req GenerateRequest, onDelta func(string), onDone func()) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("gateway: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gateway: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if !isEventStream(resp.Header.Get("Content-Type")) {
		return fmt.Errorf("gateway: unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	return stream.Decode(ctx, resp.Body, onDelta, onDone, stream.WithLogger(c.log.WithField("type", req.Type)))
}

func isEventStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/event-stream"
}

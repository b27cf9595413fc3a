// Package completion issues single chat-completion requests to the remote
// endpoint and derives token usage and cost for each exchange. Failures are
// terminal: there are no retries, no backoff, and no idempotency keys, so
// re-invoking after a failure issues a brand-new request.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sentinel-hse/sentinel/pkg/demo"
	"github.com/sentinel-hse/sentinel/pkg/models"
	"github.com/sentinel-hse/sentinel/pkg/pricing"
)

const completionsPath = "/chat/completions"

// Options configure a Client. Zero fields fall back to defaults.
type Options struct {
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
	Timeout         time.Duration
	PricePerMillion float64

	// HTTPClient overrides the transport, used by tests. When nil a client
	// with the configured timeout is used.
	HTTPClient *http.Client
}

func (o *Options) applyDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.deepseek.com"
	}
	if o.Model == "" {
		o.Model = "deepseek-chat"
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = 3000
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.PricePerMillion == 0 {
		o.PricePerMillion = 0.21
	}
}

// Client performs completion exchanges for one credential.
type Client struct {
	cred Credential
	opts Options
	http *http.Client
}

// New creates a Client. The credential decides between live calls and the
// demo responder.
func New(cred Credential, opts Options) *Client {
	opts.applyDefaults()
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{cred: cred, opts: opts, http: hc}
}

// IsDemo reports whether the client fabricates responses locally.
func (c *Client) IsDemo() bool {
	return c.cred.IsDemo()
}

// Model returns the model name results will carry.
func (c *Client) Model() string {
	if c.cred.IsDemo() {
		return demo.ModelName
	}
	return c.opts.Model
}

// Complete runs one exchange for the request, using the prebuilt system and
// user prompts. Remote and transport failures are reported in the result
// (Success=false with a user-facing message), never as a Go error: every
// failure is terminal for the current request and is surfaced verbatim.
func (c *Client) Complete(ctx context.Context, req models.AnalysisRequest, system, user string) models.CompletionResult {
	if c.cred.IsDemo() {
		return demo.Respond(req, c.opts.PricePerMillion, time.Now().UTC())
	}

	payload := models.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		Stream:      false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failure(c.opts.Model, fmt.Sprintf("encode request: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return failure(c.opts.Model, fmt.Sprintf("create request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cred.key)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return failure(c.opts.Model, fmt.Sprintf("Request timed out after %s. Please try again later.", c.opts.Timeout))
		}
		return failure(c.opts.Model, fmt.Sprintf("Connection error: %v. Please try again later.", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(c.opts.Model, fmt.Sprintf("Connection error: %v. Please try again later.", err))
	}

	if resp.StatusCode != http.StatusOK {
		// 429 and 5xx take this same path: report and stop.
		remoteErr := &models.RemoteError{Status: resp.StatusCode, Body: string(respBody)}
		return failure(c.opts.Model, remoteErr.Error())
	}

	var chatResp models.ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return failure(c.opts.Model, fmt.Sprintf("decode response: %v", err))
	}
	if len(chatResp.Choices) == 0 {
		return failure(c.opts.Model, "empty response: no choices returned")
	}

	text := chatResp.Choices[0].Message.Content

	var promptTokens, completionTokens int
	if chatResp.Usage != nil {
		promptTokens = chatResp.Usage.PromptTokens
		completionTokens = chatResp.Usage.CompletionTokens
	} else {
		promptTokens = pricing.EstimateTokens(system + user)
		completionTokens = pricing.EstimateTokens(text)
	}
	tokens := promptTokens + completionTokens

	model := chatResp.Model
	if model == "" {
		model = c.opts.Model
	}

	return models.CompletionResult{
		Success:          true,
		Text:             text,
		Tokens:           tokens,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		Cost:             pricing.EstimateCost(tokens, c.opts.PricePerMillion),
		Model:            model,
	}
}

func failure(model, msg string) models.CompletionResult {
	return models.CompletionResult{Success: false, Text: msg, Model: model}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

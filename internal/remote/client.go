// Package remote implements the client for the AI extraction service. It
// enforces caller-supplied deadlines, classifies failures into an
// explicit taxonomy, and maps validated responses into the canonical
// result shape.
package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/jonathan/job-scanner/internal/types"
)

// DefaultModel is the Gemini model used for extraction.
const DefaultModel = "gemini-2.5-flash-lite"

// Client calls the Gemini extraction service.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the Gemini model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRateLimit throttles outbound extraction calls to rps requests per
// second with burst 1. Zero or negative rps disables the throttle.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a remote extraction client.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: client,
		model:  DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Extract invokes the extraction service with the normalized text. The
// caller bounds the call with a context deadline; there are no retries
// here. Failures come back classified, never as panics or untyped errors.
func (c *Client) Extract(ctx context.Context, text string) (types.ExtractionResult, *Error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.ExtractionResult{}, Classify(err)
		}
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	prompt := BuildExtractionPrompt(JobFactsSchema(), text)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return types.ExtractionResult{}, Classify(err)
	}

	raw, merr := textFromResponse(resp)
	if merr != nil {
		return types.ExtractionResult{}, merr
	}

	return ParseResponse(CleanJSONBlock(raw))
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// textFromResponse extracts text from a Gemini API response. A response
// without text content counts as malformed, not unavailable: the service
// answered, the payload is unusable.
func textFromResponse(resp *genai.GenerateContentResponse) (string, *Error) {
	if len(resp.Candidates) == 0 {
		return "", Malformed("no candidates in response", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", Malformed("no content in response", nil)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", Malformed("no text parts in response", nil)
	}

	return strings.Join(parts, ""), nil
}

// CleanJSONBlock removes markdown code block wrappers from JSON
// responses. LLMs often wrap JSON in ```json fences even when
// instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

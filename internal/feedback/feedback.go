// Package feedback forwards user-submitted feedback to a configured
// webhook. Submissions are gated by the per-identity rate limiter so a
// single client cannot flood the channel.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/ratelimit"
	"github.com/jonathan/job-scanner/internal/types"
)

// DefaultTimeout bounds the webhook delivery call.
const DefaultTimeout = 10 * time.Second

// ErrRateLimited indicates the identity exhausted its feedback budget
// for the current window.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("feedback rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// DeliveryError indicates the webhook rejected or failed the delivery.
type DeliveryError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("feedback delivery failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("feedback delivery failed: %s", e.Message)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// Submitter delivers feedback messages to a webhook endpoint.
type Submitter struct {
	webhookURL string
	limiter    *ratelimit.Limiter
	events     *observability.Events
	client     *http.Client
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithHTTPClient overrides the HTTP client used for delivery.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Submitter) {
		if c != nil {
			s.client = c
		}
	}
}

// WithEvents sets the observability collaborator.
func WithEvents(e *observability.Events) Option {
	return func(s *Submitter) {
		if e != nil {
			s.events = e
		}
	}
}

// NewSubmitter creates a Submitter delivering to webhookURL. The limiter
// may be nil, in which case submissions are not rate limited.
func NewSubmitter(webhookURL string, limiter *ratelimit.Limiter, opts ...Option) *Submitter {
	s := &Submitter{
		webhookURL: webhookURL,
		limiter:    limiter,
		events:     observability.Nop(),
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// payload is the wire shape posted to the webhook.
type payload struct {
	ID        string `json:"id"`
	Identity  string `json:"identity"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Submit validates the request, consumes one rate limit slot for the
// identity, and posts the message to the webhook. A denied slot returns
// *ErrRateLimited without contacting the webhook.
func (s *Submitter) Submit(ctx context.Context, req types.FeedbackRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if s.limiter != nil {
		allowed, info := s.limiter.Allow(req.Identity)
		if !allowed {
			s.events.FeedbackRateLimited(req.Identity, info.RetryAfter)
			return &ErrRateLimited{RetryAfter: info.RetryAfter}
		}
	}

	body, err := json.Marshal(payload{
		ID:        uuid.New().String(),
		Identity:  req.Identity,
		Message:   req.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return &DeliveryError{Message: "failed to encode payload", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Message: "failed to build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return &DeliveryError{Message: "webhook unreachable", Cause: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}
	}
	return nil
}

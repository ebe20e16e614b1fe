package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/job-scanner/internal/ratelimit"
	"github.com/jonathan/job-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimiter(t *testing.T, max int) *ratelimit.Limiter {
	t.Helper()
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:      true,
		MaxPerWindow: max,
		Window:       time.Minute,
	})
	t.Cleanup(limiter.Stop)
	return limiter
}

func TestSubmit_DeliversPayload(t *testing.T) {
	var received payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, testLimiter(t, 5))
	err := s.Submit(context.Background(), types.FeedbackRequest{
		Identity: "10.0.0.1",
		Message:  "the go years looked wrong on one posting",
	})

	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", received.Identity)
	assert.Equal(t, "the go years looked wrong on one posting", received.Message)
	assert.NotEmpty(t, received.ID)
	assert.NotEmpty(t, received.Timestamp)
}

func TestSubmit_RateLimited(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, testLimiter(t, 2))
	req := types.FeedbackRequest{Identity: "10.0.0.1", Message: "hello"}

	require.NoError(t, s.Submit(context.Background(), req))
	require.NoError(t, s.Submit(context.Background(), req))

	err := s.Submit(context.Background(), req)
	var rateErr *ErrRateLimited
	require.ErrorAs(t, err, &rateErr)
	assert.Greater(t, rateErr.RetryAfter, time.Duration(0))
	assert.Equal(t, int32(2), calls.Load(), "denied submission must not reach the webhook")
}

func TestSubmit_IdentitiesIndependent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, testLimiter(t, 1))

	require.NoError(t, s.Submit(context.Background(), types.FeedbackRequest{Identity: "10.0.0.1", Message: "a"}))

	err := s.Submit(context.Background(), types.FeedbackRequest{Identity: "10.0.0.1", Message: "b"})
	var rateErr *ErrRateLimited
	require.ErrorAs(t, err, &rateErr)

	assert.NoError(t, s.Submit(context.Background(), types.FeedbackRequest{Identity: "10.0.0.2", Message: "c"}))
}

func TestSubmit_InvalidRequest(t *testing.T) {
	s := NewSubmitter("http://unused.invalid", testLimiter(t, 5))

	tests := []struct {
		name string
		req  types.FeedbackRequest
	}{
		{name: "missing identity", req: types.FeedbackRequest{Message: "hello"}},
		{name: "missing message", req: types.FeedbackRequest{Identity: "10.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Submit(context.Background(), tt.req)
			assert.Error(t, err)
			var rateErr *ErrRateLimited
			assert.False(t, errors.As(err, &rateErr), "validation errors are not rate limit errors")
		})
	}
}

func TestSubmit_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, testLimiter(t, 5))
	err := s.Submit(context.Background(), types.FeedbackRequest{Identity: "10.0.0.1", Message: "hello"})

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Equal(t, http.StatusBadGateway, deliveryErr.StatusCode)
}

func TestSubmit_WebhookUnreachable(t *testing.T) {
	s := NewSubmitter("http://127.0.0.1:1", testLimiter(t, 5))
	err := s.Submit(context.Background(), types.FeedbackRequest{Identity: "10.0.0.1", Message: "hello"})

	var deliveryErr *DeliveryError
	require.ErrorAs(t, err, &deliveryErr)
	assert.Error(t, deliveryErr.Unwrap())
}

func TestSubmit_NilLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSubmitter(server.URL, nil)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Submit(context.Background(), types.FeedbackRequest{Identity: "x", Message: "m"}))
	}
}

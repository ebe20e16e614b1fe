// Package server provides the HTTP REST API for the job scanner.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/job-scanner/internal/cache"
	"github.com/jonathan/job-scanner/internal/career"
	"github.com/jonathan/job-scanner/internal/feedback"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/ratelimit"
	"github.com/jonathan/job-scanner/internal/scan"
	"github.com/jonathan/job-scanner/internal/sites"
	"github.com/jonathan/job-scanner/internal/store"
	"github.com/jonathan/job-scanner/internal/types"
)

// ScanHistory is the persistence surface the server needs for scan
// records. *store.Store satisfies it.
type ScanHistory interface {
	SaveScan(ctx context.Context, contentHash, sourceURL string, result types.ExtractionResult) (uuid.UUID, error)
	GetScanByHash(ctx context.Context, contentHash string) (*store.ScanRecord, error)
	ListRecent(ctx context.Context, limit int) ([]store.ScanRecord, error)
	DeleteScan(ctx context.Context, id uuid.UUID) error
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	orchestrator *scan.Orchestrator
	parsers      *sites.Factory
	scanCache    *cache.Cache
	finder       *career.Finder
	submitter    *feedback.Submitter
	history      ScanHistory
	rateLimiter  *ratelimit.Limiter
	tokens       *scan.TokenTracker
	events       *observability.Events
	logger       zerolog.Logger
}

// Config holds server configuration
type Config struct {
	Port         int
	Orchestrator *scan.Orchestrator
	Finder       *career.Finder
	Submitter    *feedback.Submitter
	History      ScanHistory
	CacheTTL     time.Duration
	RateLimit    *ratelimit.Config
	Events       *observability.Events
	Logger       zerolog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("server requires an orchestrator")
	}

	events := cfg.Events
	if events == nil {
		events = observability.Nop()
	}

	cacheOpts := []cache.Option{}
	if cfg.CacheTTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithTTL(cfg.CacheTTL))
	}

	rlCfg := cfg.RateLimit
	if rlCfg == nil {
		rlCfg = ratelimit.LoadConfig()
	}

	s := &Server{
		orchestrator: cfg.Orchestrator,
		parsers:      sites.NewFactory(),
		scanCache:    cache.New(cacheOpts...),
		finder:       cfg.Finder,
		submitter:    cfg.Submitter,
		history:      cfg.History,
		rateLimiter:  ratelimit.NewLimiter(rlCfg),
		tokens:       scan.NewTokenTracker(),
		events:       events,
		logger:       cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /feedback", s.handleFeedback)
	mux.HandleFunc("POST /check-parser-support", s.handleCheckParserSupport)
	mux.HandleFunc("GET /scans", s.handleListScans)
	mux.HandleFunc("DELETE /scans/{id}", s.handleDeleteScan)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-stop
	s.logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.scanCache.Stop()
	if s.history != nil {
		s.history.Close()
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health checks bypass the limiter
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
// In the future, this could use X-Forwarded-For header (only from trusted proxies).
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Info().
		Int("limit", info.Limit).
		Int("remaining", info.Remaining).
		Time("reset", info.ResetTime).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

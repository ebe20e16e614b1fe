// Package observability emits structured events for collaborators that
// watch the extraction pipeline. Emission is fire-and-forget: it never
// blocks a scan and never surfaces errors back into the pipeline.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Events publishes structured pipeline events.
type Events struct {
	logger zerolog.Logger
}

// New creates an Events emitter writing JSON events to w. A nil writer
// defaults to stderr.
func New(w io.Writer) *Events {
	if w == nil {
		w = os.Stderr
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &Events{logger: logger}
}

// Nop returns an emitter that discards every event. Useful in tests and
// in library callers that bring no log sink.
func Nop() *Events {
	return &Events{logger: zerolog.Nop()}
}

// ExtractionFallback records that a scan fell back to the local
// extractor. Malformed responses log at warn so they stand out from
// plain outages.
func (e *Events) ExtractionFallback(reason string, cause error) {
	evt := e.logger.Info()
	if reason == "malformed_response" {
		evt = e.logger.Warn()
	}
	evt.Str("event", "extraction_fallback").
		Str("reason", reason).
		AnErr("cause", cause).
		Msg("remote extraction failed, using local fallback")
}

// ScanCompleted records a finished scan with its outcome.
func (e *Events) ScanCompleted(source string, skills int, elapsed time.Duration) {
	e.logger.Info().
		Str("event", "scan_completed").
		Str("source", source).
		Int("skills", skills).
		Dur("elapsed", elapsed).
		Msg("scan completed")
}

// CareerLookupFailed records a failed career-page lookup. The lookup is
// best-effort enrichment, so this is informational only.
func (e *Events) CareerLookupFailed(company string, cause error) {
	e.logger.Info().
		Str("event", "career_lookup_failed").
		Str("company", company).
		AnErr("cause", cause).
		Msg("career page lookup failed")
}

// FeedbackRateLimited records a denied feedback submission.
func (e *Events) FeedbackRateLimited(identity string, retryAfter time.Duration) {
	e.logger.Info().
		Str("event", "feedback_rate_limited").
		Str("identity", identity).
		Dur("retry_after", retryAfter).
		Msg("feedback submission rate limited")
}

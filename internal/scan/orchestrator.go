// Package scan coordinates the extraction pipeline: it normalizes input,
// attempts remote extraction under a bounded timeout, and falls back to
// the local extractor on any classified failure. Scan always returns a
// usable result; remote-path failures never surface to the caller.
package scan

import (
	"context"
	"time"

	"github.com/jonathan/job-scanner/internal/local"
	"github.com/jonathan/job-scanner/internal/normalize"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/remote"
	"github.com/jonathan/job-scanner/internal/types"
)

// DefaultRemoteTimeout bounds the remote extraction call.
const DefaultRemoteTimeout = 10 * time.Second

// RemoteExtractor is the remote service dependency. Implementations
// return either a canonical result or a classified error, never both.
type RemoteExtractor interface {
	Extract(ctx context.Context, text string) (types.ExtractionResult, *remote.Error)
}

// Orchestrator runs scans. It holds no cross-call mutable state, so
// concurrent scans are independent.
type Orchestrator struct {
	normalizer    *normalize.Normalizer
	remote        RemoteExtractor
	local         *local.Extractor
	events        *observability.Events
	remoteTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRemote sets the remote extractor. Without one, every scan goes
// straight to the local extractor.
func WithRemote(r RemoteExtractor) Option {
	return func(o *Orchestrator) {
		o.remote = r
	}
}

// WithRemoteTimeout bounds the remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.remoteTimeout = d
		}
	}
}

// WithEvents sets the observability collaborator.
func WithEvents(e *observability.Events) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.events = e
		}
	}
}

// WithNormalizer overrides the text normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// WithLocal overrides the local extractor.
func WithLocal(l *local.Extractor) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.local = l
		}
	}
}

// NewOrchestrator creates an Orchestrator with defaults: built-in
// normalizer and lexicon, no remote extractor, discarded events.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		normalizer:    normalize.New(),
		local:         local.NewExtractor(nil),
		events:        observability.Nop(),
		remoteTimeout: DefaultRemoteTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scan runs one extraction. Exactly one of the remote or local results
// is returned, never a merge of the two, so provenance stays consistent.
// Empty normalized input short-circuits to an empty local result with no
// remote call.
func (o *Orchestrator) Scan(ctx context.Context, input types.ExtractionInput) types.ExtractionResult {
	start := time.Now()

	text := o.normalizer.Normalize(input.RawText)
	if text == "" {
		result := types.NewEmptyResult(types.SourceLocalFallback)
		o.events.ScanCompleted(string(result.Source), 0, time.Since(start))
		return result
	}

	if o.remote != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, o.remoteTimeout)
		result, rerr := o.remote.Extract(remoteCtx, text)
		cancel()

		if rerr == nil {
			o.events.ScanCompleted(string(result.Source), len(result.Skills), time.Since(start))
			return result
		}
		// Fallback is silent toward the caller; the failure goes to the
		// observability collaborator only.
		o.events.ExtractionFallback(string(rerr.Kind), rerr)
	}

	result := o.local.Extract(text)
	o.events.ScanCompleted(string(result.Source), len(result.Skills), time.Since(start))
	return result
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-scanner/internal/cache"
	"github.com/jonathan/job-scanner/internal/feedback"
	"github.com/jonathan/job-scanner/internal/store"
	"github.com/jonathan/job-scanner/internal/types"
)

// careerLookupTimeout bounds the best-effort career page enrichment.
const careerLookupTimeout = 5 * time.Second

// handleAnalyze runs a scan over the posted content and returns the
// extraction result. Known-site HTML is parsed first so the pipeline
// sees clean text, and repeat requests for the same content are served
// from the cache.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Known-site HTML becomes structured content before validation so a
	// raw page with an empty content field still works.
	var hints types.ExtractionResult
	if req.RawHTML != "" {
		if parser := s.parsers.ParserFor(req.URL); parser != nil {
			if posting, err := parser.Parse(req.RawHTML); err == nil {
				if req.Content == "" {
					req.Content = posting.Description
				}
				hints.JobTitle = posting.JobTitle
				hints.CompanyName = posting.CompanyName
				if posting.Location != "" {
					hints.AddDetail("location", posting.Location)
				}
				if posting.Salary != "" {
					hints.AddDetail("salary", posting.Salary)
				}
				if posting.EmploymentType != "" {
					hints.AddDetail("employment_type", posting.EmploymentType)
				}
			}
		}
	}

	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "content is required and url must be a valid URL")
		return
	}

	// A tab key makes repeated scans from one tab supersede each other:
	// only the result of the latest issued token may be applied.
	var token uint64
	if req.TabKey != "" {
		token = s.tokens.Issue(req.TabKey)
	}

	key := cache.Key(req.URL, req.Content)

	// The compute context is detached from the request: followers of the
	// singleflight group and the cache entry share its outcome, so one
	// client disconnecting must not cancel the scan for everyone.
	scanCtx := context.WithoutCancel(r.Context())

	result, found := s.scanCache.Get(key)
	if !found && s.history != nil {
		if rec, err := s.history.GetScanByHash(scanCtx, key); err == nil && rec != nil {
			result = rec.Result
			s.scanCache.Set(key, result)
			found = true
		}
	}
	if !found {
		result = s.scanCache.GetOrCompute(scanCtx, key, func(ctx context.Context) types.ExtractionResult {
			return s.orchestrator.Scan(ctx, types.ExtractionInput{
				RawText:   req.Content,
				SourceURL: req.URL,
			})
		})
		if s.history != nil {
			if _, err := s.history.SaveScan(scanCtx, key, req.URL, result); err != nil {
				s.logger.Error().Err(err).Msg("failed to save scan history")
			}
		}
	}

	result = s.enrich(r.Context(), result, req, hints)

	if req.TabKey != "" {
		w.Header().Set("X-Request-Token", strconv.FormatUint(token, 10))
		if !s.tokens.Apply(req.TabKey, token) {
			s.errorResponse(w, http.StatusConflict, "superseded by a newer scan for this tab")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// enrich backfills fields the extraction missed from request hints and
// the career page finder. Enrichment never changes the result source.
func (s *Server) enrich(ctx context.Context, result types.ExtractionResult, req types.AnalyzeRequest, hints types.ExtractionResult) types.ExtractionResult {
	if result.JobTitle == "" {
		if hints.JobTitle != "" {
			result.JobTitle = hints.JobTitle
		} else if req.Title != "" {
			result.JobTitle = req.Title
		}
	}
	if result.CompanyName == "" {
		if hints.CompanyName != "" {
			result.CompanyName = hints.CompanyName
		} else if req.CompanyGuess != "" {
			result.CompanyName = req.CompanyGuess
		}
	}
	for k, v := range hints.AdditionalDetails {
		if _, exists := result.AdditionalDetails[k]; !exists {
			result.AddDetail(k, v)
		}
	}

	if s.finder != nil && result.CompanyName != "" && result.CompanyURL == "" {
		lookupCtx, cancel := context.WithTimeout(ctx, careerLookupTimeout)
		defer cancel()
		page, err := s.finder.FindCareerPage(lookupCtx, result.CompanyName)
		if err != nil {
			s.events.CareerLookupFailed(result.CompanyName, err)
		} else {
			result.CompanyURL = page.URL
		}
	}
	return result
}

// handleFeedback forwards a feedback submission to the configured
// webhook, rate limited per identity.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.submitter == nil {
		s.errorResponse(w, http.StatusNotImplemented, "feedback is not configured")
		return
	}

	var req types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Identity == "" {
		req.Identity = s.extractClientID(r)
	}

	err := s.submitter.Submit(r.Context(), req)
	if err == nil {
		s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	var rateErr *feedback.ErrRateLimited
	var deliveryErr *feedback.DeliveryError
	switch {
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rateErr.RetryAfter.Seconds())))
		s.errorResponse(w, http.StatusTooManyRequests, "feedback rate limit exceeded")
	case errors.As(err, &deliveryErr):
		s.logger.Error().Err(err).Msg("feedback delivery failed")
		s.errorResponse(w, http.StatusBadGateway, "feedback delivery failed")
	default:
		s.errorResponse(w, http.StatusBadRequest, err.Error())
	}
}

// handleCheckParserSupport reports whether a URL belongs to a site with
// a dedicated parser.
func (s *Server) handleCheckParserSupport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	response := map[string]any{"supported": false}
	if parser := s.parsers.ParserFor(req.URL); parser != nil {
		response["supported"] = true
		response["parser"] = parser.Name()
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleListScans returns recent scan history.
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotImplemented, "scan history is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list scans")
		s.errorResponse(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if records == nil {
		records = []store.ScanRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"scans": records})
}

// handleDeleteScan removes one stored scan by ID.
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.errorResponse(w, http.StatusNotImplemented, "scan history is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	if err := s.history.DeleteScan(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "scan not found")
			return
		}
		s.logger.Error().Err(err).Msg("failed to delete scan")
		s.errorResponse(w, http.StatusInternalServerError, "failed to delete scan")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Package career finds a company's own career page via Google Custom
// Search. Results are scored so board listings and unrelated pages are
// rejected in favor of the company's hiring site.
package career

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Google Custom Search endpoint.
const DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// DefaultTimeout bounds one search call.
const DefaultTimeout = 10 * time.Second

// minScore is the acceptance threshold for a scored result.
const minScore = 50

// LookupError indicates the search backend failed.
type LookupError struct {
	Message string
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("career lookup failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("career lookup failed: %s", e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}

// ErrNotFound is returned when no result clears the score threshold.
var ErrNotFound = fmt.Errorf("no career page found")

// Page is a located career page.
type Page struct {
	URL    string
	Domain string
	Score  int
}

// Finder queries Google Custom Search for company career pages.
type Finder struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

// Option configures a Finder.
type Option func(*Finder)

// WithBaseURL overrides the search endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(f *Finder) {
		if u != "" {
			f.baseURL = u
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Finder) {
		if c != nil {
			f.client = c
		}
	}
}

// NewFinder creates a Finder using the given API key and search engine
// identifier.
func NewFinder(apiKey, engineID string, opts ...Option) *Finder {
	f := &Finder{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindCareerPage searches for the company's career page, trying
// progressively broader queries until one yields an acceptable result.
func (f *Finder) FindCareerPage(ctx context.Context, companyName string) (Page, error) {
	name := cleanCompanySuffix(companyName)
	if name == "" {
		return Page{}, &LookupError{Message: "empty company name"}
	}

	queries := []string{
		fmt.Sprintf("%q careers", name),
		fmt.Sprintf("%q jobs", name),
		fmt.Sprintf("%q careers OR jobs OR hiring", name),
	}

	var lastErr error
	for _, query := range queries {
		items, err := f.search(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}
		if page, ok := bestResult(items, name); ok {
			return page, nil
		}
	}
	if lastErr != nil {
		return Page{}, lastErr
	}
	return Page{}, ErrNotFound
}

// searchItem is one Custom Search result.
type searchItem struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

func (f *Finder) search(ctx context.Context, query string) ([]searchItem, error) {
	params := url.Values{}
	params.Set("key", f.apiKey)
	params.Set("cx", f.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &LookupError{Message: "failed to build request", Cause: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LookupError{Message: "search request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{Message: fmt.Sprintf("search returned status %d", resp.StatusCode)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &LookupError{Message: "failed to decode response", Cause: err}
	}
	return parsed.Items, nil
}

// bestResult scores the results and returns the highest scorer if it
// clears the threshold.
func bestResult(items []searchItem, companyName string) (Page, bool) {
	best := Page{}
	for _, item := range items {
		score := scoreCareerURL(item.Link, item.Title, companyName)
		if score > best.Score {
			best = Page{URL: item.Link, Domain: hostOf(item.Link), Score: score}
		}
	}
	if best.Score < minScore {
		return Page{}, false
	}
	return best, true
}

// jobBoards are aggregator domains that never count as a company's own
// career page.
var jobBoards = []string{
	"indeed.com", "linkedin.com", "glassdoor.com", "ziprecruiter.com",
	"monster.com", "careerbuilder.com", "simplyhired.com",
}

// scoreCareerURL scores how likely the result is the company's own
// hiring page.
func scoreCareerURL(rawURL, title, companyName string) int {
	if rawURL == "" {
		return 0
	}
	urlLower := strings.ToLower(rawURL)
	titleLower := strings.ToLower(title)
	companyLower := strings.ToLower(companyName)

	for _, board := range jobBoards {
		if strings.Contains(urlLower, board) {
			return 0
		}
	}

	hasCareerKeyword := false
	for _, kw := range []string{"career", "jobs", "hiring", "employment", "join"} {
		if strings.Contains(urlLower, kw) || strings.Contains(titleLower, kw) {
			hasCareerKeyword = true
			break
		}
	}
	if !hasCareerKeyword {
		return 0
	}

	score := 0
	for _, term := range []string{"career", "jobs", "hiring"} {
		if strings.Contains(urlLower, term) {
			score += 50
			break
		}
	}
	if strings.Contains(titleLower, companyLower) {
		score += 75
	}
	for _, pattern := range []string{"/careers", "/jobs", "/hiring", "careers.", "jobs."} {
		if strings.Contains(urlLower, pattern) {
			score += 40
			break
		}
	}
	for _, indicator := range []string{"careers at", "jobs at", "work at", "join our team"} {
		if strings.Contains(titleLower, indicator) {
			score += 60
			break
		}
	}
	return score
}

var companySuffixTailRe = regexp.MustCompile(`(?i)[\s,]*\b(inc\.?|llc|corp\.?|corporation|ltd\.?|limited|co)\s*$`)

// cleanCompanySuffix strips legal suffixes so queries match how the
// company names itself on the web.
func cleanCompanySuffix(name string) string {
	return strings.TrimSpace(companySuffixTailRe.ReplaceAllString(name, ""))
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

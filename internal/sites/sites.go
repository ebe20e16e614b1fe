// Package sites parses job postings from known job boards. A parser
// pulls the structured fields a board exposes (title, company, the
// description body) out of raw HTML so the extraction pipeline works on
// clean text instead of markup.
package sites

import (
	"fmt"
	"net/url"
	"strings"
)

// Posting holds the fields a site parser recovered from a page. Any
// field may be empty when the page did not expose it.
type Posting struct {
	JobTitle       string
	CompanyName    string
	Description    string
	Location       string
	Salary         string
	EmploymentType string
}

// ParseError indicates the page could not be parsed as a job posting.
type ParseError struct {
	Site    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s parse failed: %s: %v", e.Site, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s parse failed: %s", e.Site, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parser extracts a Posting from a known site's HTML.
type Parser interface {
	// Name identifies the site, e.g. "linkedin".
	Name() string
	// CanParse reports whether the parser handles the given URL.
	CanParse(rawURL string) bool
	// Parse extracts posting fields from the page HTML.
	Parse(html string) (Posting, error)
}

// Factory routes URLs to the parser that handles them.
type Factory struct {
	parsers []Parser
}

// NewFactory creates a Factory with all built-in site parsers.
func NewFactory() *Factory {
	return &Factory{
		parsers: []Parser{
			NewLinkedInParser(),
			NewIndeedParser(),
		},
	}
}

// ParserFor returns the parser handling the URL, or nil when no parser
// matches.
func (f *Factory) ParserFor(rawURL string) Parser {
	if rawURL == "" {
		return nil
	}
	for _, p := range f.parsers {
		if p.CanParse(rawURL) {
			return p
		}
	}
	return nil
}

// CanParse reports whether any built-in parser handles the URL.
func (f *Factory) CanParse(rawURL string) bool {
	return f.ParserFor(rawURL) != nil
}

// Supported lists the names of all registered parsers.
func (f *Factory) Supported() []string {
	names := make([]string, 0, len(f.parsers))
	for _, p := range f.parsers {
		names = append(names, p.Name())
	}
	return names
}

// hostMatches reports whether the URL's host is the given domain or a
// subdomain of it.
func hostMatches(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// cleanField trims whitespace and rejects implausible values.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 200 {
		return ""
	}
	return s
}

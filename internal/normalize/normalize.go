// Package normalize cleans raw page text into the canonical form consumed
// by both extraction paths.
package normalize

import (
	"regexp"
	"strings"
)

// DefaultMaxLen is the default cap on normalized text length, in runes.
// Large enough to cover typical job postings.
const DefaultMaxLen = 20000

// DefaultDenylist lists boilerplate fragments stripped during
// normalization. A line whose lowercased text contains any entry is
// dropped entirely.
var DefaultDenylist = []string{
	"we use cookies",
	"this website uses cookies",
	"accept all cookies",
	"cookie policy",
	"cookie settings",
	"privacy policy",
	"terms of service",
	"all rights reserved",
	"sign in to continue",
	"enable javascript",
}

var spaceRuns = regexp.MustCompile(`[ \t\x{00a0}]+`)

// Normalizer converts raw page text into canonical normalized text.
// The zero value is not usable; construct with New.
type Normalizer struct {
	maxLen   int
	denylist []string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxLen overrides the rune cap applied after cleaning.
func WithMaxLen(n int) Option {
	return func(nm *Normalizer) {
		if n > 0 {
			nm.maxLen = n
		}
	}
}

// WithDenylist replaces the boilerplate denylist.
func WithDenylist(entries []string) Option {
	return func(nm *Normalizer) {
		nm.denylist = entries
	}
}

// New creates a Normalizer with the default cap and denylist.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxLen:   DefaultMaxLen,
		denylist: DefaultDenylist,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize cleans raw text into canonical normalized text. It never
// fails: empty input yields an empty string. The output has no
// leading/trailing whitespace, no repeated blank lines, no boilerplate
// denylist lines, and is truncated at the configured rune cap. Identical
// input always yields identical output.
func (n *Normalizer) Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = spaceRuns.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line != "" && n.isBoilerplate(line) {
			continue
		}
		cleaned = append(cleaned, line)
	}

	result := strings.Join(cleaned, "\n")
	result = collapseBlankLines(result)
	result = strings.TrimSpace(result)

	return truncateRunes(result, n.maxLen)
}

// isBoilerplate reports whether a cleaned line matches the denylist.
func (n *Normalizer) isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, entry := range n.denylist {
		if strings.Contains(lower, entry) {
			return true
		}
	}
	return false
}

// collapseBlankLines reduces runs of blank lines to a single blank line.
func collapseBlankLines(content string) string {
	re := regexp.MustCompile(`\n\n\n+`)
	return re.ReplaceAllString(content, "\n\n")
}

// truncateRunes cuts s at exactly max runes. The cut point depends only
// on the input, so truncation is stable across runs.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}

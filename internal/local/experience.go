package local

import (
	"regexp"
	"strconv"
	"strings"
)

// experienceWindow bounds the scan around a skill mention, in bytes.
const experienceWindow = 40

// maxYears clamps years-of-experience values to a sane ceiling.
const maxYears = 60

// Years-of-experience patterns, tried in order. Ranges resolve to the
// lower bound. Patterns require an explicit years/yrs unit so a bare
// number is never treated as experience.
var (
	yearsRangeRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
	yearsMinRe   = regexp.MustCompile(`(?i)\b(?:minimum|at\s+least)\s+(\d{1,2})\s*(?:years?|yrs?)\b`)
	yearsPlainRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*(?:years?|yrs?)\b`)
)

// extractYears scans a bounded window around a skill mention for a
// years-of-experience statement. The text trailing the mention is
// scanned before the text leading it, since postings overwhelmingly
// write "Go 2 years" rather than "2 years Go"; within each side the
// patterns run range, minimum, plain. Returns nil when no pattern
// matches — a value is never fabricated.
func extractYears(text string, firstPos, firstEnd int) *int {
	after := sliceWindow(text, firstEnd, firstEnd+experienceWindow)
	if y := matchYears(after); y != nil {
		return y
	}
	before := sliceWindow(text, firstPos-experienceWindow, firstPos)
	return matchYears(before)
}

func matchYears(window string) *int {
	if m := yearsRangeRe.FindStringSubmatch(window); m != nil {
		return parseYears(m[1])
	}
	if m := yearsMinRe.FindStringSubmatch(window); m != nil {
		return parseYears(m[1])
	}
	if m := yearsPlainRe.FindStringSubmatch(window); m != nil {
		return parseYears(m[1])
	}
	return nil
}

func parseYears(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	if n > maxYears {
		n = maxYears
	}
	return &n
}

func sliceWindow(text string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start >= end {
		return ""
	}
	return text[start:end]
}

var experienceLevelRe = regexp.MustCompile(`(?i)\b(entry[\s-]?level|junior|senior|lead|principal|staff)\b`)

// extractExperienceLevel returns the first seniority marker in the text,
// lowercased, or empty when none appears.
func extractExperienceLevel(text string) string {
	m := experienceLevelRe.FindString(text)
	if m == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(m), " ", "-")
}

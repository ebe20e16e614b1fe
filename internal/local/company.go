package local

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-scanner/internal/types"
)

// Company-name patterns, best-effort. When none hits with confidence the
// name stays unset rather than guessed.
var (
	companyAtRe = regexp.MustCompile(`(?:\bat|@)\s+([A-Z][\w&']*(?:\s+[A-Z][\w&']*){0,3})`)
	companyIsRe = regexp.MustCompile(`([A-Z][\w&']*(?:\s+[A-Z][\w&']*){0,3})\s+is\s+(?:hiring|looking|seeking)`)

	// Trailing corporate suffixes that mark a confident titlecase match
	companySuffixRe = regexp.MustCompile(`([A-Z][\w&']*(?:\s+[A-Z][\w&']*){0,3}\s+(?:Inc|LLC|Corp|Ltd|Company))\b`)
)

// headScanLimit bounds company scanning to the top of the posting, where
// the employer is almost always introduced.
const headScanLimit = 1200

// extractCompanyName applies the company patterns against the head of
// the text and returns the first hit, or empty when nothing confident
// matches.
func extractCompanyName(text string) string {
	head := text
	if len(head) > headScanLimit {
		head = head[:headScanLimit]
	}

	for _, re := range []*regexp.Regexp{companyAtRe, companyIsRe, companySuffixRe} {
		if m := re.FindStringSubmatch(head); m != nil {
			if name := cleanCompanyName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// cleanCompanyName trims connective noise a greedy titlecase match can
// drag in and rejects matches that are not plausible names.
func cleanCompanyName(name string) string {
	name = strings.TrimSpace(name)

	// A match that is only a sentence opener is not a company
	switch strings.ToLower(name) {
	case "we", "the", "our", "you", "this", "a", "an", "i":
		return ""
	}

	words := strings.Fields(name)
	if len(words) == 0 || len(name) > 60 {
		return ""
	}
	return strings.Join(words, " ")
}

var (
	jobTitleTail = `([A-Z][A-Za-z\s\-/]+(?:Engineer|Developer|Manager|Analyst|Designer|Scientist|Architect|Lead|Director))`

	jobTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`(?m)(?:position|role|job)\s*:?\s*` + jobTitleTail),
		regexp.MustCompile(`(?m)(?:hiring|seeking)\s+(?:a|an)?\s*` + jobTitleTail),
		regexp.MustCompile(`(?m)^` + jobTitleTail),
	}
)

// extractJobTitle pattern-matches a role title from the text, preferring
// explicit "position:" style introductions over a bare leading line.
func extractJobTitle(text string) string {
	for _, re := range jobTitleRes {
		if m := re.FindStringSubmatch(text); m != nil {
			title := strings.TrimSpace(m[1])
			if title != "" && len(title) <= 80 {
				return title
			}
		}
	}
	return ""
}

var salaryRe = regexp.MustCompile(`\$[\d,]+(?:\s*-\s*\$?[\d,]+)?(?:\s*(?:per\s+)?(?:year|annually|k|K))?`)

var remoteKeywords = []string{"remote", "work from home", "distributed", "telecommute"}

var educationKeywords = []string{"bachelor", "master", "phd", "degree", "university", "college"}

// addAdditionalDetails records salary, remote-work, and education
// signals found in the posting. Absent signals leave no entry.
func addAdditionalDetails(result *types.ExtractionResult, text string) {
	lower := strings.ToLower(text)

	if m := salaryRe.FindString(text); m != "" {
		result.AddDetail("salary_range", m)
	}
	for _, kw := range remoteKeywords {
		if strings.Contains(lower, kw) {
			result.AddDetail("remote_work", "true")
			break
		}
	}
	for _, kw := range educationKeywords {
		if strings.Contains(lower, kw) {
			result.AddDetail("education_required", "true")
			break
		}
	}
}

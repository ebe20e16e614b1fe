// Package local implements the dictionary-based fallback extractor. It is
// always available, needs no network, and degrades to an empty result
// when nothing matches. Given identical normalized text it produces
// byte-identical results: no randomness, no clock dependence.
package local

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/job-scanner/internal/lexicon"
	"github.com/jonathan/job-scanner/internal/types"
)

// DefaultMaxSkills caps the ranked skill list.
const DefaultMaxSkills = 20

// DefaultMaxKeywords caps the ranked keyword list.
const DefaultMaxKeywords = 15

// Extractor matches normalized job-posting text against a curated skill
// lexicon and ranks the findings deterministically.
type Extractor struct {
	lex         *lexicon.Lexicon
	maxSkills   int
	maxKeywords int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxSkills overrides the skill cap.
func WithMaxSkills(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxSkills = n
		}
	}
}

// WithMaxKeywords overrides the keyword cap.
func WithMaxKeywords(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxKeywords = n
		}
	}
}

// NewExtractor creates an Extractor over the given lexicon. A nil lexicon
// uses the built-in default.
func NewExtractor(lex *lexicon.Lexicon, opts ...Option) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	e := &Extractor{
		lex:         lex,
		maxSkills:   DefaultMaxSkills,
		maxKeywords: DefaultMaxKeywords,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// token is a lowercased word with the byte offset of its first character
// in the source text.
type token struct {
	text string
	pos  int
}

// skillStat accumulates match evidence for one canonical skill.
type skillStat struct {
	name     string
	count    int
	firstPos int
	firstEnd int
	years    *int
}

// Extract runs the full local pipeline over normalized text. It never
// fails; empty or unmatchable input yields an empty LOCAL_FALLBACK result.
func (e *Extractor) Extract(text string) types.ExtractionResult {
	result := types.NewEmptyResult(types.SourceLocalFallback)
	if strings.TrimSpace(text) == "" {
		return result
	}

	tokens := tokenize(text)
	stats := e.matchSkills(text, tokens)

	selected := rankSkills(stats, e.maxSkills)
	for _, s := range selected {
		result.Skills = append(result.Skills, types.SkillEntry{
			Name:              s.name,
			YearsOfExperience: s.years,
		})
	}

	result.Keywords = e.rankKeywords(tokens, selected)

	if company := extractCompanyName(text); company != "" {
		result.CompanyName = company
	}
	if title := extractJobTitle(text); title != "" {
		result.JobTitle = title
	}
	if level := extractExperienceLevel(text); level != "" {
		result.ExperienceLevel = level
	}
	addAdditionalDetails(&result, text)

	return result
}

// matchSkills slides a phrase window over the token stream, longest
// phrases first so "machine learning" is not also counted as "learning".
func (e *Extractor) matchSkills(text string, tokens []token) map[string]*skillStat {
	stats := make(map[string]*skillStat)
	consumed := make([]bool, len(tokens))

	for n := e.lex.MaxPhraseWords(); n >= 1; n-- {
		for i := 0; i+n <= len(tokens); i++ {
			if anyConsumed(consumed, i, n) {
				continue
			}
			parts := make([]string, 0, n)
			for j := i; j < i+n; j++ {
				parts = append(parts, tokens[j].text)
			}
			canonical, ok := e.lex.Canonical(strings.Join(parts, " "))
			if !ok {
				continue
			}
			for j := i; j < i+n; j++ {
				consumed[j] = true
			}

			end := tokens[i+n-1].pos + len(tokens[i+n-1].text)
			stat, exists := stats[canonical]
			if !exists {
				stat = &skillStat{name: canonical, firstPos: tokens[i].pos, firstEnd: end}
				stats[canonical] = stat
			}
			stat.count++
		}
	}

	// Years are resolved against the first occurrence only; a value is
	// left nil unless the surrounding window yields an unambiguous match.
	for _, stat := range stats {
		stat.years = extractYears(text, stat.firstPos, stat.firstEnd)
	}
	return stats
}

func anyConsumed(consumed []bool, start, n int) bool {
	for j := start; j < start+n; j++ {
		if consumed[j] {
			return true
		}
	}
	return false
}

// rankSkills orders by years-presence, then raw frequency, then first
// occurrence (earlier wins). Name breaks the final tie for determinism.
func rankSkills(stats map[string]*skillStat, max int) []*skillStat {
	ranked := make([]*skillStat, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if (a.years != nil) != (b.years != nil) {
			return a.years != nil
		}
		if a.count != b.count {
			return a.count > b.count
		}
		if a.firstPos != b.firstPos {
			return a.firstPos < b.firstPos
		}
		return a.name < b.name
	})
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}

// rankKeywords frequency-ranks stopword-filtered terms that are not
// already selected as skills.
func (e *Extractor) rankKeywords(tokens []token, skills []*skillStat) []string {
	skillNames := make(map[string]bool, len(skills))
	for _, s := range skills {
		skillNames[s.name] = true
	}

	type kwStat struct {
		word     string
		count    int
		firstPos int
	}
	counts := make(map[string]*kwStat)

	for _, tok := range tokens {
		word := tok.text
		if len(word) < 3 || !isWordLike(word) || e.lex.IsStopword(word) {
			continue
		}
		// Lexicon terms belong in skills, not keywords; this also keeps
		// keywords deduplicated against selected skill names.
		if canonical, ok := e.lex.Canonical(word); ok || skillNames[canonical] {
			continue
		}
		stat, exists := counts[word]
		if !exists {
			counts[word] = &kwStat{word: word, count: 1, firstPos: tok.pos}
			continue
		}
		stat.count++
	}

	ranked := make([]*kwStat, 0, len(counts))
	for _, s := range counts {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.firstPos != b.firstPos {
			return a.firstPos < b.firstPos
		}
		return a.word < b.word
	})
	if len(ranked) > e.maxKeywords {
		ranked = ranked[:e.maxKeywords]
	}

	keywords := make([]string, 0, len(ranked))
	for _, s := range ranked {
		keywords = append(keywords, s.word)
	}
	return keywords
}

// tokenize splits text on whitespace into lowercased tokens with byte
// offsets, trimming surrounding punctuation but preserving interior and
// skill-significant characters (c++, c#, node.js, ci/cd).
func tokenize(text string) []token {
	tokens := make([]token, 0, 64)
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				if tok, ok := makeToken(text[start:i], start); ok {
					tokens = append(tokens, tok)
				}
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		if tok, ok := makeToken(text[start:], start); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func makeToken(raw string, pos int) (token, bool) {
	trimmedLeft := strings.TrimLeftFunc(raw, isEdgePunct)
	pos += len(raw) - len(trimmedLeft)
	trimmed := strings.TrimRightFunc(trimmedLeft, isEdgePunct)
	if trimmed == "" {
		return token{}, false
	}
	return token{text: strings.ToLower(trimmed), pos: pos}, true
}

// isEdgePunct matches punctuation stripped from token edges. '+' and '#'
// stay so c++ and c# survive; '.' and '/' are interior-significant but
// safe to strip from the edges.
func isEdgePunct(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '(', ')', '[', ']', '{', '}', '"', '\'', '*', '•', '·', '|':
		return true
	}
	return false
}

// isWordLike reports whether a token is a plausible keyword: it must
// start with a letter and contain no digits.
func isWordLike(word string) bool {
	for i, r := range word {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

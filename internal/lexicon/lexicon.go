// Package lexicon provides the curated skill dictionary, alias map, and
// stopword set used by the local extractor. The built-in set can be
// extended at deploy time from a JSON file, so the dictionary is
// configuration rather than hard-coded values.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Lexicon holds the skill dictionary used for local extraction.
// Skills and aliases are stored lowercase; multi-word phrases are allowed.
type Lexicon struct {
	skills    map[string]bool
	aliases   map[string]string // variant -> canonical
	stopwords map[string]bool
	maxWords  int // longest phrase length, in words
}

// defaultSkills seeds the built-in dictionary. Canonical names only;
// variants belong in defaultAliases.
var defaultSkills = []string{
	// programming
	"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go",
	"rust", "php", "scala", "kotlin", "swift", "elixir",
	// web
	"html", "css", "react", "angular", "vue", "node.js", "express", "django",
	"flask", "spring", "rails", "graphql", "rest",
	// data
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"kafka", "spark", "hadoop", "snowflake", "dbt",
	// cloud and infra
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible",
	"linux", "nginx", "serverless",
	// tools and practice
	"git", "jenkins", "jira", "confluence", "ci/cd", "agile", "scrum",
	"machine learning", "deep learning", "data science", "nlp",
	"distributed systems", "microservices", "unit testing",
}

// defaultAliases maps common variants to canonical skill names.
var defaultAliases = map[string]string{
	"golang":      "go",
	"go lang":     "go",
	"js":          "javascript",
	"ts":          "typescript",
	"k8s":         "kubernetes",
	"react.js":    "react",
	"reactjs":     "react",
	"vue.js":      "vue",
	"vuejs":       "vue",
	"nodejs":      "node.js",
	"node":        "node.js",
	"postgres":    "postgresql",
	"mongo":       "mongodb",
	"es":          "elasticsearch",
	"ml":          "machine learning",
	"tf":          "terraform",
	"amazon web services": "aws",
	"google cloud":        "gcp",
	"cicd":                "ci/cd",
}

// defaultStopwords filters non-significant terms out of keyword ranking.
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by", "can",
	"do", "for", "from", "has", "have", "her", "his", "if", "in", "into",
	"is", "it", "its", "more", "not", "of", "on", "or", "our", "such",
	"than", "that", "the", "their", "them", "then", "there", "these",
	"they", "this", "to", "was", "we", "were", "what", "when", "where",
	"which", "while", "who", "will", "with", "would", "you", "your",
	"about", "across", "after", "all", "also", "any", "both", "each",
	"other", "out", "over", "per", "some", "through", "under", "up",
	"work", "working", "team", "role", "job", "experience", "years",
	"year", "skills", "strong", "ability", "including", "required",
	"requirements", "preferred", "plus", "must", "nice", "us", "new",
	"help", "looking", "hiring", "join", "company", "position",
}

// File is the on-disk JSON shape accepted by LoadFile.
type File struct {
	Skills    []string          `json:"skills,omitempty"`
	Aliases   map[string]string `json:"aliases,omitempty"`
	Stopwords []string          `json:"stopwords,omitempty"`
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	l := &Lexicon{
		skills:    make(map[string]bool, len(defaultSkills)),
		aliases:   make(map[string]string, len(defaultAliases)),
		stopwords: make(map[string]bool, len(defaultStopwords)),
	}
	for _, s := range defaultSkills {
		l.addSkill(s)
	}
	for variant, canonical := range defaultAliases {
		l.addAlias(variant, canonical)
	}
	for _, w := range defaultStopwords {
		l.stopwords[w] = true
	}
	return l
}

// LoadFile returns the default lexicon merged with entries from a JSON
// file. An empty path returns the default lexicon unchanged.
func LoadFile(path string) (*Lexicon, error) {
	l := Default()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon JSON: %w", err)
	}

	for _, s := range f.Skills {
		l.addSkill(s)
	}
	for variant, canonical := range f.Aliases {
		l.addAlias(variant, canonical)
	}
	for _, w := range f.Stopwords {
		l.stopwords[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return l, nil
}

func (l *Lexicon) addSkill(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	l.skills[name] = true
	if n := len(strings.Fields(name)); n > l.maxWords {
		l.maxWords = n
	}
}

func (l *Lexicon) addAlias(variant, canonical string) {
	variant = strings.ToLower(strings.TrimSpace(variant))
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if variant == "" || canonical == "" {
		return
	}
	l.aliases[variant] = canonical
	l.skills[canonical] = true
	if n := len(strings.Fields(variant)); n > l.maxWords {
		l.maxWords = n
	}
	if n := len(strings.Fields(canonical)); n > l.maxWords {
		l.maxWords = n
	}
}

// Canonical resolves a candidate phrase to its canonical skill name.
// The second return value is false when the phrase is not in the lexicon.
func (l *Lexicon) Canonical(phrase string) (string, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return "", false
	}
	if canonical, ok := l.aliases[phrase]; ok {
		return canonical, true
	}
	if l.skills[phrase] {
		return phrase, true
	}
	return "", false
}

// IsStopword reports whether a lowercase token is filtered from keywords.
func (l *Lexicon) IsStopword(token string) bool {
	return l.stopwords[strings.ToLower(token)]
}

// MaxPhraseWords returns the length, in words, of the longest known
// skill phrase or alias. Bounds the sliding window during matching.
func (l *Lexicon) MaxPhraseWords() int {
	if l.maxWords == 0 {
		return 1
	}
	return l.maxWords
}

// Size returns the number of canonical skills in the lexicon.
func (l *Lexicon) Size() int {
	return len(l.skills)
}

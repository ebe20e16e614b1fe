// Package types provides type definitions for structured data used throughout the job-scanner system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Source identifies which extraction path produced a result
type Source string

// Source values for ExtractionResult
const (
	// SourceRemote means the remote AI extraction service produced the payload
	SourceRemote Source = "REMOTE"
	// SourceLocalFallback means the local dictionary matcher produced the payload
	SourceLocalFallback Source = "LOCAL_FALLBACK"
)

// ExtractionInput is the raw material for a scan, captured once from a page
type ExtractionInput struct {
	RawText   string `json:"raw_text"`
	SourceURL string `json:"source_url,omitempty"`
}

// SkillEntry represents a single extracted skill.
// Name is non-empty and lowercase. YearsOfExperience is nil when the
// posting does not state an unambiguous value; it is never fabricated.
type SkillEntry struct {
	Name              string `json:"name"`
	YearsOfExperience *int   `json:"years_of_experience,omitempty"`
}

// ExtractionResult is the canonical result shape produced by either
// extraction path. Skills and Keywords are ranked highest-relevance first,
// contain no case-insensitive duplicates, and Keywords never repeats a
// skill name. Source always reflects the path that actually produced the
// payload, never which was attempted first.
type ExtractionResult struct {
	CompanyName       string            `json:"company_name,omitempty"`
	CompanyURL        string            `json:"company_url,omitempty"`
	JobTitle          string            `json:"job_title,omitempty"`
	ExperienceLevel   string            `json:"experience_level,omitempty"`
	Skills            []SkillEntry      `json:"skills"`
	Keywords          []string          `json:"keywords"`
	AdditionalDetails map[string]string `json:"additional_details,omitempty"`
	Source            Source            `json:"source"`
}

// NewEmptyResult returns a well-formed empty result for the given source.
// Skills and Keywords are non-nil so callers never see an unset container.
func NewEmptyResult(source Source) ExtractionResult {
	return ExtractionResult{
		Skills:   []SkillEntry{},
		Keywords: []string{},
		Source:   source,
	}
}

// HasSkill reports whether the result already contains a skill with the
// given name (case-insensitive).
func (r *ExtractionResult) HasSkill(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range r.Skills {
		if strings.ToLower(s.Name) == lower {
			return true
		}
	}
	return false
}

// AddDetail records a key-value pair in AdditionalDetails, allocating the
// map on first use.
func (r *ExtractionResult) AddDetail(key, value string) {
	if r.AdditionalDetails == nil {
		r.AdditionalDetails = make(map[string]string)
	}
	r.AdditionalDetails[key] = value
}

// IntPtr returns a pointer to v. Convenience for building SkillEntry values.
func IntPtr(v int) *int {
	return &v
}

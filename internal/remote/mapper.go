package remote

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/jonathan/job-scanner/internal/schemas"
	"github.com/jonathan/job-scanner/internal/types"
)

// maxYears clamps years-of-experience values from the service.
const maxYears = 60

// wireSkill is one skill entry as the service returns it. Years arrives
// as a JSON number and may be fractional.
type wireSkill struct {
	Name  string   `json:"name"`
	Years *float64 `json:"years,omitempty"`
}

// wireResponse is the raw response shape from the extraction service.
type wireResponse struct {
	Company         string      `json:"company,omitempty"`
	CompanyURL      string      `json:"company_url,omitempty"`
	JobTitle        string      `json:"job_title,omitempty"`
	ExperienceLevel string      `json:"experience_level,omitempty"`
	Skills          []wireSkill `json:"skills"`
	Keywords        []string    `json:"keywords"`
}

// ParseResponse validates raw response JSON against the boundary schema
// and maps it into the canonical result shape with Source=REMOTE. Shape
// mismatches come back as MalformedResponse errors; they never panic or
// propagate untyped.
func ParseResponse(raw string) (types.ExtractionResult, *Error) {
	if err := schemas.ValidateJSONString(responseSchema, raw); err != nil {
		return types.ExtractionResult{}, Malformed("response failed schema validation", err)
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return types.ExtractionResult{}, Malformed("failed to decode response JSON", err)
	}

	return mapResponse(wire), nil
}

// mapResponse applies the canonical-result invariants to a validated
// wire response: nameless skills dropped, names lowercased, years
// clamped to [0, 60] and rounded down, case-insensitive dedup, keywords
// deduplicated against skill names.
func mapResponse(wire wireResponse) types.ExtractionResult {
	result := types.NewEmptyResult(types.SourceRemote)
	result.CompanyName = strings.TrimSpace(wire.Company)
	result.CompanyURL = strings.TrimSpace(wire.CompanyURL)
	result.JobTitle = strings.TrimSpace(wire.JobTitle)
	result.ExperienceLevel = strings.ToLower(strings.TrimSpace(wire.ExperienceLevel))

	seenSkills := make(map[string]bool, len(wire.Skills))
	for _, ws := range wire.Skills {
		name := strings.ToLower(strings.TrimSpace(ws.Name))
		if name == "" || seenSkills[name] {
			continue
		}
		seenSkills[name] = true
		result.Skills = append(result.Skills, types.SkillEntry{
			Name:              name,
			YearsOfExperience: clampYears(ws.Years),
		})
	}

	seenKeywords := make(map[string]bool, len(wire.Keywords))
	for _, kw := range wire.Keywords {
		normalized := strings.ToLower(strings.TrimSpace(kw))
		if normalized == "" || seenKeywords[normalized] || seenSkills[normalized] {
			continue
		}
		seenKeywords[normalized] = true
		result.Keywords = append(result.Keywords, normalized)
	}

	return result
}

func clampYears(years *float64) *int {
	if years == nil {
		return nil
	}
	v := int(math.Floor(*years))
	if v < 0 {
		v = 0
	}
	if v > maxYears {
		v = maxYears
	}
	return &v
}

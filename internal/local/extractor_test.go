package local

import (
	"strings"
	"testing"

	"github.com/jonathan/job-scanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_AcmeExample(t *testing.T) {
	e := NewExtractor(nil)
	text := "We are hiring at Acme Corp. Requires Python 5+ years, Go 2 years, and strong communication."

	result := e.Extract(text)

	assert.Equal(t, types.SourceLocalFallback, result.Source)
	assert.Equal(t, "Acme Corp", result.CompanyName)

	require.Len(t, result.Skills, 2)
	assert.Equal(t, "python", result.Skills[0].Name)
	require.NotNil(t, result.Skills[0].YearsOfExperience)
	assert.Equal(t, 5, *result.Skills[0].YearsOfExperience)

	assert.Equal(t, "go", result.Skills[1].Name)
	require.NotNil(t, result.Skills[1].YearsOfExperience)
	assert.Equal(t, 2, *result.Skills[1].YearsOfExperience)
}

func TestExtract_EmptyInput(t *testing.T) {
	e := NewExtractor(nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		result := e.Extract(input)
		assert.NotNil(t, result.Skills)
		assert.NotNil(t, result.Keywords)
		assert.Empty(t, result.Skills)
		assert.Empty(t, result.Keywords)
		assert.Equal(t, types.SourceLocalFallback, result.Source)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := NewExtractor(nil)
	text := "Senior role at Initech. Kubernetes, Docker, Go, Python, Terraform. " +
		"Kubernetes experience required. 3+ years Docker. Distributed systems a plus."

	first := e.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(text), "extraction must be byte-identical across calls")
	}
}

func TestExtract_SkillDeduplication(t *testing.T) {
	e := NewExtractor(nil)
	// golang and Go normalize to the same canonical skill
	result := e.Extract("Looking for Golang experience. Go is our main language. We love go.")

	seen := make(map[string]bool)
	for _, s := range result.Skills {
		lower := strings.ToLower(s.Name)
		assert.False(t, seen[lower], "duplicate skill %q", s.Name)
		seen[lower] = true
	}
	assert.True(t, seen["go"])
	assert.False(t, seen["golang"], "alias must resolve to canonical name")
}

func TestExtract_MultiWordPhraseNotDoubleCounted(t *testing.T) {
	e := NewExtractor(nil)
	result := e.Extract("Experience with machine learning pipelines is required.")

	var names []string
	for _, s := range result.Skills {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "machine learning")
}

func TestExtract_RankingPrefersYearsThenFrequency(t *testing.T) {
	e := NewExtractor(nil)
	// docker has years; kubernetes appears three times but without years
	text := "Kubernetes. Kubernetes. Kubernetes. Docker 4 years. Python."

	result := e.Extract(text)
	require.NotEmpty(t, result.Skills)
	assert.Equal(t, "docker", result.Skills[0].Name, "skill with years outranks higher-frequency skill")
	assert.Equal(t, "kubernetes", result.Skills[1].Name)
}

func TestExtract_TieBrokenByFirstOccurrence(t *testing.T) {
	e := NewExtractor(nil)
	result := e.Extract("Rust and Scala are both welcome here.")

	require.GreaterOrEqual(t, len(result.Skills), 2)
	assert.Equal(t, "rust", result.Skills[0].Name)
	assert.Equal(t, "scala", result.Skills[1].Name)
}

func TestExtract_NoFabricatedYears(t *testing.T) {
	e := NewExtractor(nil)
	result := e.Extract("We want Python developers who enjoy their work.")

	require.NotEmpty(t, result.Skills)
	for _, s := range result.Skills {
		assert.Nil(t, s.YearsOfExperience, "years must stay unset without an explicit statement")
	}
}

func TestExtract_KeywordsExcludeSkillsAndStopwords(t *testing.T) {
	e := NewExtractor(nil)
	text := "Python engineers build scalable scalable pipelines with Python for the payments payments platform."

	result := e.Extract(text)

	for _, kw := range result.Keywords {
		assert.False(t, result.HasSkill(kw), "keyword %q duplicates a skill name", kw)
		assert.NotEqual(t, "the", kw)
		assert.NotEqual(t, "with", kw)
	}
	assert.Contains(t, result.Keywords, "scalable")
	assert.Contains(t, result.Keywords, "payments")
}

func TestExtract_KeywordsUnique(t *testing.T) {
	e := NewExtractor(nil)
	result := e.Extract("platform platform platform reliability reliability observability")

	seen := make(map[string]bool)
	for _, kw := range result.Keywords {
		assert.False(t, seen[kw], "duplicate keyword %q", kw)
		seen[kw] = true
	}
}

func TestExtract_Caps(t *testing.T) {
	e := NewExtractor(nil, WithMaxSkills(2), WithMaxKeywords(3))
	text := "Python Java Rust Scala Kotlin. Alpha bravo charlie delta echo foxtrot. " +
		"Alpha bravo charlie delta echo foxtrot."

	result := e.Extract(text)
	assert.LessOrEqual(t, len(result.Skills), 2)
	assert.LessOrEqual(t, len(result.Keywords), 3)
}

func TestExtract_PunctuatedSkills(t *testing.T) {
	e := NewExtractor(nil)
	result := e.Extract("Stack: C++, C#, Node.js, and CI/CD tooling.")

	var names []string
	for _, s := range result.Skills {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "c++")
	assert.Contains(t, names, "c#")
	assert.Contains(t, names, "node.js")
	assert.Contains(t, names, "ci/cd")
}

func TestExtract_ExperienceLevel(t *testing.T) {
	e := NewExtractor(nil)

	result := e.Extract("Senior Backend Engineer wanted.")
	assert.Equal(t, "senior", result.ExperienceLevel)

	result = e.Extract("This is an entry level opportunity.")
	assert.Equal(t, "entry-level", result.ExperienceLevel)
}

func TestExtract_AdditionalDetails(t *testing.T) {
	e := NewExtractor(nil)
	text := "Remote friendly. Salary $120,000 - $150,000 per year. Bachelor degree required."

	result := e.Extract(text)
	assert.Equal(t, "true", result.AdditionalDetails["remote_work"])
	assert.Equal(t, "true", result.AdditionalDetails["education_required"])
	assert.Contains(t, result.AdditionalDetails["salary_range"], "$120,000")
}

package remote

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
type ExtractionSchema struct {
	Name        string        // Schema name
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint for the prompt
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// JobFactsSchema returns the extraction schema for job postings: company,
// skills with years-of-experience, and keywords.
func JobFactsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobFacts",
		Description: `You are an expert job posting parser. Extract structured facts from the raw job posting text.
Only report what the text states; never invent a company name or a years-of-experience value.`,
		Fields: []SchemaField{
			{
				Name:        "company",
				Type:        "\"string\"",
				Description: "Company name exactly as written; omit if the text does not name one",
				Required:    false,
			},
			{
				Name:        "job_title",
				Type:        "\"string\"",
				Description: "Role title; omit if absent",
				Required:    false,
			},
			{
				Name:        "experience_level",
				Type:        "\"string\"",
				Description: "Seniority level (junior, senior, staff, ...); omit if absent",
				Required:    false,
			},
			{
				Name:        "skills",
				Type:        "[{\"name\": \"string\", \"years\": number}]",
				Description: "Skills ranked by relevance, highest first; years only when the posting states it",
				Required:    true,
			},
			{
				Name:        "keywords",
				Type:        "[\"string\"]",
				Description: "Significant non-skill terms ranked by relevance, no duplicates of skill names",
				Required:    true,
			},
		},
	}
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// responseSchema is the JSON Schema every remote response must satisfy
// before mapping. Item-level fields stay loose on purpose: a skill entry
// without a name is dropped during mapping rather than failing the whole
// response.
const responseSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["skills", "keywords"],
	"properties": {
		"company": {"type": "string"},
		"company_url": {"type": "string"},
		"job_title": {"type": "string"},
		"experience_level": {"type": "string"},
		"skills": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"years": {"type": "number"}
				}
			}
		},
		"keywords": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

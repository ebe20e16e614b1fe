package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/job-scanner/internal/config"
	"github.com/jonathan/job-scanner/internal/lexicon"
	"github.com/jonathan/job-scanner/internal/observability"
	"github.com/jonathan/job-scanner/internal/scan"
	"github.com/jonathan/job-scanner/internal/types"
)

func TestExtractionOptions_AppliesMaxLen(t *testing.T) {
	// The skill mention sits past the configured input cap, so a capped
	// normalizer must drop it while the default keeps it.
	text := strings.Repeat("General engineering role. ", 10) + "Requires Python 5+ years."

	capped := scan.NewOrchestrator(extractionOptions(
		config.Config{MaxLen: 50}, lexicon.Default(), observability.Nop())...)
	result := capped.Scan(context.Background(), types.ExtractionInput{RawText: text})
	assert.False(t, result.HasSkill("python"))

	uncapped := scan.NewOrchestrator(extractionOptions(
		config.Config{}, lexicon.Default(), observability.Nop())...)
	result = uncapped.Scan(context.Background(), types.ExtractionInput{RawText: text})
	assert.True(t, result.HasSkill("python"))
}

func TestExtractionOptions_AppliesListCaps(t *testing.T) {
	text := "Requires Python, Go, Docker, Kubernetes and Terraform experience."

	o := scan.NewOrchestrator(extractionOptions(
		config.Config{MaxSkills: 2}, lexicon.Default(), observability.Nop())...)
	result := o.Scan(context.Background(), types.ExtractionInput{RawText: text})
	assert.LessOrEqual(t, len(result.Skills), 2)
}

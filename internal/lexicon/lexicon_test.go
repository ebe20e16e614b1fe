package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	l := Default()

	tests := []struct {
		name      string
		phrase    string
		expected  string
		wantMatch bool
	}{
		{"direct skill", "python", "python", true},
		{"uppercase skill", "Python", "python", true},
		{"alias golang", "golang", "go", true},
		{"alias k8s", "k8s", "kubernetes", true},
		{"alias with dot", "react.js", "react", true},
		{"multi-word skill", "machine learning", "machine learning", true},
		{"multi-word alias", "go lang", "go", true},
		{"unknown phrase", "basket weaving", "", false},
		{"empty phrase", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, ok := l.Canonical(tt.phrase)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.expected, canonical)
		})
	}
}

func TestIsStopword(t *testing.T) {
	l := Default()

	assert.True(t, l.IsStopword("the"))
	assert.True(t, l.IsStopword("The"))
	assert.True(t, l.IsStopword("experience"))
	assert.False(t, l.IsStopword("python"))
	assert.False(t, l.IsStopword("communication"))
}

func TestMaxPhraseWords(t *testing.T) {
	l := Default()
	// "amazon web services" and "distributed systems" are in the defaults
	assert.GreaterOrEqual(t, l.MaxPhraseWords(), 3)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.json")
	content := `{
		"skills": ["cobol", "quantum computing"],
		"aliases": {"qc": "quantum computing"},
		"stopwords": ["synergy"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	l, err := LoadFile(path)
	require.NoError(t, err)

	// Merged custom entries
	canonical, ok := l.Canonical("cobol")
	assert.True(t, ok)
	assert.Equal(t, "cobol", canonical)

	canonical, ok = l.Canonical("qc")
	assert.True(t, ok)
	assert.Equal(t, "quantum computing", canonical)

	assert.True(t, l.IsStopword("synergy"))

	// Defaults survive the merge
	_, ok = l.Canonical("golang")
	assert.True(t, ok)
}

func TestLoadFile_EmptyPath(t *testing.T) {
	l, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default().Size(), l.Size())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/lexicon.json")
	assert.Error(t, err)
}

func TestLoadFile_BadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

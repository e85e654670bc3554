package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKnowledgeBaseDefaults(t *testing.T) {
	kb, err := LoadKnowledgeBase("")
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Evaluation)
	assert.NotEmpty(t, kb.Optimization)

	// A directory without a rule file also falls back to defaults.
	kb, err = LoadKnowledgeBase(t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Evaluation)
}

func TestLoadKnowledgeBaseFromFile(t *testing.T) {
	dir := t.TempDir()
	raw := `evaluation:
  - metric: technical_compatibility
    above: 0.9
    reasoning: custom reasoning
optimization:
  - metric: market_synergy
    above: 0.5
    insight: custom insight
    adjustment: 0.04
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collaboration.yaml"), []byte(raw), 0o644))

	kb, err := LoadKnowledgeBase(dir)
	require.NoError(t, err)
	require.Len(t, kb.Evaluation, 1)
	require.Len(t, kb.Optimization, 1)

	rule := kb.Evaluation[0]
	assert.Equal(t, "technical_compatibility", rule.Metric)
	require.NotNil(t, rule.Above)
	assert.Equal(t, 0.9, *rule.Above)
	assert.Equal(t, "custom reasoning", rule.Reasoning)
	assert.Equal(t, 0.04, kb.Optimization[0].Adjustment)
}

func TestLoadKnowledgeBaseMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collaboration.yaml"), []byte("evaluation: [not: valid"), 0o644))

	_, err := LoadKnowledgeBase(dir)
	assert.Error(t, err)
}

func TestLoadKnowledgeBaseEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "collaboration.yaml"), []byte(""), 0o644))

	kb, err := LoadKnowledgeBase(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Evaluation, "empty file falls back to defaults")
}

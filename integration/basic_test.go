//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreWithSQLiteCache(t *testing.T) {
	home := t.TempDir()
	signals := writeSignals(t)
	env := []string{"PAGESCORE_COLOR=no"}

	out, err := runCommand(t, home, env, "score", "https://example.com/shoes", "--signals", signals)
	require.NoError(t, err)
	assert.Contains(t, out, "Overall score:")
	assert.Contains(t, out, "cached: false")

	out, err = runCommand(t, home, env, "score", "https://example.com/shoes", "--signals", signals)
	require.NoError(t, err)
	assert.Contains(t, out, "cached: true")

	out, err = runCommand(t, home, env, "score", "https://example.com/shoes", "--signals", signals, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "cached: false")

	_, err = os.Stat(filepath.Join(home, ".pagescore_cache.db"))
	require.NoError(t, err)

	out, err = runCommand(t, home, env, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "url_analysis")

	out, err = runCommand(t, home, env, "cache", "invalidate", "--url", "https://example.com/shoes")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalidated 1 cache entries.")

	out, err = runCommand(t, home, env, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared successfully.")
}

func TestScoreJSONOutput(t *testing.T) {
	home := t.TempDir()
	outFile := filepath.Join(home, "report.json")

	_, err := runCommand(t, home, nil, "score", "https://example.com/shoes",
		"--signals", writeSignals(t), "--output", "json", "--output-file", outFile, "--cache-backend", "none")
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Contains(t, report, "overall_score")
	assert.Contains(t, report, "category_scores")
	assert.Equal(t, float64(100), report["max_possible_score"])
}

func TestHistoryWithSQLite(t *testing.T) {
	home := t.TempDir()
	signals := writeSignals(t)
	env := []string{"PAGESCORE_HISTORY_BACKEND=sqlite", "PAGESCORE_COLOR=no"}

	_, err := runCommand(t, home, env, "score", "https://example.com/shoes", "--signals", signals)
	require.NoError(t, err)
	_, err = runCommand(t, home, env, "score", "https://example.com/shoes", "--signals", signals)
	require.NoError(t, err)

	out, err := runCommand(t, home, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")

	exportBase := filepath.Join(home, "history")
	_, err = runCommand(t, home, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	for _, suffix := range []string{".reports.parquet", ".category_scores.parquet"} {
		_, err := os.Stat(exportBase + suffix)
		assert.NoError(t, err)
	}

	out, err = runCommand(t, home, env, "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared successfully.")
}

func TestWeightsAndVersion(t *testing.T) {
	home := t.TempDir()

	out, err := runCommand(t, home, nil, "weights", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "category,weight,rule")
	assert.Contains(t, out, "title,20,")

	out, err = runCommand(t, home, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pagescore CLI")
	assert.Contains(t, out, "Scoring rules: ")
}

func TestInvalidConfiguration(t *testing.T) {
	home := t.TempDir()

	_, err := runCommand(t, home, nil, "score", "https://example.com", "--signals", writeSignals(t), "--output", "xml")
	assert.Error(t, err)

	_, err = runCommand(t, home, nil, "score", "https://example.com", "--signals", writeSignals(t), "--kind", "batch_analysis")
	assert.Error(t, err)
}

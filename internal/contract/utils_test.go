package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/pagescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorStatus(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = original }()

	tests := []struct {
		name     string
		score    float64
		expected string
	}{
		{"excellent", 95, schema.ExcellentStatus},
		{"good", 85, schema.GoodStatus},
		{"average", 70, schema.AverageStatus},
		{"below average", 60, schema.BelowAverageStatus},
		{"poor", 10, schema.PoorStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetColorStatus(tt.score))
		})
	}
}

func TestGetColorGrade(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = original }()

	for _, grade := range []schema.Grade{schema.GradeA, schema.GradeB, schema.GradeC, schema.GradeD, schema.GradeF} {
		assert.Equal(t, string(grade), GetColorGrade(grade))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "report.json")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".pagescore_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	historyPath := GetHistoryDBFilePath()
	assert.Contains(t, historyPath, ".pagescore_history.db")
	assert.NotEqual(t, cachePath, historyPath)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "Missing...", TruncateText("Missing meta description", 10))
	assert.Equal(t, "abcdef", TruncateText("abcdef", 3))
	assert.Equal(t, "héllo", TruncateText("héllo", 5))
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBoolString(tt.input)
		if tt.expectError {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}
}

func TestClockFunc(t *testing.T) {
	fixed := fixedNow
	clock := ClockFunc(func() time.Time { return fixed })
	assert.Equal(t, fixed, clock.Now())
	assert.False(t, SystemClock{}.Now().IsZero())
}

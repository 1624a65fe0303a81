package outwriter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/pagescore/schema"
)

func TestScoreFormat(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{name: "precision 1", precision: 1, value: 87.25, expected: "87.2"},
		{name: "precision 2", precision: 2, value: 3.14159, expected: "3.14"},
		{name: "whole number", precision: 1, value: 100, expected: "100.0"},
		{name: "negative value", precision: 2, value: -42.567, expected: "-42.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scoreFormat(tt.precision)(tt.value))
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, encodeJSON(&buf, map[string]int{"overall_score": 88}))
	assert.Equal(t, "{\n  \"overall_score\": 88\n}\n", buf.String())

	err := encodeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	err := encodeCSV(&buf, []string{"category", "weight"}, [][]string{{"title", "20"}, {"links", "8"}})
	require.NoError(t, err)
	assert.Equal(t, "category,weight\ntitle,20\nlinks,8\n", buf.String())

	buf.Reset()
	require.NoError(t, encodeCSV(&buf, []string{"category"}, nil))
	assert.Equal(t, "category\n", buf.String())
}

func TestEmit(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.csv")
	err := emit(outFile, schema.CSVOut, func(w io.Writer) error {
		_, err := io.WriteString(w, "category,score\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "category,score\n", string(data))

	renderErr := errors.New("render failure")
	err = emit(filepath.Join(t.TempDir(), "other.txt"), schema.TextOut, func(io.Writer) error { return renderErr })
	assert.ErrorIs(t, err, renderErr)

	err = emit(filepath.Join(t.TempDir(), "missing", "report.json"), schema.JSONOut, func(io.Writer) error { return nil })
	assert.Error(t, err)
}

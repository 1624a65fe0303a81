package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/pagescore/schema"
)

// Color variables for console output.
var (
	ExcellentColor    = color.New(color.FgGreen, color.Bold)   // top grade
	GoodColor         = color.New(color.FgGreen)               // solid result
	AverageColor      = color.New(color.FgYellow)              // needs attention
	BelowAverageColor = color.New(color.FgMagenta, color.Bold) // strong warning
	PoorColor         = color.New(color.FgRed, color.Bold)     // failing
)

// statusColor maps a status label to its console color.
func statusColor(status string) *color.Color {
	switch status {
	case schema.ExcellentStatus:
		return ExcellentColor
	case schema.GoodStatus:
		return GoodColor
	case schema.AverageStatus:
		return AverageColor
	case schema.BelowAverageStatus:
		return BelowAverageColor
	default:
		return PoorColor
	}
}

// GetColorStatus returns the status label of a score colored for console output.
func GetColorStatus(score float64) string {
	text := schema.GetStatus(score)
	return statusColor(text).Sprint(text)
}

// GetColorGrade returns a grade colored like the status band it belongs to.
func GetColorGrade(grade schema.Grade) string {
	var status string
	switch grade {
	case schema.GradeA:
		status = schema.ExcellentStatus
	case schema.GradeB:
		status = schema.GoodStatus
	case schema.GradeC:
		status = schema.AverageStatus
	case schema.GradeD:
		status = schema.BelowAverageStatus
	default:
		status = schema.PoorStatus
	}
	return statusColor(status).Sprint(string(grade))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pagescore_cache.db"
	}
	return filepath.Join(homeDir, ".pagescore_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for score history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pagescore_history.db"
	}
	return filepath.Join(homeDir, ".pagescore_history.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

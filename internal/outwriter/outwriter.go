// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// Table width bounds for the free text column.
const (
	defaultTermWidth = 80
	minTextWidth     = 20
	maxTextWidth     = 80
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints a score result using the configured output format.
func (ow *OutWriter) WriteReport(result schema.ScoreResult, cfg *contract.Config, duration time.Duration) error {
	return PrintScoreResult(result, cfg, duration)
}

// WriteWeights prints the category weights using the configured output format.
func (ow *OutWriter) WriteWeights(weights map[schema.Category]int, cfg *contract.Config) error {
	return PrintWeights(weights, cfg)
}

// GetMaxTableTextWidth calculates the width left for the issue column in table output.
func GetMaxTableTextWidth(_ *contract.Config) int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		termWidth = defaultTermWidth
	}

	// Category + Score + Weight + Contribution + Status with borders/padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < minTextWidth {
		return minTextWidth
	}
	if available > maxTextWidth {
		return maxTextWidth
	}
	return available
}

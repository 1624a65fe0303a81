package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/pagescore/internal/contract"
	"github.com/huangsam/pagescore/schema"
)

// emit renders into outputFile, or stdout when it is empty.
// A file destination is announced on stderr once it has been closed cleanly.
func emit(outputFile string, mode schema.OutputMode, render func(io.Writer) error) (err error) {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file == os.Stdout {
		return render(file)
	}

	defer func() {
		err = errors.Join(err, file.Close())
		if err == nil {
			_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %s output to %s\n", mode, outputFile)
		}
	}()
	return render(file)
}

// encodeJSON writes v as indented JSON.
func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// encodeCSV writes the header followed by rows.
func encodeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// scoreFormat renders scores and contributions at the configured precision.
func scoreFormat(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

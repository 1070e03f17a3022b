// Package report exports skin analyses as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/kozaktomas/frushion/internal/skin"
)

// Filename is the suggested download name.
const Filename = "analysis_report.csv"

// TimestampFormat matches JavaScript's Date.toISOString.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Header is the first CSV row.
var Header = []string{"Skin Tone", "Texture", "Elasticity", "Hydration", "Timestamp"}

// Row converts one analysis into CSV fields.
func Row(r skin.Result) []string {
	return []string{r.SkinTone, r.Texture, r.Elasticity, r.Hydration, FormatTimestamp(r.Timestamp)}
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// Write writes the header followed by one row per analysis. Fields are quoted when needed.
func Write(w io.Writer, results []skin.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteLatest writes the two-line report of a single analysis.
func WriteLatest(w io.Writer, r skin.Result) error {
	return Write(w, []skin.Result{r})
}

// Package export writes a forecast document to disk: the full document as
// JSON plus one CSV per non-empty forecast sequence.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/pkg/forecast"
)

// TimestampLayout is the filename timestamp, local time to the second.
const TimestampLayout = "20060102_150405"

// DefaultBaseName prefixes every output file.
const DefaultBaseName = "Universal_Monthly"

// File suffixes, appended after the timestamp.
const (
	MonthlySuffix = "_MONTHLY.csv"
	HourlySuffix  = "_HOURLY_GROUPED.csv"
	DailySuffix   = "_DAILY_FORECAST.csv"
)

// Paths lists the files written by one Export. Empty means not written.
type Paths struct {
	JSON    string `json:"json"`
	Monthly string `json:"monthly,omitempty"`
	Hourly  string `json:"hourly,omitempty"`
	Daily   string `json:"daily,omitempty"`
}

// All returns the non-empty paths in write order.
func (p Paths) All() []string {
	var out []string
	for _, s := range []string{p.JSON, p.Monthly, p.Hourly, p.Daily} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Exporter writes documents under Dir.
type Exporter struct {
	Dir      string
	BaseName string
	Now      func() time.Time

	// HourlyIncludesPeriod adds a forecast_period column to the hourly CSV.
	HourlyIncludesPeriod bool
}

// New returns an Exporter with the default base name and clock.
func New(dir string) *Exporter {
	return &Exporter{Dir: dir, BaseName: DefaultBaseName, Now: time.Now}
}

// Export writes doc. All files of one call share a single timestamp. The
// JSON file is always written; each CSV only when its sequence is
// non-empty. The first write error is returned with the paths written so
// far.
func (e *Exporter) Export(doc *forecast.Document) (Paths, error) {
	var paths Paths

	if e.Dir != "" {
		if err := os.MkdirAll(e.Dir, 0o755); err != nil {
			return paths, fmt.Errorf("create output dir: %w", err)
		}
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	base := e.BaseName
	if base == "" {
		base = DefaultBaseName
	}
	prefix := filepath.Join(e.Dir, base+"_"+now().Format(TimestampLayout))

	jsonPath := prefix + ".json"
	size, err := writeJSON(jsonPath, doc)
	if err != nil {
		return paths, err
	}
	paths.JSON = jsonPath
	logger.Info("saved JSON document", "path", jsonPath, "size", humanize.Bytes(uint64(size)))

	if t := MonthlyTable(doc); len(t.Rows) > 0 {
		p := prefix + MonthlySuffix
		if err := WriteCSV(p, t, false); err != nil {
			return paths, err
		}
		paths.Monthly = p
		logger.Info("saved monthly CSV", "path", p, "rows", len(t.Rows))
	} else {
		logger.Info("monthly CSV skipped, no monthly entries")
	}

	if t := HourlyTable(doc, e.HourlyIncludesPeriod); len(t.Rows) > 0 {
		p := prefix + HourlySuffix
		if err := WriteCSV(p, t, false); err != nil {
			return paths, err
		}
		paths.Hourly = p
		logger.Info("saved hourly CSV", "path", p, "rows", len(t.Rows))
	} else {
		logger.Info("hourly CSV skipped, no hourly entries")
	}

	if t := DailyTable(doc); len(t.Rows) > 0 {
		p := prefix + DailySuffix
		if err := WriteCSV(p, t, false); err != nil {
			return paths, err
		}
		paths.Daily = p
		logger.Info("saved daily CSV", "path", p, "rows", len(t.Rows))
	} else {
		logger.Info("daily CSV skipped, no daily entries")
	}

	return paths, nil
}

// writeJSON writes doc with 4-space indentation and non-ASCII text kept
// as is.
func writeJSON(path string, doc *forecast.Document) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode document: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return buf.Len(), nil
}

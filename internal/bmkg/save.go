package bmkg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jmylchreest/wxscrape/internal/logger"
	"github.com/jmylchreest/wxscrape/pkg/export"
)

// FilePrefix starts every saved file name.
const FilePrefix = "bmkg_cuaca_"

// Scrape fetches url and parses its forecast table.
func Scrape(ctx context.Context, url string, cfg FetchConfig) ([]Record, error) {
	doc, err := Fetch(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	records, err := ParseTable(doc)
	if err != nil {
		return nil, err
	}
	logger.Info("scraped BMKG table", "url", url, "records", len(records))
	return records, nil
}

// FileNames returns the CSV and JSON paths for a save at now.
func FileNames(dir string, now time.Time) (csvPath, jsonPath string) {
	base := filepath.Join(dir, FilePrefix+now.Format(export.TimestampLayout))
	return base + ".csv", base + ".json"
}

// SaveCSV writes records with a UTF-8 BOM so spreadsheet tools detect the
// encoding.
func SaveCSV(path string, records []Record) error {
	t := export.Table{Header: Header}
	for _, r := range records {
		t.Rows = append(t.Rows, r.Row())
	}
	if err := export.WriteCSV(path, t, true); err != nil {
		return err
	}
	logger.Info("saved CSV", "path", path, "rows", len(records))
	return nil
}

// SaveJSON writes records as a 2-space indented array.
func SaveJSON(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("saved JSON", "path", path, "records", len(records))
	return nil
}

// Preview writes up to limit records in a readable block.
func Preview(w io.Writer, records []Record, limit int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no data")
		return
	}
	for i, r := range records {
		if i >= limit {
			fmt.Fprintf(w, "\n... and %d more\n", len(records)-limit)
			return
		}
		fmt.Fprintf(w, "\n[%d]\n", i+1)
		fmt.Fprintf(w, "  Region      : %s\n", r.Region)
		fmt.Fprintf(w, "  Date        : %s\n", r.Date)
		fmt.Fprintf(w, "  Weather     : %s\n", r.Weather)
		fmt.Fprintf(w, "  Temperature : %s\n", r.Temperature)
		fmt.Fprintf(w, "  Humidity    : %s\n", r.Humidity)
	}
}

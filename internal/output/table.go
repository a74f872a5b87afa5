package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TableWriter prints Tabular items as aligned columns under a header taken
// from the first item.
type TableWriter struct {
	tw     *tabwriter.Writer
	header bool
	rows   int
}

// NewTableWriter creates a table writer.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// Write adds one row. Items that are not Tabular are rejected.
func (w *TableWriter) Write(data any) error {
	t, ok := data.(Tabular)
	if !ok {
		return fmt.Errorf("table output not supported for %T", data)
	}
	if !w.header {
		if _, err := fmt.Fprintln(w.tw, strings.Join(t.Columns(), "\t")); err != nil {
			return err
		}
		w.header = true
	}
	w.rows++
	_, err := fmt.Fprintln(w.tw, strings.Join(t.Values(), "\t"))
	return err
}

// Flush aligns and writes the buffered rows.
func (w *TableWriter) Flush() error {
	if w.rows == 0 {
		if _, err := fmt.Fprintln(w.tw, "(no rows)"); err != nil {
			return err
		}
	}
	return w.tw.Flush()
}

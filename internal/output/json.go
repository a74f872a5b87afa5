package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter collects items and writes them as one JSON array on Flush.
// A single item is written on its own, not wrapped in an array.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
	items  []any
}

// NewJSONWriter creates a JSON writer. An empty indent writes compact JSON.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
		items:  make([]any, 0),
	}
}

// Write buffers a single item.
func (w *JSONWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// Flush writes the buffered items. Forecast text keeps its non-ASCII and
// markup characters as is.
func (w *JSONWriter) Flush() error {
	enc := newEncoder(w.w)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}

	var v any = w.items
	if len(w.items) == 1 {
		v = w.items[0]
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.items = w.items[:0]
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON, one line per item.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write writes a single item as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	if err := newEncoder(w.w).Encode(data); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

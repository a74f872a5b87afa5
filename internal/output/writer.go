// Package output prints documents and run history to a terminal or pipe.
package output

import (
	"fmt"
	"io"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatTable, FormatJSON, FormatJSONL, FormatYAML}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single item.
	Write(data any) error

	// Flush ensures all data is written.
	Flush() error
}

// Tabular is implemented by items the table format can print.
type Tabular interface {
	Columns() []string
	Values() []string
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent string
}

// WithIndent sets the JSON indentation string. Empty means compact.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: "  "}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	case FormatTable, "":
		return NewTableWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use %v)", format, Formats)
	}
}

// WriteAll writes every item to w and flushes it.
func WriteAll[T any](w Writer, items []T) error {
	for _, item := range items {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return w.Flush()
}

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testRow struct {
	Name string `json:"name" yaml:"name"`
	Temp string `json:"temp" yaml:"temp"`
}

func (r testRow) Columns() []string { return []string{"NAME", "TEMP"} }
func (r testRow) Values() []string  { return []string{r.Name, r.Temp} }

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format Format
		want   Writer
	}{
		{FormatJSON, &JSONWriter{}},
		{FormatJSONL, &JSONLWriter{}},
		{FormatYAML, &YAMLWriter{}},
		{FormatTable, &TableWriter{}},
		{"", &TableWriter{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			require.NoError(t, err)
			assert.IsType(t, tt.want, w)
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestJSONWriter_SingleItemNotWrapped(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "  ")

	require.NoError(t, WriteAll(w, []testRow{{Name: "Sampit", Temp: "31 °C"}}))

	var got testRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Sampit", got.Name)
	assert.Contains(t, buf.String(), "31 °C", "non-ASCII text should be literal")
}

func TestJSONWriter_MultipleItemsAsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")

	require.NoError(t, WriteAll(w, []testRow{{Name: "a"}, {Name: "b <c>"}}))

	out := strings.TrimSpace(buf.String())
	assert.NotContains(t, out, "\n", "expected compact output")
	assert.Contains(t, out, "b <c>", "HTML characters should not be escaped")

	var got []testRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewJSONWriter(buf, "").Flush())
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestJSONLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	require.NoError(t, WriteAll(w, []testRow{{Name: "first"}, {Name: "second"}}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	for i, line := range lines {
		var item testRow
		assert.NoError(t, json.Unmarshal([]byte(line), &item), "line %d is not valid JSON", i)
	}
}

func TestYAMLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	require.NoError(t, WriteAll(w, []testRow{{Name: "first", Temp: "N/A"}, {Name: "second"}}))

	var got []testRow
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "N/A", got[0].Temp)
}

func TestYAMLWriter_SingleItem(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	require.NoError(t, WriteAll(w, []testRow{{Name: "only"}}))

	var got testRow
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "only", got.Name)
}

func TestTableWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTableWriter(buf)

	rows := []testRow{{Name: "Pangkalan Bun", Temp: "32 °C"}, {Name: "Sampit", Temp: "31 °C"}}
	require.NoError(t, WriteAll(w, rows))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3, "expected header plus 2 rows")
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[0], "TEMP")
	// columns are aligned
	assert.Equal(t, strings.Index(lines[1], "32"), strings.Index(lines[2], "31"), "columns not aligned:\n%s", buf.String())
}

func TestTableWriter_RejectsPlainValues(t *testing.T) {
	w := NewTableWriter(&bytes.Buffer{})
	assert.Error(t, w.Write(map[string]string{"a": "b"}))
}

func TestTableWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewTableWriter(buf).Flush())
	assert.Equal(t, "(no rows)", strings.TrimSpace(buf.String()))
}

func TestWithIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithIndent("\t"))
	require.NoError(t, err)
	require.NoError(t, WriteAll(w, []testRow{{Name: "x"}}))
	assert.Contains(t, buf.String(), "\n\t\"name\"")
}

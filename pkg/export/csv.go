package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
)

// utf8BOM makes spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes t to path, truncating any existing file. With bom set
// the file starts with a UTF-8 byte order mark.
func WriteCSV(path string, t Table, bom bool) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	bufw := bufio.NewWriter(f)
	if bom {
		if _, err := bufw.Write(utf8BOM); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	w := csv.NewWriter(bufw)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bufw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

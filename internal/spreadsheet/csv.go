package spreadsheet

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func readDelimited(path string, comma rune) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, formatErr(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for len(rows) <= MaxRowsPerSheet {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatErr(path, err)
		}
		rows = append(rows, record)
	}

	// Delimited files have a single implicit sheet named after the file.
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sheet := newSheet(name, rows)

	wb := &Workbook{Path: path}
	if len(sheet.Headers) > 0 {
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

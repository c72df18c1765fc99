// Package spreadsheet reads tabular workbook files (.xlsx, .xlsm, .csv,
// .tsv) into an in-memory representation the classifier and extractor work
// on. Parsing is bounded by row and size guards so one oversized upload
// cannot stall ingestion.
package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/construdata/precobase/internal/domain"
)

// Guards applied to every file before and during parsing.
const (
	MaxFileSize     = 100 * 1024 * 1024
	MaxRowsPerSheet = 10_000
)

// Sheet is one tab of a workbook. Headers hold the first non-empty row;
// Rows hold everything after it, unmodified.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Workbook is a fully-read spreadsheet file.
type Workbook struct {
	Path   string
	Sheets []Sheet
}

// Supported reports whether the file extension is one the reader handles.
// Legacy binary .xls is deliberately not parsed; such files are discarded
// with a reason instead of failing the run.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv", ".tsv":
		return true
	}
	return false
}

// Read parses the file at path into a Workbook. Unsupported extensions and
// oversized files return format errors; callers translate those into the
// discarded lifecycle state.
func Read(path string) (*Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeFormat, "cannot stat file", err)
	}
	if info.Size() > MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readExcel(path)
	case ".csv":
		return readDelimited(path, ',')
	case ".tsv":
		return readDelimited(path, '\t')
	default:
		return nil, domain.ErrUnsupportedFileType
	}
}

func newSheet(name string, rows [][]string) Sheet {
	s := Sheet{Name: name}
	for _, row := range rows {
		if len(s.Headers) == 0 {
			if emptyRow(row) {
				continue
			}
			s.Headers = trimRow(row)
			continue
		}
		if len(s.Rows) >= MaxRowsPerSheet {
			break
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}

// SampleText concatenates the first n data rows into one folded line of
// text. The classifier scores this against its keyword set.
func (s Sheet) SampleText(n int) string {
	if n > len(s.Rows) {
		n = len(s.Rows)
	}
	var b strings.Builder
	for _, row := range s.Rows[:n] {
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}

// FindSheet returns the sheet whose folded name matches name, ignoring case
// and accents. SICONV workbooks are addressed by tab name this way.
func (w *Workbook) FindSheet(name string, fold func(string) string) (Sheet, bool) {
	want := fold(name)
	for _, s := range w.Sheets {
		if fold(s.Name) == want {
			return s, true
		}
	}
	return Sheet{}, false
}

func formatErr(path string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeFormat,
		fmt.Sprintf("cannot parse %s as tabular data", filepath.Base(path)), err)
}

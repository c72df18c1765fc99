// Package extract turns classified sheets into canonical service rows and
// indexable chunks. Every data row of a priced sheet becomes one chunk; rows
// that additionally satisfy the canonical constraints become one service row
// in the structured store.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/construdata/precobase/internal/domain"
	"github.com/construdata/precobase/internal/normalize"
	"github.com/construdata/precobase/internal/spreadsheet"
)

// Result is the per-sheet outcome. Rejected counts rows kept as chunks for
// audit and semantic search but dropped from the structured store.
type Result struct {
	Services []domain.Service
	Chunks   []domain.Chunk
	Rejected int
}

type Extractor struct {
	now func() time.Time
}

func New() *Extractor {
	return &Extractor{now: time.Now}
}

// Sheet extracts one classified sheet. Row numbers in chunk text and ids are
// 1-based over the data rows, so re-running over an unchanged file yields
// identical chunk ids.
func (e *Extractor) Sheet(wb *spreadsheet.Workbook, sheet spreadsheet.Sheet, cl domain.Classification) Result {
	var res Result
	if !cl.IsPricedTable {
		return res
	}

	cols := normalize.MapColumns(sheet.Headers)
	bdiCol := findColumn(sheet.Headers, "bdi")
	dateCol := findColumn(sheet.Headers, "data")
	fileName := filepath.Base(wb.Path)

	rowNumber := 0
	for i, row := range sheet.Rows {
		if emptyRow(row) {
			continue
		}
		// A second header row sometimes follows the real one.
		if i == 0 && normalize.IsHeaderLike(row) {
			continue
		}
		rowNumber++

		res.Chunks = append(res.Chunks, domain.Chunk{
			ID:             domain.ChunkID(fileName, sheet.Name, rowNumber),
			Document:       renderRow(fileName, sheet.Name, rowNumber, sheet.Headers, row),
			File:           fileName,
			Sheet:          sheet.Name,
			RowIndex:       rowNumber,
			Classification: cl.System,
		})

		svc := e.buildService(wb.Path, cl.System, cols, bdiCol, dateCol, row)
		if err := svc.Validate(); err != nil {
			res.Rejected++
			continue
		}
		res.Services = append(res.Services, svc)
	}
	return res
}

// Workbook extracts every sheet of a classified workbook into one merged
// result. Sheet order is preserved so batched writes stay deterministic.
func (e *Extractor) Workbook(wb *spreadsheet.Workbook, classifications []domain.Classification) Result {
	var merged Result
	for i, sheet := range wb.Sheets {
		r := e.Sheet(wb, sheet, classifications[i])
		merged.Services = append(merged.Services, r.Services...)
		merged.Chunks = append(merged.Chunks, r.Chunks...)
		merged.Rejected += r.Rejected
	}
	return merged
}

func (e *Extractor) buildService(path string, system domain.Source, cols normalize.ColumnMap, bdiCol, dateCol int, row []string) domain.Service {
	price, ok := normalize.ParsePrice(cols.Value(normalize.FieldUnitPrice, row))
	if !ok {
		price = 0
	}

	// SICONV sheets carry a BDI markup column applied on top of the base
	// unit price.
	if system == domain.SourceSICONV && bdiCol >= 0 && bdiCol < len(row) {
		if bdi, ok := normalize.ParsePrice(row[bdiCol]); ok {
			price *= 1 + bdi/100
		}
	}

	return domain.Service{
		Source:      system,
		OriginFile:  path,
		ServiceCode: strings.TrimSpace(cols.Value(normalize.FieldCode, row)),
		BaseDate:    e.baseDate(dateCol, row),
		Description: strings.TrimSpace(cols.Value(normalize.FieldDescription, row)),
		Unit:        strings.TrimSpace(cols.Value(normalize.FieldUnit, row)),
		IsLoaded:    true,
		Value:       price,
	}
}

// baseDate reads the row's reference date column when the sheet has one,
// falling back to the first day of the current month.
func (e *Extractor) baseDate(dateCol int, row []string) time.Time {
	if dateCol >= 0 && dateCol < len(row) {
		if t, ok := parseDate(strings.TrimSpace(row[dateCol])); ok {
			return t
		}
	}
	now := e.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

var dateLayouts = []string{
	"02/01/2006",
	"01/2006",
	"2006-01-02",
	"2006-01",
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// renderRow produces the chunk text: origin context first, then one
// "header: value" line per column so the chunk stays self-describing even
// for columns outside the canonical set.
func renderRow(file, sheet string, rowNumber int, headers, row []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Arquivo: %s\n", file)
	fmt.Fprintf(&b, "Planilha: %s\n", sheet)
	fmt.Fprintf(&b, "Linha: %d\n", rowNumber)
	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		fmt.Fprintf(&b, "%s: %s\n", header, value)
	}
	return b.String()
}

// findColumn locates an auxiliary column by folded substring match.
func findColumn(headers []string, term string) int {
	for i, h := range headers {
		if strings.Contains(normalize.Fold(h), term) {
			return i
		}
	}
	return -1
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package spreadsheet

import (
	"github.com/xuri/excelize/v2"
)

func readExcel(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, formatErr(path, err)
	}
	defer f.Close()

	wb := &Workbook{Path: path}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, formatErr(path, err)
		}
		sheet := newSheet(name, rows)
		if len(sheet.Headers) == 0 {
			continue
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

package fileio

import (
	"bytes"
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader, headerRow, limit int) (Workbook, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Workbook{}, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return Workbook{}, err
	}
	defer f.Close()

	var wb Workbook
	for i, name := range f.GetSheetList() {
		if limit > 0 && i >= limit {
			break
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return Workbook{}, fmt.Errorf("sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, toSheet(name, rows, headerRow))
	}
	return wb, nil
}

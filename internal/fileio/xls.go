// Надёжный парсер .xls: фиксируем ширину таблицы сами и читаем все ячейки до неё.
package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// ячейка xls: спецпробелы -> пробел, "1234.0" остаётся как есть (это делает utils)
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\r\n", "\n").Replace(s)
	return strings.TrimSpace(s)
}

// вычисляем "реальную" ширину: пробегаем разумное число колонок и ищем непустые
func computeMaxCols(sheet *xls.WorkSheet) int {
	const scanMax = 512
	maxCols := 0

	checkRow := func(i int) {
		if i < 0 || i > int(sheet.MaxRow) {
			return
		}
		r := sheet.Row(i)
		if r == nil {
			return
		}
		for j := 0; j < scanMax; j++ {
			if v := normalizeCell(r.Col(j)); v != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}

	// общий проход; шапка тоже входит
	for i := 0; i <= int(sheet.MaxRow); i++ {
		checkRow(i)
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

// openXLS: выгрузки чаще всего в utf-8, старые в cp1251
func openXLS(b []byte) (*xls.WorkBook, error) {
	var lastErr error
	for _, ch := range []string{"utf-8", "windows-1251"} {
		wb, err := xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("xls: failed to open workbook")
	}
	return nil, lastErr
}

func readXLS(r io.Reader, headerRow, limit int) (Workbook, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Workbook{}, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return Workbook{}, err
	}

	var out Workbook
	for i := 0; i < wb.NumSheets(); i++ {
		if limit > 0 && i >= limit {
			break
		}
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		// фиксируем ширину и читаем все строки до неё (НЕ полагаемся на Row.LastCol())
		maxCols := computeMaxCols(sheet)
		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for ri := 0; ri <= int(sheet.MaxRow); ri++ {
			row := sheet.Row(ri)
			cols := make([]string, maxCols)
			if row != nil {
				for j := 0; j < maxCols; j++ {
					cols[j] = normalizeCell(row.Col(j))
				}
			}
			rows = append(rows, cols)
		}
		out.Sheets = append(out.Sheets, toSheet(sheet.Name, rows, headerRow))
	}
	return out, nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteCSV: одна таблица; значения через fmt.Sprint.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	rec := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) && row[i] != nil {
				rec[i] = fmt.Sprint(row[i])
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX: каждая таблица на своём листе.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func SaveXLSX(path string, tables ...Table) error {
	f, err := buildWorkbook(tables)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func buildWorkbook(tables []Table) (*excelize.File, error) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	used := make(map[string]int)

	for i, t := range tables {
		name := uniqueSheetName(sheetName(t.Name), used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}

		if err := setRow(f, name, 1, t.Headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		for r, row := range t.Rows {
			if err := setRow(f, name, r+2, row); err != nil {
				f.Close()
				return nil, fmt.Errorf("sheet %s: %w", name, err)
			}
		}
	}
	return f, nil
}

func setRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

var badSheetChars = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// Excel: не длиннее 31 символа, без : \ / ? * [ ]
func sheetName(s string) string {
	s = strings.TrimSpace(badSheetChars.Replace(s))
	if s == "" {
		s = "Sheet"
	}
	if r := []rune(s); len(r) > 31 {
		s = string(r[:31])
	}
	return s
}

func uniqueSheetName(name string, used map[string]int) string {
	key := strings.ToLower(name)
	n := used[key]
	used[key] = n + 1
	if n == 0 {
		return name
	}
	suffix := fmt.Sprintf(" %d", n+1)
	r := []rune(name)
	if len(r)+len(suffix) > 31 {
		r = r[:31-len(suffix)]
	}
	out := string(r) + suffix
	used[strings.ToLower(out)]++
	return out
}

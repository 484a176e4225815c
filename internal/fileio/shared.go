package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sheet хранит строки листа как map[header]value, Headers задаёт порядок колонок.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

func toSheet(name string, rows [][]string, headerRow int) Sheet {
	h := pickHeader(rows, headerRow)
	return Sheet{Name: name, Headers: h, Rows: rowsToMaps(rows, h, headerRow)}
}

// Workbook: все листы в исходном порядке.
type Workbook struct {
	Sheets []Sheet
}

// Names: имена листов по порядку.
func (w Workbook) Names() []string {
	out := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		out[i] = s.Name
	}
	return out
}

// Lookup ищет лист по имени: сначала точно, потом без учёта регистра и пробелов по краям.
func (w Workbook) Lookup(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range w.Sheets {
		if strings.ToLower(strings.TrimSpace(s.Name)) == n {
			return s, true
		}
	}
	return Sheet{}, false
}

// Sheet: строки листа по имени.
func (w Workbook) Sheet(name string) ([]map[string]string, bool) {
	s, ok := w.Lookup(name)
	return s.Rows, ok
}

// First: первый лист (пусто, если листов нет).
func (w Workbook) First() []map[string]string {
	if len(w.Sheets) == 0 {
		return nil
	}
	return w.Sheets[0].Rows
}

// ReadAnyMaps: выберет парсер по расширению и вернёт строки первого листа как срез map[header]value.
// headerRow: номер строки заголовков (1-based).
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	wb, err := readWorkbook(r, filename, headerRow, 1)
	if err != nil {
		return nil, err
	}
	return wb.First(), nil
}

// ReadWorkbook читает все листы. CSV: одна «страница» с именем файла без расширения.
func ReadWorkbook(r io.Reader, filename string, headerRow int) (Workbook, error) {
	return readWorkbook(r, filename, headerRow, 0)
}

// limit: сколько листов читать, 0 = все.
func readWorkbook(r io.Reader, filename string, headerRow, limit int) (Workbook, error) {
	if headerRow <= 0 {
		return Workbook{}, fmt.Errorf("headerRow must be 1-based and >= 1, got %d", headerRow)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r, headerRow, limit)
	case ".xls":
		return readXLS(r, headerRow, limit)
	case ".csv":
		rows, err := readCSV(r)
		if err != nil {
			return Workbook{}, err
		}
		name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return Workbook{Sheets: []Sheet{toSheet(name, rows, headerRow)}}, nil
	default:
		return Workbook{}, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader: берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = 0
	}
	if len(rows) == 0 {
		return nil
	}
	h := rows[idx]
	out := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, v := range h {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		// повтор заголовка: "Title", "Title.1", ...
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s.%d", v, n)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// rowsToMaps: конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	start := headerRow // первая строка после заголовков
	var out []map[string]string
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"machinery-service/internal/export"
	"machinery-service/internal/fileio"
)

const multipartMemory = 32 << 20

var errBadInput = errors.New("bad input")

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func toFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write json")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// statusFor: превышение лимита тела -> 413, остальное -> 400.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, r, statusFor(err), "bad multipart form: "+err.Error())
		return false
	}
	return true
}

func openUpload(r *http.Request, field string) (multipart.File, string, error) {
	f, h, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %s: %w", field, err)
	}
	return f, h.Filename, nil
}

// uploads: журнал работ (первый лист data) и справочник (все листы reference).
type uploads struct {
	jobs     []map[string]string
	ref      fileio.Workbook
	dataName string
	refName  string
}

func readUploads(w http.ResponseWriter, r *http.Request, defHeaderRow int) (uploads, bool) {
	var u uploads
	if !parseForm(w, r) {
		return u, false
	}
	fail := func(err error) (uploads, bool) {
		writeError(w, r, statusFor(err), err.Error())
		return uploads{}, false
	}

	data, name, err := openUpload(r, "data")
	if err != nil {
		return fail(err)
	}
	defer data.Close()
	u.dataName = name
	u.jobs, err = fileio.ReadAnyMaps(data, name, atoi(r.FormValue("data_header_row"), defHeaderRow))
	if err != nil {
		return fail(fmt.Errorf("failed to read data: %w", err))
	}

	ref, name, err := openUpload(r, "reference")
	if err != nil {
		return fail(err)
	}
	defer ref.Close()
	u.refName = name
	u.ref, err = fileio.ReadWorkbook(ref, name, atoi(r.FormValue("reference_header_row"), defHeaderRow))
	if err != nil {
		return fail(fmt.Errorf("failed to read reference: %w", err))
	}
	return u, true
}

// writeTables отдаёт таблицы файлом. В xlsx идут все листы, в csv только первая таблица.
func writeTables(w http.ResponseWriter, r *http.Request, format, filename string, tables []export.Table) {
	log := zerolog.Ctx(r.Context())
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename+".xlsx"))
		if err := export.WriteXLSX(w, tables...); err != nil {
			log.Error().Err(err).Msg("write xlsx")
		}
	case "csv":
		if len(tables) == 0 {
			writeError(w, r, http.StatusBadRequest, "nothing to export")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename+".csv"))
		if err := export.WriteCSV(w, tables[0]); err != nil {
			log.Error().Err(err).Msg("write csv")
		}
	}
}

// pickTable ищет таблицу по параметру table: точное совпадение, затем префикс.
// Регистр и пробелы не важны.
func pickTable(tables []export.Table, name string) (export.Table, bool) {
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "")) }
	n := norm(name)
	if n == "" {
		return export.Table{}, false
	}
	for _, t := range tables {
		if norm(t.Name) == n {
			return t, true
		}
	}
	for _, t := range tables {
		if strings.HasPrefix(norm(t.Name), n) {
			return t, true
		}
	}
	return export.Table{}, false
}

func format(r *http.Request) (string, bool) {
	f := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	switch f {
	case "":
		return "json", true
	case "json", "csv", "xlsx":
		return f, true
	}
	return f, false
}

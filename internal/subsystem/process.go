package subsystem

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"machinery-service/internal/fileio"
	"machinery-service/internal/machinery/model"
	"machinery-service/internal/utils"
)

const (
	refCodeColumns  = "UI Job Code|Job Code|JobCode|Code"
	refTitleColumns = "Title|J3 Job Title|Task Description|Job Title"
	refEquipment    = "Machinery"
	refRemarks      = "Remarks"
)

var (
	ErrSheetNotFound = errors.New("reference sheet not found")
	ErrNoCodeColumn  = errors.New("reference sheet has no job code column")
	ErrNoFilter      = errors.New("job log has no filter column")
)

// Pivot: сколько найденных работ по (название работы, место установки).
type Pivot struct {
	Titles    []string `json:"titles"`
	Locations []string `json:"locations"`
	Counts    [][]int  `json:"counts"` // [title][location]
}

// Result одной подсистемы. Err != nil: подсистема не посчитана, остальные поля пустые.
type Result struct {
	Label          string         `json:"label"`
	Sheet          string         `json:"sheet,omitempty"`
	Filtered       int            `json:"filtered"`
	Matched        int            `json:"matched"`
	Pivot          Pivot          `json:"pivot"`
	MissingColumns []string       `json:"missingColumns,omitempty"`
	Missing        []model.JobRow `json:"missing"`
	Err            error          `json:"-"`
}

// Process: фильтр журнала по ключевым словам (или весь журнал при AllJobs) -> сравнение кодов со справочным листом.
// Ошибка описания или данных остаётся внутри Result.
func Process(def Definition, jobs []map[string]string, ref fileio.Workbook) (res Result) {
	res = Result{Label: def.Label}
	defer func() {
		if r := recover(); r != nil {
			res = Result{Label: def.Label, Err: fmt.Errorf("%s: %v", def.Label, r)}
		}
	}()

	sheet, ok := lookupSheet(ref, def.Sheets)
	if !ok {
		res.Err = fmt.Errorf("%s: %w (%s)", def.Label, ErrSheetNotFound, strings.Join(def.Sheets, ", "))
		return res
	}
	res.Sheet = sheet.Name

	codeCol, ok := fileio.MatchHeader(sheet.Headers, refCodeColumns)
	if !ok {
		res.Err = fmt.Errorf("%s: %w in %q", def.Label, ErrNoCodeColumn, sheet.Name)
		return res
	}

	filtered := jobs
	if !def.AllJobs {
		filterCol := jobColumn(def.FilterColumn)
		if len(jobs) > 0 && !fileio.HasColumn(jobs, filterCol) {
			res.Err = fmt.Errorf("%s: %w %q", def.Label, ErrNoFilter, def.FilterColumn)
			return res
		}
		filtered = filterJobs(jobs, filterCol, def.Keywords, def.IgnoreCase)
	}
	res.Filtered = len(filtered)

	jobCodes := make(map[string]struct{}, len(filtered))
	for _, rec := range filtered {
		code, _ := fileio.Value(rec, fileio.ColJobCode)
		if code = utils.NormalizeJobCode(code); code != "" {
			jobCodes[code] = struct{}{}
		}
	}

	refTitleCol, _ := fileio.MatchHeader(sheet.Headers, refTitleColumns)
	refByCode := make(map[string]map[string]string, len(sheet.Rows))
	for _, rec := range sheet.Rows {
		code := utils.NormalizeJobCode(rec[codeCol])
		if code == "" {
			continue
		}
		if _, dup := refByCode[code]; !dup {
			refByCode[code] = rec
		}
	}

	pivotCol := jobColumn(def.PivotColumn)
	pb := newPivotBuilder()
	for _, rec := range filtered {
		code, _ := fileio.Value(rec, fileio.ColJobCode)
		refRec, ok := refByCode[utils.NormalizeJobCode(code)]
		if !ok {
			continue
		}
		res.Matched++
		title, _ := fileio.Value(rec, fileio.ColTitle)
		if utils.IsBlank(title) && refTitleCol != "" {
			title = refRec[refTitleCol]
		}
		loc, _ := fileio.Value(rec, pivotCol)
		pb.add(strings.TrimSpace(title), strings.TrimSpace(loc))
	}
	res.Pivot = pb.build()

	res.MissingColumns, res.Missing = missingJobs(sheet, codeCol, jobCodes)
	return res
}

// RunAll: все подсистемы по порядку; сбой одной не мешает остальным.
func RunAll(defs []Definition, jobs []map[string]string, ref fileio.Workbook) []Result {
	out := make([]Result, 0, len(defs))
	for _, d := range defs {
		out = append(out, Process(d, jobs, ref))
	}
	return out
}

// JobSources: вход для сводки пропущенных работ.
func JobSources(results []Result) []model.JobSource {
	out := make([]model.JobSource, 0, len(results))
	for _, r := range results {
		out = append(out, model.JobSource{Label: r.Label, Rows: r.Missing, Err: r.Err})
	}
	return out
}

// jobColumn: имя колонки из каталога -> набор альтернатив заголовка журнала.
func jobColumn(name string) string {
	if name == FilterFunction {
		return fileio.ColFunction
	}
	return fileio.ColMachinery
}

func lookupSheet(ref fileio.Workbook, names []string) (fileio.Sheet, bool) {
	for _, n := range names {
		if s, ok := ref.Lookup(n); ok {
			return s, true
		}
	}
	return fileio.Sheet{}, false
}

func filterJobs(jobs []map[string]string, column string, keywords []string, ignoreCase bool) []map[string]string {
	kw := keywords
	if ignoreCase {
		kw = make([]string, len(keywords))
		for i, k := range keywords {
			kw[i] = strings.ToLower(k)
		}
	}

	var out []map[string]string
	for _, rec := range jobs {
		v, ok := fileio.Value(rec, column)
		if !ok || v == "" {
			continue
		}
		if ignoreCase {
			v = strings.ToLower(v)
		}
		for _, k := range kw {
			if strings.Contains(v, k) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// missingJobs: строки справочника, чьих кодов нет среди отфильтрованных работ. Remarks не нужны.
func missingJobs(sheet fileio.Sheet, codeCol string, jobCodes map[string]struct{}) ([]string, []model.JobRow) {
	remarks, _ := fileio.MatchHeader(sheet.Headers, refRemarks)
	equipment, hasEquipment := fileio.MatchHeader(sheet.Headers, refEquipment)

	cols := make([]string, 0, len(sheet.Headers))
	for _, h := range sheet.Headers {
		if remarks == "" || h != remarks {
			cols = append(cols, h)
		}
	}

	var rows []model.JobRow
	for _, rec := range sheet.Rows {
		code := utils.NormalizeJobCode(rec[codeCol])
		if code == "" {
			continue
		}
		if _, ok := jobCodes[code]; ok {
			continue
		}
		fields := make(map[string]string, len(cols))
		for _, c := range cols {
			fields[c] = rec[c]
		}
		row := model.JobRow{Fields: fields}
		if hasEquipment {
			row.Equipment = rec[equipment]
		}
		rows = append(rows, row)
	}
	return cols, rows
}

type pivotBuilder struct {
	counts map[[2]string]int
	titles map[string]struct{}
	locs   map[string]struct{}
}

func newPivotBuilder() *pivotBuilder {
	return &pivotBuilder{
		counts: make(map[[2]string]int),
		titles: make(map[string]struct{}),
		locs:   make(map[string]struct{}),
	}
}

func (b *pivotBuilder) add(title, loc string) {
	b.counts[[2]string{title, loc}]++
	b.titles[title] = struct{}{}
	b.locs[loc] = struct{}{}
}

func (b *pivotBuilder) build() Pivot {
	p := Pivot{Titles: sortedKeys(b.titles), Locations: sortedKeys(b.locs)}
	p.Counts = make([][]int, len(p.Titles))
	for i, t := range p.Titles {
		p.Counts[i] = make([]int, len(p.Locations))
		for j, l := range p.Locations {
			p.Counts[i][j] = b.counts[[2]string{t, l}]
		}
	}
	return p
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package export

import (
	"fmt"

	"machinery-service/internal/machinery/model"
	"machinery-service/internal/subsystem"
)

// Table описывает плоскую таблицу для выгрузки, это один лист xlsx или один csv.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

func DifferentTable(res model.ReconciliationResult) Table {
	return listTable("Different Machinery", "Different Machinery on Vessel", res.DifferentDisplay)
}

func MissingTable(res model.ReconciliationResult) Table {
	return listTable("Missing Machinery", "Missing Machinery on Vessel", res.MissingDisplay)
}

func listTable(name, header string, items []string) Table {
	t := Table{Name: name, Headers: []string{header}, Rows: make([][]any, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []any{it})
	}
	return t
}

func SuggestionsTable(res model.ReconciliationResult) Table {
	t := Table{Name: "Suggestions", Headers: []string{"Different", "Possibly Same As", "Score"}}
	for _, s := range res.Suggestions {
		t.Rows = append(t.Rows, []any{s.Different, s.Missing, fmt.Sprintf("%.2f", s.Score)})
	}
	return t
}

func SummaryTable(s model.MissingJobsSummary) Table {
	t := Table{Name: "Missing Jobs", Headers: []string{"Machinery System", "Missing Jobs Count", "Error"}}
	for _, r := range s.Rows {
		t.Rows = append(t.Rows, []any{r.System, r.Count, r.Error})
	}
	t.Rows = append(t.Rows, []any{"Total", s.Total, ""})
	return t
}

func OverviewTable(ov model.Overview) Table {
	return Table{
		Name:    "Overview",
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Vessel Name", ov.VesselName},
			{"Total Jobs", ov.TotalJobs},
			{"Critical Jobs", ov.CriticalJobs},
			{"Missing Machinery", ov.MissingMachineryCount},
			{"Missing Jobs", ov.MissingJobs.Total},
		},
	}
}

func JobSourcesTable(ov model.Overview) Table {
	t := Table{Name: "Job Sources", Headers: []string{"Job Source", "Title Count"}}
	for _, s := range ov.JobSources {
		t.Rows = append(t.Rows, []any{s.Source, s.Count})
	}
	return t
}

// SubsystemMissingTable: недостающие работы подсистемы в порядке колонок справочника.
func SubsystemMissingTable(r subsystem.Result) Table {
	t := Table{Name: r.Label, Headers: r.MissingColumns}
	for _, row := range r.Missing {
		vals := make([]any, len(r.MissingColumns))
		for i, c := range r.MissingColumns {
			vals[i] = row.Fields[c]
		}
		t.Rows = append(t.Rows, vals)
	}
	return t
}

// ReconcileTables: всё по сверке оборудования.
func ReconcileTables(res model.ReconciliationResult) []Table {
	tables := []Table{DifferentTable(res), MissingTable(res)}
	if len(res.Suggestions) > 0 {
		tables = append(tables, SuggestionsTable(res))
	}
	return tables
}

// OverviewTables собирает отчёт дашборда: сводка, сверка и листы недостающих работ по подсистемам.
func OverviewTables(ov model.Overview, results []subsystem.Result) []Table {
	tables := []Table{OverviewTable(ov), JobSourcesTable(ov), SummaryTable(ov.MissingJobs)}
	tables = append(tables, ReconcileTables(ov.Machinery)...)
	for _, r := range results {
		if r.Err == nil && len(r.Missing) > 0 {
			tables = append(tables, SubsystemMissingTable(r))
		}
	}
	return tables
}

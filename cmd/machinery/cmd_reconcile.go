package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"machinery-service/internal/export"
	"machinery-service/internal/machinery/model"
	"machinery-service/internal/subsystem"
)

type analysisFlags struct {
	data      string
	reference string
	headerRow int
	format    string
	table     string
	out       string
	threshold float64
}

func (f *analysisFlags) register(cmd *cobra.Command, defHeaderRow int, defTable string) {
	fl := cmd.Flags()
	fl.StringVar(&f.data, "data", "", "job log export (xlsx/xls/csv, first sheet)")
	fl.StringVar(&f.reference, "reference", "", "reference workbook (all sheets)")
	fl.IntVar(&f.headerRow, "header-row", defHeaderRow, "header row, 1-based")
	fl.StringVar(&f.format, "format", "json", "stdout format: json|csv")
	fl.StringVar(&f.table, "table", defTable, "table for csv output")
	fl.StringVar(&f.out, "out", "", "also save all tables to this xlsx file")
	fl.Float64Var(&f.threshold, "threshold", 0, "suggestion similarity threshold (0..1], 0 = config default")

	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("reference")
}

func (f *analysisFlags) validate() error {
	switch f.format {
	case "json", "csv":
		return nil
	}
	return fmt.Errorf("unsupported format %q", f.format)
}

// writeCSVTable ищет таблицу по имени: точное совпадение, затем префикс.
func writeCSVTable(cmd *cobra.Command, tables []export.Table, name string) error {
	for _, exact := range []bool{true, false} {
		for _, t := range tables {
			if matchTableName(t.Name, name, exact) {
				return export.WriteCSV(cmd.OutOrStdout(), t)
			}
		}
	}
	return fmt.Errorf("unknown table %q", name)
}

func matchTableName(tableName, name string, exact bool) bool {
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "")) }
	t, n := norm(tableName), norm(name)
	if n == "" {
		return false
	}
	if exact {
		return t == n
	}
	return strings.HasPrefix(t, n)
}

func reconcileCommand(a *app) *cobra.Command {
	var f analysisFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare vessel machinery with the reference lists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			jobs, err := readJobs(f.data, f.headerRow)
			if err != nil {
				return err
			}
			ref, err := readWorkbook(f.reference, f.headerRow)
			if err != nil {
				return err
			}

			rec := a.reconciler(f.threshold)
			res := rec.ReconcileSets(rec.BuildSets(jobs, ref))
			a.logger.Info().
				Int("different", res.Different.Len()).
				Int("missing", res.Missing.Len()).
				Msg("reconcile done")

			tables := export.ReconcileTables(res)
			if f.out != "" {
				if err := export.SaveXLSX(f.out, tables...); err != nil {
					return fmt.Errorf("save %s: %w", f.out, err)
				}
			}
			if f.format == "csv" {
				return writeCSVTable(cmd, []export.Table{export.DifferentTable(res), export.MissingTable(res), export.SuggestionsTable(res)}, f.table)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd, a.cfg.HeaderRow, "different")
	return cmd
}

type overviewOutput struct {
	Overview   model.Overview   `json:"overview"`
	Subsystems []subsystemState `json:"subsystems"`
}

type subsystemState struct {
	Label    string `json:"label"`
	Sheet    string `json:"sheet,omitempty"`
	Filtered int    `json:"filtered"`
	Matched  int    `json:"matched"`
	Missing  int    `json:"missing"`
	Error    string `json:"error,omitempty"`
}

func overviewCommand(a *app) *cobra.Command {
	var f analysisFlags

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Dashboard overview: machinery reconciliation plus missing jobs per subsystem",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := f.validate(); err != nil {
				return err
			}
			jobs, err := readJobs(f.data, f.headerRow)
			if err != nil {
				return err
			}
			ref, err := readWorkbook(f.reference, f.headerRow)
			if err != nil {
				return err
			}

			rec := a.reconciler(f.threshold)
			sets := rec.BuildSets(jobs, ref)
			res := rec.ReconcileSets(sets)
			results := subsystem.RunAll(a.defs, jobs, ref)
			summary := rec.SummarizeMissingJobs(sets.Vessel, subsystem.JobSources(results))
			ov := rec.BuildOverview(jobs, res, summary)

			states := make([]subsystemState, 0, len(results))
			for _, r := range results {
				st := subsystemState{Label: r.Label, Sheet: r.Sheet, Filtered: r.Filtered, Matched: r.Matched, Missing: len(r.Missing)}
				if r.Err != nil {
					st.Error = r.Err.Error()
					a.logger.Debug().Err(r.Err).Str("subsystem", r.Label).Msg("subsystem skipped")
				}
				states = append(states, st)
			}
			a.logger.Info().Str("vessel", ov.VesselName).Int("missing_jobs", summary.Total).Msg("overview done")

			tables := export.OverviewTables(ov, results)
			if f.out != "" {
				if err := export.SaveXLSX(f.out, tables...); err != nil {
					return fmt.Errorf("save %s: %w", f.out, err)
				}
			}
			if f.format == "csv" {
				return writeCSVTable(cmd, tables, f.table)
			}
			return printJSON(cmd.OutOrStdout(), overviewOutput{Overview: ov, Subsystems: states})
		},
	}
	f.register(cmd, a.cfg.HeaderRow, "missing jobs")
	return cmd
}

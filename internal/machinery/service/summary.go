package service

import (
	"fmt"
	"sort"
	"strings"

	"machinery-service/internal/machinery/model"
)

// SummarizeMissingJobs: по строке на каждый источник, даже с нулём или ошибкой.
// Строка с тегом оборудования считается, только если оборудование есть на судне
// (подстрока в любую сторону); строка без тега считается всегда.
func (r *Reconciler) SummarizeMissingJobs(vessel model.EquipmentSet, sources []model.JobSource) model.MissingJobsSummary {
	onboard := vessel.Sorted()
	rows := make([]model.SummaryRow, 0, len(sources))
	total := 0

	for _, src := range sources {
		row := model.SummaryRow{System: strings.ReplaceAll(src.Label, "_", " ")}
		if src.Err != nil {
			row.Error = src.Err.Error()
		} else {
			n, err := r.countRelevant(onboard, src.Rows)
			if err != nil {
				row.Error = err.Error()
			} else {
				row.Count = n
			}
		}
		total += row.Count
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].System < rows[j].System
	})
	return model.MissingJobsSummary{Rows: rows, Total: total}
}

// countRelevant изолирует сбой одного источника от остальных.
func (r *Reconciler) countRelevant(onboard []string, jobs []model.JobRow) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("count missing jobs: %v", rec)
		}
	}()

	for _, j := range jobs {
		key, ok := r.equipmentKey(j.Equipment)
		if !ok || onboardMatch(onboard, key) {
			n++
		}
	}
	return n, nil
}

func onboardMatch(onboard []string, key string) bool {
	for _, o := range onboard {
		if strings.Contains(o, key) || strings.Contains(key, o) {
			return true
		}
	}
	return false
}

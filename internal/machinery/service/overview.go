package service

import (
	"sort"
	"strings"

	"machinery-service/internal/fileio"
	"machinery-service/internal/machinery/model"
	"machinery-service/internal/utils"
)

// Листы справочника
const (
	SheetReference      = "Machinery Location"
	SheetCritical       = "Critical Machinery"
	SheetVesselSpecific = "Vessel Specific Machinery"
)

// Sets: три справочных множества и судовое.
type Sets struct {
	Vessel         model.EquipmentSet
	Reference      model.EquipmentSet
	Critical       model.EquipmentSet
	VesselSpecific model.EquipmentSet
}

// BuildSets: отсутствующий лист или колонка = пустое множество.
func (r *Reconciler) BuildSets(jobs []map[string]string, ref fileio.Workbook) Sets {
	return Sets{
		Vessel:         r.BuildEquipmentSet(fileio.Column(jobs, fileio.ColMachinery)),
		Reference:      r.sheetSet(ref, SheetReference, "Machinery Location"),
		Critical:       r.sheetSet(ref, SheetCritical, fileio.ColCriticalMach),
		VesselSpecific: r.sheetSet(ref, SheetVesselSpecific, fileio.ColVesselSpecMch),
	}
}

func (r *Reconciler) sheetSet(ref fileio.Workbook, sheet, column string) model.EquipmentSet {
	rows, ok := ref.Sheet(sheet)
	if !ok {
		return model.NewEquipmentSet()
	}
	return r.BuildEquipmentSet(fileio.Column(rows, column))
}

// ReconcileSets: Reconcile над готовыми множествами.
func (r *Reconciler) ReconcileSets(s Sets) model.ReconciliationResult {
	return r.Reconcile(s.Vessel, s.Reference, s.Critical, s.VesselSpecific)
}

// BuildOverview: верхние метрики дашборда по выгрузке работ.
func (r *Reconciler) BuildOverview(jobs []map[string]string, res model.ReconciliationResult, summary model.MissingJobsSummary) model.Overview {
	ov := model.Overview{
		VesselName:            "Unknown",
		MissingMachineryCount: res.Missing.Len(),
		MissingJobs:           summary,
		Machinery:             res,
	}

	for _, v := range fileio.Column(jobs, fileio.ColVessel) {
		if !utils.IsBlank(v) {
			ov.VesselName = strings.TrimSpace(v)
			break
		}
	}

	bySource := make(map[string]int)
	for _, rec := range jobs {
		title, _ := fileio.Value(rec, fileio.ColTitle)
		if utils.IsBlank(title) {
			continue
		}
		ov.TotalJobs++

		src, _ := fileio.Value(rec, fileio.ColJobSource)
		if utils.IsBlank(src) {
			src = "Unknown"
		}
		bySource[strings.TrimSpace(src)]++

		if loc, ok := fileio.Value(rec, fileio.ColMachinery); ok && r.canon.IsCritical(loc) {
			ov.CriticalJobs++
		}
	}
	ov.JobSources = jobSourceCounts(bySource, ov.TotalJobs)
	return ov
}

// по алфавиту, "Total" последней строкой
func jobSourceCounts(bySource map[string]int, total int) []model.JobSourceCount {
	out := make([]model.JobSourceCount, 0, len(bySource)+1)
	for src, n := range bySource {
		out = append(out, model.JobSourceCount{Source: src, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return append(out, model.JobSourceCount{Source: "Total", Count: total})
}

package model

import "sort"

// EquipmentSet: множество канонических имён (в нижнем регистре).
// Отвечает на вопрос «есть ли такой тип оборудования», а не «сколько единиц».
type EquipmentSet map[string]struct{}

func NewEquipmentSet(names ...string) EquipmentSet {
	s := make(EquipmentSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s EquipmentSet) Add(name string)           { s[name] = struct{}{} }
func (s EquipmentSet) Contains(name string) bool { _, ok := s[name]; return ok }
func (s EquipmentSet) Len() int                  { return len(s) }

// Union возвращает новое множество s ∪ others...
func (s EquipmentSet) Union(others ...EquipmentSet) EquipmentSet {
	out := make(EquipmentSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	for _, o := range others {
		for k := range o {
			out[k] = struct{}{}
		}
	}
	return out
}

// Minus возвращает s − o.
func (s EquipmentSet) Minus(o EquipmentSet) EquipmentSet {
	out := make(EquipmentSet)
	for k := range s {
		if !o.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s EquipmentSet) Intersect(o EquipmentSet) EquipmentSet {
	out := make(EquipmentSet)
	for k := range s {
		if o.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted: ключи по возрастанию (детерминированный порядок для выдачи).
func (s EquipmentSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Suggestion struct {
	Different string  `json:"different"`
	Missing   string  `json:"missing"`
	Score     float64 `json:"score"`
}

type ReconciliationResult struct {
	Different EquipmentSet `json:"-"` // на судне, но нет ни в одном справочнике
	Missing   EquipmentSet `json:"-"` // ожидается справочниками, но не найдено на судне

	DifferentDisplay []string     `json:"differentMachinery"`
	MissingDisplay   []string     `json:"missingMachinery"`
	Suggestions      []Suggestion `json:"suggestions,omitempty"`
}

// JobRow: строка таблицы «пропущенных работ». Equipment пустой = тега нет.
type JobRow struct {
	Equipment string            `json:"equipment,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// JobSource: таблица пропущенных работ одной подсистемы.
// Err != nil означает, что подсистема не посчиталась выше по потоку.
type JobSource struct {
	Label string
	Rows  []JobRow
	Err   error
}

type SummaryRow struct {
	System string `json:"machinerySystem"`
	Count  int    `json:"missingJobsCount"`
	Error  string `json:"error,omitempty"`
}

type MissingJobsSummary struct {
	Rows  []SummaryRow `json:"rows"`
	Total int          `json:"total"`
}

type JobSourceCount struct {
	Source string `json:"jobSource"`
	Count  int    `json:"titleCount"`
}

// Overview: верхние метрики дашборда.
type Overview struct {
	VesselName            string               `json:"vesselName"`
	TotalJobs             int                  `json:"totalJobs"`
	CriticalJobs          int                  `json:"criticalJobs"`
	JobSources            []JobSourceCount     `json:"jobSources"`
	MissingMachineryCount int                  `json:"missingMachineryCount"`
	MissingJobs           MissingJobsSummary   `json:"missingJobs"`
	Machinery             ReconciliationResult `json:"machinery"`
}

// CanonicalName: ответ /machinery/canonicalize.
type CanonicalName struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	Critical  bool   `json:"critical"`
}

package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"machinery-service/internal/machinery/model"
	"machinery-service/internal/utils"
)

// Reconciler: MachineryReconciler. Короткоживущий объект без состояния между вызовами.
type Reconciler struct {
	canon            *Canonicalizer
	suggestThreshold float64 // <= 0: подсказки выключены
}

func NewReconciler(c *Canonicalizer, suggestThreshold float64) *Reconciler {
	return &Reconciler{canon: c, suggestThreshold: suggestThreshold}
}

// equipmentKey: пусто, пробелы и nan/none/null из выгрузок = «нет значения»;
// иначе lower+trim -> канон -> lower+trim.
func (r *Reconciler) equipmentKey(raw string) (string, bool) {
	if utils.IsBlank(raw) {
		return "", false
	}
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ToLower(strings.TrimSpace(r.canon.Canonicalize(s)))
	return s, s != ""
}

// BuildEquipmentSet: пустые записи пропускаются, дубли схлопываются.
func (r *Reconciler) BuildEquipmentSet(names []string) model.EquipmentSet {
	set := make(model.EquipmentSet, len(names))
	for _, n := range names {
		if k, ok := r.equipmentKey(n); ok {
			set.Add(k)
		}
	}
	return set
}

// EquipmentSetFromRows берёт колонку column из строк таблицы; строки без поля пропускаются.
func (r *Reconciler) EquipmentSetFromRows(rows []map[string]string, column string) model.EquipmentSet {
	names := make([]string, 0, len(rows))
	for _, rec := range rows {
		if v, ok := rec[column]; ok {
			names = append(names, v)
		}
	}
	return r.BuildEquipmentSet(names)
}

// Reconcile: union = R ∪ C ∪ S; different = V − union; missing = union − V.
func (r *Reconciler) Reconcile(vessel, reference, critical, vesselSpecific model.EquipmentSet) model.ReconciliationResult {
	union := reference.Union(critical, vesselSpecific)
	different := vessel.Minus(union)
	missing := union.Minus(vessel)

	res := model.ReconciliationResult{
		Different:        different,
		Missing:          missing,
		DifferentDisplay: displayList(different),
		MissingDisplay:   displayList(missing),
	}
	if r.suggestThreshold > 0 {
		res.Suggestions = suggest(different, missing, r.suggestThreshold)
	}
	return res
}

// displayList: сортировка по каноническому ключу, затем Title Case для показа.
func displayList(s model.EquipmentSet) []string {
	keys := s.Sorted()
	caser := cases.Title(language.English) // Caser с состоянием: новый на каждый вызов
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = caser.String(k)
	}
	return out
}

// TitleCase: для внешних вызовов (экспорт, CLI).
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

package fileio

import (
	"regexp"
	"strings"
)

// Колонки выгрузки работ и допустимые альтернативные заголовки.
// Формат: альтернативы через "|", первая, основная.
const (
	ColVessel        = "Vessel|Ship Name|Vessel Name"
	ColJobCode       = "Job Code|CMS Code|Work Code|Task Code"
	ColMachinery     = "Machinery Location|Machinery|Equipment Location|Machine Location"
	ColSubComponent  = "Sub Component Location|Component|Component Location|Part Location"
	ColFunction      = "Function"
	ColTitle         = "Title|J3 Job Title|Task Description|Job Title"
	ColJobSource     = "Job Source"
	ColFrequency     = "Frequency|Interval|Maintenance Frequency"
	ColRefJobCode    = "UI Job Code|Job Code|Code"
	ColRefMachinery  = "Machinery|Machinery Location"
	ColCriticalMach  = "Critical Machinery"
	ColVesselSpecMch = "Vessel Specific Machinery"
)

var reNonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, спецпробелы, всё небуквенное -> пробел
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	s = reNonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ResolveKey ищет реальный ключ в записи по желаемому имени.
// Поддерживает альтернативы через "|" (например: "Machinery Location|Machinery").
// Порядок: точное совпадение -> по нормализованному -> лучшее частичное (contains).
func ResolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	nAlts := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			nAlts = append(nAlts, n)
		}
	}
	// альтернативы по приоритету: сначала точные по нормализованному
	for _, n := range nAlts {
		for k := range rec {
			if normHeaderKey(k) == n {
				return k
			}
		}
	}

	// частичное: want ⊂ key или key ⊂ want; чем длиннее совпадение, тем лучше
	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		if nk == "" {
			continue
		}
		for _, n := range nAlts {
			if (strings.Contains(nk, n) || strings.Contains(n, nk)) && len(n) > bestScore {
				bestScore, bestKey = len(n), k
			} else if (strings.Contains(nk, n) || strings.Contains(n, nk)) && len(n) == bestScore && k < bestKey {
				bestKey = k
			}
		}
	}
	return bestKey
}

// Value: значение колонки (по ResolveKey) и признак, что колонка вообще есть.
func Value(rec map[string]string, want string) (string, bool) {
	k := ResolveKey(rec, want)
	if k == "" {
		return "", false
	}
	v, ok := rec[k]
	return v, ok
}

// HasColumn: есть ли колонка хотя бы в одной строке.
func HasColumn(rows []map[string]string, want string) bool {
	for _, rec := range rows {
		if ResolveKey(rec, want) != "" {
			return true
		}
	}
	return false
}

// Column: значения колонки; строки без неё пропускаются.
func Column(rows []map[string]string, want string) []string {
	out := make([]string, 0, len(rows))
	for _, rec := range rows {
		if v, ok := Value(rec, want); ok {
			out = append(out, v)
		}
	}
	return out
}

// MatchHeader работает как ResolveKey, но без частичных совпадений: только точное
// или по нормализованному имени. Для справочников, где лишняя колонка опаснее пропущенной.
func MatchHeader(headers []string, want string) (string, bool) {
	alts := strings.Split(want, "|")
	for _, a := range alts {
		a = strings.TrimSpace(a)
		for _, h := range headers {
			if h == a {
				return h, true
			}
		}
	}
	for _, a := range alts {
		n := normHeaderKey(a)
		if n == "" {
			continue
		}
		for _, h := range headers {
			if normHeaderKey(h) == n {
				return h, true
			}
		}
	}
	return "", false
}

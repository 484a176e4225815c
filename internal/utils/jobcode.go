package utils

import (
	"regexp"
	"strings"
)

// "1234.0" / "1234,00": так числовые коды приходят из Excel
var rxFloatCode = regexp.MustCompile(`^(\d+)[.,]0+$`)

var spaceRepl = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\t", " ")

// NormalizeJobCode приводит код работы к виду, пригодному для сравнения:
// спецпробелы -> пробел, обрезка краёв, "1234.0" -> "1234".
// Нечисловые коды ("PMS-12") не трогаются.
func NormalizeJobCode(s string) string {
	s = strings.TrimSpace(spaceRepl.Replace(s))
	if m := rxFloatCode.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// IsBlank: пустая ячейка или пандасовское "nan"/"None" из старых выгрузок.
func IsBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(spaceRepl.Replace(s))) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

package service

import (
	"regexp"
	"strings"
)

// Направления/позиции в конце имени. Составные идут первыми.
const directionWord = `Fwd-Port|Aft-Port|Fwd-Stbd|Aft-Stbd|Fwd|Aft|Port|Starboard`

// suffixRules. Порядок важен: приклеенный суффикс снимаем раньше «мягких» правил,
// иначе остаётся висячий дефис. Каждое правило применяется один раз за проход.
var suffixRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:` + directionWord + `)$`),        // "AnchorPort", "WinchFwd-Stbd"
	regexp.MustCompile(`(?i)(?:` + directionWord + `)[\s\-]*$`), // "Winch Aft -"
	regexp.MustCompile(`(?i)\s+\d+\s*Person$`),                  // "Liferaft 25 Person"
	regexp.MustCompile(`(?i)No\d*$`),                            // "EngineNo3", "SpacesNo"
	regexp.MustCompile(`(?i)#?\d+$`),                            // "#2", "3"
	regexp.MustCompile(`(?i)[\s\-]+(?:Port|Starboard)$`),        // " Port", "-Starboard"
}

// хвост "#3" / " 3" и висячий дефис после всех правил
var reResidue = regexp.MustCompile(`(?:\s+#?\d+)?[\s\-]*$`)

// Canonicalizer (NameCanonicalizer): правила суффиксов + таблица алиасов + критичные слова.
// Без изменяемого состояния, безопасен для конкурентного использования.
type Canonicalizer struct {
	aliases  *AliasTable
	critical []string // в нижнем регистре
}

func NewCanonicalizer(t Tables) *Canonicalizer {
	c := &Canonicalizer{aliases: t.Aliases, critical: make([]string, 0, len(t.Critical))}
	for _, k := range t.Critical {
		c.critical = append(c.critical, strings.ToLower(k))
	}
	return c
}

// Canonicalize приводит сырое имя из выгрузки к каноническому.
// Регистр не навязывается, кроме случаев, когда ответ берётся из таблицы алиасов.
// Никогда не паникует: при внутренней ошибке возвращает вход как есть.
func (c *Canonicalizer) Canonicalize(raw string) (out string) {
	defer func() {
		if recover() != nil {
			out = raw
		}
	}()

	// явное написание из таблицы важнее правил
	if v, ok := c.aliases.lookup(raw); ok {
		return v
	}
	cleaned := stripSuffixes(collapseSpaces(raw))
	if v, ok := c.aliases.lookup(cleaned); ok {
		return v
	}
	return cleaned
}

// CanonicalizeValue делает то же для ячеек произвольного типа, не-строки возвращаются без изменений.
func (c *Canonicalizer) CanonicalizeValue(v any) any {
	switch s := v.(type) {
	case string:
		return c.Canonicalize(s)
	case *string:
		if s == nil {
			return v
		}
		return c.Canonicalize(*s)
	default:
		return v
	}
}

// IsCritical: каноническое имя содержит (без учёта регистра) любое критичное слово.
func (c *Canonicalizer) IsCritical(raw string) bool {
	name := strings.ToLower(c.Canonicalize(raw))
	if name == "" {
		return false
	}
	for _, k := range c.critical {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func (c *Canonicalizer) IsCriticalValue(v any) bool {
	switch s := v.(type) {
	case string:
		return c.IsCritical(s)
	case *string:
		return s != nil && c.IsCritical(*s)
	default:
		return false
	}
}

// stripSuffixes: один проход = каждое правило по разу; проходы повторяются,
// пока строка меняется, поэтому результат неподвижен для повторной канонизации.
// Проход только удаляет символы, так что цикл конечен.
func stripSuffixes(s string) string {
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	for _, re := range suffixRules {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}
	return strings.TrimSpace(reResidue.ReplaceAllString(s, ""))
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

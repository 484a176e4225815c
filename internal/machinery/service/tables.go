package service

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed machinery.yaml
var defaultTables []byte

// файл machinery.yaml. critical: подстроки критичных систем,
// aliases: каноническое имя -> сырые написания.
type tablesFile struct {
	Critical []string            `yaml:"critical"`
	Aliases  map[string][]string `yaml:"aliases"`
}

type IssueKind string

const (
	IssueCollision IssueKind = "collision" // один ключ -> разные канонические имена
	IssueDuplicate IssueKind = "duplicate" // повтор ключа с тем же значением
	IssueUnstable  IssueKind = "unstable"  // каноническое имя числится написанием другого имени
)

type AliasIssue struct {
	Kind      IssueKind `json:"kind"`
	Raw       string    `json:"raw"`
	Canonical string    `json:"canonical"`
	Kept      string    `json:"kept,omitempty"`
}

func (i AliasIssue) String() string {
	if i.Kept != "" {
		return fmt.Sprintf("%s: %q -> %q (kept %q)", i.Kind, i.Raw, i.Canonical, i.Kept)
	}
	return fmt.Sprintf("%s: %q -> %q", i.Kind, i.Raw, i.Canonical)
}

// AliasTable неизменяема после загрузки.
type AliasTable struct {
	byRaw     map[string]string // normKey(raw) -> canonical
	canonical map[string]string // normKey(canonical) -> canonical
}

func (t *AliasTable) Len() int           { return len(t.byRaw) }
func (t *AliasTable) CanonicalCount() int { return len(t.canonical) }

// lookup: сначала явные написания, потом сами канонические имена (они неподвижны).
func (t *AliasTable) lookup(s string) (string, bool) {
	if t == nil {
		return "", false
	}
	k := normKey(s)
	if v, ok := t.byRaw[k]; ok {
		return v, true
	}
	v, ok := t.canonical[k]
	return v, ok
}

// Tables содержит алиасы и критичные ключевые слова для канонизатора.
type Tables struct {
	Aliases  *AliasTable
	Critical []string
	Issues   []AliasIssue
}

// DefaultTables: встроенный machinery.yaml.
func DefaultTables() (Tables, error) {
	return ParseTables(defaultTables)
}

// LoadTables читает внешний файл; пустой путь = встроенные таблицы.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read machinery tables: %w", err)
	}
	return ParseTables(b)
}

func ParseTables(b []byte) (Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Tables{}, fmt.Errorf("parse machinery tables: %w", err)
	}

	t := Tables{Critical: make([]string, 0, len(f.Critical))}
	for _, c := range f.Critical {
		if c = collapseSpaces(c); c != "" {
			t.Critical = append(t.Critical, c)
		}
	}
	t.Aliases, t.Issues = buildAliasTable(f.Aliases)
	return t, nil
}

// buildAliasTable дедуплицирует по нормализованному ключу и сообщает о коллизиях
// вместо «последний победил». Порядок обхода: по отсортированным каноническим именам,
// так что «первый» детерминирован.
func buildAliasTable(groups map[string][]string) (*AliasTable, []AliasIssue) {
	t := &AliasTable{
		byRaw:     make(map[string]string),
		canonical: make(map[string]string),
	}
	var issues []AliasIssue

	names := make([]string, 0, len(groups))
	for c := range groups {
		names = append(names, c)
	}
	sort.Strings(names)

	for _, c := range names {
		canon := collapseSpaces(c)
		if canon == "" {
			continue
		}
		if prev, ok := t.canonical[normKey(canon)]; ok && prev != canon {
			issues = append(issues, AliasIssue{Kind: IssueCollision, Raw: canon, Canonical: canon, Kept: prev})
			continue
		}
		t.canonical[normKey(canon)] = canon

		for _, raw := range groups[c] {
			k := normKey(raw)
			if k == "" {
				continue
			}
			if prev, ok := t.byRaw[k]; ok {
				kind := IssueDuplicate
				if prev != canon {
					kind = IssueCollision
				}
				issues = append(issues, AliasIssue{Kind: kind, Raw: raw, Canonical: canon, Kept: prev})
				continue
			}
			t.byRaw[k] = canon
		}
	}

	// каноническое имя, которое само числится чужим написанием, перенаправляем на цель
	var unstable []string
	for k, canon := range t.canonical {
		if target, ok := t.byRaw[k]; ok && target != canon {
			unstable = append(unstable, k)
		}
	}
	sort.Strings(unstable)
	for _, k := range unstable {
		canon, target := t.canonical[k], t.byRaw[k]
		issues = append(issues, AliasIssue{Kind: IssueUnstable, Raw: canon, Canonical: target})
		delete(t.canonical, k)
		for rk, v := range t.byRaw {
			if v == canon {
				t.byRaw[rk] = target
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return normKey(issues[i].Raw) < normKey(issues[j].Raw)
	})
	return t, issues
}

// normKey: нижний регистр, схлопнутые пробелы.
func normKey(s string) string {
	return strings.ToLower(collapseSpaces(s))
}

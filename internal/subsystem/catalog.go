package subsystem

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed subsystems.yaml
var defaultCatalog []byte

const (
	FilterMachinery = "Machinery Location"
	FilterFunction  = "Function"
)

// Definition: одна проверка подсистемы.
type Definition struct {
	Label        string   `yaml:"label" json:"label"`
	Sheets       []string `yaml:"sheets" json:"sheets"`
	FilterColumn string   `yaml:"filter_column" json:"filterColumn,omitempty"`
	Keywords     []string `yaml:"keywords" json:"keywords,omitempty"`
	IgnoreCase   bool     `yaml:"ignore_case" json:"ignoreCase,omitempty"`
	// AllJobs: журнал не фильтруется, со справочником сравниваются все коды.
	AllJobs bool `yaml:"all_jobs" json:"allJobs,omitempty"`
	// PivotColumn: колонка журнала для столбцов сводной таблицы, по умолчанию Machinery Location.
	PivotColumn string `yaml:"pivot_column" json:"pivotColumn,omitempty"`
}

// DisplayLabel: подпись для сводки.
func (d Definition) DisplayLabel() string {
	return strings.ReplaceAll(d.Label, "_", " ")
}

func (d Definition) validate() error {
	if strings.TrimSpace(d.Label) == "" {
		return errors.New("subsystem without label")
	}
	if len(d.Sheets) == 0 {
		return fmt.Errorf("subsystem %s: no reference sheets", d.Label)
	}
	switch d.PivotColumn {
	case "", FilterMachinery, FilterFunction:
	default:
		return fmt.Errorf("subsystem %s: unknown pivot column %q", d.Label, d.PivotColumn)
	}
	if d.AllJobs {
		if d.FilterColumn != "" || len(d.Keywords) > 0 {
			return fmt.Errorf("subsystem %s: all_jobs excludes filter_column and keywords", d.Label)
		}
		return nil
	}
	switch d.FilterColumn {
	case FilterMachinery, FilterFunction:
	default:
		return fmt.Errorf("subsystem %s: unknown filter column %q", d.Label, d.FilterColumn)
	}
	for _, k := range d.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("subsystem %s: blank keyword", d.Label)
		}
	}
	if len(d.Keywords) == 0 {
		return fmt.Errorf("subsystem %s: no keywords", d.Label)
	}
	return nil
}

type catalogFile struct {
	Subsystems []Definition `yaml:"subsystems"`
}

// DefaultCatalog: встроенный subsystems.yaml.
func DefaultCatalog() ([]Definition, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog: пустой путь = встроенный каталог.
func LoadCatalog(path string) ([]Definition, error) {
	if path == "" {
		return DefaultCatalog()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subsystems: %w", err)
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) ([]Definition, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse subsystems: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Subsystems))
	for _, d := range f.Subsystems {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[d.Label]; dup {
			return nil, fmt.Errorf("subsystem %s: duplicate label", d.Label)
		}
		seen[d.Label] = struct{}{}
	}
	return f.Subsystems, nil
}

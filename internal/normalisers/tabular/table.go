package tabular

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical field names.
const (
	FieldSubject     = "subject_name"
	FieldCounterpart = "counterpart_name"
	FieldDate        = "date"
	FieldTopic       = "topic"
	FieldDepartment  = "department"
)

var knownFields = map[string]bool{
	FieldSubject:     true,
	FieldCounterpart: true,
	FieldDate:        true,
	FieldTopic:       true,
	FieldDepartment:  true,
}

//go:embed aliases.yaml
var defaultAliases []byte

// FieldAliases lists the accepted column names of one field, in priority order.
type FieldAliases struct {
	Field   string   `yaml:"field"`
	Aliases []string `yaml:"aliases"`
}

// Table is the ordered alias table of one jurisdiction.
type Table struct {
	Jurisdiction string         `yaml:"jurisdiction"`
	Fields       []FieldAliases `yaml:"fields"`

	// RequireAny lists fields of which at least one must be present besides
	// the subject. Empty means the default pair counterpart/date.
	RequireAny []string `yaml:"require_any"`

	// SubjectOnly accepts any row with a subject.
	SubjectOnly bool `yaml:"subject_only"`
}

type aliasFile struct {
	Tables []Table `yaml:"tables"`
}

// ParseTables decodes alias tables from YAML and validates them.
func ParseTables(data []byte) ([]Table, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode alias tables: %w", err)
	}

	seen := make(map[string]bool, len(f.Tables))
	for i := range f.Tables {
		t := &f.Tables[i]
		if t.Jurisdiction == "" {
			return nil, fmt.Errorf("alias table %d: missing jurisdiction", i)
		}
		if seen[t.Jurisdiction] {
			return nil, fmt.Errorf("alias table %s: duplicate jurisdiction", t.Jurisdiction)
		}
		seen[t.Jurisdiction] = true

		if len(t.RequireAny) == 0 && !t.SubjectOnly {
			t.RequireAny = []string{FieldCounterpart, FieldDate}
		}
		for j := range t.Fields {
			fa := &t.Fields[j]
			if !knownFields[fa.Field] {
				return nil, fmt.Errorf("alias table %s: unknown field %q", t.Jurisdiction, fa.Field)
			}
			for k, a := range fa.Aliases {
				fa.Aliases[k] = normaliseHeader(a)
			}
		}
	}
	return f.Tables, nil
}

// DefaultTables returns the built-in alias tables.
func DefaultTables() []Table {
	tables, err := ParseTables(defaultAliases)
	if err != nil {
		panic(err)
	}
	return tables
}

func normaliseHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

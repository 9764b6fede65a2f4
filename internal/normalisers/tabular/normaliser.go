package tabular

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.RowNormaliser = (*Normaliser)(nil)

// Normaliser maps rows onto records using one alias table.
type Normaliser struct {
	table Table
}

// New creates a normaliser for the table.
func New(table Table) *Normaliser {
	return &Normaliser{table: table}
}

// Jurisdiction returns the table's jurisdiction.
func (n *Normaliser) Jurisdiction() string {
	return n.table.Jurisdiction
}

// Normalise resolves each field through its aliases. Rows without a subject,
// or without any of the table's required fields, are dropped.
func (n *Normaliser) Normalise(row domain.RawRow, ref domain.RawDocumentRef) (domain.NormalizedRecord, bool) {
	lower := make(map[string]string, len(row))
	for k, v := range row {
		h := normaliseHeader(k)
		if _, dup := lower[h]; dup && strings.TrimSpace(v) == "" {
			continue
		}
		lower[h] = v
	}

	values := make(map[string]string, len(n.table.Fields))
	for _, fa := range n.table.Fields {
		for _, alias := range fa.Aliases {
			if v := strings.TrimSpace(lower[alias]); v != "" {
				values[fa.Field] = v
				break
			}
		}
	}

	if values[FieldSubject] == "" {
		return domain.NormalizedRecord{}, false
	}
	if !n.table.SubjectOnly {
		present := false
		for _, f := range n.table.RequireAny {
			if values[f] != "" {
				present = true
				break
			}
		}
		if !present {
			return domain.NormalizedRecord{}, false
		}
	}

	department := values[FieldDepartment]
	if department == "" {
		department = ref.DepartmentLabel
	}
	jurisdiction := ref.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = n.table.Jurisdiction
	}

	return domain.NormalizedRecord{
		SubjectName:     values[FieldSubject],
		CounterpartName: values[FieldCounterpart],
		Date:            values[FieldDate],
		Topic:           values[FieldTopic],
		Department:      department,
		Jurisdiction:    jurisdiction,
		SourceDocument:  SourceName(ref.DocumentURL),
	}, true
}

// SourceName returns the file name of a document URL or path.
func SourceName(location string) string {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Scheme != "file" {
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
		return location
	}
	return filepath.Base(location)
}

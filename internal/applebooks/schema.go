package applebooks

import (
	"fmt"
	"strings"
)

// ColumnSet is the set of column names discovered in a live table.
// SQLite column names are case-insensitive, so lookups are too.
type ColumnSet map[string]struct{}

// NewColumnSet builds a ColumnSet from column names.
func NewColumnSet(names ...string) ColumnSet {
	set := make(ColumnSet, len(names))
	for _, name := range names {
		set[strings.ToUpper(name)] = struct{}{}
	}
	return set
}

// Has reports whether the table has the named column.
func (s ColumnSet) Has(name string) bool {
	_, ok := s[strings.ToUpper(name)]
	return ok
}

// TableSpec declares how a table is read. Required columns are assumed to
// exist in every supported store version; optional columns are selected
// when present and replaced by NULL otherwise.
type TableSpec struct {
	Name     string
	Required []string
	Optional []string

	// KeyColumn is compared against the asset identifier filter.
	KeyColumn string
	// OrderColumn is the preferred sort column, used when present.
	OrderColumn string
	Descending  bool
	// DeletedColumn is the soft-delete flag, honored when present.
	DeletedColumn string
	// Conditions are static WHERE clauses over required columns.
	Conditions []string
	// RealColumns are Core Data dates. They are declared TIMESTAMP, which
	// the sqlite3 driver turns into time.Time for integral values, so they
	// are selected as plain REAL.
	RealColumns []string
}

// Width is the number of columns every projected row carries.
func (t TableSpec) Width() int {
	return len(t.Required) + len(t.Optional)
}

const rowIDColumn = "rowid"

var libraryTable = TableSpec{
	Name:        "ZBKLIBRARYASSET",
	Required:    []string{"ZASSETID", "ZTITLE", "ZAUTHOR"},
	Optional:    []string{"ZGENRE", "ZPUBLISHER", "ZPUBLISHDATE", "ZLASTOPENDATE"},
	KeyColumn:   "ZASSETID",
	OrderColumn: "ZLASTOPENDATE",
	Descending:  true,
	Conditions:  []string{"ZTITLE IS NOT NULL"},
	RealColumns: []string{"ZLASTOPENDATE"},
}

var annotationTable = TableSpec{
	Name:     "ZAEANNOTATION",
	Required: []string{"ZANNOTATIONASSETID", "ZANNOTATIONSELECTEDTEXT", "ZANNOTATIONNOTE"},
	Optional: []string{
		"ZANNOTATIONSTYLE",
		"ZANNOTATIONCOLOR",
		"ZANNOTATIONCREATIONDATE",
		"ZANNOTATIONMODIFICATIONDATE",
		"ZFUTUREPROOFING5",
		"ZANNOTATIONLOCATION",
		"ZANNOTATIONREPRESENTATIVETEXT",
	},
	KeyColumn:     "ZANNOTATIONASSETID",
	OrderColumn:   "ZANNOTATIONCREATIONDATE",
	DeletedColumn: "ZANNOTATIONDELETED",
	RealColumns:   []string{"ZANNOTATIONCREATIONDATE", "ZANNOTATIONMODIFICATIONDATE"},
}

// Projection is a TableSpec resolved against the live schema of one store.
// It is computed once per table open and applied to every row.
type Projection struct {
	spec    TableSpec
	present []bool // indexed like spec.Optional
	columns ColumnSet
}

// NewProjection resolves which optional columns of spec exist in columns.
func NewProjection(spec TableSpec, columns ColumnSet) *Projection {
	present := make([]bool, len(spec.Optional))
	for i, name := range spec.Optional {
		present[i] = columns.Has(name)
	}
	return &Projection{spec: spec, present: present, columns: columns}
}

// Table returns the name of the projected table.
func (p *Projection) Table() string {
	return p.spec.Name
}

// Width is the fixed number of columns in every projected row.
func (p *Projection) Width() int {
	return p.spec.Width()
}

// HasOptional reports whether the optional column exists in the store.
func (p *Projection) HasOptional(name string) bool {
	for i, col := range p.spec.Optional {
		if strings.EqualFold(col, name) {
			return p.present[i]
		}
	}
	return false
}

// Missing lists the declared optional columns absent from the store.
func (p *Projection) Missing() []string {
	var missing []string
	for i, col := range p.spec.Optional {
		if !p.present[i] {
			missing = append(missing, col)
		}
	}
	return missing
}

// SelectList returns the required columns followed by every optional
// column, with absent ones replaced by a NULL aliased to the column name.
func (p *Projection) SelectList() []string {
	list := make([]string, 0, p.Width())
	for _, col := range p.spec.Required {
		list = append(list, p.column(col))
	}
	for i, col := range p.spec.Optional {
		if p.present[i] {
			list = append(list, p.column(col))
		} else {
			list = append(list, "NULL AS "+col)
		}
	}
	return list
}

func (p *Projection) column(name string) string {
	for _, real := range p.spec.RealColumns {
		if strings.EqualFold(real, name) {
			return fmt.Sprintf("CAST(%s AS REAL) AS %s", name, name)
		}
	}
	return name
}

// OrderBy returns the ORDER BY expression: the preferred column when the
// store has it, insertion order otherwise. rowid breaks ties so the output
// is stable across runs.
func (p *Projection) OrderBy() string {
	dir := "ASC"
	if p.spec.Descending {
		dir = "DESC"
	}
	if p.spec.OrderColumn != "" && p.columns.Has(p.spec.OrderColumn) {
		return fmt.Sprintf("%s %s, %s %s", p.spec.OrderColumn, dir, rowIDColumn, dir)
	}
	return fmt.Sprintf("%s %s", rowIDColumn, dir)
}

// Conditions returns the WHERE clauses that apply regardless of filters,
// including the soft-delete exclusion when the store has the flag column.
func (p *Projection) Conditions() []string {
	conds := append([]string(nil), p.spec.Conditions...)
	if flag := p.spec.DeletedColumn; flag != "" && p.columns.Has(flag) {
		conds = append(conds, fmt.Sprintf("(%s = 0 OR %s IS NULL)", flag, flag))
	}
	return conds
}

// KeyColumn returns the column compared against an asset identifier filter.
func (p *Projection) KeyColumn() string {
	return p.spec.KeyColumn
}

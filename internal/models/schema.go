package models

import "strings"

// Attribute describes one column of a table. Type and Constraints are
// written into the generated DDL verbatim.
type Attribute struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Constraints string `json:"constraints,omitempty"`
}

// ForeignKey links Name (a column of the owning table) to Table.Refer.
type ForeignKey struct {
	Name        string `json:"name"`
	Table       string `json:"table"`
	Refer       string `json:"refer"`
	Constraints string `json:"constraints,omitempty"`
}

// Table is a declarative table description. Attribute order is the column
// order used for both CREATE TABLE and INSERT.
type Table struct {
	Name        string       `json:"name"`
	Attributes  []Attribute  `json:"attributes"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
	Other       []string     `json:"other,omitempty"`
}

func NewAttribute(name, typ string, constraints ...string) Attribute {
	attr := Attribute{Name: name, Type: typ}
	if len(constraints) > 0 {
		attr.Constraints = constraints[0]
	}
	return attr
}

// Nullable reports whether the column accepts NULL.
func (a Attribute) Nullable() bool {
	constraints := strings.ToUpper(a.Constraints)
	return !strings.Contains(constraints, "NOT NULL") && !strings.Contains(constraints, "PRIMARY KEY")
}

// Textual reports whether the column holds character data, where an empty
// string is a value in its own right.
func (a Attribute) Textual() bool {
	typ := strings.ToUpper(strings.TrimSpace(a.Type))
	if i := strings.IndexAny(typ, "( "); i >= 0 {
		typ = typ[:i]
	}
	switch typ {
	case "CHAR", "VARCHAR", "TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT", "ENUM", "SET":
		return true
	}
	return false
}

// EmptyAsNull reports whether an empty input field maps to NULL for this
// column: only nullable, non-character columns qualify.
func (a Attribute) EmptyAsNull() bool {
	return a.Nullable() && !a.Textual()
}

func NewForeignKey(name, table, refer, constraints string) ForeignKey {
	return ForeignKey{Name: name, Table: table, Refer: refer, Constraints: constraints}
}

// NewTable copies the given attributes into a fresh table. Foreign keys and
// other constraints start empty; add them with WithForeignKeys and WithOther.
func NewTable(name string, attrs ...Attribute) Table {
	return Table{
		Name:        name,
		Attributes:  append([]Attribute{}, attrs...),
		ForeignKeys: []ForeignKey{},
		Other:       []string{},
	}
}

func (t Table) WithForeignKeys(fks ...ForeignKey) Table {
	t.ForeignKeys = append(append([]ForeignKey{}, t.ForeignKeys...), fks...)
	return t
}

func (t Table) WithOther(constraints ...string) Table {
	t.Other = append(append([]string{}, t.Other...), constraints...)
	return t
}

// Columns returns attributes in declaration order, skipping any whose name
// is listed in excluded.
func (t Table) Columns(excluded ...string) []Attribute {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	columns := make([]Attribute, 0, len(t.Attributes))
	for _, attr := range t.Attributes {
		if skip[attr.Name] {
			continue
		}
		columns = append(columns, attr)
	}
	return columns
}

// ColumnNames is Columns reduced to names.
func (t Table) ColumnNames(excluded ...string) []string {
	attrs := t.Columns(excluded...)
	names := make([]string, len(attrs))
	for i, attr := range attrs {
		names[i] = attr.Name
	}
	return names
}

// References returns the distinct tables this table points at, excluding
// itself.
func (t Table) References() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, fk := range t.ForeignKeys {
		if fk.Table == t.Name || seen[fk.Table] {
			continue
		}
		seen[fk.Table] = true
		refs = append(refs, fk.Table)
	}
	return refs
}

package table

import (
	"fmt"
	"strings"

	"analyticsadmin/internal/errs"
)

// Column groups one or more typed components under a name
type Column struct {
	Name       string
	Label      string
	Components []Field
}

func NewColumn(name, label string, components ...Field) Column {
	return Column{Name: name, Label: label, Components: components}
}

// ColumnFromField builds a column holding a single component of the same name
func ColumnFromField(f Field) Column {
	return Column{Name: f.Name, Label: f.Label, Components: []Field{f}}
}

func (c Column) Component(name string) (Field, bool) {
	for _, f := range c.Components {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Structure is an ordered set of uniquely named columns
type Structure struct {
	columns []Column
	index   map[string]int
}

func NewStructure(columns ...Column) (*Structure, error) {
	s := &Structure{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if _, ok := s.index[c.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if len(c.Components) == 0 {
			return nil, fmt.Errorf("column %q has no components", c.Name)
		}
		seen := make(map[string]bool, len(c.Components))
		for _, f := range c.Components {
			if seen[f.Name] {
				return nil, fmt.Errorf("duplicate component %q in column %q", f.Name, c.Name)
			}
			seen[f.Name] = true
		}
		s.index[c.Name] = len(s.columns)
		s.columns = append(s.columns, c)
	}
	return s, nil
}

// MustStructure is NewStructure for statically declared structures
func MustStructure(columns ...Column) *Structure {
	s, err := NewStructure(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Structure) Columns() []Column {
	return s.columns
}

func (s *Structure) Column(name string) (Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// ResolveComponentID normalizes "column" (single component shorthand) or
// "column.component" into the full "column.component" id.
func (s *Structure) ResolveComponentID(id string) (string, error) {
	columnName, componentName := SplitComponentID(id)
	column, ok := s.Column(columnName)
	if !ok {
		return "", fmt.Errorf("%w: unknown column %q", errs.ErrUnmappedField, columnName)
	}
	if componentName == "" {
		if len(column.Components) != 1 {
			return "", fmt.Errorf("%w: column %q has %d components, a component name is required", errs.ErrUnmappedField, columnName, len(column.Components))
		}
		return columnName + "." + column.Components[0].Name, nil
	}
	if _, ok := column.Component(componentName); !ok {
		return "", fmt.Errorf("%w: unknown component %q in column %q", errs.ErrUnmappedField, componentName, columnName)
	}
	return columnName + "." + componentName, nil
}

// Component returns the field declared for a component id
func (s *Structure) Component(id string) (Field, error) {
	full, err := s.ResolveComponentID(id)
	if err != nil {
		return Field{}, err
	}
	columnName, componentName := SplitComponentID(full)
	column, _ := s.Column(columnName)
	f, _ := column.Component(componentName)
	return f, nil
}

// SplitComponentID splits "column.component"; component is empty for "column"
func SplitComponentID(id string) (column, component string) {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return id, ""
}

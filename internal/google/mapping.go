package google

import (
	"fmt"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

// FieldMapping binds a reporting API column to a table component
type FieldMapping struct {
	External string
	Internal string
}

// ColumnMapping is the validated, ordered set of field mappings of a table.
// It is a bijection, except that a lat/lng component is filled from the
// ga:latitude and ga:longitude pair.
type ColumnMapping struct {
	fields     []FieldMapping
	toInternal map[string]string
	toExternal map[string]string
}

func NewColumnMapping(structure *table.Structure, fields []FieldMapping) (*ColumnMapping, error) {
	m := &ColumnMapping{
		toInternal: make(map[string]string, len(fields)),
		toExternal: make(map[string]string, len(fields)),
	}
	pairs := map[string][]string{}

	for _, f := range fields {
		internal, err := structure.ResolveComponentID(f.Internal)
		if err != nil {
			return nil, fmt.Errorf("mapping %s: %w", f.External, err)
		}
		if _, ok := m.toInternal[f.External]; ok {
			return nil, fmt.Errorf("%w: %s is mapped twice", errs.ErrUnmappedField, f.External)
		}
		m.toInternal[f.External] = internal
		m.fields = append(m.fields, FieldMapping{External: f.External, Internal: internal})

		field, _ := structure.Component(internal)
		if field.Type == table.LatLng {
			pairs[internal] = append(pairs[internal], f.External)
			continue
		}
		if previous, ok := m.toExternal[internal]; ok {
			return nil, fmt.Errorf("%w: %s is mapped by both %s and %s", errs.ErrUnmappedField, internal, previous, f.External)
		}
		m.toExternal[internal] = f.External
	}

	for internal, externals := range pairs {
		if len(externals) != 2 || !containsAll(externals, DimensionLatitude, DimensionLongitude) {
			return nil, fmt.Errorf("%w: lat/lng component %s must be mapped by %s and %s", errs.ErrUnmappedField, internal, DimensionLatitude, DimensionLongitude)
		}
	}

	return m, nil
}

func containsAll(values []string, wanted ...string) bool {
	for _, w := range wanted {
		found := false
		for _, v := range values {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Internal returns the component id bound to an API column
func (m *ColumnMapping) Internal(external string) (string, bool) {
	internal, ok := m.toInternal[external]
	return internal, ok
}

// External returns the API column bound to a component id. Lat/lng components
// have no single API column and are never found.
func (m *ColumnMapping) External(internal string) (string, bool) {
	external, ok := m.toExternal[internal]
	return external, ok
}

func (m *ColumnMapping) Fields() []FieldMapping {
	return m.fields
}

// Externals returns the API columns in mapping order
func (m *ColumnMapping) Externals() []string {
	externals := make([]string, len(m.fields))
	for i, f := range m.fields {
		externals[i] = f.External
	}
	return externals
}

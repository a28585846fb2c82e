// Package table is the provider-agnostic tabular model: typed fields grouped into
// columns, rows keyed by column and component, and row queries over them.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"analyticsadmin/internal/errs"
)

// FieldType is the declared type of a column component
type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Date
	LatLng
	Enum
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Date:
		return "date"
	case LatLng:
		return "latlng"
	case Enum:
		return "enum"
	}
	return "unknown"
}

// Field is one typed component of a column
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Enum     *EnumType // set for Enum fields only
}

func StringField(name, label string) Field { return Field{Name: name, Label: label, Type: String} }
func IntField(name, label string) Field    { return Field{Name: name, Label: label, Type: Int} }
func FloatField(name, label string) Field  { return Field{Name: name, Label: label, Type: Float} }
func DateField(name, label string) Field   { return Field{Name: name, Label: label, Type: Date} }
func LatLngField(name, label string) Field { return Field{Name: name, Label: label, Type: LatLng} }

func EnumField(name, label string, enum *EnumType) Field {
	return Field{Name: name, Label: label, Type: Enum, Enum: enum}
}

// Require returns a copy of the field marked as required
func (f Field) Require() Field {
	f.Required = true
	return f
}

// Parse converts a raw string cell into the field's typed value
func (f Field) Parse(raw string) (any, error) {
	if raw == "" && f.Required {
		return nil, f.parseError(raw, "value is required")
	}

	switch f.Type {
	case String:
		return raw, nil
	case Int:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, f.parseError(raw, "not an integer")
		}
		return n, nil
	case Float:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, f.parseError(raw, "not a number")
		}
		return n, nil
	case Date:
		d, err := ParseDate(DateLayout, raw)
		if err != nil {
			return nil, f.parseError(raw, "not a YYYY-MM-DD date")
		}
		return d, nil
	case LatLng:
		ll, err := ParseLatLng(raw)
		if err != nil {
			return nil, f.parseError(raw, err.Error())
		}
		return ll, nil
	case Enum:
		if f.Enum == nil {
			return nil, f.parseError(raw, "enum field has no enum type")
		}
		v, err := f.Enum.New(raw)
		if err != nil {
			return nil, f.parseError(raw, err.Error())
		}
		return v, nil
	}

	return nil, f.parseError(raw, "unknown field type")
}

func (f Field) parseError(raw, reason string) error {
	return fmt.Errorf("%w: field %q (%s): cannot parse %q: %s", errs.ErrFieldParse, f.Name, f.Type, raw, reason)
}

// LatLngValue is a geographic coordinate pair
type LatLngValue struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseLatLng parses "lat,lng"
func ParseLatLng(raw string) (LatLngValue, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return LatLngValue{}, fmt.Errorf("expected \"lat,lng\"")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return LatLngValue{}, fmt.Errorf("invalid latitude")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return LatLngValue{}, fmt.Errorf("invalid longitude")
	}
	return LatLngValue{Lat: lat, Lng: lng}, nil
}

func (ll LatLngValue) String() string {
	return strconv.FormatFloat(ll.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(ll.Lng, 'f', -1, 64)
}

package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row maps column name to component name to typed value
type Row map[string]map[string]any

// Get returns the value of a full "column.component" id
func (r Row) Get(componentID string) any {
	column, component := SplitComponentID(componentID)
	return r[column][component]
}

func (r Row) Set(componentID string, value any) {
	column, component := SplitComponentID(componentID)
	if r[column] == nil {
		r[column] = map[string]any{}
	}
	r[column][component] = value
}

// EncodeRows serializes rows so DecodeRows can restore their typed values
func EncodeRows(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	return json.Marshal(rows)
}

// DecodeRows restores rows written by EncodeRows using the declared structure
func DecodeRows(structure *Structure, data []byte) ([]Row, error) {
	var raw []map[string]map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, rawRow := range raw {
		row := make(Row, len(rawRow))
		for columnName, components := range rawRow {
			column, ok := structure.Column(columnName)
			if !ok {
				return nil, fmt.Errorf("failed to decode rows: unknown column %q", columnName)
			}
			row[columnName] = make(map[string]any, len(components))
			for componentName, rawValue := range components {
				field, ok := column.Component(componentName)
				if !ok {
					return nil, fmt.Errorf("failed to decode rows: unknown component %q in column %q", componentName, columnName)
				}
				value, err := decodeValue(field, rawValue)
				if err != nil {
					return nil, fmt.Errorf("failed to decode %s.%s: %w", columnName, componentName, err)
				}
				row[columnName][componentName] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeValue(field Field, data json.RawMessage) (any, error) {
	if string(data) == "null" {
		return nil, nil
	}

	switch field.Type {
	case Int:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return n.Int64()
	case Float:
		var f float64
		err := json.Unmarshal(data, &f)
		return f, err
	case Date:
		var d DateValue
		err := json.Unmarshal(data, &d)
		return d, err
	case LatLng:
		var ll LatLngValue
		err := json.Unmarshal(data, &ll)
		return ll, err
	case Enum:
		var v EnumValue
		err := json.Unmarshal(data, &v)
		return v, err
	default:
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
}

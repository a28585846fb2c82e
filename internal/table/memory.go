package table

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"analyticsadmin/internal/errs"
)

// MemorySource serves already loaded rows, evaluating queries locally
type MemorySource struct {
	structure *Structure
	rows      []Row
}

func NewMemorySource(structure *Structure, rows []Row) *MemorySource {
	return &MemorySource{structure: structure, rows: rows}
}

func (m *MemorySource) Structure() *Structure {
	return m.structure
}

func (m *MemorySource) Load(ctx context.Context, query *RowQuery) ([]Row, error) {
	if query == nil {
		return append([]Row(nil), m.rows...), nil
	}

	matched := make([]Row, 0, len(m.rows))
	for _, row := range m.rows {
		ok, err := m.matches(row, query)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	if err := m.sort(matched, query.Orderings); err != nil {
		return nil, err
	}

	return paginate(matched, query.RowsToSkip, query.MaxRows), nil
}

func (m *MemorySource) Count(ctx context.Context, query *RowQuery) (int, error) {
	if query != nil {
		query = query.Clone()
		query.RowsToSkip = 0
		query.MaxRows = nil
		query.Orderings = nil
	}
	rows, err := m.Load(ctx, query)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (m *MemorySource) matches(row Row, query *RowQuery) (bool, error) {
	if len(query.ConditionGroups) == 0 {
		return true, nil
	}

	results := make([]bool, 0, len(query.ConditionGroups))
	for _, group := range query.ConditionGroups {
		groupResults := make([]bool, 0, len(group.Conditions))
		for _, condition := range group.Conditions {
			id, err := m.structure.ResolveComponentID(condition.FieldID)
			if err != nil {
				return false, err
			}
			ok, err := evaluate(row.Get(id), condition.Operator, condition.Value)
			if err != nil {
				return false, err
			}
			groupResults = append(groupResults, ok)
		}
		results = append(results, combine(group.Mode, groupResults))
	}
	return combine(query.Mode, results), nil
}

func combine(mode Mode, results []bool) bool {
	if len(results) == 0 {
		return true
	}
	if mode == Or {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

func (m *MemorySource) sort(rows []Row, orderings []Ordering) error {
	if len(orderings) == 0 {
		return nil
	}
	ids := make([]string, len(orderings))
	for i, o := range orderings {
		id, err := m.structure.ResolveComponentID(o.FieldID)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for k, o := range orderings {
			c, _ := compareValues(rows[i].Get(ids[k]), rows[j].Get(ids[k]))
			if c == 0 {
				continue
			}
			if o.Asc {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return nil
}

func paginate(rows []Row, skip int, limit *int) []Row {
	if skip >= len(rows) {
		return []Row{}
	}
	rows = rows[skip:]
	if limit != nil && *limit < len(rows) {
		rows = rows[:*limit]
	}
	return rows
}

func evaluate(value any, op Operator, operand any) (bool, error) {
	switch op {
	case Equals, NotEquals:
		c, ok := compareValues(value, operand)
		eq := ok && c == 0
		if op == Equals {
			return eq, nil
		}
		return !eq, nil
	case GreaterThan, LessThan, GreaterThanOrEqual, LessThanOrEqual:
		c, ok := compareValues(value, operand)
		if !ok {
			return false, nil
		}
		switch op {
		case GreaterThan:
			return c > 0, nil
		case LessThan:
			return c < 0, nil
		case GreaterThanOrEqual:
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	case Contains:
		return strings.Contains(strings.ToLower(stringValue(value)), strings.ToLower(stringValue(operand))), nil
	case StartsWith:
		return strings.HasPrefix(stringValue(value), stringValue(operand)), nil
	case In, NotIn:
		options, err := toList(operand)
		if err != nil {
			return false, fmt.Errorf("%w: %s expects a list, got %T", errs.ErrUnsupportedValueType, op, operand)
		}
		found := false
		for _, o := range options {
			if c, ok := compareValues(value, o); ok && c == 0 {
				found = true
				break
			}
		}
		return found == (op == In), nil
	}
	return false, fmt.Errorf("%w: %s", errs.ErrUnsupportedOperator, op)
}

// compareValues orders two cell values; ok is false when they are not comparable
func compareValues(a, b any) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	if isDate(a) || isDate(b) {
		da, okA := asDate(a)
		db, okB := asDate(b)
		if !okA || !okB {
			return 0, false
		}
		return da.Compare(db), true
	}

	if isNumber(a) && isNumber(b) {
		fa, fb := cast.ToFloat64(a), cast.ToFloat64(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	return strings.Compare(stringValue(a), stringValue(b)), true
}

func isDate(v any) bool {
	switch v.(type) {
	case DateValue, time.Time:
		return true
	}
	return false
}

func asDate(v any) (DateValue, bool) {
	switch d := v.(type) {
	case DateValue:
		return d, true
	case time.Time:
		return DateOf(d), true
	case string:
		parsed, err := ParseDate(DateLayout, d)
		return parsed, err == nil
	}
	return DateValue{}, false
}

func toList(v any) ([]any, error) {
	if list, err := cast.ToSliceE(v); err == nil {
		return list, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("not a list")
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case EnumValue:
		return s.Value
	case fmt.Stringer:
		return s.String()
	}
	return cast.ToString(v)
}

package table

import "context"

// Operator is a condition comparison
type Operator string

const (
	Equals             Operator = "="
	NotEquals          Operator = "!="
	GreaterThan        Operator = ">"
	LessThan           Operator = "<"
	GreaterThanOrEqual Operator = ">="
	LessThanOrEqual    Operator = "<="
	Contains           Operator = "contains"
	StartsWith         Operator = "starts-with"
	In                 Operator = "in"
	NotIn              Operator = "not-in"
)

// Mode combines conditions or groups
type Mode string

const (
	And Mode = "and"
	Or  Mode = "or"
)

type Condition struct {
	FieldID  string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

type ConditionGroup struct {
	Conditions []Condition `json:"conditions"`
	Mode       Mode        `json:"mode"`
}

type Ordering struct {
	FieldID string `json:"field"`
	Asc     bool   `json:"asc"`
}

// RowQuery describes filters, orderings and pagination against a table
type RowQuery struct {
	ConditionGroups []ConditionGroup `json:"condition_groups,omitempty"`
	Mode            Mode             `json:"mode"`
	Orderings       []Ordering       `json:"orderings,omitempty"`
	RowsToSkip      int              `json:"rows_to_skip,omitempty"`
	MaxRows         *int             `json:"max_rows,omitempty"`
}

// NewQuery returns a query loading all rows
func NewQuery() *RowQuery {
	return &RowQuery{Mode: And}
}

// Where adds a single-condition group, AND-combined with the others
func (q *RowQuery) Where(fieldID string, op Operator, value any) *RowQuery {
	q.ConditionGroups = append(q.ConditionGroups, ConditionGroup{
		Conditions: []Condition{{FieldID: fieldID, Operator: op, Value: value}},
		Mode:       And,
	})
	return q
}

// WhereGroup adds a group combining its conditions with mode
func (q *RowQuery) WhereGroup(mode Mode, conditions ...Condition) *RowQuery {
	q.ConditionGroups = append(q.ConditionGroups, ConditionGroup{Conditions: conditions, Mode: mode})
	return q
}

// Combine sets how groups are joined
func (q *RowQuery) Combine(mode Mode) *RowQuery {
	q.Mode = mode
	return q
}

func (q *RowQuery) OrderByAsc(fieldID string) *RowQuery {
	q.Orderings = append(q.Orderings, Ordering{FieldID: fieldID, Asc: true})
	return q
}

func (q *RowQuery) OrderByDesc(fieldID string) *RowQuery {
	q.Orderings = append(q.Orderings, Ordering{FieldID: fieldID, Asc: false})
	return q
}

func (q *RowQuery) Skip(n int) *RowQuery {
	q.RowsToSkip = n
	return q
}

func (q *RowQuery) Limit(n int) *RowQuery {
	q.MaxRows = &n
	return q
}

// Clone returns a deep copy so callers can adjust pagination independently
func (q *RowQuery) Clone() *RowQuery {
	c := &RowQuery{Mode: q.Mode, RowsToSkip: q.RowsToSkip}
	for _, g := range q.ConditionGroups {
		c.ConditionGroups = append(c.ConditionGroups, ConditionGroup{
			Conditions: append([]Condition(nil), g.Conditions...),
			Mode:       g.Mode,
		})
	}
	c.Orderings = append([]Ordering(nil), q.Orderings...)
	if q.MaxRows != nil {
		n := *q.MaxRows
		c.MaxRows = &n
	}
	return c
}

// DataSource loads rows of a declared structure
type DataSource interface {
	Structure() *Structure
	Load(ctx context.Context, query *RowQuery) ([]Row, error)
	Count(ctx context.Context, query *RowQuery) (int, error)
}

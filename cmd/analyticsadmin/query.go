package main

import (
	"fmt"
	"strconv"
	"strings"

	"analyticsadmin/internal/table"
)

// conditionOperators are matched in order, so two character operators come first
var conditionOperators = []struct {
	token    string
	operator table.Operator
}{
	{">=", table.GreaterThanOrEqual},
	{"<=", table.LessThanOrEqual},
	{"!=", table.NotEquals},
	{"^=", table.StartsWith},
	{"~", table.Contains},
	{"=", table.Equals},
	{">", table.GreaterThan},
	{"<", table.LessThan},
}

// parseCondition parses "field<op>value", e.g. "statistics.sessions>=10"
func parseCondition(expr string) (table.Condition, error) {
	for _, op := range conditionOperators {
		i := strings.Index(expr, op.token)
		if i <= 0 {
			continue
		}
		field := strings.TrimSpace(expr[:i])
		value := strings.TrimSpace(expr[i+len(op.token):])
		return table.Condition{FieldID: field, Operator: op.operator, Value: conditionValue(value)}, nil
	}
	return table.Condition{}, fmt.Errorf("invalid condition %q: expected field<op>value", expr)
}

// conditionValue types numeric literals so they compare as numbers
func conditionValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func buildQuery(conditions []string, order string, skip, limit int) (*table.RowQuery, error) {
	query := table.NewQuery()
	for _, expr := range conditions {
		condition, err := parseCondition(expr)
		if err != nil {
			return nil, err
		}
		query.Where(condition.FieldID, condition.Operator, condition.Value)
	}

	switch {
	case order == "":
	case strings.HasPrefix(order, "-"):
		query.OrderByDesc(order[1:])
	default:
		query.OrderByAsc(order)
	}

	if skip > 0 {
		query.Skip(skip)
	}
	if limit > 0 {
		query.Limit(limit)
	}
	return query, nil
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyticsadmin/internal/table"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr     string
		expected table.Condition
	}{
		{"date>=2024-01-01", table.Condition{FieldID: "date", Operator: table.GreaterThanOrEqual, Value: "2024-01-01"}},
		{"statistics.sessions > 10", table.Condition{FieldID: "statistics.sessions", Operator: table.GreaterThan, Value: int64(10)}},
		{"browser.name!=Safari", table.Condition{FieldID: "browser.name", Operator: table.NotEquals, Value: "Safari"}},
		{"page^=/blog", table.Condition{FieldID: "page", Operator: table.StartsWith, Value: "/blog"}},
		{"location.city~syd", table.Condition{FieldID: "location.city", Operator: table.Contains, Value: "syd"}},
		{"location.country=AU", table.Condition{FieldID: "location.country", Operator: table.Equals, Value: "AU"}},
		{"statistics.page_views<=2.5", table.Condition{FieldID: "statistics.page_views", Operator: table.LessThanOrEqual, Value: 2.5}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			condition, err := parseCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, condition)
		})
	}
}

func TestParseConditionErrors(t *testing.T) {
	for _, expr := range []string{"", "sessions", "=10"} {
		_, err := parseCondition(expr)
		assert.Error(t, err, expr)
	}
}

func TestBuildQuery(t *testing.T) {
	query, err := buildQuery([]string{"date>=2024-01-01", "statistics.sessions>0"}, "-statistics.sessions", 5, 10)
	require.NoError(t, err)

	assert.Len(t, query.ConditionGroups, 2)
	assert.Equal(t, []table.Ordering{{FieldID: "statistics.sessions", Asc: false}}, query.Orderings)
	assert.Equal(t, 5, query.RowsToSkip)
	require.NotNil(t, query.MaxRows)
	assert.Equal(t, 10, *query.MaxRows)

	query, err = buildQuery(nil, "date", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, query.MaxRows)
	assert.True(t, query.Orderings[0].Asc)

	_, err = buildQuery([]string{"nonsense"}, "", 0, 0)
	assert.Error(t, err)
}

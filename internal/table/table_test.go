package table

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyticsadmin/internal/errs"
)

var testStructure = MustStructure(
	ColumnFromField(DateField("date", "Date")),
	NewColumn("location", "Location",
		StringField("city", "City").Require(),
		LatLngField("city_lat_lng", "City Lat/Lng"),
		EnumField("country", "Country", Country),
	),
	NewColumn("statistics", "Statistics",
		IntField("sessions", "Sessions"),
		IntField("page_views", "Page Views"),
	),
)

func testRow(day int, city string, sessions int64) Row {
	row := Row{}
	row.Set("date.date", NewDate(2024, time.January, day))
	row.Set("location.city", city)
	row.Set("statistics.sessions", sessions)
	row.Set("statistics.page_views", sessions*3)
	return row
}

func TestFieldParse(t *testing.T) {
	v, err := IntField("n", "N").Parse("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = DateField("d", "D").Parse("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), v)

	v, err = LatLngField("ll", "LL").Parse("-33.86, 151.2")
	require.NoError(t, err)
	assert.Equal(t, LatLngValue{Lat: -33.86, Lng: 151.2}, v)

	v, err = EnumField("c", "C", Country).Parse("AU")
	require.NoError(t, err)
	assert.Equal(t, EnumValue{Enum: "country", Value: "AU"}, v)

	v, err = EnumField("c", "C", Country).Parse(UnknownCountry)
	require.NoError(t, err)
	assert.Equal(t, UnknownCountry, v.(EnumValue).Value)

	for _, tc := range []struct {
		field Field
		raw   string
	}{
		{IntField("n", "N"), "abc"},
		{FloatField("f", "F"), "1.2.3"},
		{DateField("d", "D"), "20240101"},
		{LatLngField("ll", "LL"), "12"},
		{EnumField("c", "C", Country), "not-a-country"},
		{StringField("s", "S").Require(), ""},
	} {
		_, err := tc.field.Parse(tc.raw)
		assert.ErrorIs(t, err, errs.ErrFieldParse, "%s %q", tc.field.Type, tc.raw)
	}
}

func TestStructure(t *testing.T) {
	id, err := testStructure.ResolveComponentID("date")
	require.NoError(t, err)
	assert.Equal(t, "date.date", id)

	id, err = testStructure.ResolveComponentID("statistics.sessions")
	require.NoError(t, err)
	assert.Equal(t, "statistics.sessions", id)

	_, err = testStructure.ResolveComponentID("statistics")
	assert.ErrorIs(t, err, errs.ErrUnmappedField)

	_, err = testStructure.ResolveComponentID("browser.name")
	assert.ErrorIs(t, err, errs.ErrUnmappedField)

	field, err := testStructure.Component("location.country")
	require.NoError(t, err)
	assert.Equal(t, Enum, field.Type)

	_, err = NewStructure(ColumnFromField(StringField("a", "A")), ColumnFromField(IntField("a", "A")))
	assert.Error(t, err)
}

func TestRowsRoundTrip(t *testing.T) {
	row := testRow(5, "Sydney", 7)
	row.Set("location.city_lat_lng", LatLngValue{Lat: -33.86, Lng: 151.2})
	row.Set("location.country", EnumValue{Enum: "country", Value: "AU"})

	data, err := EncodeRows([]Row{row})
	require.NoError(t, err)

	decoded, err := DecodeRows(testStructure, data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, row, decoded[0])

	_, err = DecodeRows(testStructure, []byte(`[{"unknown":{"x":1}}]`))
	assert.Error(t, err)
}

func TestMemorySourceFiltersSortsAndPaginates(t *testing.T) {
	source := NewMemorySource(testStructure, []Row{
		testRow(1, "Sydney", 10),
		testRow(2, "Melbourne", 20),
		testRow(3, "Sydney", 30),
		testRow(4, "Perth", 40),
	})
	ctx := context.Background()

	rows, err := source.Load(ctx, NewQuery().Where("location.city", Equals, "Sydney").OrderByDesc("statistics.sessions"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(30), rows[0].Get("statistics.sessions"))
	assert.Equal(t, int64(10), rows[1].Get("statistics.sessions"))

	rows, err = source.Load(ctx, NewQuery().Where("date", GreaterThanOrEqual, NewDate(2024, time.January, 2)).OrderByAsc("date").Skip(1).Limit(1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, NewDate(2024, time.January, 3), rows[0].Get("date.date"))

	rows, err = source.Load(ctx, NewQuery().WhereGroup(Or,
		Condition{FieldID: "location.city", Operator: Equals, Value: "Perth"},
		Condition{FieldID: "statistics.sessions", Operator: LessThan, Value: 15},
	))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = source.Load(ctx, NewQuery().Where("location.city", In, []string{"Perth", "Melbourne"}))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = source.Load(ctx, NewQuery().Where("location.city", Contains, "bourn"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	count, err := source.Count(ctx, NewQuery().Where("statistics.sessions", GreaterThan, 15).Limit(1))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = source.Load(ctx, NewQuery().Where("location.city", Operator("~"), "x"))
	assert.True(t, errors.Is(err, errs.ErrUnsupportedOperator))
}

func TestQueryClone(t *testing.T) {
	q := NewQuery().Where("date", Equals, "2024-01-01").Limit(5)
	c := q.Clone()
	*c.MaxRows = 0
	c.ConditionGroups[0].Conditions[0].Value = "x"

	assert.Equal(t, 5, *q.MaxRows)
	assert.Equal(t, "2024-01-01", q.ConditionGroups[0].Conditions[0].Value)
}

func TestCountries(t *testing.T) {
	codes := CountryCodes()
	assert.Contains(t, codes, "AU")
	assert.Contains(t, codes, "US")
	assert.Equal(t, "Australia", CountryName("AU"))
	assert.Equal(t, "Unknown", CountryName(UnknownCountry))
}

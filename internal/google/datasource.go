package google

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

const (
	MetricSessions  = "ga:sessions"
	MetricPageViews = "ga:pageviews"

	DimensionDate      = "ga:date"
	DimensionLatitude  = "ga:latitude"
	DimensionLongitude = "ga:longitude"

	Today = "today"

	// ReportDateLayout is the format of ga:date cells
	ReportDateLayout = "20060102"

	dateComponent = "date.date"
)

// StatisticsColumn holds the metrics every report table carries
func StatisticsColumn() table.Column {
	return table.NewColumn("statistics", "Statistics",
		table.IntField("sessions", "Sessions"),
		table.IntField("page_views", "Page Views"),
	)
}

func statisticsMappings() []FieldMapping {
	return []FieldMapping{
		{External: MetricSessions, Internal: "statistics.sessions"},
		{External: MetricPageViews, Internal: "statistics.page_views"},
	}
}

// TableDataSource translates row queries into reporting API requests for one
// view and maps the responses back into typed rows.
type TableDataSource struct {
	client              ReportClient
	viewID              string
	defaultLookbackDays int
	structure           *table.Structure
	mapping             *ColumnMapping
	dimensions          []string
	metrics             []string
}

// NewTableDataSource builds a source over the statistics column plus the
// breakdown columns, with dimensions binding API dimensions to breakdown components.
func NewTableDataSource(client ReportClient, viewID string, defaultLookbackDays int, breakdown []table.Column, dimensions []FieldMapping) (*TableDataSource, error) {
	structure, err := table.NewStructure(append([]table.Column{StatisticsColumn()}, breakdown...)...)
	if err != nil {
		return nil, err
	}

	mapping, err := NewColumnMapping(structure, append(append([]FieldMapping{}, dimensions...), statisticsMappings()...))
	if err != nil {
		return nil, err
	}

	s := &TableDataSource{
		client:              client,
		viewID:              viewID,
		defaultLookbackDays: defaultLookbackDays,
		structure:           structure,
		mapping:             mapping,
	}
	for _, d := range dimensions {
		s.dimensions = append(s.dimensions, d.External)
	}
	for _, m := range statisticsMappings() {
		s.metrics = append(s.metrics, m.External)
	}
	sort.Strings(s.metrics)
	return s, nil
}

func (s *TableDataSource) Structure() *table.Structure {
	return s.structure
}

func (s *TableDataSource) Mapping() *ColumnMapping {
	return s.mapping
}

func (s *TableDataSource) Load(ctx context.Context, query *table.RowQuery) ([]table.Row, error) {
	request, err := s.Request(query)
	if err != nil {
		return nil, err
	}
	report, err := s.client.GetReport(ctx, request)
	if err != nil {
		return nil, err
	}
	return s.mapRows(report)
}

// Count asks the API for the total matching rows without loading any
func (s *TableDataSource) Count(ctx context.Context, query *table.RowQuery) (int, error) {
	if query == nil {
		query = table.NewQuery()
	}
	request, err := s.Request(query.Clone().Limit(0))
	if err != nil {
		return 0, err
	}
	report, err := s.client.GetReport(ctx, request)
	if err != nil {
		return 0, err
	}
	if report.TotalResults < 0 || report.TotalResults > math.MaxInt {
		return 0, fmt.Errorf("report total %d is out of range", report.TotalResults)
	}
	return int(report.TotalResults), nil
}

// Request translates query into the parameters of one report call
func (s *TableDataSource) Request(query *table.RowQuery) (ReportRequest, error) {
	if query == nil {
		query = table.NewQuery()
	}

	start, end, consumed := s.window(query)
	filters, err := s.buildFilter(query, consumed)
	if err != nil {
		return ReportRequest{}, err
	}
	sortParam, err := s.BuildSort(query)
	if err != nil {
		return ReportRequest{}, err
	}

	request := ReportRequest{
		ViewID:     "ga:" + s.viewID,
		StartDate:  start,
		EndDate:    end,
		Metrics:    strings.Join(s.metrics, ","),
		Dimensions: strings.Join(s.dimensions, ","),
		Filters:    filters,
		Sort:       sortParam,
		StartIndex: int64(query.RowsToSkip) + 1,
	}
	if query.MaxRows != nil {
		maxResults := int64(*query.MaxRows)
		request.MaxResults = &maxResults
	}
	return request, nil
}

// Window returns the report date range for query
func (s *TableDataSource) Window(query *table.RowQuery) (start, end string) {
	start, end, _ = s.window(query)
	return start, end
}

type conditionRef struct {
	group, condition int
}

// window takes date.date >= and <= bounds from AND-combined groups that are
// single-condition or AND-mode. The conditions used as bounds are returned so
// they are left out of the filter.
func (s *TableDataSource) window(query *table.RowQuery) (start, end string, consumed map[conditionRef]bool) {
	consumed = map[conditionRef]bool{}
	if query.Mode != table.Or {
		for gi, group := range query.ConditionGroups {
			if len(group.Conditions) != 1 && group.Mode == table.Or {
				continue
			}
			for ci, condition := range group.Conditions {
				id, err := s.structure.ResolveComponentID(condition.FieldID)
				if err != nil || id != dateComponent {
					continue
				}
				date, ok := dateValue(condition.Value)
				if !ok {
					continue
				}
				switch condition.Operator {
				case table.GreaterThanOrEqual:
					start = date.Format(table.DateLayout)
				case table.LessThanOrEqual:
					end = date.Format(table.DateLayout)
				default:
					continue
				}
				consumed[conditionRef{gi, ci}] = true
			}
		}
	}

	if start == "" {
		start = strconv.Itoa(s.defaultLookbackDays) + "daysAgo"
	}
	if end == "" {
		end = Today
	}
	return start, end, consumed
}

// BuildFilter renders the filter parameter, joining conditions with ';' for AND and ',' for OR
func (s *TableDataSource) BuildFilter(query *table.RowQuery) (string, error) {
	_, _, consumed := s.window(query)
	return s.buildFilter(query, consumed)
}

func (s *TableDataSource) buildFilter(query *table.RowQuery, consumed map[conditionRef]bool) (string, error) {
	var groups []string
	for gi, group := range query.ConditionGroups {
		var parts []string
		for ci, condition := range group.Conditions {
			if consumed[conditionRef{gi, ci}] {
				continue
			}
			external, err := s.external(condition.FieldID)
			if err != nil {
				return "", err
			}
			operator, err := MapOperator(condition.Operator)
			if err != nil {
				return "", err
			}
			value, err := MapValue(condition.Value)
			if err != nil {
				return "", err
			}
			parts = append(parts, external+operator+value)
		}
		if len(parts) > 0 {
			groups = append(groups, strings.Join(parts, separator(group.Mode)))
		}
	}
	return strings.Join(groups, separator(query.Mode)), nil
}

func separator(mode table.Mode) string {
	if mode == table.Or {
		return ","
	}
	return ";"
}

// BuildSort renders the sort parameter, prefixing descending columns with '-'
func (s *TableDataSource) BuildSort(query *table.RowQuery) (string, error) {
	params := make([]string, 0, len(query.Orderings))
	for _, ordering := range query.Orderings {
		external, err := s.external(ordering.FieldID)
		if err != nil {
			return "", err
		}
		if !ordering.Asc {
			external = "-" + external
		}
		params = append(params, external)
	}
	return strings.Join(params, ","), nil
}

func (s *TableDataSource) external(fieldID string) (string, error) {
	id, err := s.structure.ResolveComponentID(fieldID)
	if err != nil {
		return "", err
	}
	external, ok := s.mapping.External(id)
	if !ok {
		return "", fmt.Errorf("%w: %s has no single report column", errs.ErrUnmappedField, id)
	}
	return external, nil
}

var operators = map[table.Operator]string{
	table.Equals:             "==",
	table.NotEquals:          "!=",
	table.GreaterThan:        ">",
	table.LessThan:           "<",
	table.GreaterThanOrEqual: ">=",
	table.LessThanOrEqual:    "<=",
	table.Contains:           "=@",
}

func MapOperator(op table.Operator) (string, error) {
	token, ok := operators[op]
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedOperator, op)
	}
	return token, nil
}

// MapValue renders a condition value: dates as YYYY-MM-DD, scalars as text
func MapValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case table.DateValue:
		return v.Format(table.DateLayout), nil
	case time.Time:
		return v.Format(table.DateLayout), nil
	case table.EnumValue:
		return v.Value, nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return cast.ToStringE(v)
	}
	return "", fmt.Errorf("%w: %T", errs.ErrUnsupportedValueType, value)
}

func dateValue(value any) (table.DateValue, bool) {
	switch v := value.(type) {
	case table.DateValue:
		return v, true
	case time.Time:
		return table.DateOf(v), true
	case string:
		d, err := table.ParseDate(table.DateLayout, v)
		return d, err == nil
	}
	return table.DateValue{}, false
}

type cellIndex struct {
	id    string
	field table.Field
}

func (s *TableDataSource) mapRows(report *Report) ([]table.Row, error) {
	columns := make([]cellIndex, len(report.Headers))
	positions := make(map[string]int, len(report.Headers))
	for i, header := range report.Headers {
		id, ok := s.mapping.Internal(header)
		if !ok {
			return nil, fmt.Errorf("%w: report column %s", errs.ErrUnmappedField, header)
		}
		field, err := s.structure.Component(id)
		if err != nil {
			return nil, err
		}
		columns[i] = cellIndex{id: id, field: field}
		positions[header] = i
	}

	rows := make([]table.Row, 0, len(report.Rows))
	for _, cells := range report.Rows {
		if len(cells) != len(columns) {
			return nil, fmt.Errorf("%w: row has %d cells for %d columns", errs.ErrFieldParse, len(cells), len(columns))
		}
		row := table.Row{}
		for i, cell := range cells {
			value, err := transformValue(columns[i].field, cell, cells, positions)
			if err != nil {
				return nil, err
			}
			row.Set(columns[i].id, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func transformValue(field table.Field, cell string, cells []string, positions map[string]int) (any, error) {
	switch field.Type {
	case table.LatLng:
		lat, okLat := positions[DimensionLatitude]
		lng, okLng := positions[DimensionLongitude]
		if !okLat || !okLng {
			return nil, fmt.Errorf("%w: %s needs both %s and %s", errs.ErrFieldParse, field.Name, DimensionLatitude, DimensionLongitude)
		}
		return field.Parse(cells[lat] + "," + cells[lng])
	case table.Date:
		date, err := table.ParseDate(ReportDateLayout, cell)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: cannot parse %q as a report date", errs.ErrFieldParse, field.Name, cell)
		}
		return date, nil
	}
	return field.Parse(cell)
}

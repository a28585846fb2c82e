package dashboard

import (
	"context"
	"fmt"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

type ChartKind string

const (
	LineChart       ChartKind = "line"
	PieChart        ChartKind = "pie"
	GeoCountryChart ChartKind = "geo-country"
	GeoCityChart    ChartKind = "geo-city"
)

// Axis projects one or more table components onto a chart axis
type Axis struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Components []string `json:"components"`
}

type Chart struct {
	Name  string    `json:"name"`
	Table string    `json:"table"`
	Kind  ChartKind `json:"kind"`
	Axes  []Axis    `json:"axes"`
	// MapCountry limits geo city charts to a single country
	MapCountry string `json:"map_country,omitempty"`
}

type Widget struct {
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	Chart    string          `json:"chart"`
	Criteria *table.RowQuery `json:"criteria,omitempty"`
}

// ChartData is a rendered widget: the chart definition plus one point per row
type ChartData struct {
	Widget     string           `json:"widget"`
	Label      string           `json:"label"`
	Chart      string           `json:"chart"`
	Kind       ChartKind        `json:"kind"`
	Axes       []Axis           `json:"axes"`
	MapCountry string           `json:"map_country,omitempty"`
	Points     []map[string]any `json:"points"`
}

type namedTable struct {
	name   string
	source table.DataSource
}

// Module collects the tables, charts and widgets registered by analytics drivers
type Module struct {
	Name    string
	tables  []namedTable
	charts  []Chart
	widgets []Widget
}

func NewModule(name string) *Module {
	return &Module{Name: name}
}

func (m *Module) AddTable(name string, source table.DataSource) error {
	if _, ok := m.Table(name); ok {
		return fmt.Errorf("table %q is already registered", name)
	}
	m.tables = append(m.tables, namedTable{name: name, source: source})
	return nil
}

// AddGroupedTable registers name as from grouped by groupBy with the sums components summed
func (m *Module) AddGroupedTable(name, from, groupBy string, sums ...string) error {
	parent, ok := m.Table(from)
	if !ok {
		return fmt.Errorf("%w: table %q", errs.ErrNotFound, from)
	}
	grouped, err := NewGroupedTable(parent, groupBy, sums...)
	if err != nil {
		return fmt.Errorf("failed to group %s: %w", from, err)
	}
	return m.AddTable(name, grouped)
}

func (m *Module) AddChart(chart Chart) error {
	if _, ok := m.Chart(chart.Name); ok {
		return fmt.Errorf("chart %q is already registered", chart.Name)
	}
	source, ok := m.Table(chart.Table)
	if !ok {
		return fmt.Errorf("%w: table %q", errs.ErrNotFound, chart.Table)
	}
	axes := make([]Axis, len(chart.Axes))
	for i, axis := range chart.Axes {
		axes[i] = Axis{Name: axis.Name, Label: axis.Label}
		for _, id := range axis.Components {
			full, err := source.Structure().ResolveComponentID(id)
			if err != nil {
				return fmt.Errorf("chart %s axis %s: %w", chart.Name, axis.Name, err)
			}
			axes[i].Components = append(axes[i].Components, full)
		}
	}
	chart.Axes = axes
	m.charts = append(m.charts, chart)
	return nil
}

func (m *Module) AddWidget(widget Widget) error {
	if _, ok := m.Widget(widget.Name); ok {
		return fmt.Errorf("widget %q is already registered", widget.Name)
	}
	if _, ok := m.Chart(widget.Chart); !ok {
		return fmt.Errorf("%w: chart %q", errs.ErrNotFound, widget.Chart)
	}
	m.widgets = append(m.widgets, widget)
	return nil
}

func (m *Module) Table(name string) (table.DataSource, bool) {
	for _, t := range m.tables {
		if t.name == name {
			return t.source, true
		}
	}
	return nil, false
}

func (m *Module) Chart(name string) (Chart, bool) {
	for _, c := range m.charts {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

func (m *Module) Widget(name string) (Widget, bool) {
	for _, w := range m.widgets {
		if w.Name == name {
			return w, true
		}
	}
	return Widget{}, false
}

func (m *Module) TableNames() []string {
	names := make([]string, 0, len(m.tables))
	for _, t := range m.tables {
		names = append(names, t.name)
	}
	return names
}

func (m *Module) Charts() []Chart {
	return m.charts
}

func (m *Module) Widgets() []Widget {
	return m.widgets
}

// RenderWidget loads the widget's chart table with the widget criteria and
// projects every row onto the chart axes.
func (m *Module) RenderWidget(ctx context.Context, name string) (*ChartData, error) {
	widget, ok := m.Widget(name)
	if !ok {
		return nil, fmt.Errorf("%w: widget %q", errs.ErrNotFound, name)
	}
	chart, _ := m.Chart(widget.Chart)
	source, _ := m.Table(chart.Table)

	var query *table.RowQuery
	if widget.Criteria != nil {
		query = widget.Criteria.Clone()
	}
	rows, err := source.Load(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s for widget %s: %w", chart.Table, name, err)
	}

	data := &ChartData{
		Widget:     widget.Name,
		Label:      widget.Label,
		Chart:      chart.Name,
		Kind:       chart.Kind,
		Axes:       chart.Axes,
		MapCountry: chart.MapCountry,
		Points:     make([]map[string]any, 0, len(rows)),
	}
	for _, row := range rows {
		point := make(map[string]any, len(chart.Axes))
		for _, axis := range chart.Axes {
			if len(axis.Components) == 1 {
				point[axis.Name] = row.Get(axis.Components[0])
				continue
			}
			values := make(map[string]any, len(axis.Components))
			for _, id := range axis.Components {
				_, component := table.SplitComponentID(id)
				values[component] = row.Get(id)
			}
			point[axis.Name] = values
		}
		data.Points = append(data.Points, point)
	}
	return data, nil
}

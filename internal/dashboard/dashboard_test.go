package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

var browserStructure = table.MustStructure(
	table.NewColumn("statistics", "Statistics",
		table.IntField("sessions", "Sessions"),
		table.IntField("page_views", "Page Views"),
	),
	table.NewColumn("browser", "Browser",
		table.StringField("name", "Name"),
		table.StringField("version", "Version"),
	),
)

func browserRow(name, version string, sessions, pageViews int64) table.Row {
	row := table.Row{}
	row.Set("browser.name", name)
	row.Set("browser.version", version)
	row.Set("statistics.sessions", sessions)
	row.Set("statistics.page_views", pageViews)
	return row
}

func browserModule(t *testing.T) *Module {
	module := NewModule("analytics")
	require.NoError(t, module.AddTable("browser-versions", table.NewMemorySource(browserStructure, []table.Row{
		browserRow("Chrome", "120", 10, 30),
		browserRow("Firefox", "115", 4, 8),
		browserRow("Chrome", "119", 5, 6),
	})))
	require.NoError(t, module.AddGroupedTable("browsers", "browser-versions", "browser.name", "statistics.sessions", "statistics.page_views"))
	return module
}

func TestGroupedTableSums(t *testing.T) {
	module := browserModule(t)
	grouped, ok := module.Table("browsers")
	require.True(t, ok)

	columns := grouped.Structure().Columns()
	require.Len(t, columns, 2)
	assert.Equal(t, "browser", columns[0].Name)
	assert.Len(t, columns[0].Components, 1)

	rows, err := grouped.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Chrome", rows[0].Get("browser.name"))
	assert.Equal(t, int64(15), rows[0].Get("statistics.sessions"))
	assert.Equal(t, int64(36), rows[0].Get("statistics.page_views"))
	assert.Equal(t, int64(4), rows[1].Get("statistics.sessions"))

	count, err := grouped.Count(context.Background(), table.NewQuery().Where("statistics.sessions", table.GreaterThan, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGroupedTableRejectsNonIntSums(t *testing.T) {
	_, err := NewGroupedTable(table.NewMemorySource(browserStructure, nil), "browser.name", "browser.version")
	assert.Error(t, err)
}

func TestRenderWidget(t *testing.T) {
	module := browserModule(t)
	require.NoError(t, module.AddChart(Chart{
		Name:  "browsers",
		Table: "browsers",
		Kind:  PieChart,
		Axes: []Axis{
			{Name: "browser", Label: "Browser", Components: []string{"browser.name"}},
			{Name: "sessions", Label: "Sessions", Components: []string{"statistics.sessions"}},
		},
	}))
	require.NoError(t, module.AddWidget(Widget{Name: "browsers-breakdown", Label: "User browser breakdown", Chart: "browsers"}))

	data, err := module.RenderWidget(context.Background(), "browsers-breakdown")
	require.NoError(t, err)
	assert.Equal(t, PieChart, data.Kind)
	require.Len(t, data.Points, 2)
	assert.Equal(t, map[string]any{"browser": "Chrome", "sessions": int64(15)}, data.Points[0])

	_, err = module.RenderWidget(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRenderWidgetAppliesCriteria(t *testing.T) {
	structure := table.MustStructure(
		table.NewColumn("statistics", "Statistics", table.IntField("sessions", "Sessions"), table.IntField("page_views", "Page Views")),
		table.ColumnFromField(table.DateField("date", "Date")),
	)
	var rows []table.Row
	for day := 1; day <= 10; day++ {
		row := table.Row{}
		row.Set("date.date", table.NewDate(2024, time.March, day))
		row.Set("statistics.sessions", int64(day))
		row.Set("statistics.page_views", int64(day*2))
		rows = append(rows, row)
	}

	module := NewModule("analytics")
	require.NoError(t, module.AddTable("sessions", table.NewMemorySource(structure, rows)))
	require.NoError(t, module.AddChart(Chart{
		Name:  "sessions",
		Table: "sessions",
		Kind:  LineChart,
		Axes: []Axis{
			{Name: "date", Label: "Date", Components: []string{"date"}},
			{Name: "statistics", Label: "Statistics", Components: []string{"statistics.sessions", "statistics.page_views"}},
		},
	}))
	require.NoError(t, module.AddWidget(Widget{
		Name:     "recent",
		Chart:    "sessions",
		Criteria: table.NewQuery().Where("date", table.GreaterThanOrEqual, table.NewDate(2024, time.March, 8)),
	}))

	data, err := module.RenderWidget(context.Background(), "recent")
	require.NoError(t, err)
	require.Len(t, data.Points, 3)
	assert.Equal(t, table.NewDate(2024, time.March, 8), data.Points[0]["date"])
	assert.Equal(t, map[string]any{"sessions": int64(8), "page_views": int64(16)}, data.Points[0]["statistics"])
	assert.Equal(t, "date.date", data.Axes[0].Components[0])
}

func TestModuleRejectsDuplicatesAndDanglingReferences(t *testing.T) {
	module := browserModule(t)
	assert.Error(t, module.AddTable("browsers", table.NewMemorySource(browserStructure, nil)))
	assert.ErrorIs(t, module.AddGroupedTable("x", "missing", "browser.name"), errs.ErrNotFound)
	assert.ErrorIs(t, module.AddChart(Chart{Name: "c", Table: "missing"}), errs.ErrNotFound)
	assert.ErrorIs(t, module.AddWidget(Widget{Name: "w", Chart: "missing"}), errs.ErrNotFound)
	assert.ErrorIs(t, module.AddChart(Chart{Name: "c", Table: "browsers", Axes: []Axis{{Name: "a", Components: []string{"browser.version"}}}}), errs.ErrUnmappedField)
}

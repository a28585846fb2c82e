package google

import (
	"context"
	"fmt"
	"time"

	"analyticsadmin/internal/cache"
	"analyticsadmin/internal/dashboard"
	"analyticsadmin/internal/table"
)

const (
	SessionsTable                 = "google-analytics-sessions"
	LocationCityBreakdownTable    = "google-analytics-location-city-breakdown"
	LocationCountryBreakdownTable = "google-analytics-location-country-breakdown"
	BrowserVersionBreakdownTable  = "google-analytics-browser-version-breakdown"
	BrowserBreakdownTable         = "google-analytics-browser-breakdown"
	PageBreakdownTable            = "google-analytics-page-breakdown"

	SessionsLastMonthWidget = "google-analytics-sessions-last-month-chart"
	LocationBreakdownWidget = "google-analytics-location-breakdown"
	BrowsersBreakdownWidget = "google-analytics-browsers-breakdown"
)

// Data registers the Google Analytics tables, charts and widgets of one view
type Data struct {
	client       ReportClient
	viewID       string
	reports      *cache.ReadThrough
	ttl          time.Duration
	lookbackDays int
	chartMode    ChartMode
	mapCountry   string
	now          func() time.Time
}

type breakdown struct {
	name       string
	columns    []table.Column
	dimensions []FieldMapping
}

func breakdowns() []breakdown {
	return []breakdown{
		{
			name:       SessionsTable,
			columns:    []table.Column{table.ColumnFromField(table.DateField("date", "Date"))},
			dimensions: []FieldMapping{{External: DimensionDate, Internal: "date"}},
		},
		{
			name: LocationCityBreakdownTable,
			columns: []table.Column{table.NewColumn("location", "Location",
				table.StringField("city", "City").Require(),
				table.LatLngField("city_lat_lng", "City Lat/Lng").Require(),
				table.EnumField("country", "Country", table.Country).Require(),
			)},
			dimensions: []FieldMapping{
				{External: "ga:countryIsoCode", Internal: "location.country"},
				{External: "ga:city", Internal: "location.city"},
				{External: DimensionLatitude, Internal: "location.city_lat_lng"},
				{External: DimensionLongitude, Internal: "location.city_lat_lng"},
			},
		},
		{
			name: BrowserVersionBreakdownTable,
			columns: []table.Column{table.NewColumn("browser", "Browser",
				table.StringField("name", "Name"),
				table.StringField("version", "Version"),
			)},
			dimensions: []FieldMapping{
				{External: "ga:browser", Internal: "browser.name"},
				{External: "ga:browserVersion", Internal: "browser.version"},
			},
		},
		{
			name:       PageBreakdownTable,
			columns:    []table.Column{table.ColumnFromField(table.StringField("page", "Page"))},
			dimensions: []FieldMapping{{External: "ga:pagePath", Internal: "page"}},
		},
	}
}

func (d *Data) RegisterWidgets(ctx context.Context, module *dashboard.Module) error {
	for _, b := range breakdowns() {
		source, err := d.loadBreakdown(ctx, b)
		if err != nil {
			return err
		}
		if err := module.AddTable(b.name, source); err != nil {
			return err
		}
	}

	if err := module.AddGroupedTable(LocationCountryBreakdownTable, LocationCityBreakdownTable, "location.country", "statistics.sessions", "statistics.page_views"); err != nil {
		return err
	}
	if err := module.AddGroupedTable(BrowserBreakdownTable, BrowserVersionBreakdownTable, "browser.name", "statistics.sessions", "statistics.page_views"); err != nil {
		return err
	}

	charts := []dashboard.Chart{
		{
			Name:  SessionsTable,
			Table: SessionsTable,
			Kind:  dashboard.LineChart,
			Axes: []dashboard.Axis{
				{Name: "date", Label: "Date", Components: []string{"date"}},
				{Name: "statistics", Label: "Statistics", Components: []string{"statistics.sessions", "statistics.page_views"}},
			},
		},
		{
			Name:  BrowserBreakdownTable,
			Table: BrowserBreakdownTable,
			Kind:  dashboard.PieChart,
			Axes: []dashboard.Axis{
				{Name: "browser", Label: "Browser", Components: []string{"browser.name"}},
				{Name: "sessions", Label: "Sessions", Components: []string{"statistics.sessions"}},
			},
		},
		{
			Name:  LocationCountryBreakdownTable,
			Table: LocationCountryBreakdownTable,
			Kind:  dashboard.GeoCountryChart,
			Axes: []dashboard.Axis{
				{Name: "country", Label: "Country", Components: []string{"location.country"}},
				{Name: "sessions", Label: "Sessions", Components: []string{"statistics.sessions"}},
			},
		},
		{
			Name:  LocationCityBreakdownTable,
			Table: LocationCityBreakdownTable,
			Kind:  dashboard.GeoCityChart,
			Axes: []dashboard.Axis{
				{Name: "city", Label: "City", Components: []string{"location.city"}},
				{Name: "city_lat_lng", Label: "City Lat/Lng", Components: []string{"location.city_lat_lng"}},
				{Name: "sessions", Label: "Sessions", Components: []string{"statistics.sessions"}},
			},
			MapCountry: d.mapCountry,
		},
	}
	for _, chart := range charts {
		if err := module.AddChart(chart); err != nil {
			return err
		}
	}

	locationChart := LocationCountryBreakdownTable
	if d.chartMode == ChartModeCity {
		locationChart = LocationCityBreakdownTable
	}
	lastMonth := table.DateOf(d.now()).AddDate(0, -1, 0)

	widgets := []dashboard.Widget{
		{
			Name:     SessionsLastMonthWidget,
			Label:    "Last month sessions",
			Chart:    SessionsTable,
			Criteria: table.NewQuery().Where("date", table.GreaterThanOrEqual, lastMonth),
		},
		{Name: LocationBreakdownWidget, Label: "User location breakdown", Chart: locationChart},
		{Name: BrowsersBreakdownWidget, Label: "User browser breakdown", Chart: BrowserBreakdownTable},
	}
	for _, widget := range widgets {
		if err := module.AddWidget(widget); err != nil {
			return err
		}
	}
	return nil
}

// loadBreakdown fetches the full report through the read-through cache and
// serves it from memory.
func (d *Data) loadBreakdown(ctx context.Context, b breakdown) (table.DataSource, error) {
	source, err := NewTableDataSource(d.client, d.viewID, d.lookbackDays, b.columns, b.dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", b.name, err)
	}

	data, err := d.reports.GetOrLoad(ctx, cache.Key(b.name, d.viewID), d.ttl, func(ctx context.Context) ([]byte, error) {
		rows, err := source.Load(ctx, nil)
		if err != nil {
			return nil, err
		}
		return table.EncodeRows(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", b.name, err)
	}

	rows, err := table.DecodeRows(source.Structure(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from cache: %w", b.name, err)
	}
	return table.NewMemorySource(source.Structure(), rows), nil
}

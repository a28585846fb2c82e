package google

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/cache"
	"analyticsadmin/internal/logging"
	"analyticsadmin/internal/table"
)

const (
	DefaultLookbackDays = 365
	DefaultReportTTL    = 24 * time.Hour
)

// ClientFactory builds the report client for a set of options
type ClientFactory func(ctx context.Context, options *Options) (ReportClient, error)

// Driver is the Google Analytics analytics.Driver
type Driver struct {
	reports      cache.Store
	tokens       cache.Store
	lookbackDays int
	reportTTL    time.Duration
	newClient    ClientFactory
	now          func() time.Time
}

type DriverOption func(*Driver)

// WithLookbackDays sets the default report window
func WithLookbackDays(days int) DriverOption {
	return func(d *Driver) { d.lookbackDays = days }
}

func WithReportTTL(ttl time.Duration) DriverOption {
	return func(d *Driver) { d.reportTTL = ttl }
}

// WithClientFactory replaces the authenticated reporting API client
func WithClientFactory(factory ClientFactory) DriverOption {
	return func(d *Driver) { d.newClient = factory }
}

func WithClock(now func() time.Time) DriverOption {
	return func(d *Driver) { d.now = now }
}

// NewDriver creates the driver. Reports are cached in store; access tokens are
// written to it through a cache.WriteOnly wrapper.
func NewDriver(store cache.Store, opts ...DriverOption) *Driver {
	d := &Driver{
		reports:      store,
		tokens:       cache.NewWriteOnly(store),
		lookbackDays: DefaultLookbackDays,
		reportTTL:    DefaultReportTTL,
		now:          time.Now,
	}
	d.newClient = d.authenticatedClient
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) authenticatedClient(ctx context.Context, options *Options) (ReportClient, error) {
	httpClient, err := HTTPClient(ctx, options, d.tokens)
	if err != nil {
		return nil, err
	}
	return NewReportClient(ctx, httpClient)
}

func (d *Driver) Name() string {
	return DriverName
}

func (d *Driver) Label() string {
	return "Google Analytics"
}

func (d *Driver) InstallationInstructions() string {
	return installationInstructions
}

func (d *Driver) OptionsClass() string {
	return OptionsClass
}

func (d *Driver) OptionsForm() analytics.FormSchema {
	countries := map[string]string{}
	for _, code := range table.CountryCodes() {
		countries[code] = table.CountryName(code)
	}

	return analytics.FormSchema{Sections: []analytics.FormSection{
		{
			Title: "Account Details",
			Fields: []analytics.FormField{
				{Name: "service_account_email", Label: "Service Account Email", Kind: analytics.TextField},
				{Name: "service_account_key", Label: "Service Account Key (*.json)", Kind: analytics.FileField, Extensions: []string{"json", "pem"}},
				{Name: "private_key_data", Label: "Private Key (PEM or base64)", Kind: analytics.TextField},
				{Name: "view_id", Label: "View ID", Kind: analytics.IntField, Required: true},
			},
		},
		{
			Title: "Dashboard",
			Fields: []analytics.FormField{
				{Name: "location_chart_mode", Label: "Analytics Map Mode", Kind: analytics.SelectField, Options: chartModeLabels},
				{Name: "map_country", Label: "Analytics Map Country", Kind: analytics.SelectField, Options: countries},
			},
		},
		{
			Title: "Embed",
			Fields: []analytics.FormField{
				{Name: "tracking_code", Label: "UA tracking code", Kind: analytics.TextField, Required: true},
			},
		},
	}}
}

func (d *Driver) DecodeOptions(values map[string]any) (analytics.Options, error) {
	return DecodeOptions(values)
}

func (d *Driver) UnmarshalOptions(data []byte) (analytics.Options, error) {
	var options Options
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("failed to decode google options: %w", err)
	}
	return &options, nil
}

func (d *Driver) options(options analytics.Options) (*Options, error) {
	o, ok := options.(*Options)
	if !ok {
		return nil, fmt.Errorf("google driver cannot use %T options", options)
	}
	return o, nil
}

// Validate reads today's sessions for the configured view. Any failure is
// reported as false and only logged.
func (d *Driver) Validate(ctx context.Context, options analytics.Options) bool {
	o, err := d.options(options)
	if err != nil {
		logging.Warnf("Google Analytics validation failed: %v", err)
		return false
	}
	client, err := d.newClient(ctx, o)
	if err != nil {
		logging.Warnf("Google Analytics validation failed for view %d: %v", o.ViewID, err)
		return false
	}
	_, err = client.GetReport(ctx, ReportRequest{
		ViewID:    "ga:" + o.ViewIDString(),
		StartDate: Today,
		EndDate:   Today,
		Metrics:   MetricSessions,
	})
	if err != nil {
		logging.Warnf("Google Analytics validation failed for view %d: %v", o.ViewID, err)
		return false
	}
	return true
}

func (d *Driver) ReportSource(ctx context.Context, options analytics.Options) (analytics.ReportSource, error) {
	o, err := d.options(options)
	if err != nil {
		return nil, err
	}
	client, err := d.newClient(ctx, o)
	if err != nil {
		return nil, err
	}
	return &Data{
		client:       client,
		viewID:       o.ViewIDString(),
		reports:      cache.NewReadThrough(d.reports),
		ttl:          d.reportTTL,
		lookbackDays: d.lookbackDays,
		chartMode:    o.LocationChartMode,
		mapCountry:   o.MapCountry,
		now:          d.now,
	}, nil
}

func (d *Driver) EmbedSnippet(options analytics.Options) (string, error) {
	o, err := d.options(options)
	if err != nil {
		return "", err
	}
	code, err := json.Marshal(o.TrackingCode)
	if err != nil {
		return "", err
	}
	return strings.Replace(embedTemplate, "{{code}}", string(code), 1), nil
}

const embedTemplate = `<!-- Google Analytics -->
<script>
(function(i,s,o,g,r,a,m){i['GoogleAnalyticsObject']=r;i[r]=i[r]||function(){
(i[r].q=i[r].q||[]).push(arguments)},i[r].l=1*new Date();a=s.createElement(o),
m=s.getElementsByTagName(o)[0];a.async=1;a.src=g;m.parentNode.insertBefore(a,m)
})(window,document,'script','//www.google-analytics.com/analytics.js','ga');

ga('create', {{code}}, 'auto');
ga('send', 'pageview');
</script>
<!-- End Google Analytics -->
`

const installationInstructions = `<p>This assumes you have a Google Analytics account set up for this site.</p>

<p>Create a project for this site (if one does not exist) under the <a href="https://console.developers.google.com/" target="_blank">google developer console</a>.</p>

<p>In the overview, go to "Analytics API" and click "Enable".</p>

<p>Under the credentials page create a "service account key", select "New service account" and choose the JSON key type.</p>

<p>Upload the downloaded key file here. A PEM private key together with the service account email also works.</p>

<p>Now in <a href="https://analytics.google.com/" target="_blank">Google Analytics</a>, go to the "Admin" tab, select "View Settings" and copy the "View ID" here.</p>

<p>Under "User Management" enter the service account's email with "Read and Analyse" permissions and click "Add".</p>

<p>Now you should be able to complete this form.</p>
`

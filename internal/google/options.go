package google

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"

	"analyticsadmin/internal/analytics"
	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/table"
)

const (
	DriverName   = "google"
	OptionsClass = "google.Options"
)

// ChartMode selects how the location widget is drawn
type ChartMode string

const (
	ChartModeCity    ChartMode = "city"
	ChartModeCountry ChartMode = "country"
)

var chartModeLabels = map[string]string{
	string(ChartModeCity):    "Cities",
	string(ChartModeCountry): "Countries",
}

// Options configures one Google Analytics view
type Options struct {
	ServiceAccountEmail string `json:"service_account_email,omitempty"`
	// PrivateKeyData is a PEM or JSON service account key, raw or base64 encoded
	PrivateKeyData    string          `json:"private_key_data,omitempty"`
	ServiceAccountKey *analytics.File `json:"service_account_key,omitempty"`
	ViewID            int64           `json:"view_id"`
	TrackingCode      string          `json:"tracking_code"`
	LocationChartMode ChartMode       `json:"location_chart_mode"`
	MapCountry        string          `json:"map_country,omitempty"`
}

func (o *Options) DriverName() string {
	return DriverName
}

func (o *Options) Class() string {
	return OptionsClass
}

func (o *Options) Values() map[string]any {
	values := map[string]any{
		"service_account_email": o.ServiceAccountEmail,
		"private_key_data":      o.PrivateKeyData,
		"view_id":               o.ViewID,
		"tracking_code":         o.TrackingCode,
		"location_chart_mode":   string(o.LocationChartMode),
		"map_country":           o.MapCountry,
	}
	if o.ServiceAccountKey != nil {
		values["service_account_key"] = o.ServiceAccountKey
	}
	return values
}

func (o *Options) ViewIDString() string {
	return strconv.FormatInt(o.ViewID, 10)
}

// PrivateKey returns the key material from the uploaded key file, or else
// from PrivateKeyData, base64 decoding it when possible.
func (o *Options) PrivateKey() ([]byte, error) {
	if o.ServiceAccountKey != nil {
		return o.ServiceAccountKey.Read()
	}

	data := strings.TrimSpace(o.PrivateKeyData)
	if data == "" {
		return nil, fmt.Errorf("no private key configured")
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return decoded, nil
	}
	return []byte(data), nil
}

// isJSONKey reports whether key is a service account JSON key file
func isJSONKey(key []byte) bool {
	var probe struct {
		Type       string `json:"type"`
		PrivateKey string `json:"private_key"`
	}
	return json.Unmarshal(key, &probe) == nil && probe.PrivateKey != ""
}

// DecodeOptions validates submitted form values into Options
func DecodeOptions(values map[string]any) (*Options, error) {
	var result *multierror.Error
	o := &Options{
		ServiceAccountEmail: strings.TrimSpace(cast.ToString(values["service_account_email"])),
		PrivateKeyData:      strings.TrimSpace(cast.ToString(values["private_key_data"])),
		TrackingCode:        strings.TrimSpace(cast.ToString(values["tracking_code"])),
		LocationChartMode:   ChartMode(cast.ToString(values["location_chart_mode"])),
	}

	file, fileErr := analytics.FileFromValue(values["service_account_key"])
	if fileErr != nil {
		result = multierror.Append(result, fmt.Errorf("service_account_key: %w", fileErr))
	}
	o.ServiceAccountKey = file

	if raw, ok := values["view_id"]; !ok || cast.ToString(raw) == "" {
		result = multierror.Append(result, fmt.Errorf("view_id is required"))
	} else if viewID, err := cast.ToInt64E(raw); err != nil || viewID <= 0 {
		result = multierror.Append(result, fmt.Errorf("view_id must be a positive integer, got %v", raw))
	} else {
		o.ViewID = viewID
	}

	if o.TrackingCode == "" {
		result = multierror.Append(result, fmt.Errorf("tracking_code is required"))
	}

	switch o.LocationChartMode {
	case "":
		o.LocationChartMode = ChartModeCity
	case ChartModeCity, ChartModeCountry:
	default:
		result = multierror.Append(result, fmt.Errorf("location_chart_mode must be %s or %s", ChartModeCity, ChartModeCountry))
	}

	if country := strings.TrimSpace(cast.ToString(values["map_country"])); country != "" {
		value, err := table.Country.New(strings.ToUpper(country))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("map_country: %w", err))
		} else {
			o.MapCountry = value.Value
		}
	}

	if fileErr == nil {
		if key, err := o.PrivateKey(); err != nil {
			result = multierror.Append(result, fmt.Errorf("service account key: %w", err))
		} else if !isJSONKey(key) && o.ServiceAccountEmail == "" {
			result = multierror.Append(result, fmt.Errorf("service_account_email is required with a PEM private key"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidOptions, err)
	}
	return o, nil
}

package google

import (
	"context"
	"fmt"
	"net/http"

	analyticsapi "google.golang.org/api/analytics/v3"
	"google.golang.org/api/option"

	"analyticsadmin/internal/logging"
	"analyticsadmin/internal/metrics"
)

// ReportRequest holds the parameters of one Core Reporting API call
type ReportRequest struct {
	ViewID     string
	StartDate  string
	EndDate    string
	Metrics    string
	Dimensions string
	Filters    string
	Sort       string
	StartIndex int64
	MaxResults *int64
}

// Report is the tabular response of a report call
type Report struct {
	Headers      []string
	Rows         [][]string
	TotalResults int64
}

// ReportClient executes report requests against the reporting API
type ReportClient interface {
	GetReport(ctx context.Context, request ReportRequest) (*Report, error)
}

type gaClient struct {
	service *analyticsapi.Service
}

// NewReportClient builds a client over the Core Reporting API using an authenticated http client
func NewReportClient(ctx context.Context, httpClient *http.Client) (ReportClient, error) {
	service, err := analyticsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}
	return &gaClient{service: service}, nil
}

func (c *gaClient) GetReport(ctx context.Context, request ReportRequest) (*Report, error) {
	call := c.service.Data.Ga.Get(request.ViewID, request.StartDate, request.EndDate, request.Metrics)
	if request.Dimensions != "" {
		call = call.Dimensions(request.Dimensions)
	}
	if request.Filters != "" {
		call = call.Filters(request.Filters)
	}
	if request.Sort != "" {
		call = call.Sort(request.Sort)
	}
	if request.StartIndex > 0 {
		call = call.StartIndex(request.StartIndex)
	}
	if request.MaxResults != nil {
		call = call.MaxResults(*request.MaxResults)
	}

	logging.Debugf("GA report %s [%s..%s] metrics=%s dimensions=%s filters=%q sort=%q", request.ViewID, request.StartDate, request.EndDate, request.Metrics, request.Dimensions, request.Filters, request.Sort)
	data, err := call.Context(ctx).Do()
	metrics.RemoteCall(DriverName, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get report for %s: %w", request.ViewID, err)
	}

	report := &Report{Rows: data.Rows, TotalResults: data.TotalResults}
	for _, header := range data.ColumnHeaders {
		report.Headers = append(report.Headers, header.Name)
	}
	return report, nil
}

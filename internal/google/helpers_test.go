package google

import (
	"context"
	"strings"
	"sync"
	"time"

	"analyticsadmin/internal/table"
)

type fakeClient struct {
	mu       sync.Mutex
	requests []ReportRequest
	reports  map[string]*Report
	report   *Report
	err      error
}

func (c *fakeClient) GetReport(ctx context.Context, request ReportRequest) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, request)
	if c.err != nil {
		return nil, c.err
	}
	if report, ok := c.reports[request.Dimensions]; ok {
		return report, nil
	}
	if c.report != nil {
		return c.report, nil
	}
	return &Report{Headers: append(strings.Split(request.Dimensions, ","), strings.Split(request.Metrics, ",")...)}, nil
}

type mapStore struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string][]time.Duration
	err    error
}

func newMapStore() *mapStore {
	return &mapStore{values: map[string][]byte{}, ttls: map[string][]time.Duration{}}
}

func (s *mapStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, false, s.err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	s.ttls[key] = append(s.ttls[key], ttl)
	return nil
}

func (s *mapStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *mapStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string][]byte{}
	return nil
}

func dateSource(client ReportClient) *TableDataSource {
	source, err := NewTableDataSource(client, "123456", 365,
		[]table.Column{table.ColumnFromField(table.DateField("date", "Date"))},
		[]FieldMapping{{External: DimensionDate, Internal: "date"}},
	)
	if err != nil {
		panic(err)
	}
	return source
}

package source

import (
	"context"
	"errors"
	"time"

	"github.com/evyataryagoni/countrydir/internal/metrics"
	"github.com/evyataryagoni/countrydir/internal/models"
)

// InstrumentedSource records query counts and latency for another Source
type InstrumentedSource struct {
	next    Source
	name    string
	metrics *metrics.Metrics
}

// Instrument wraps next so every query is measured under the given source name.
// With nil metrics it returns next unchanged.
func Instrument(next Source, name string, m *metrics.Metrics) Source {
	if m == nil {
		return next
	}
	return &InstrumentedSource{next: next, name: name, metrics: m}
}

func (s *InstrumentedSource) observe(operation string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	s.metrics.SourceQueriesTotal.WithLabelValues(s.name, operation, status).Inc()
	s.metrics.SourceQueryDuration.WithLabelValues(s.name, operation).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedSource) ListAll(ctx context.Context) ([]models.Country, error) {
	start := time.Now()
	countries, err := s.next.ListAll(ctx)
	s.observe("list_all", start, err)
	return countries, err
}

func (s *InstrumentedSource) FindByName(ctx context.Context, query string) ([]models.Country, error) {
	start := time.Now()
	countries, err := s.next.FindByName(ctx, query)
	s.observe("find_by_name", start, err)
	return countries, err
}

func (s *InstrumentedSource) FindByFullName(ctx context.Context, name string) ([]models.Country, error) {
	start := time.Now()
	countries, err := s.next.FindByFullName(ctx, name)
	s.observe("find_by_full_name", start, err)
	return countries, err
}

func (s *InstrumentedSource) ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error) {
	start := time.Now()
	countries, err := s.next.ListByRegion(ctx, region)
	s.observe("list_by_region", start, err)
	return countries, err
}

func (s *InstrumentedSource) Close() error {
	return s.next.Close()
}

package source

import (
	"context"
	"errors"
	"testing"

	"github.com/evyataryagoni/countrydir/internal/metrics"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestInstrument_NilMetrics tests that nothing is wrapped without metrics
func TestInstrument_NilMetrics(t *testing.T) {
	mock := NewMockSource()

	if got := Instrument(mock, "mock", nil); got != Source(mock) {
		t.Error("expected the source to be returned unchanged")
	}
}

// TestInstrumentedSource_CountsOutcomes tests the status label of each query
func TestInstrumentedSource_CountsOutcomes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mock := NewMockSource()
	src := Instrument(mock, "mock", m)
	ctx := context.Background()

	if _, err := src.ListAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.FindByName(ctx, "fra")
	src.FindByFullName(ctx, "France")
	src.ListByRegion(ctx, models.RegionEurope)

	mock.Err = ErrNotFound
	src.FindByName(ctx, "xyz")

	mock.Err = errors.New("boom")
	src.ListAll(ctx)

	tests := []struct {
		operation string
		status    string
		expected  float64
	}{
		{"list_all", "success", 1},
		{"list_all", "error", 1},
		{"find_by_name", "success", 1},
		{"find_by_name", "not_found", 1},
		{"find_by_full_name", "success", 1},
		{"list_by_region", "success", 1},
	}

	for _, tt := range tests {
		t.Run(tt.operation+"/"+tt.status, func(t *testing.T) {
			got := testutil.ToFloat64(m.SourceQueriesTotal.WithLabelValues("mock", tt.operation, tt.status))
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	if n := testutil.CollectAndCount(m.SourceQueryDuration); n != 4 {
		t.Errorf("expected 4 duration series, got %d", n)
	}
}

// TestInstrumentedSource_PassesThrough tests results, errors and Close
func TestInstrumentedSource_PassesThrough(t *testing.T) {
	mock := NewMockSource()
	mock.CloseError = errors.New("close failed")
	src := Instrument(mock, "mock", metrics.New(prometheus.NewRegistry()))

	countries, err := src.FindByFullName(context.Background(), "Germany")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(countries) != 1 || countries[0].Name != "Germany" {
		t.Errorf("expected Germany, got %v", countries)
	}

	if err := src.Close(); err == nil || err.Error() != "close failed" {
		t.Errorf("expected close error, got %v", err)
	}
	if !mock.CloseCalled {
		t.Error("expected Close to reach the wrapped source")
	}
}

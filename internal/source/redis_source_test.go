package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/evyataryagoni/countrydir/internal/models"
)

// newTestRedisSource starts miniredis and connects a source to it
func newTestRedisSource(t *testing.T) (*RedisSource, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	src, err := NewRedisSource(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src, mr
}

// seed stores the sample countries
func seed(t *testing.T, src *RedisSource) {
	t.Helper()
	for _, c := range SampleCountries() {
		if err := src.Set(context.Background(), c); err != nil {
			t.Fatalf("failed to set data: %v", err)
		}
	}
}

// TestRedisSource_Connection tests Redis connection
func TestRedisSource_Connection(t *testing.T) {
	src, _ := newTestRedisSource(t)

	if src.client == nil {
		t.Error("expected client to be initialized")
	}
}

// TestRedisSource_ConnectionFailure tests connection errors
func TestRedisSource_ConnectionFailure(t *testing.T) {
	_, err := NewRedisSource("invalid:9999", "", 0)

	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

// TestRedisSource_Set tests the key layout
func TestRedisSource_Set(t *testing.T) {
	src, mr := newTestRedisSource(t)

	if err := src.Set(context.Background(), SampleCountries()[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := mr.Get("country:France")
	if err != nil {
		t.Fatalf("expected country:France to exist: %v", err)
	}
	if !strings.Contains(raw, `"capital":"Paris"`) {
		t.Errorf("unexpected stored value %s", raw)
	}

	members, err := mr.ZMembers(indexKey)
	if err != nil {
		t.Fatalf("expected index to exist: %v", err)
	}
	if len(members) != 1 || members[0] != "France" {
		t.Errorf("expected index [France], got %v", members)
	}
}

// TestRedisSource_ListAll tests listing in name order
func TestRedisSource_ListAll(t *testing.T) {
	src, _ := newTestRedisSource(t)
	seed(t, src)

	countries, err := src.ListAll(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(names(countries), ","); got != "Antarctica,France,Germany" {
		t.Errorf("expected name order, got %s", got)
	}
	if countries[1].TopLevelDomains[0] != ".fr" {
		t.Errorf("expected tld '.fr', got %v", countries[1].TopLevelDomains)
	}
}

// TestRedisSource_ListAll_Empty tests an empty database
func TestRedisSource_ListAll_Empty(t *testing.T) {
	src, _ := newTestRedisSource(t)

	countries, err := src.ListAll(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if countries == nil || len(countries) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", countries)
	}
}

// TestRedisSource_ListAll_SkipsDeletedKeys tests index entries whose value is gone
func TestRedisSource_ListAll_SkipsDeletedKeys(t *testing.T) {
	src, mr := newTestRedisSource(t)
	seed(t, src)
	mr.Del("country:Germany")

	countries, err := src.ListAll(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(names(countries), ","); got != "Antarctica,France" {
		t.Errorf("expected Germany to be skipped, got %s", got)
	}
}

// TestRedisSource_ListAll_CorruptValue tests undecodable values
func TestRedisSource_ListAll_CorruptValue(t *testing.T) {
	src, mr := newTestRedisSource(t)
	seed(t, src)
	mr.Set("country:France", "not json")

	_, err := src.ListAll(context.Background())

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// TestRedisSource_Queries tests filtering on top of the stored set
func TestRedisSource_Queries(t *testing.T) {
	src, _ := newTestRedisSource(t)
	seed(t, src)
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() ([]models.Country, error)
		expected string
	}{
		{"name substring", func() ([]models.Country, error) { return src.FindByName(ctx, "an") }, "Antarctica,France,Germany"},
		{"name ignores case", func() ([]models.Country, error) { return src.FindByName(ctx, "GER") }, "Germany"},
		{"no name match", func() ([]models.Country, error) { return src.FindByName(ctx, "xyz") }, ""},
		{"full name", func() ([]models.Country, error) { return src.FindByFullName(ctx, "Germany") }, "Germany"},
		{"full name missing", func() ([]models.Country, error) { return src.FindByFullName(ctx, "Atlantis") }, ""},
		{"region", func() ([]models.Country, error) { return src.ListByRegion(ctx, models.RegionEurope) }, "France,Germany"},
		{"empty region", func() ([]models.Country, error) { return src.ListByRegion(ctx, models.RegionAsia) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countries, err := tt.call()

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.Join(names(countries), ","); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestRedisSource_FindByFullName_CorruptValue tests undecodable values
func TestRedisSource_FindByFullName_CorruptValue(t *testing.T) {
	src, mr := newTestRedisSource(t)
	mr.Set("country:France", "{")

	_, err := src.FindByFullName(context.Background(), "France")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// TestRedisSource_ServerDown tests query errors after the server stops
func TestRedisSource_ServerDown(t *testing.T) {
	src, mr := newTestRedisSource(t)
	mr.Close()

	_, err := src.ListAll(context.Background())

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

// TestRedisSource_LoadFromCSV tests bulk loading a fixture
func TestRedisSource_LoadFromCSV(t *testing.T) {
	src, _ := newTestRedisSource(t)
	ctx := context.Background()

	empty, err := src.IsEmpty(ctx)
	if err != nil || !empty {
		t.Fatalf("expected empty database, got empty=%v err=%v", empty, err)
	}

	count, err := src.LoadFromCSV(ctx, writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 countries loaded, got %d", count)
	}

	empty, _ = src.IsEmpty(ctx)
	if empty {
		t.Error("expected database to be populated")
	}

	countries, _ := src.ListByRegion(ctx, models.RegionAmerica)
	if len(countries) != 1 || countries[0].Name != "Peru" {
		t.Errorf("expected Peru, got %v", names(countries))
	}
}

// TestRedisSource_LoadFromCSV_MissingFile tests loading a nonexistent fixture
func TestRedisSource_LoadFromCSV_MissingFile(t *testing.T) {
	src, _ := newTestRedisSource(t)

	count, err := src.LoadFromCSV(context.Background(), "/nonexistent/countries.csv")

	if err == nil {
		t.Error("expected error, got nil")
	}
	if count != 0 {
		t.Errorf("expected 0 countries loaded, got %d", count)
	}
}

package source

import (
	"context"
	"errors"
	"strings"

	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a name query matches nothing.
	ErrNotFound = errors.New("country not found")

	// ErrUnavailable wraps transport failures and non-success responses.
	ErrUnavailable = errors.New("country source unavailable")
)

// Source defines the queries the country store can issue.
// Implementations: HTTP (restcountries), CSV, MySQL, Redis, and a mock for tests.
type Source interface {
	// ListAll returns every known country.
	ListAll(ctx context.Context) ([]models.Country, error)

	// FindByName returns countries whose name contains query, case-insensitively.
	// An empty query matches everything.
	FindByName(ctx context.Context, query string) ([]models.Country, error)

	// FindByFullName returns the zero or one country whose name equals name exactly.
	FindByFullName(ctx context.Context, name string) ([]models.Country, error)

	// ListByRegion returns the countries of a region.
	ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error)

	// Close releases connections and file handles.
	Close() error
}

// matchesName reports whether the country name contains query, ignoring case.
func matchesName(c models.Country, query string) bool {
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(query))
}

// matchesRegion follows the API: "America" selects the "Americas" region.
func matchesRegion(c models.Country, region models.Region) bool {
	return strings.HasPrefix(strings.ToLower(c.Region), strings.ToLower(string(region)))
}

// filter keeps the countries accepted by keep, preserving order.
func filter(countries []models.Country, keep func(models.Country) bool) []models.Country {
	out := make([]models.Country, 0, len(countries))
	for _, c := range countries {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// validCountries drops records missing required fields and reports how many were dropped.
func validCountries(v *validator.Validate, countries []models.Country) ([]models.Country, int) {
	out := make([]models.Country, 0, len(countries))
	skipped := 0
	for _, c := range countries {
		if err := v.Struct(c); err != nil {
			skipped++
			continue
		}
		out = append(out, c)
	}
	return out, skipped
}

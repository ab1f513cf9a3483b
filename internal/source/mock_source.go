package source

import (
	"context"
	"sync"

	"github.com/evyataryagoni/countrydir/internal/models"
)

// MockCall records one query made against a MockSource
type MockCall struct {
	Method string // "ListAll", "FindByName", "FindByFullName" or "ListByRegion"
	Arg    string // query, name or region; empty for ListAll
}

// MockSource is a test double for the Source interface
// It serves a fixed data set, records calls, and can inject errors.
// A Gate lets tests hold a response until they release it, to
// reproduce overlapping requests.
type MockSource struct {
	mu sync.Mutex

	// Data is the country set every query filters
	Data []models.Country

	// Track method calls for verification in tests
	Calls       []MockCall
	CloseCalled bool

	// Control behavior for error scenarios
	Err        error // returned by every query when set
	CloseError error

	// Gate, when set, is consulted before answering a call.
	// The returned channel blocks the call until it is closed.
	Gate func(call MockCall) <-chan struct{}
}

// NewMockSource creates a mock source with three sample countries
func NewMockSource() *MockSource {
	return &MockSource{Data: SampleCountries()}
}

// NewEmptyMockSource creates a mock source with no data
// Useful for testing "not found" scenarios
func NewEmptyMockSource() *MockSource {
	return &MockSource{Data: []models.Country{}}
}

// SampleCountries returns a small fixed data set shared by tests.
// Antarctica has neither capital nor subregion.
func SampleCountries() []models.Country {
	return []models.Country{
		{
			Name:            "France",
			FlagImageURL:    "https://flagcdn.com/w320/fr.png",
			Region:          "Europe",
			Subregion:       "Western Europe",
			Capital:         "Paris",
			Population:      67391582,
			TopLevelDomains: []string{".fr"},
			CurrencyCodes:   []string{"EUR"},
			LanguageNames:   []string{"French"},
		},
		{
			Name:            "Germany",
			FlagImageURL:    "https://flagcdn.com/w320/de.png",
			Region:          "Europe",
			Subregion:       "Western Europe",
			Capital:         "Berlin",
			Population:      83240525,
			TopLevelDomains: []string{".de"},
			CurrencyCodes:   []string{"EUR"},
			LanguageNames:   []string{"German"},
		},
		{
			Name:            "Antarctica",
			FlagImageURL:    "https://flagcdn.com/w320/aq.png",
			Region:          "Antarctic",
			Population:      1000,
			TopLevelDomains: []string{".aq"},
		},
	}
}

// CallCount returns how many queries were made
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockSource) answer(ctx context.Context, call MockCall, keep func(models.Country) bool) ([]models.Country, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		if ch := gate(call); ch != nil {
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return filter(m.Data, keep), nil
}

// ListAll implements the Source interface
func (m *MockSource) ListAll(ctx context.Context) ([]models.Country, error) {
	return m.answer(ctx, MockCall{Method: "ListAll"}, func(models.Country) bool { return true })
}

// FindByName implements the Source interface
func (m *MockSource) FindByName(ctx context.Context, query string) ([]models.Country, error) {
	return m.answer(ctx, MockCall{Method: "FindByName", Arg: query}, func(c models.Country) bool {
		return matchesName(c, query)
	})
}

// FindByFullName implements the Source interface
func (m *MockSource) FindByFullName(ctx context.Context, name string) ([]models.Country, error) {
	return m.answer(ctx, MockCall{Method: "FindByFullName", Arg: name}, func(c models.Country) bool {
		return c.Name == name
	})
}

// ListByRegion implements the Source interface
func (m *MockSource) ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error) {
	return m.answer(ctx, MockCall{Method: "ListByRegion", Arg: string(region)}, func(c models.Country) bool {
		return matchesRegion(c, region)
	})
}

// Close implements the Source interface
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}

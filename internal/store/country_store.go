package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/metrics"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/evyataryagoni/countrydir/internal/source"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Messages shown to the user when an operation fails.
const (
	MessageGeneric  = "Something went wrong"
	MessageNotFound = "Country not found"
)

var (
	// ErrNotFound means a search or lookup matched no country.
	ErrNotFound = errors.New("country not found")

	// ErrFetchFailed covers transport failures and non-success responses.
	ErrFetchFailed = errors.New("country fetch failed")

	// ErrInvalidInput is returned before any state change when an argument is rejected.
	ErrInvalidInput = errors.New("invalid input")
)

// Snapshot is a copy of the store state handed to readers.
type Snapshot struct {
	SessionID         string           `json:"sessionId"`
	Results           []models.Country `json:"results"`
	Status            models.Status    `json:"status"`
	ErrorMessage      string           `json:"errorMessage,omitempty"`
	SearchQuery       string           `json:"searchQuery"`
	SelectedRegion    models.Region    `json:"selectedRegion"`
	RequestGeneration uint64           `json:"requestGeneration"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Results = make([]models.Country, len(s.Results))
	for i, c := range s.Results {
		out.Results[i] = c.Clone()
	}
	return out
}

// CountryStore owns the current result set and request status.
// It is the only writer of results. Every fetch is tagged with a generation
// and only the most recently issued one may change visible state; results of
// older fetches are dropped when they arrive.
//
// Stale results stay visible while loading. A failed fetch clears them.
type CountryStore struct {
	mu    sync.Mutex
	state Snapshot

	source    source.Source
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time

	// pending is set while the fetch of the current generation is outstanding
	pending bool

	subscribers map[int]chan Snapshot
	nextSubID   int
}

// NewCountryStore creates a store in the loading state with no results.
// Metrics and logger are optional.
func NewCountryStore(src source.Source, m *metrics.Metrics, log *logger.Logger) *CountryStore {
	if log == nil {
		log = logger.NewDefault()
	}
	sessionID := uuid.NewString()

	s := &CountryStore{
		source:      src,
		validator:   validator.New(),
		metrics:     m,
		logger:      log.WithComponent("CountryStore").WithSession(sessionID),
		now:         time.Now,
		subscribers: make(map[int]chan Snapshot),
	}
	s.state = Snapshot{
		SessionID:      sessionID,
		Results:        []models.Country{},
		Status:         models.StatusLoading,
		SelectedRegion: models.RegionNone,
		UpdatedAt:      s.now(),
	}
	return s
}

// LoadAll replaces the results with every country.
// Used on start-up and when the user returns home.
func (s *CountryStore) LoadAll(ctx context.Context) error {
	gen := s.begin("load_all", nil)
	countries, err := s.source.ListAll(ctx)
	return s.complete("load_all", gen, countries, err, false)
}

// Search replaces the results with countries whose name contains query.
// An empty query matches every country. No match is a failure.
func (s *CountryStore) Search(ctx context.Context, query string) error {
	gen := s.begin("search", func(st *Snapshot) {
		st.SearchQuery = query
	})
	countries, err := s.source.FindByName(ctx, query)
	return s.complete("search", gen, countries, err, true)
}

// FilterByRegion replaces the results with the countries of region.
// RegionNone issues no fetch and keeps the results, but still takes a new
// generation so an outstanding fetch can no longer land.
func (s *CountryStore) FilterByRegion(ctx context.Context, region models.Region) error {
	if err := s.validator.Var(string(region), "required,oneof=none Africa America Asia Europe Oceania"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidRegion)
	}

	if region == models.RegionNone {
		s.clearRegion()
		return nil
	}

	gen := s.begin("filter_by_region", func(st *Snapshot) {
		st.SelectedRegion = region
	})
	countries, err := s.source.ListByRegion(ctx, region)
	return s.complete("filter_by_region", gen, countries, err, false)
}

// LoadOne replaces the results with the single country named exactly name.
// If the source returns several matches only the first is kept.
func (s *CountryStore) LoadOne(ctx context.Context, name string) error {
	if err := s.validator.Var(name, "required"); err != nil {
		return fmt.Errorf("%w: country name is required", ErrInvalidInput)
	}

	gen := s.begin("load_one", nil)
	countries, err := s.source.FindByFullName(ctx, name)
	if len(countries) > 1 {
		countries = countries[:1]
	}
	return s.complete("load_one", gen, countries, err, true)
}

// ResetStatus shows the loading state again without touching results.
// It is used right before a forced refresh.
func (s *CountryStore) ResetStatus() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Status = models.StatusLoading
	s.state.ErrorMessage = ""
	s.publishLocked()
}

// Home resets the status and region filter, then reloads every country.
func (s *CountryStore) Home(ctx context.Context) error {
	s.ResetStatus()
	if err := s.FilterByRegion(ctx, models.RegionNone); err != nil {
		return err
	}
	return s.LoadAll(ctx)
}

// Snapshot returns a copy of the current state.
func (s *CountryStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe returns a channel that receives the state after every transition.
// Only the newest unread snapshot is kept. Call the returned func to stop.
func (s *CountryStore) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close closes subscriber channels and the underlying source.
func (s *CountryStore) Close() error {
	s.mu.Lock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	return s.source.Close()
}

// clearRegion drops the region filter and supersedes any outstanding fetch.
// A loading status owed to that fetch alone becomes ready.
func (s *CountryStore) clearRegion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.RequestGeneration++
	gen := s.state.RequestGeneration
	s.state.SelectedRegion = models.RegionNone
	if s.pending && s.state.Status == models.StatusLoading {
		s.state.Status = models.StatusReady
	}
	s.pending = false
	s.publishLocked()

	if s.metrics != nil {
		s.metrics.StoreGeneration.Set(float64(gen))
	}
	s.logger.Debug().Uint64("generation", gen).Msg("Region filter cleared")
}

// begin issues a new generation and moves to loading.
func (s *CountryStore) begin(op string, mutate func(*Snapshot)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.RequestGeneration++
	gen := s.state.RequestGeneration
	s.state.Status = models.StatusLoading
	s.state.ErrorMessage = ""
	s.pending = true
	if mutate != nil {
		mutate(&s.state)
	}
	s.publishLocked()

	if s.metrics != nil {
		s.metrics.StoreGeneration.Set(float64(gen))
	}
	s.logger.Debug().Str("operation", op).Uint64("generation", gen).Msg("Fetch started")
	return gen
}

// complete applies a fetch result if gen is still the latest generation.
// When notFoundOnEmpty is set an empty result counts as "not found".
func (s *CountryStore) complete(op string, gen uint64, countries []models.Country, fetchErr error, notFoundOnEmpty bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.state.RequestGeneration {
		s.logger.Debug().
			Str("operation", op).
			Uint64("generation", gen).
			Uint64("current_generation", s.state.RequestGeneration).
			Msg("Discarding superseded result")
		s.countOutcome(op, "superseded")
		return nil
	}
	s.pending = false

	var opErr error
	switch {
	case fetchErr != nil && notFoundOnEmpty && errors.Is(fetchErr, source.ErrNotFound):
		opErr = fmt.Errorf("%s: %w", op, ErrNotFound)
	case fetchErr != nil:
		opErr = fmt.Errorf("%s: %w: %w", op, ErrFetchFailed, fetchErr)
	case notFoundOnEmpty && len(countries) == 0:
		opErr = fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if opErr != nil {
		message := MessageGeneric
		if errors.Is(opErr, ErrNotFound) {
			message = MessageNotFound
		}
		s.state.Status = models.StatusFailed
		s.state.ErrorMessage = message
		s.state.Results = []models.Country{}
		s.publishLocked()

		s.logger.Warn().Err(opErr).Str("operation", op).Uint64("generation", gen).Msg("Fetch failed")
		s.countOutcome(op, "failed")
		return opErr
	}

	if countries == nil {
		countries = []models.Country{}
	}
	s.state.Results = countries
	s.state.Status = models.StatusReady
	s.publishLocked()

	s.logger.Info().
		Str("operation", op).
		Uint64("generation", gen).
		Int("results", len(countries)).
		Msg("Fetch completed")
	s.countOutcome(op, "ready")
	return nil
}

// publishLocked stamps the transition and notifies subscribers.
// Must be called with mu held.
func (s *CountryStore) publishLocked() {
	s.state.UpdatedAt = s.now()
	if len(s.subscribers) == 0 {
		return
	}

	snap := s.state.clone()
	for _, ch := range s.subscribers {
		// Drop the unread snapshot so the newest one wins
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *CountryStore) countOutcome(op, outcome string) {
	if s.metrics != nil {
		s.metrics.StoreOperationsTotal.WithLabelValues(op, outcome).Inc()
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/evyataryagoni/countrydir/internal/store"
)

// CountryHandler exposes the country store to the browser view.
//
// Every action responds with the resulting snapshot. A failed fetch is not an
// HTTP error: the view renders the snapshot's errorMessage. Only rejected
// input gets a 4xx.
type CountryHandler struct {
	store  *store.CountryStore
	logger *logger.Logger
}

// NewCountryHandler creates a handler backed by the given store
func NewCountryHandler(s *store.CountryStore, log *logger.Logger) *CountryHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &CountryHandler{
		store:  s,
		logger: log.WithComponent("CountryHandler"),
	}
}

// State handles GET /v1/state
func (h *CountryHandler) State(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// Regions handles GET /v1/regions
func (h *CountryHandler) Regions(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.Regions())
}

// LoadAll handles POST /v1/countries/all
func (h *CountryHandler) LoadAll(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "load_all", h.store.LoadAll)
}

// Search handles POST /v1/countries/search?q=<query>
// The query is passed on as submitted. A missing or empty query lists every country.
func (h *CountryHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	h.run(w, r, "search", func(ctx context.Context) error {
		return h.store.Search(ctx, query)
	})
}

// FilterByRegion handles POST /v1/countries/filter?region=<region>
func (h *CountryHandler) FilterByRegion(w http.ResponseWriter, r *http.Request) {
	region, err := models.ParseRegion(r.URL.Query().Get("region"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.run(w, r, "filter_by_region", func(ctx context.Context) error {
		return h.store.FilterByRegion(ctx, region)
	})
}

// LoadOne handles POST /v1/countries/one?name=<exact name>
func (h *CountryHandler) LoadOne(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		h.respondError(w, http.StatusBadRequest, "Missing 'name' query parameter")
		return
	}

	h.run(w, r, "load_one", func(ctx context.Context) error {
		return h.store.LoadOne(ctx, name)
	})
}

// Home handles POST /v1/countries/home
func (h *CountryHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "home", h.store.Home)
}

// ResetStatus handles POST /v1/state/reset
func (h *CountryHandler) ResetStatus(w http.ResponseWriter, r *http.Request) {
	h.store.ResetStatus()
	h.respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// run executes one store action and writes the resulting snapshot.
// The fetch outlives a client disconnect: a superseded or abandoned request
// still has to complete so the generation check can drop it.
func (h *CountryHandler) run(w http.ResponseWriter, r *http.Request, action string, op func(context.Context) error) {
	ctx := context.WithoutCancel(r.Context())

	if err := op(ctx); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Debug().Err(err).Str("action", action).Msg("Action ended in failed state")
	}

	h.respondJSON(w, http.StatusOK, h.store.Snapshot())
}

// respondJSON writes a JSON response with the given status code
func (h *CountryHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, only the log can record this
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error response with consistent formatting
func (h *CountryHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}

package v1

import (
	"net/http"

	"github.com/evyataryagoni/countrydir/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /v1 view adapter.
// Reads are free; every action that can reach the country source goes through throttle.
func SetupRoutes(countryHandler *handler.CountryHandler, throttle func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/state", countryHandler.State)
	r.Get("/regions", countryHandler.Regions)
	r.Post("/state/reset", countryHandler.ResetStatus)

	r.Route("/countries", func(r chi.Router) {
		r.Use(throttle)

		r.Post("/all", countryHandler.LoadAll)
		r.Post("/search", countryHandler.Search)
		r.Post("/filter", countryHandler.FilterByRegion)
		r.Post("/one", countryHandler.LoadOne)
		r.Post("/home", countryHandler.Home)
	})

	return r
}

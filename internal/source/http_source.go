package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/go-playground/validator/v10"
)

// DefaultAPIURL is the public restcountries service.
const DefaultAPIURL = "https://restcountries.com"

// apiFields limits responses to what models.Country needs.
// The /all endpoint rejects requests without a field list.
const apiFields = "name,flags,region,subregion,capital,population,tld,currencies,languages"

// HTTPConfig holds settings for the restcountries client
type HTTPConfig struct {
	BaseURL string        // defaults to DefaultAPIURL
	Timeout time.Duration // zero means no client timeout
	Client  *http.Client  // optional, overrides Timeout
	Logger  *logger.Logger
}

// HTTPSource implements Source against the restcountries v3.1 API
type HTTPSource struct {
	baseURL   string
	client    *http.Client
	validator *validator.Validate
	logger    *logger.Logger
}

// NewHTTPSource creates a client for the country API
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault()
	}

	return &HTTPSource{
		baseURL:   baseURL,
		client:    client,
		validator: validator.New(),
		logger:    log.WithComponent("HTTPSource"),
	}
}

// apiCountry mirrors the subset of the v3.1 response we read
type apiCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Flags struct {
		PNG string `json:"png"`
	} `json:"flags"`
	Region     string                     `json:"region"`
	Subregion  string                     `json:"subregion"`
	Capital    capitalField               `json:"capital"`
	Population int64                      `json:"population"`
	TLD        []string                   `json:"tld"`
	Currencies map[string]json.RawMessage `json:"currencies"`
	Languages  map[string]string          `json:"languages"`
}

// capitalField accepts both the v3.1 array form and a plain string.
type capitalField string

func (c *capitalField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 {
			*c = capitalField(list[0])
		}
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("capital: %w", err)
	}
	*c = capitalField(single)
	return nil
}

func (a apiCountry) toModel() models.Country {
	country := models.Country{
		Name:            strings.TrimSpace(a.Name.Common),
		FlagImageURL:    a.Flags.PNG,
		Region:          a.Region,
		Subregion:       a.Subregion,
		Capital:         string(a.Capital),
		Population:      a.Population,
		TopLevelDomains: a.TLD,
	}

	if len(a.Currencies) > 0 {
		codes := make([]string, 0, len(a.Currencies))
		for code := range a.Currencies {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		country.CurrencyCodes = codes
	}

	if len(a.Languages) > 0 {
		names := make([]string, 0, len(a.Languages))
		for _, name := range a.Languages {
			names = append(names, name)
		}
		sort.Strings(names)
		country.LanguageNames = names
	}

	return country
}

// ListAll handles GET /v3.1/all
func (s *HTTPSource) ListAll(ctx context.Context) ([]models.Country, error) {
	return s.get(ctx, "/v3.1/all", nil, false)
}

// FindByName handles GET /v3.1/name/{query}
func (s *HTTPSource) FindByName(ctx context.Context, query string) ([]models.Country, error) {
	if query == "" {
		return s.ListAll(ctx)
	}
	return s.get(ctx, "/v3.1/name/"+url.PathEscape(query), nil, true)
}

// FindByFullName handles GET /v3.1/name/{name}?fullText=true
func (s *HTTPSource) FindByFullName(ctx context.Context, name string) ([]models.Country, error) {
	if name == "" {
		return nil, ErrNotFound
	}
	params := url.Values{"fullText": []string{"true"}}
	return s.get(ctx, "/v3.1/name/"+url.PathEscape(name), params, true)
}

// ListByRegion handles GET /v3.1/region/{region}
func (s *HTTPSource) ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error) {
	return s.get(ctx, "/v3.1/region/"+url.PathEscape(string(region)), nil, false)
}

// get performs one request and decodes the country array.
// For name queries a 404 means no match rather than an outage.
func (s *HTTPSource) get(ctx context.Context, path string, params url.Values, nameQuery bool) ([]models.Country, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("fields", apiFields)
	endpoint := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && nameQuery {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload []apiCountry
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrUnavailable, err)
	}

	countries := make([]models.Country, len(payload))
	for i, c := range payload {
		countries[i] = c.toModel()
	}

	valid, skipped := validCountries(s.validator, countries)
	if skipped > 0 {
		s.logger.Warn().
			Str("path", path).
			Int("skipped", skipped).
			Msg("Dropped country records missing required fields")
	}
	return valid, nil
}

// Close releases idle connections
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

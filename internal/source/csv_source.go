package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/evyataryagoni/countrydir/internal/logger"
	"github.com/evyataryagoni/countrydir/internal/models"
	"github.com/go-playground/validator/v10"
)

// csvColumns is the expected header of a country fixture file.
var csvColumns = []string{"name", "flag", "region", "subregion", "capital", "population", "tld", "currencies", "languages"}

// CSVSource implements Source over a CSV fixture loaded into memory.
// Useful for local development and demos without network access.
type CSVSource struct {
	// data keeps the file order, which is the order every query returns
	data []models.Country
}

// NewCSVSource creates a new CSV source by reading a fixture file.
// Rows that are malformed or fail validation are skipped with a warning.
//
// CSV Format: name,flag,region,subregion,capital,population,tld,currencies,languages
// List columns (tld, currencies, languages) are separated by ';'.
// Example: France,https://flagcdn.com/w320/fr.png,Europe,Western Europe,Paris,67391582,.fr,EUR,French
func NewCSVSource(filePath string, log *logger.Logger) (*CSVSource, error) {
	if log == nil {
		log = logger.NewDefault()
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	v := validator.New()
	source := &CSVSource{data: make([]models.Country, 0, len(records)-1)}
	skipped := 0

	for i, record := range records {
		// Skip header row
		if i == 0 {
			continue
		}

		// Skip malformed rows instead of failing the whole file
		if len(record) != len(csvColumns) {
			skipped++
			continue
		}

		country, err := parseCSVRecord(record)
		if err != nil {
			skipped++
			continue
		}
		if err := v.Struct(country); err != nil {
			skipped++
			continue
		}

		source.data = append(source.data, country)
	}

	if skipped > 0 {
		log.WithComponent("CSVSource").Warn().
			Str("path", filePath).
			Int("skipped", skipped).
			Msg("Dropped malformed country rows")
	}

	return source, nil
}

func parseCSVRecord(record []string) (models.Country, error) {
	population, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
	if err != nil {
		return models.Country{}, fmt.Errorf("invalid population %q: %w", record[5], err)
	}

	return models.Country{
		Name:            strings.TrimSpace(record[0]),
		FlagImageURL:    strings.TrimSpace(record[1]),
		Region:          strings.TrimSpace(record[2]),
		Subregion:       strings.TrimSpace(record[3]),
		Capital:         strings.TrimSpace(record[4]),
		Population:      population,
		TopLevelDomains: splitList(record[6]),
		CurrencyCodes:   splitList(record[7]),
		LanguageNames:   splitList(record[8]),
	}, nil
}

// splitList parses a ';'-separated column; an empty column means absent.
func splitList(column string) []string {
	column = strings.TrimSpace(column)
	if column == "" {
		return nil
	}
	parts := strings.Split(column, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListAll returns every country in file order
func (s *CSVSource) ListAll(_ context.Context) ([]models.Country, error) {
	return filter(s.data, func(models.Country) bool { return true }), nil
}

// FindByName returns countries whose name contains query
func (s *CSVSource) FindByName(_ context.Context, query string) ([]models.Country, error) {
	return filter(s.data, func(c models.Country) bool { return matchesName(c, query) }), nil
}

// FindByFullName returns the country named exactly name
func (s *CSVSource) FindByFullName(_ context.Context, name string) ([]models.Country, error) {
	return filter(s.data, func(c models.Country) bool { return c.Name == name }), nil
}

// ListByRegion returns the countries of region
func (s *CSVSource) ListByRegion(_ context.Context, region models.Region) ([]models.Country, error) {
	return filter(s.data, func(c models.Country) bool { return matchesRegion(c, region) }), nil
}

// Close cleans up resources
// For CSV source, all data is in memory, so there is nothing to release
func (s *CSVSource) Close() error {
	return nil
}

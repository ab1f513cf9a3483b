package models

import (
	"errors"
	"fmt"
	"strings"
)

// Country is a read-only projection of one record from the country API.
// Optional fields are left empty (or nil) when the API omits them.
type Country struct {
	Name            string   `json:"name" validate:"required"`
	FlagImageURL    string   `json:"flagImageUrl" validate:"required"`
	Region          string   `json:"region" validate:"required"`
	Subregion       string   `json:"subregion,omitempty"`
	Capital         string   `json:"capital,omitempty"`
	Population      int64    `json:"population" validate:"gte=0"`
	TopLevelDomains []string `json:"topLevelDomains"`
	CurrencyCodes   []string `json:"currencyCodes,omitempty"`
	LanguageNames   []string `json:"languageNames,omitempty"`
}

// Clone returns a copy that shares no slices with c.
func (c Country) Clone() Country {
	out := c
	out.TopLevelDomains = cloneStrings(c.TopLevelDomains)
	out.CurrencyCodes = cloneStrings(c.CurrencyCodes)
	out.LanguageNames = cloneStrings(c.LanguageNames)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Region is the geographic filter offered to the user.
// RegionNone means no filter is applied and is never sent to a source.
type Region string

const (
	RegionNone    Region = "none"
	RegionAfrica  Region = "Africa"
	RegionAmerica Region = "America"
	RegionAsia    Region = "Asia"
	RegionEurope  Region = "Europe"
	RegionOceania Region = "Oceania"
)

// ErrInvalidRegion is returned by ParseRegion for values outside the enumeration.
var ErrInvalidRegion = errors.New("invalid region")

// Regions lists every selectable region, RegionNone first.
func Regions() []Region {
	return []Region{RegionNone, RegionAfrica, RegionAmerica, RegionAsia, RegionEurope, RegionOceania}
}

// ParseRegion accepts a region name case-insensitively.
// An empty string maps to RegionNone.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RegionNone, nil
	}
	for _, r := range Regions() {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRegion, s)
}

// Status is the store's request state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

package models

import (
	"errors"
	"testing"
)

// TestParseRegion tests accepted and rejected region values
func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{"", RegionNone, false},
		{"none", RegionNone, false},
		{"Africa", RegionAfrica, false},
		{"america", RegionAmerica, false},
		{" ASIA ", RegionAsia, false},
		{"Europe", RegionEurope, false},
		{"oceania", RegionOceania, false},
		{"Antarctica", "", true},
		{"Americas", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRegion) {
					t.Fatalf("expected ErrInvalidRegion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestCountry_Clone tests that a clone does not share slices
func TestCountry_Clone(t *testing.T) {
	original := Country{
		Name:            "France",
		TopLevelDomains: []string{".fr"},
		CurrencyCodes:   []string{"EUR"},
		LanguageNames:   []string{"French"},
	}

	clone := original.Clone()
	clone.TopLevelDomains[0] = ".xx"
	clone.CurrencyCodes[0] = "XXX"
	clone.LanguageNames[0] = "Klingon"

	if original.TopLevelDomains[0] != ".fr" {
		t.Error("top level domains shared with clone")
	}
	if original.CurrencyCodes[0] != "EUR" {
		t.Error("currency codes shared with clone")
	}
	if original.LanguageNames[0] != "French" {
		t.Error("language names shared with clone")
	}
}

// TestCountry_CloneKeepsNil tests that absent optional sets stay absent
func TestCountry_CloneKeepsNil(t *testing.T) {
	clone := Country{Name: "Antarctica"}.Clone()

	if clone.CurrencyCodes != nil || clone.LanguageNames != nil || clone.TopLevelDomains != nil {
		t.Error("expected nil slices to stay nil")
	}
}

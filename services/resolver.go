package services

import (
	"context"
	"errors"
	"log"
	"strings"
)

// AirportLookup is the slice of AirportClient the resolver needs.
type AirportLookup interface {
	Search(ctx context.Context, keyword string, limit int) ([]AirportSuggestion, error)
}

type AirportCodeResolver struct {
	lookup AirportLookup
}

func NewAirportCodeResolver(lookup AirportLookup) *AirportCodeResolver {
	return &AirportCodeResolver{lookup: lookup}
}

// LooksLikeCode reports whether s is already a 3-letter IATA code once
// trimmed and upper-cased.
func LooksLikeCode(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Resolve maps free text to an IATA code. Text that already is a code is
// returned without a lookup; otherwise the top match wins. ErrUnresolved
// is returned when nothing usable comes back.
func (r *AirportCodeResolver) Resolve(ctx context.Context, input string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(input))
	if cleaned == "" {
		return "", ErrUnresolved
	}
	if LooksLikeCode(cleaned) {
		return cleaned, nil
	}

	airports, err := r.lookup.Search(ctx, strings.TrimSpace(input), 1)
	if err != nil {
		log.Printf("⚠️  airport resolve failed for %q: %v", input, err)
		return "", errors.Join(ErrUnresolved, err)
	}
	if len(airports) == 0 || airports[0].IATACode == "" {
		return "", ErrUnresolved
	}
	return strings.ToUpper(airports[0].IATACode), nil
}

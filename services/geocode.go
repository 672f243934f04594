package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"drift/cache"
	"drift/ratelimit"
)

const (
	GeocodeProvider = "geocode"
	geocodeLimit    = 7
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationKind string

const (
	KindCountry  LocationKind = "country"
	KindCity     LocationKind = "city"
	KindTown     LocationKind = "town"
	KindVillage  LocationKind = "village"
	KindPostcode LocationKind = "postcode"
	KindRoad     LocationKind = "road"
	KindBuilding LocationKind = "building"
	KindOther    LocationKind = "other"
)

type LocationSuggestion struct {
	ID                string            `json:"id"`
	DisplayText       string            `json:"display_text"`
	PrimaryName       string            `json:"primary_name"`
	Subtitle          string            `json:"subtitle"`
	Kind              LocationKind      `json:"kind"`
	Icon              string            `json:"icon"`
	AddressComponents map[string]string `json:"address_components,omitempty"`
	Coordinates       *Coordinates      `json:"coordinates,omitempty"`
}

func (s LocationSuggestion) Display() string {
	return s.DisplayText
}

// ─── Client ───────────────────────────────────────────────────────────────────

type GeocodeClient struct {
	api    *apiClient
	apiKey string
	cache  cache.Cache
}

func NewGeocodeClient(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.ProviderLimiter, c cache.Cache) *GeocodeClient {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if baseURL == "" {
		log.Println("⚠️  GEOCODE_URL not set — location autocomplete is disabled")
	}
	return &GeocodeClient{
		api:    newAPIClient(GeocodeProvider, baseURL, timeout, limiter),
		apiKey: apiKey,
		cache:  c,
	}
}

type geocodeResult struct {
	Formatted  string                     `json:"formatted"`
	Components map[string]json.RawMessage `json:"components"`
	Geometry   *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geometry"`
	Annotations struct {
		Geohash string `json:"geohash"`
	} `json:"annotations"`
}

// Search returns up to seven place suggestions for query, biased towards
// near when it is known.
func (c *GeocodeClient) Search(ctx context.Context, query string, near *Coordinates) ([]LocationSuggestion, error) {
	query = strings.TrimSpace(query)
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(geocodeLimit))
	if near != nil {
		params.Set("proximityLat", strconv.FormatFloat(near.Lat, 'f', -1, 64))
		params.Set("proximityLon", strconv.FormatFloat(near.Lon, 'f', -1, 64))
	}

	cacheKey := query
	if near != nil {
		cacheKey = fmt.Sprintf("%s|%.3f,%.3f", query, near.Lat, near.Lon)
	}
	if raw, ok := c.cache.Get(ctx, GeocodeProvider, cacheKey); ok {
		var cached []LocationSuggestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp struct {
		Results []geocodeResult `json:"results"`
	}
	if err := c.api.getJSON(ctx, "/geocode", params, &resp); err != nil {
		return nil, NewProviderError(GeocodeProvider, err)
	}

	suggestions := make([]LocationSuggestion, 0, len(resp.Results))
	for i, r := range resp.Results {
		suggestions = append(suggestions, toLocationSuggestion(r, i))
	}

	if raw, err := json.Marshal(suggestions); err == nil {
		if err := c.cache.Set(ctx, GeocodeProvider, cacheKey, raw); err != nil {
			log.Printf("⚠️  geocode cache write failed: %v", err)
		}
	}
	return suggestions, nil
}

// Reverse resolves coordinates to a "<locality>, <country>" suggestion.
func (c *GeocodeClient) Reverse(ctx context.Context, at Coordinates) (LocationSuggestion, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	params.Set("localityLanguage", "en")

	var resp struct {
		City        string `json:"city"`
		Locality    string `json:"locality"`
		CountryName string `json:"countryName"`
		CountryCode string `json:"countryCode"`
	}
	if err := c.api.getJSON(ctx, "/reverse-geocode", params, &resp); err != nil {
		return LocationSuggestion{}, NewProviderError(GeocodeProvider, err)
	}

	locality := resp.City
	if locality == "" {
		locality = resp.Locality
	}
	display := joinNonEmpty(", ", locality, resp.CountryName)
	if display == "" {
		return LocationSuggestion{}, NewProviderError(GeocodeProvider, fmt.Errorf("no place found at %.4f,%.4f", at.Lat, at.Lon))
	}

	kind := KindCity
	if locality == "" {
		kind = KindCountry
	}
	coords := at
	return LocationSuggestion{
		ID:          fmt.Sprintf("%.5f,%.5f", at.Lat, at.Lon),
		DisplayText: display,
		PrimaryName: firstNonEmpty(locality, resp.CountryName),
		Subtitle:    resp.CountryName,
		Kind:        kind,
		Icon:        iconFor(kind),
		AddressComponents: map[string]string{
			"city":         locality,
			"country":      resp.CountryName,
			"country_code": resp.CountryCode,
		},
		Coordinates: &coords,
	}, nil
}

// ─── Suggestion shaping ───────────────────────────────────────────────────────

func toLocationSuggestion(r geocodeResult, index int) LocationSuggestion {
	comp := make(map[string]string, len(r.Components))
	for k, v := range r.Components {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			comp[k] = s
		}
	}

	rawType := comp["_type"]
	kind := kindFor(rawType)

	var subtitle string
	switch {
	case kind == KindCity || kind == KindTown || kind == KindVillage:
		subtitle = joinNonEmpty(", ", comp["state"], comp["country"])
	case comp["road"] != "":
		subtitle = joinNonEmpty(", ", comp["city"], comp["state"], comp["country"])
	default:
		subtitle = joinNonEmpty(", ", comp["state"], comp["country"])
	}
	if subtitle == "" && r.Formatted != "" {
		if _, rest, ok := strings.Cut(r.Formatted, ","); ok {
			subtitle = strings.TrimSpace(rest)
		}
	}

	head, _, _ := strings.Cut(r.Formatted, ",")
	name := firstNonEmpty(comp[rawType], comp["city"], comp["town"], comp["village"],
		comp["county"], comp["state"], comp["country"], strings.TrimSpace(head))

	id := r.Annotations.Geohash
	if id == "" {
		id = fmt.Sprintf("%s-%d", r.Formatted, index)
	}

	s := LocationSuggestion{
		ID:                id,
		DisplayText:       r.Formatted,
		PrimaryName:       name,
		Subtitle:          subtitle,
		Kind:              kind,
		Icon:              iconFor(kind),
		AddressComponents: comp,
	}
	if r.Geometry != nil {
		s.Coordinates = &Coordinates{Lat: r.Geometry.Lat, Lon: r.Geometry.Lng}
	}
	return s
}

func kindFor(t string) LocationKind {
	switch t {
	case "country", "city", "town", "village", "postcode", "road", "building":
		return LocationKind(t)
	case "house_number":
		return KindBuilding
	default:
		return KindOther
	}
}

func iconFor(kind LocationKind) string {
	switch kind {
	case KindCountry:
		return "🌍"
	case KindCity, KindTown, KindVillage:
		return "🏙️"
	case KindPostcode:
		return "📮"
	case KindRoad:
		return "🛣️"
	case KindBuilding:
		return "🏠"
	default:
		return "📍"
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

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
	AirportProvider     = "airports"
	AirportSuggestLimit = 10
)

type AirportSuggestion struct {
	ID       string `json:"id"`
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// Display is the text written into the input on selection, e.g. "Paris (CDG)".
func (a AirportSuggestion) Display() string {
	label := a.City
	if label == "" {
		label = a.Name
	}
	return fmt.Sprintf("%s (%s)", label, a.IATACode)
}

type AirportClient struct {
	api   *apiClient
	cache cache.Cache
}

func NewAirportClient(baseURL string, timeout time.Duration, limiter *ratelimit.ProviderLimiter, c cache.Cache) *AirportClient {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &AirportClient{
		api:   newAPIClient(AirportProvider, baseURL, timeout, limiter),
		cache: c,
	}
}

type airportRecord struct {
	ID       string `json:"id"`
	IATACode string `json:"iataCode"`
	Name     string `json:"name"`
	CityName string `json:"cityName"`
	Country  string `json:"countryName"`
	Address  *struct {
		CityName    string `json:"cityName"`
		CountryName string `json:"countryName"`
	} `json:"address"`
}

// Search looks airports up by keyword and returns at most limit records.
// A limit of zero or less means no cap.
func (c *AirportClient) Search(ctx context.Context, keyword string, limit int) ([]AirportSuggestion, error) {
	keyword = strings.TrimSpace(keyword)
	cacheKey := keyword + "|" + strconv.Itoa(limit)

	if raw, ok := c.cache.Get(ctx, AirportProvider, cacheKey); ok {
		var cached []AirportSuggestion
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	params := url.Values{}
	params.Set("keyword", keyword)

	var resp struct {
		Airports []airportRecord `json:"airports"`
	}
	if err := c.api.getJSON(ctx, "/airports", params, &resp); err != nil {
		return nil, NewProviderError(AirportProvider, err)
	}

	records := resp.Airports
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	out := make([]AirportSuggestion, 0, len(records))
	for i, a := range records {
		code := strings.ToUpper(strings.TrimSpace(a.IATACode))
		s := AirportSuggestion{
			ID:       a.ID,
			IATACode: code,
			Name:     a.Name,
			City:     a.CityName,
			Country:  a.Country,
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("%s-%d", code, i)
		}
		if a.Address != nil {
			s.City = firstNonEmpty(a.Address.CityName, a.CityName)
			s.Country = firstNonEmpty(a.Address.CountryName, a.Country)
		}
		out = append(out, s)
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.cache.Set(ctx, AirportProvider, cacheKey, raw); err != nil {
			log.Printf("⚠️  airport cache write failed: %v", err)
		}
	}
	return out, nil
}

package planner

import (
	"context"
	"time"

	"drift/autocomplete"
	"drift/database"
	"drift/prefs"
	"drift/services"
)

type Places interface {
	Search(ctx context.Context, query string, near *services.Coordinates) ([]services.LocationSuggestion, error)
	Reverse(ctx context.Context, at services.Coordinates) (services.LocationSuggestion, error)
}

type Airports interface {
	Search(ctx context.Context, keyword string, limit int) ([]services.AirportSuggestion, error)
}

type Resolver interface {
	Resolve(ctx context.Context, input string) (string, error)
}

type Backend interface {
	SearchFlights(ctx context.Context, req services.FlightSearchRequest) (services.FlightSearchResponse, error)
	PlanTrip(ctx context.Context, req services.TripPlanRequest) (services.TripPlanResponse, error)
	PlanHereNow(ctx context.Context, req services.HereNowRequest) (services.HereNowResponse, error)
}

type WeatherSource interface {
	Current(ctx context.Context, at services.Coordinates) (services.Weather, error)
}

type History interface {
	AddToHistory(entry prefs.HistoryEntry) (prefs.HistoryEntry, error)
}

type SearchLog interface {
	SaveSearch(s *database.Search) error
}

// Deps are the collaborators shared by every flow. Weather, History and
// Searches are optional.
type Deps struct {
	Places   Places
	Airports Airports
	Resolver Resolver
	Backend  Backend
	Weather  WeatherSource
	History  History
	Searches SearchLog

	Clock           autocomplete.Clock
	Debounce        time.Duration
	MinQueryLength  int
	Locale          string
	BaseCurrency    string
	NotificationTTL time.Duration
}

func (d Deps) autocompleteOptions(name string) autocomplete.Options {
	return autocomplete.Options{
		Name:      name,
		MinLength: d.MinQueryLength,
		Debounce:  d.Debounce,
		Clock:     d.Clock,
	}
}

func (d Deps) baseCurrency() string {
	if d.BaseCurrency == "" {
		return "USD"
	}
	return d.BaseCurrency
}

type localeKey struct{}

// WithLocale attaches the caller's locale to ctx. It takes precedence over
// Deps.Locale when the search currency is chosen.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return context.WithValue(ctx, localeKey{}, locale)
}

func (d Deps) localeFor(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(string); ok && l != "" {
		return l
	}
	return d.Locale
}

package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"drift/autocomplete"
	"drift/prefs"
	"drift/services"
)

type fakePlaces struct {
	mu       sync.Mutex
	queries  []string
	near     []*services.Coordinates
	results  []services.LocationSuggestion
	reverse  services.LocationSuggestion
	revErr   error
	revCalls int
}

func (f *fakePlaces) Search(ctx context.Context, query string, near *services.Coordinates) ([]services.LocationSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.near = append(f.near, near)
	return f.results, nil
}

func (f *fakePlaces) Reverse(ctx context.Context, at services.Coordinates) (services.LocationSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revCalls++
	return f.reverse, f.revErr
}

func (f *fakePlaces) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fakeAirports struct {
	mu       sync.Mutex
	keywords []string
	results  map[string][]services.AirportSuggestion
}

func (f *fakeAirports) Search(ctx context.Context, keyword string, limit int) ([]services.AirportSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keywords = append(f.keywords, keyword)
	res := f.results[keyword]
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (f *fakeAirports) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keywords...)
}

type fakeBackend struct {
	mu        sync.Mutex
	gate      chan struct{}
	entered   chan struct{}
	hereNow   []services.HereNowRequest
	flights   []services.FlightSearchRequest
	trips     []services.TripPlanRequest
	flightRes services.FlightSearchResponse
	err       error
}

func (f *fakeBackend) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeBackend) SearchFlights(ctx context.Context, req services.FlightSearchRequest) (services.FlightSearchResponse, error) {
	f.mu.Lock()
	f.flights = append(f.flights, req)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return services.FlightSearchResponse{}, f.err
	}
	return f.flightRes, nil
}

func (f *fakeBackend) PlanTrip(ctx context.Context, req services.TripPlanRequest) (services.TripPlanResponse, error) {
	f.mu.Lock()
	f.trips = append(f.trips, req)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return services.TripPlanResponse{}, f.err
	}
	return services.TripPlanResponse{Success: true}, nil
}

func (f *fakeBackend) PlanHereNow(ctx context.Context, req services.HereNowRequest) (services.HereNowResponse, error) {
	f.mu.Lock()
	f.hereNow = append(f.hereNow, req)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return services.HereNowResponse{}, f.err
	}
	return services.HereNowResponse{
		Success: true,
		Itinerary: services.HereNowItinerary{
			Dining:      []byte(`[{"name":"Le Comptoir","category":"bistro"}]`),
			Attractions: []byte(`[{"name":"Louvre"}]`),
		},
	}, nil
}

type fakeWeather struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeWeather) Current(ctx context.Context, at services.Coordinates) (services.Weather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if at.Lat == 0 && at.Lon == 0 {
		return services.Weather{}, errors.New("no weather at null island")
	}
	return services.Weather{TemperatureC: 21, Condition: "Clear sky"}, nil
}

type testEnv struct {
	clock    *autocomplete.ManualClock
	places   *fakePlaces
	airports *fakeAirports
	backend  *fakeBackend
	weather  *fakeWeather
	hub      *prefs.Hub
	deps     Deps
}

func newTestEnv() *testEnv {
	env := &testEnv{
		clock: autocomplete.NewManualClock(),
		places: &fakePlaces{results: []services.LocationSuggestion{
			{ID: "paris", DisplayText: "Paris, France", PrimaryName: "Paris", Kind: services.KindCity,
				Coordinates: &services.Coordinates{Lat: 48.8566, Lon: 2.3522}},
			{ID: "parma", DisplayText: "Parma, Italy", PrimaryName: "Parma", Kind: services.KindCity},
		}},
		airports: &fakeAirports{results: map[string][]services.AirportSuggestion{
			"paris": {{IATACode: "CDG", Name: "Charles de Gaulle", City: "Paris"}, {IATACode: "ORY", City: "Paris"}},
			"Par":   {{IATACode: "CDG", Name: "Charles de Gaulle", City: "Paris"}},
		}},
		backend: &fakeBackend{},
		weather: &fakeWeather{},
	}
	hub, err := prefs.NewHub(prefs.NewMemoryBackend())
	if err != nil {
		panic(err)
	}
	env.hub = hub
	env.deps = Deps{
		Places:          env.places,
		Airports:        env.airports,
		Resolver:        services.NewAirportCodeResolver(env.airports),
		Backend:         env.backend,
		Weather:         env.weather,
		History:         hub,
		Clock:           env.clock,
		Locale:          "en-GB",
		BaseCurrency:    "USD",
		NotificationTTL: 5 * time.Second,
	}
	return env
}

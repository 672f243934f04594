package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"drift/cache"
)

const parisResults = `{"results":[
  {"formatted":"Paris, Île-de-France, France",
   "components":{"_type":"city","city":"Paris","state":"Île-de-France","country":"France","country_code":"fr"},
   "geometry":{"lat":48.8566,"lng":2.3522},
   "annotations":{"geohash":"u09tvw0f6szy"}},
  {"formatted":"Rue de Paris, 75001 Lyon, France",
   "components":{"_type":"road","road":"Rue de Paris","city":"Lyon","state":"Auvergne-Rhône-Alpes","country":"France"},
   "geometry":{"lat":45.76,"lng":4.83}},
  {"formatted":"12 Main St, Springfield",
   "components":{"_type":"house_number","house_number":"12"}}
]}`

func TestGeocodeSearchShapesSuggestions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		_, _ = w.Write([]byte(parisResults))
	}))
	defer srv.Close()

	c := NewGeocodeClient(srv.URL, "secret", time.Second, nil, nil)
	got, err := c.Search(context.Background(), "Par", &Coordinates{Lat: 48.1, Lon: 2.2})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, want := range []string{"query=Par", "limit=7", "proximityLat=48.1", "proximityLon=2.2", "key=secret"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(got))
	}

	city := got[0]
	if city.ID != "u09tvw0f6szy" || city.Kind != KindCity || city.Icon != "🏙️" {
		t.Fatalf("unexpected city suggestion: %+v", city)
	}
	if city.PrimaryName != "Paris" || city.Subtitle != "Île-de-France, France" {
		t.Fatalf("unexpected city naming: %+v", city)
	}
	if city.Coordinates == nil || city.Coordinates.Lat != 48.8566 {
		t.Fatalf("expected coordinates, got %+v", city.Coordinates)
	}

	road := got[1]
	if road.Kind != KindRoad || road.Subtitle != "Lyon, Auvergne-Rhône-Alpes, France" {
		t.Fatalf("unexpected road suggestion: %+v", road)
	}
	if road.ID != "Rue de Paris, 75001 Lyon, France-1" {
		t.Fatalf("expected positional id, got %q", road.ID)
	}

	house := got[2]
	if house.Kind != KindBuilding || house.Icon != "🏠" {
		t.Fatalf("house_number should fold into building: %+v", house)
	}
	if house.Subtitle != "Springfield" || house.PrimaryName != "12" {
		t.Fatalf("unexpected fallback naming: %+v", house)
	}
}

func TestGeocodeSearchUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(parisResults))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")
	cfg := cache.DefaultRedisConfig()
	cfg.Host, cfg.Port = host, port
	rc, err := cache.NewRedisCache(cfg)
	if err != nil {
		t.Fatalf("redis cache: %v", err)
	}
	defer rc.Close()

	c := NewGeocodeClient(srv.URL, "", time.Second, nil, rc)
	for i := 0; i < 3; i++ {
		got, err := c.Search(context.Background(), "paris", nil)
		if err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
		if len(got) != 3 || got[0].DisplayText != "Paris, Île-de-France, France" {
			t.Fatalf("unexpected suggestions on call %d: %+v", i, got)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
}

func TestGeocodeNotConfigured(t *testing.T) {
	c := NewGeocodeClient("", "", time.Second, nil, nil)
	if _, err := c.Search(context.Background(), "paris", nil); err == nil {
		t.Fatalf("expected error without a base URL")
	}
}

func TestGeocodeReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse-geocode" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"city":"","locality":"Montmartre","countryName":"France","countryCode":"FR"}`))
	}))
	defer srv.Close()

	c := NewGeocodeClient(srv.URL, "", time.Second, nil, nil)
	got, err := c.Reverse(context.Background(), Coordinates{Lat: 48.886, Lon: 2.343})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got.Display() != "Montmartre, France" {
		t.Fatalf("unexpected display %q", got.Display())
	}
	if got.Coordinates == nil || got.Coordinates.Lon != 2.343 {
		t.Fatalf("expected coordinates to be kept, got %+v", got.Coordinates)
	}
}

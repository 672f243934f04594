package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func airportServer(t *testing.T, calls *int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/airports" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveCodeShortCircuits(t *testing.T) {
	var calls int32
	srv := airportServer(t, &calls, `{"airports":[]}`)
	r := NewAirportCodeResolver(NewAirportClient(srv.URL, time.Second, nil, nil))

	code, err := r.Resolve(context.Background(), " sfo ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if code != "SFO" {
		t.Fatalf("expected SFO, got %q", code)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected zero lookups, got %d", calls)
	}
}

func TestResolveTextTakesFirstMatch(t *testing.T) {
	var calls int32
	srv := airportServer(t, &calls, `{"airports":[{"iataCode":"sfo","name":"San Francisco Intl"},{"iataCode":"OAK"}]}`)
	r := NewAirportCodeResolver(NewAirportClient(srv.URL, time.Second, nil, nil))

	code, err := r.Resolve(context.Background(), "san francisco")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if code != "SFO" {
		t.Fatalf("expected SFO, got %q", code)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one lookup, got %d", calls)
	}
}

func TestResolveUnresolved(t *testing.T) {
	var calls int32
	srv := airportServer(t, &calls, `{"airports":[]}`)
	r := NewAirportCodeResolver(NewAirportClient(srv.URL, time.Second, nil, nil))

	if _, err := r.Resolve(context.Background(), "atlantis"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved for blank input, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("blank input must not hit the network, got %d calls", calls)
	}
}

func TestResolveProviderFailureIsUnresolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := NewAirportCodeResolver(NewAirportClient(srv.URL, time.Second, nil, nil))
	_, err := r.Resolve(context.Background(), "paris")
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestLooksLikeCode(t *testing.T) {
	for in, want := range map[string]bool{"JFK": true, "jfk": true, "JF1": false, "JFKX": false, "": false} {
		if got := LooksLikeCode(in); got != want {
			t.Errorf("LooksLikeCode(%q) = %v", in, got)
		}
	}
}

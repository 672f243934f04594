package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchFlightsPostsRequest(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/flights/search" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"success":true,"flights":[{"price":"120","itineraries":[]}]}`))
	}))
	defer srv.Close()

	req, err := BuildFlightSearch(validForm(), "EUR")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	c := NewBackendClient(srv.URL, time.Second, nil)
	resp, err := c.SearchFlights(context.Background(), req)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(resp.Flights) != 1 || resp.Flights[0].Price.Kind != PriceBare {
		t.Fatalf("unexpected flights: %+v", resp.Flights)
	}
	if body["origin"] != "SFO" || body["currency"] != "EUR" || body["tripType"] != "roundtrip" {
		t.Fatalf("unexpected payload: %v", body)
	}
	if _, ok := body["maxStops"]; ok {
		t.Fatalf("maxStops should be absent: %v", body)
	}
}

func TestBackendErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"Return date must be after departure"}`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, time.Second, nil)
	_, err := c.PlanTrip(context.Background(), TripPlanRequest{Destination: "Paris"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Detail != "Return date must be after departure" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestBackendUnsuccessfulBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, time.Second, nil)
	_, err := c.SearchFlights(context.Background(), FlightSearchRequest{})
	var unsuccessful *UnsuccessfulError
	if !errors.As(err, &unsuccessful) {
		t.Fatalf("expected UnsuccessfulError, got %v", err)
	}
	if err.Error() != "Flight search was not successful" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestBackendTimeoutIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewBackendClient(srv.URL, 20*time.Millisecond, nil)
	_, err := c.PlanHereNow(context.Background(), HereNowRequest{Location: "Paris, France"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	cases := map[string]string{
		`{"detail":"bad dates"}`:                  "bad dates",
		`{"detail":[{"loc":["body"],"msg":"x"}]}`: `[{"loc":["body"],"msg":"x"}]`,
		`{"detail":null}`:                         "",
		`{"error":"nope"}`:                        "",
		`<html>502</html>`:                        "",
	}
	for in, want := range cases {
		if got := extractDetail([]byte(in)); got != want {
			t.Errorf("extractDetail(%s) = %q, want %q", in, got, want)
		}
	}
}

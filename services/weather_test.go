package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current_weather") != "true" {
			t.Errorf("expected current_weather=true, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":27.6,"weathercode":2}}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, time.Second, nil)
	w, err := c.Current(context.Background(), Coordinates{Lat: 48.85, Lon: 2.35})
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if w.TemperatureC != 28 || w.Condition != "Partly cloudy" || w.Emoji != "⛅" {
		t.Fatalf("unexpected weather: %+v", w)
	}
	if w.Suggestion != "Great weather for outdoor activities and rooftop dining!" {
		t.Fatalf("unexpected suggestion %q", w.Suggestion)
	}
}

func TestWeatherMissingBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewWeatherClient(srv.URL, time.Second, nil)
	if _, err := c.Current(context.Background(), Coordinates{}); err == nil {
		t.Fatalf("expected error for missing current_weather")
	}
}

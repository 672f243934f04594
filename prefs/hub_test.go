package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h, err := NewHub(NewMemoryBackend())
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	h.SetClock(func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) })
	return h
}

func TestDefaults(t *testing.T) {
	p := newTestHub(t).Read()
	if p.BudgetTier != "medium" || p.Language != "en" || p.Currency != "USD" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.TravelHistory == nil || p.SavedItineraries == nil {
		t.Fatalf("lists should never be nil")
	}
}

func TestWriteNotifiesSubscribers(t *testing.T) {
	h := newTestHub(t)

	var seen []string
	unsubscribe := h.Subscribe(func(p Preferences) { seen = append(seen, p.Currency) })

	eur := "EUR"
	if _, err := h.Write(Patch{Currency: &eur}); err != nil {
		t.Fatalf("write: %v", err)
	}
	unsubscribe()
	gbp := "GBP"
	if _, err := h.Write(Patch{Currency: &gbp}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(seen) != 1 || seen[0] != "EUR" {
		t.Fatalf("unexpected notifications: %v", seen)
	}
	if h.Read().Currency != "GBP" {
		t.Fatalf("second write not applied")
	}
}

func TestReadReturnsCopy(t *testing.T) {
	h := newTestHub(t)
	moods := []string{"relaxed"}
	if _, err := h.Write(Patch{PreferredMoods: &moods}); err != nil {
		t.Fatalf("write: %v", err)
	}
	p := h.Read()
	p.PreferredMoods[0] = "mutated"
	if h.Read().PreferredMoods[0] != "relaxed" {
		t.Fatalf("store state leaked through Read")
	}
}

func TestHistoryIsCapped(t *testing.T) {
	h := newTestHub(t)
	for i := 0; i < MaxHistory+5; i++ {
		if _, err := h.AddToHistory(HistoryEntry{Location: fmt.Sprintf("place-%d", i), Mood: "adventurous"}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	p := h.Read()
	if len(p.TravelHistory) != MaxHistory {
		t.Fatalf("expected %d entries, got %d", MaxHistory, len(p.TravelHistory))
	}
	if p.TravelHistory[0].Location != fmt.Sprintf("place-%d", MaxHistory+4) {
		t.Fatalf("newest entry should come first, got %q", p.TravelHistory[0].Location)
	}
	if p.TravelHistory[0].ID == "" || p.TravelHistory[0].Date.IsZero() {
		t.Fatalf("entry should get an id and a date: %+v", p.TravelHistory[0])
	}
}

func TestSaveItineraryDefaultsName(t *testing.T) {
	h := newTestHub(t)
	for i := 0; i < MaxSavedItineraries+1; i++ {
		if _, err := h.SaveItinerary("", "Lisbon", json.RawMessage(`{"day":1}`)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	p := h.Read()
	if len(p.SavedItineraries) != MaxSavedItineraries {
		t.Fatalf("expected cap of %d, got %d", MaxSavedItineraries, len(p.SavedItineraries))
	}
	if p.SavedItineraries[0].Name != "Lisbon Experience" {
		t.Fatalf("unexpected default name %q", p.SavedItineraries[0].Name)
	}
}

func TestRecommendations(t *testing.T) {
	h := newTestHub(t)
	entries := []HistoryEntry{
		{Mood: "relaxed", Activities: []Activity{{Category: "food"}, {Category: "museum"}}},
		{Mood: "adventurous", Activities: []Activity{{Category: "food"}, {Category: "hiking"}}},
		{Mood: "relaxed", Activities: []Activity{{Category: "food"}, {Category: "beach"}, {Category: "museum"}}},
	}
	for _, e := range entries {
		if _, err := h.AddToHistory(e); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	rec := h.Recommendations()
	if rec.SuggestedMood != "relaxed" || rec.ExperienceCount != 3 {
		t.Fatalf("unexpected recommendation: %+v", rec)
	}
	want := []string{"food", "museum", "beach"}
	if fmt.Sprint(rec.FavoriteCategories) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, rec.FavoriteCategories)
	}
}

type failingBackend struct{ MemoryBackend }

func (f *failingBackend) Save(Preferences) error { return errors.New("disk full") }

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	h, err := NewHub(&failingBackend{})
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	notified := false
	h.Subscribe(func(Preferences) { notified = true })

	tier := "luxury"
	if _, err := h.Write(Patch{BudgetTier: &tier}); err == nil {
		t.Fatalf("expected save error")
	}
	if h.Read().BudgetTier != "medium" || notified {
		t.Fatalf("failed write must not change state or notify")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	backend := FileBackend{Path: path}

	h, err := NewHub(backend)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	favs := []string{"Kyoto"}
	if _, err := h.Write(Patch{FavoriteLocations: &favs}); err != nil {
		t.Fatalf("write: %v", err)
	}

	reloaded, err := NewHub(backend)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Read().FavoriteLocations; len(got) != 1 || got[0] != "Kyoto" {
		t.Fatalf("unexpected favourites after reload: %v", got)
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, found, _ := backend.Load(); found {
		t.Fatalf("file should be gone after clear")
	}
	if len(reloaded.Read().FavoriteLocations) != 0 {
		t.Fatalf("clear should reset to defaults")
	}
}

package prefs

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub is the Store every flow shares. Writes go through the backend
// first; listeners only hear about writes that were persisted.
type Hub struct {
	backend Backend
	now     func() time.Time

	mu        sync.Mutex
	prefs     Preferences
	listeners map[int]func(Preferences)
	nextID    int
}

var _ Store = (*Hub)(nil)

func NewHub(backend Backend) (*Hub, error) {
	p, found, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if !found {
		log.Println("ℹ️  No stored preferences, starting from defaults")
	}
	return &Hub{
		backend:   backend,
		now:       time.Now,
		prefs:     p.normalize(),
		listeners: make(map[int]func(Preferences)),
	}, nil
}

// SetClock overrides the time source used for history and saved dates.
func (h *Hub) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

func (h *Hub) Read() Preferences {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prefs.clone()
}

func (h *Hub) Write(patch Patch) (Preferences, error) {
	return h.update(func(p Preferences) (Preferences, error) {
		return patch.apply(p), nil
	})
}

func (h *Hub) Subscribe(listener func(Preferences)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = listener
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// AddToHistory records a finished experience, newest first, keeping the
// last MaxHistory entries.
func (h *Hub) AddToHistory(entry HistoryEntry) (HistoryEntry, error) {
	var stored HistoryEntry
	_, err := h.update(func(p Preferences) (Preferences, error) {
		stored = entry
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		if stored.Date.IsZero() {
			stored.Date = h.now().UTC()
		}
		history := append([]HistoryEntry{stored}, p.TravelHistory...)
		if len(history) > MaxHistory {
			history = history[:MaxHistory]
		}
		p.TravelHistory = history
		return p, nil
	})
	return stored, err
}

// SaveItinerary keeps the last MaxSavedItineraries itineraries, newest
// first. An empty name becomes "<location> Experience".
func (h *Hub) SaveItinerary(name, location string, itinerary json.RawMessage) (SavedItinerary, error) {
	var saved SavedItinerary
	_, err := h.update(func(p Preferences) (Preferences, error) {
		if strings.TrimSpace(name) == "" {
			name = strings.TrimSpace(location + " Experience")
		}
		saved = SavedItinerary{
			ID:        uuid.NewString(),
			Name:      name,
			Location:  location,
			Itinerary: append(json.RawMessage(nil), itinerary...),
			SavedAt:   h.now().UTC(),
		}
		list := append([]SavedItinerary{saved}, p.SavedItineraries...)
		if len(list) > MaxSavedItineraries {
			list = list[:MaxSavedItineraries]
		}
		p.SavedItineraries = list
		return p, nil
	})
	return saved, err
}

// Recommendations derives the most frequent mood and the top three
// activity categories from the history. Ties break alphabetically.
func (h *Hub) Recommendations() Recommendations {
	p := h.Read()

	moods := map[string]int{}
	categories := map[string]int{}
	for _, exp := range p.TravelHistory {
		if exp.Mood != "" {
			moods[exp.Mood]++
		}
		for _, a := range exp.Activities {
			if a.Category != "" {
				categories[a.Category]++
			}
		}
	}

	rec := Recommendations{
		FavoriteCategories: rankByCount(categories),
		ExperienceCount:    len(p.TravelHistory),
	}
	if ranked := rankByCount(moods); len(ranked) > 0 {
		rec.SuggestedMood = ranked[0]
	}
	if len(rec.FavoriteCategories) > 3 {
		rec.FavoriteCategories = rec.FavoriteCategories[:3]
	}
	return rec
}

// Clear wipes stored data and resets to defaults.
func (h *Hub) Clear() error {
	h.mu.Lock()
	if err := h.backend.Clear(); err != nil {
		h.mu.Unlock()
		return fmt.Errorf("clear preferences: %w", err)
	}
	h.prefs = Defaults()
	snap, listeners := h.snapshotLocked()
	h.mu.Unlock()

	for _, l := range listeners {
		l(snap.clone())
	}
	return nil
}

func (h *Hub) update(fn func(Preferences) (Preferences, error)) (Preferences, error) {
	h.mu.Lock()
	next, err := fn(h.prefs.clone())
	if err != nil {
		h.mu.Unlock()
		return Preferences{}, err
	}
	if err := h.backend.Save(next); err != nil {
		h.mu.Unlock()
		return Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	h.prefs = next
	snap, listeners := h.snapshotLocked()
	h.mu.Unlock()

	for _, l := range listeners {
		l(snap.clone())
	}
	return snap, nil
}

func (h *Hub) snapshotLocked() (Preferences, []func(Preferences)) {
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(Preferences), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, h.listeners[id])
	}
	return h.prefs.clone(), listeners
}

func rankByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

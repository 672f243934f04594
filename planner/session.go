package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"drift/autocomplete"
)

type Kind string

const (
	KindHereNow Kind = "here-now"
	KindTrip    Kind = "trip"
)

// Session is one mounted flow with its own notifications.
type Session struct {
	ID        string    `json:"session_id"`
	Kind      Kind      `json:"flow"`
	CreatedAt time.Time `json:"created_at"`

	HereNow  *HereNowFlow `json:"-"`
	Trip     *TripFlow    `json:"-"`
	Notifier *Notifier    `json:"-"`
}

// Field returns the autocomplete input with the given name.
func (s *Session) Field(name string) (autocomplete.Controller, bool) {
	switch {
	case s.HereNow != nil && name == "location":
		return s.HereNow.Location, true
	case s.Trip != nil && name == "origin":
		return s.Trip.Origin, true
	case s.Trip != nil && name == "destination":
		return s.Trip.Destination, true
	}
	return nil, false
}

// Submit runs the flow's primary action.
func (s *Session) Submit(ctx context.Context) (any, error) {
	if s.HereNow != nil {
		return s.HereNow.Submit(ctx)
	}
	return s.Trip.SearchFlights(ctx)
}

// Form returns the current form of whichever flow the session holds.
func (s *Session) Form() any {
	if s.HereNow != nil {
		return s.HereNow.Form()
	}
	return s.Trip.Form()
}

func (s *Session) Close() {
	if s.HereNow != nil {
		s.HereNow.Close()
	}
	if s.Trip != nil {
		s.Trip.Close()
	}
}

type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, sessions: make(map[string]*Session)}
}

func (r *Registry) Create(kind Kind) (*Session, error) {
	clock := r.deps.Clock
	if clock == nil {
		clock = autocomplete.SystemClock{}
	}
	s := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: clock.Now().UTC(),
		Notifier:  NewNotifier(r.deps.NotificationTTL, clock),
	}
	switch kind {
	case KindHereNow:
		s.HereNow = NewHereNowFlow(r.deps, s.Notifier)
	case KindTrip:
		s.Trip = NewTripFlow(r.deps, s.Notifier)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlow, kind)
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete unmounts the session so no late result can touch it.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

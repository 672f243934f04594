package planner

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"drift/autocomplete"
	"drift/prefs"
	"drift/services"
)

const (
	DefaultMood          = "adventurous"
	DefaultBudget        = "medium"
	DefaultDurationHours = 4
	PlanningModeHereNow  = "here-now"
)

type HereNowForm struct {
	Location      string                `json:"location"`
	Coordinates   *services.Coordinates `json:"coordinates,omitempty"`
	Mood          string                `json:"mood"`
	Budget        string                `json:"budget"`
	DurationHours int                   `json:"duration_hours"`
	PlanningMode  string                `json:"planningMode"`
}

type HereNowPatch struct {
	Mood          *string `json:"mood,omitempty"`
	Budget        *string `json:"budget,omitempty"`
	DurationHours *int    `json:"duration_hours,omitempty"`
}

// HereNowFlow is the instant-planning form: one place autocomplete plus
// mood, budget and time window.
type HereNowFlow struct {
	deps     Deps
	notifier *Notifier
	runner   *Runner[services.HereNowResponse]

	Location *autocomplete.Autocomplete[services.LocationSuggestion]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	form     HereNowForm
	selected *services.LocationSuggestion
	located  *services.Coordinates
	weather  *services.Weather
}

func NewHereNowFlow(deps Deps, notifier *Notifier) *HereNowFlow {
	ctx, cancel := context.WithCancel(context.Background())
	f := &HereNowFlow{
		deps:     deps,
		notifier: notifier,
		runner:   NewRunner[services.HereNowResponse]("instant plan", notifier),
		ctx:      ctx,
		cancel:   cancel,
		form: HereNowForm{
			Mood:          DefaultMood,
			Budget:        DefaultBudget,
			DurationHours: DefaultDurationHours,
			PlanningMode:  PlanningModeHereNow,
		},
	}
	f.Location = autocomplete.New[services.LocationSuggestion](
		f.searchPlaces,
		deps.autocompleteOptions("location"),
		autocomplete.Handlers[services.LocationSuggestion]{
			OnText:   f.setLocationText,
			OnSelect: f.selectLocation,
		},
	)
	return f
}

func (f *HereNowFlow) searchPlaces(ctx context.Context, query string) ([]services.LocationSuggestion, error) {
	f.mu.Lock()
	var near *services.Coordinates
	if f.located != nil {
		c := *f.located
		near = &c
	}
	f.mu.Unlock()
	return f.deps.Places.Search(ctx, query, near)
}

// setLocationText drops the selected place once the text no longer matches
// what was selected.
func (f *HereNowFlow) setLocationText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form.Location = text
	if f.selected != nil && text != f.selected.Display() {
		f.selected = nil
		f.form.Coordinates = nil
		f.weather = nil
	}
}

func (f *HereNowFlow) selectLocation(display string, s services.LocationSuggestion) {
	f.mu.Lock()
	f.form.Location = display
	f.selected = &s
	f.weather = nil
	f.form.Coordinates = nil
	if s.Coordinates != nil {
		c := *s.Coordinates
		f.form.Coordinates = &c
	}
	f.mu.Unlock()

	if s.Coordinates != nil {
		f.refreshWeather(s.ID, *s.Coordinates)
	}
}

func (f *HereNowFlow) refreshWeather(selectionID string, at services.Coordinates) {
	if f.deps.Weather == nil {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		w, err := f.deps.Weather.Current(f.ctx, at)
		if err != nil {
			log.Printf("⚠️  weather lookup failed: %v", err)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.selected != nil && f.selected.ID == selectionID {
			f.weather = &w
		}
	}()
}

// Locate fills the location from the user's position. On failure the form
// is left as it was and manual entry continues.
func (f *HereNowFlow) Locate(ctx context.Context, at services.Coordinates) (services.LocationSuggestion, error) {
	f.mu.Lock()
	c := at
	f.located = &c
	f.mu.Unlock()

	s, err := f.deps.Places.Reverse(ctx, at)
	if err != nil {
		log.Printf("⚠️  reverse geocoding failed: %v", err)
		return services.LocationSuggestion{}, err
	}
	f.Location.SetText(s.Display())
	f.selectLocation(s.Display(), s)
	return s, nil
}

func (f *HereNowFlow) Update(p HereNowPatch) HereNowForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Mood != nil && *p.Mood != "" {
		f.form.Mood = *p.Mood
	}
	if p.Budget != nil && *p.Budget != "" {
		f.form.Budget = *p.Budget
	}
	if p.DurationHours != nil && *p.DurationHours > 0 {
		f.form.DurationHours = *p.DurationHours
	}
	return f.formLocked()
}

func (f *HereNowFlow) Form() HereNowForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formLocked()
}

func (f *HereNowFlow) formLocked() HereNowForm {
	form := f.form
	if form.Coordinates != nil {
		c := *form.Coordinates
		form.Coordinates = &c
	}
	return form
}

func (f *HereNowFlow) Weather() (services.Weather, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.weather == nil {
		return services.Weather{}, false
	}
	return *f.weather, true
}

// Submit posts the form to the instant planner. Only one submission runs
// at a time.
func (f *HereNowFlow) Submit(ctx context.Context) (services.HereNowResponse, error) {
	return f.runner.Run(ctx, func(ctx context.Context) (services.HereNowResponse, error) {
		form := f.Form()
		if strings.TrimSpace(form.Location) == "" {
			return services.HereNowResponse{}, services.ErrMissingLocation
		}

		resp, err := f.deps.Backend.PlanHereNow(ctx, services.HereNowRequest{
			Location:      form.Location,
			Mood:          form.Mood,
			Budget:        form.Budget,
			DurationHours: form.DurationHours,
			PlanningMode:  form.PlanningMode,
		})
		if err != nil {
			return services.HereNowResponse{}, err
		}
		f.recordHistory(form, resp)
		return resp, nil
	})
}

func (f *HereNowFlow) Status() Status[services.HereNowResponse] {
	return f.runner.Status()
}

func (f *HereNowFlow) recordHistory(form HereNowForm, resp services.HereNowResponse) {
	if f.deps.History == nil {
		return
	}
	entry := prefs.HistoryEntry{
		Location:      form.Location,
		Mood:          form.Mood,
		Budget:        form.Budget,
		DurationHours: form.DurationHours,
		Activities:    activitiesOf(resp.Itinerary),
	}
	if form.Coordinates != nil {
		entry.Coordinates = &prefs.Coordinates{Lat: form.Coordinates.Lat, Lon: form.Coordinates.Lon}
	}
	if _, err := f.deps.History.AddToHistory(entry); err != nil {
		log.Printf("⚠️  could not record history: %v", err)
	}
}

// activitiesOf pulls named items out of the itinerary sections. Items
// without their own category take the section name.
func activitiesOf(it services.HereNowItinerary) []prefs.Activity {
	sections := []struct {
		name string
		raw  json.RawMessage
	}{
		{"dining", it.Dining},
		{"events", it.Events},
		{"attractions", it.Attractions},
		{"fun", it.Fun},
	}

	var out []prefs.Activity
	for _, sec := range sections {
		var items []struct {
			Name     string `json:"name"`
			Title    string `json:"title"`
			Category string `json:"category"`
		}
		if len(sec.raw) == 0 || json.Unmarshal(sec.raw, &items) != nil {
			continue
		}
		for _, item := range items {
			name := item.Name
			if name == "" {
				name = item.Title
			}
			category := item.Category
			if category == "" {
				category = sec.name
			}
			out = append(out, prefs.Activity{Name: name, Category: category})
		}
	}
	return out
}

// Close unmounts the flow. Pending searches and weather lookups are
// dropped.
func (f *HereNowFlow) Close() {
	f.Location.Close()
	f.cancel()
	f.Location.Wait()
	f.wg.Wait()
}

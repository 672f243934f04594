package prefs

import (
	"encoding/json"
	"time"
)

const (
	MaxHistory          = 50
	MaxSavedItineraries = 20
)

type Activity struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type HistoryEntry struct {
	ID            string       `json:"id"`
	Location      string       `json:"location"`
	Mood          string       `json:"mood"`
	Budget        string       `json:"budget"`
	DurationHours int          `json:"durationHours,omitempty"`
	Activities    []Activity   `json:"activities,omitempty"`
	Rating        *int         `json:"rating"`
	Date          time.Time    `json:"date"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type SavedItinerary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Itinerary json.RawMessage `json:"itinerary"`
	SavedAt   time.Time       `json:"savedAt"`
}

// Preferences is the single per-user preference record. Experience
// history and travel history live in the same list.
type Preferences struct {
	FavoriteLocations   []string         `json:"favoriteLocations"`
	PreferredMoods      []string         `json:"preferredMoods"`
	BudgetTier          string           `json:"budgetTier"`
	DietaryRestrictions []string         `json:"dietaryRestrictions"`
	AccessibilityNeeds  []string         `json:"accessibilityNeeds"`
	Language            string           `json:"languagePreference"`
	Currency            string           `json:"currency"`
	SavedItineraries    []SavedItinerary `json:"savedItineraries"`
	TravelHistory       []HistoryEntry   `json:"travelHistory"`
}

func Defaults() Preferences {
	return Preferences{
		FavoriteLocations:   []string{},
		PreferredMoods:      []string{},
		BudgetTier:          "medium",
		DietaryRestrictions: []string{},
		AccessibilityNeeds:  []string{},
		Language:            "en",
		Currency:            "USD",
		SavedItineraries:    []SavedItinerary{},
		TravelHistory:       []HistoryEntry{},
	}
}

// normalize fills nil lists and empty scalars from Defaults so stored
// records written by older versions read back complete.
func (p Preferences) normalize() Preferences {
	d := Defaults()
	if p.FavoriteLocations == nil {
		p.FavoriteLocations = d.FavoriteLocations
	}
	if p.PreferredMoods == nil {
		p.PreferredMoods = d.PreferredMoods
	}
	if p.BudgetTier == "" {
		p.BudgetTier = d.BudgetTier
	}
	if p.DietaryRestrictions == nil {
		p.DietaryRestrictions = d.DietaryRestrictions
	}
	if p.AccessibilityNeeds == nil {
		p.AccessibilityNeeds = d.AccessibilityNeeds
	}
	if p.Language == "" {
		p.Language = d.Language
	}
	if p.Currency == "" {
		p.Currency = d.Currency
	}
	if p.SavedItineraries == nil {
		p.SavedItineraries = d.SavedItineraries
	}
	if p.TravelHistory == nil {
		p.TravelHistory = d.TravelHistory
	}
	return p
}

func (p Preferences) clone() Preferences {
	c := p
	c.FavoriteLocations = append([]string{}, p.FavoriteLocations...)
	c.PreferredMoods = append([]string{}, p.PreferredMoods...)
	c.DietaryRestrictions = append([]string{}, p.DietaryRestrictions...)
	c.AccessibilityNeeds = append([]string{}, p.AccessibilityNeeds...)
	c.SavedItineraries = append([]SavedItinerary{}, p.SavedItineraries...)
	c.TravelHistory = append([]HistoryEntry{}, p.TravelHistory...)
	return c
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	FavoriteLocations   *[]string `json:"favoriteLocations,omitempty"`
	PreferredMoods      *[]string `json:"preferredMoods,omitempty"`
	BudgetTier          *string   `json:"budgetTier,omitempty"`
	DietaryRestrictions *[]string `json:"dietaryRestrictions,omitempty"`
	AccessibilityNeeds  *[]string `json:"accessibilityNeeds,omitempty"`
	Language            *string   `json:"languagePreference,omitempty"`
	Currency            *string   `json:"currency,omitempty"`
}

func (patch Patch) apply(p Preferences) Preferences {
	if patch.FavoriteLocations != nil {
		p.FavoriteLocations = append([]string{}, *patch.FavoriteLocations...)
	}
	if patch.PreferredMoods != nil {
		p.PreferredMoods = append([]string{}, *patch.PreferredMoods...)
	}
	if patch.BudgetTier != nil {
		p.BudgetTier = *patch.BudgetTier
	}
	if patch.DietaryRestrictions != nil {
		p.DietaryRestrictions = append([]string{}, *patch.DietaryRestrictions...)
	}
	if patch.AccessibilityNeeds != nil {
		p.AccessibilityNeeds = append([]string{}, *patch.AccessibilityNeeds...)
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if patch.Currency != nil {
		p.Currency = *patch.Currency
	}
	return p.normalize()
}

type Recommendations struct {
	SuggestedMood      string   `json:"suggestedMood"`
	FavoriteCategories []string `json:"favoriteCategories"`
	ExperienceCount    int      `json:"experienceCount"`
}

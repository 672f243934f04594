package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"drift/ratelimit"
)

const BackendProvider = "backend"

// BackendClient talks to the planning API that owns flight search and
// itinerary generation.
type BackendClient struct {
	api *apiClient
}

func NewBackendClient(baseURL string, timeout time.Duration, limiter *ratelimit.ProviderLimiter) *BackendClient {
	if baseURL == "" {
		log.Println("⚠️  BACKEND_URL not set — flight search and planning are disabled")
	}
	return &BackendClient{api: newAPIClient(BackendProvider, baseURL, timeout, limiter)}
}

type FlightSearchResponse struct {
	Success bool          `json:"success"`
	Flights []FlightOffer `json:"flights"`
}

func (c *BackendClient) SearchFlights(ctx context.Context, req FlightSearchRequest) (FlightSearchResponse, error) {
	var resp FlightSearchResponse
	if err := c.api.postJSON(ctx, "/flights/search", req, &resp); err != nil {
		return FlightSearchResponse{}, err
	}
	if !resp.Success {
		return FlightSearchResponse{}, &UnsuccessfulError{Action: "Flight search"}
	}
	return resp, nil
}

// ─── Trip planning ────────────────────────────────────────────────────────────

type Travelers struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

type TripPreferences struct {
	SustainabilityMode   bool `json:"sustainability_mode"`
	MoodBasedSuggestions bool `json:"mood_based_suggestions"`
	LocalInsights        bool `json:"local_insights"`
	BudgetIntelligence   bool `json:"budget_intelligence"`
}

type TripPlanRequest struct {
	Destination   string          `json:"destination"`
	DepartureDate string          `json:"departure_date"`
	ReturnDate    string          `json:"return_date"`
	Budget        float64         `json:"budget"`
	Travelers     Travelers       `json:"travelers"`
	Preferences   TripPreferences `json:"preferences"`
}

// TripPlanResponse keeps the planner's payload verbatim; only the
// envelope is interpreted here.
type TripPlanResponse struct {
	Success      bool            `json:"success"`
	Itinerary    json.RawMessage `json:"itinerary,omitempty"`
	Places       json.RawMessage `json:"places,omitempty"`
	NearbyPlaces json.RawMessage `json:"nearby_places,omitempty"`
}

func (c *BackendClient) PlanTrip(ctx context.Context, req TripPlanRequest) (TripPlanResponse, error) {
	var resp TripPlanResponse
	if err := c.api.postJSON(ctx, "/trip/plan", req, &resp); err != nil {
		return TripPlanResponse{}, err
	}
	if !resp.Success {
		return TripPlanResponse{}, &UnsuccessfulError{Action: "Trip planning"}
	}
	return resp, nil
}

// ─── Here & now ───────────────────────────────────────────────────────────────

type HereNowRequest struct {
	Location      string `json:"location"`
	Mood          string `json:"mood"`
	Budget        string `json:"budget"`
	DurationHours int    `json:"duration_hours"`
	PlanningMode  string `json:"planningMode"`
}

type HereNowItinerary struct {
	Overview    json.RawMessage `json:"overview,omitempty"`
	Dining      json.RawMessage `json:"dining,omitempty"`
	Events      json.RawMessage `json:"events,omitempty"`
	Attractions json.RawMessage `json:"attractions,omitempty"`
	Fun         json.RawMessage `json:"fun,omitempty"`
}

type HereNowResponse struct {
	Success   bool             `json:"success"`
	Itinerary HereNowItinerary `json:"itinerary"`
	Weather   json.RawMessage  `json:"weather,omitempty"`
}

func (c *BackendClient) PlanHereNow(ctx context.Context, req HereNowRequest) (HereNowResponse, error) {
	var resp HereNowResponse
	if err := c.api.postJSON(ctx, "/here-now/plan", req, &resp); err != nil {
		return HereNowResponse{}, err
	}
	if !resp.Success {
		return HereNowResponse{}, &UnsuccessfulError{Action: "Instant planning"}
	}
	return resp, nil
}

package services

import (
	"strconv"
	"strings"
)

type TripType string

const (
	RoundTrip TripType = "roundtrip"
	OneWay    TripType = "oneway"
)

// AnyStops is the form value meaning "no stop constraint".
const AnyStops = "any"

// FlightSearchForm is the raw trip form as the user left it.
type FlightSearchForm struct {
	OriginCode      string
	DestinationCode string
	DepartureDate   string
	ReturnDate      string
	TripType        TripType
	Adults          int
	Children        int
	TravelClass     string
	MaxStops        string
}

type FlightSearchRequest struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departureDate"`
	ReturnDate    string   `json:"returnDate,omitempty"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
	TravelClass   string   `json:"travelClass"`
	TripType      TripType `json:"tripType"`
	Currency      string   `json:"currency"`
	MaxStops      *int     `json:"maxStops,omitempty"`
}

// BuildFlightSearch validates the form and assembles the search payload.
// Checks run in a fixed order and the first failure is returned.
func BuildFlightSearch(form FlightSearchForm, currency string) (FlightSearchRequest, error) {
	origin := strings.ToUpper(strings.TrimSpace(form.OriginCode))
	dest := strings.ToUpper(strings.TrimSpace(form.DestinationCode))
	if origin == "" || dest == "" {
		return FlightSearchRequest{}, ErrUnresolvedLocations
	}
	if strings.TrimSpace(form.DepartureDate) == "" {
		return FlightSearchRequest{}, ErrMissingDepartureDate
	}

	tripType := form.TripType
	if tripType == "" {
		tripType = RoundTrip
	}
	if tripType == RoundTrip && strings.TrimSpace(form.ReturnDate) == "" {
		return FlightSearchRequest{}, ErrMissingReturnDate
	}

	var maxStops *int
	if s := strings.TrimSpace(form.MaxStops); s != "" && !strings.EqualFold(s, AnyStops) {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return FlightSearchRequest{}, ErrInvalidMaxStops
		}
		maxStops = &n
	}

	adults := form.Adults
	if adults < 1 {
		adults = 1
	}
	children := form.Children
	if children < 0 {
		children = 0
	}
	class := strings.ToUpper(strings.TrimSpace(form.TravelClass))
	if class == "" {
		class = "ECONOMY"
	}

	req := FlightSearchRequest{
		Origin:        origin,
		Destination:   dest,
		DepartureDate: strings.TrimSpace(form.DepartureDate),
		Adults:        adults,
		Children:      children,
		TravelClass:   class,
		TripType:      tripType,
		Currency:      currency,
		MaxStops:      maxStops,
	}
	if tripType == RoundTrip {
		req.ReturnDate = strings.TrimSpace(form.ReturnDate)
	}
	return req, nil
}

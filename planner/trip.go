package planner

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"drift/autocomplete"
	"drift/database"
	"drift/services"
)

const DefaultTripBudget = 2000

type TripForm struct {
	Origin          string            `json:"origin"`
	OriginCode      string            `json:"origin_code"`
	Destination     string            `json:"destination"`
	DestinationCode string            `json:"destination_code"`
	DepartureDate   string            `json:"departure_date"`
	ReturnDate      string            `json:"return_date"`
	TripType        services.TripType `json:"trip_type"`
	Adults          int               `json:"adults"`
	Children        int               `json:"children"`
	TravelClass     string            `json:"travel_class"`
	MaxStops        string            `json:"max_stops"`
}

type TripPatch struct {
	DepartureDate *string            `json:"departure_date,omitempty"`
	ReturnDate    *string            `json:"return_date,omitempty"`
	TripType      *services.TripType `json:"trip_type,omitempty"`
	Adults        *int               `json:"adults,omitempty"`
	Children      *int               `json:"children,omitempty"`
	TravelClass   *string            `json:"travel_class,omitempty"`
	MaxStops      *string            `json:"max_stops,omitempty"`
}

// airportField names one of the two airport inputs of the trip form.
type airportField int

const (
	originField airportField = iota
	destinationField
)

// TripFlow is the flight search and trip planning form.
type TripFlow struct {
	deps       Deps
	notifier   *Notifier
	search     *Runner[services.FlightSearchResponse]
	plan       *Runner[services.TripPlanResponse]
	resolveCtx context.Context
	cancel     context.CancelFunc

	Origin      *autocomplete.Autocomplete[services.AirportSuggestion]
	Destination *autocomplete.Autocomplete[services.AirportSuggestion]

	mu       sync.Mutex
	form     TripForm
	currency string
	searchID string
}

func NewTripFlow(deps Deps, notifier *Notifier) *TripFlow {
	ctx, cancel := context.WithCancel(context.Background())
	f := &TripFlow{
		deps:       deps,
		notifier:   notifier,
		search:     NewRunner[services.FlightSearchResponse]("flight search", notifier),
		plan:       NewRunner[services.TripPlanResponse]("trip planning", notifier),
		resolveCtx: ctx,
		cancel:     cancel,
		form: TripForm{
			TripType:    services.RoundTrip,
			Adults:      1,
			TravelClass: "ECONOMY",
			MaxStops:    services.AnyStops,
		},
		currency: deps.baseCurrency(),
	}
	f.Origin = f.newAirportInput("origin", originField)
	f.Destination = f.newAirportInput("destination", destinationField)
	return f
}

func (f *TripFlow) newAirportInput(name string, field airportField) *autocomplete.Autocomplete[services.AirportSuggestion] {
	return autocomplete.New[services.AirportSuggestion](
		func(ctx context.Context, query string) ([]services.AirportSuggestion, error) {
			return f.deps.Airports.Search(ctx, query, services.AirportSuggestLimit)
		},
		f.deps.autocompleteOptions(name),
		autocomplete.Handlers[services.AirportSuggestion]{
			OnText: func(text string) { f.setText(field, text) },
			OnSelect: func(display string, a services.AirportSuggestion) {
				f.selectAirport(field, display, a)
			},
		},
	)
}

func (f *TripFlow) fields(field airportField) (text, code *string) {
	if field == originField {
		return &f.form.Origin, &f.form.OriginCode
	}
	return &f.form.Destination, &f.form.DestinationCode
}

// setText keeps text and resolved code consistent: any change to the text
// drops the code until a new resolution lands.
func (f *TripFlow) setText(field airportField, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, code := f.fields(field)
	if *text != value {
		*text = value
		*code = ""
	}
}

func (f *TripFlow) selectAirport(field airportField, display string, a services.AirportSuggestion) {
	resolved, err := f.deps.Resolver.Resolve(f.resolveCtx, a.IATACode)
	if err != nil {
		resolved = ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	text, code := f.fields(field)
	*text = display
	*code = resolved
}

func (f *TripFlow) Update(p TripPatch) TripForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.DepartureDate != nil {
		f.form.DepartureDate = strings.TrimSpace(*p.DepartureDate)
	}
	if p.ReturnDate != nil {
		f.form.ReturnDate = strings.TrimSpace(*p.ReturnDate)
	}
	if p.TripType != nil && (*p.TripType == services.RoundTrip || *p.TripType == services.OneWay) {
		f.form.TripType = *p.TripType
	}
	if p.Adults != nil && *p.Adults >= 1 {
		f.form.Adults = *p.Adults
	}
	if p.Children != nil && *p.Children >= 0 {
		f.form.Children = *p.Children
	}
	if p.TravelClass != nil && *p.TravelClass != "" {
		f.form.TravelClass = strings.ToUpper(*p.TravelClass)
	}
	if p.MaxStops != nil && *p.MaxStops != "" {
		f.form.MaxStops = *p.MaxStops
	}
	return f.form
}

func (f *TripFlow) Form() TripForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// resolveAtSubmit covers text typed without picking a suggestion. A code
// is only stored if the text did not change while the lookup ran.
func (f *TripFlow) resolveAtSubmit(ctx context.Context, field airportField, form TripForm) string {
	typed, have := form.Origin, form.OriginCode
	if field == destinationField {
		typed, have = form.Destination, form.DestinationCode
	}
	if have != "" || strings.TrimSpace(typed) == "" {
		return have
	}

	code, err := f.deps.Resolver.Resolve(ctx, typed)
	if err != nil {
		return ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	text, stored := f.fields(field)
	if *text == typed {
		*stored = code
	}
	return code
}

// SearchFlights resolves both airports, validates the form and issues one
// flight search.
func (f *TripFlow) SearchFlights(ctx context.Context) (services.FlightSearchResponse, error) {
	return f.search.Run(ctx, func(ctx context.Context) (services.FlightSearchResponse, error) {
		form := f.Form()
		origin := f.resolveAtSubmit(ctx, originField, form)
		dest := f.resolveAtSubmit(ctx, destinationField, form)

		currency := services.CurrencyForLocale(f.deps.localeFor(ctx), f.deps.baseCurrency())
		req, err := services.BuildFlightSearch(services.FlightSearchForm{
			OriginCode:      origin,
			DestinationCode: dest,
			DepartureDate:   form.DepartureDate,
			ReturnDate:      form.ReturnDate,
			TripType:        form.TripType,
			Adults:          form.Adults,
			Children:        form.Children,
			TravelClass:     form.TravelClass,
			MaxStops:        form.MaxStops,
		}, currency)
		if err != nil {
			return services.FlightSearchResponse{}, err
		}

		resp, err := f.deps.Backend.SearchFlights(ctx, req)
		if err != nil {
			return services.FlightSearchResponse{}, err
		}

		searchID := f.logSearch(req, len(resp.Flights))
		f.mu.Lock()
		f.currency = currency
		f.searchID = searchID
		f.mu.Unlock()
		return resp, nil
	})
}

func (f *TripFlow) logSearch(req services.FlightSearchRequest, results int) string {
	if f.deps.Searches == nil {
		return ""
	}
	s := &database.Search{
		ID:            uuid.NewString(),
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		TripType:      string(req.TripType),
		Adults:        req.Adults,
		Children:      req.Children,
		TravelClass:   req.TravelClass,
		Currency:      req.Currency,
		ResultCount:   results,
	}
	if err := f.deps.Searches.SaveSearch(s); err != nil {
		log.Printf("⚠️  could not log search: %v", err)
		return ""
	}
	return s.ID
}

// Results renders the last flight search for display. The raw offers are
// left untouched.
func (f *TripFlow) Results() []services.OfferView {
	resp, ok := f.search.Result()
	if !ok {
		return nil
	}
	f.mu.Lock()
	currency := f.currency
	f.mu.Unlock()
	return services.NormalizeOffers(resp.Flights, currency)
}

// Offer returns one offer of the last search with its display model and
// the id of the logged search, if any.
func (f *TripFlow) Offer(i int) (services.OfferView, string, error) {
	resp, ok := f.search.Result()
	if !ok {
		return services.OfferView{}, "", ErrNoResult
	}
	if i < 0 || i >= len(resp.Flights) {
		return services.OfferView{}, "", errors.New("offer index out of range")
	}
	f.mu.Lock()
	currency, searchID := f.currency, f.searchID
	f.mu.Unlock()
	return services.NormalizeOffer(resp.Flights[i], currency), searchID, nil
}

// PlanTrip asks the planner for a full itinerary to the destination.
func (f *TripFlow) PlanTrip(ctx context.Context) (services.TripPlanResponse, error) {
	return f.plan.Run(ctx, func(ctx context.Context) (services.TripPlanResponse, error) {
		form := f.Form()
		if strings.TrimSpace(form.Destination) == "" {
			return services.TripPlanResponse{}, services.ErrMissingDestination
		}
		return f.deps.Backend.PlanTrip(ctx, services.TripPlanRequest{
			Destination:   form.Destination,
			DepartureDate: form.DepartureDate,
			ReturnDate:    form.ReturnDate,
			Budget:        DefaultTripBudget,
			Travelers:     services.Travelers{Adults: form.Adults, Children: form.Children},
			Preferences: services.TripPreferences{
				SustainabilityMode:   true,
				MoodBasedSuggestions: true,
				LocalInsights:        true,
				BudgetIntelligence:   true,
			},
		})
	})
}

func (f *TripFlow) SearchStatus() Status[services.FlightSearchResponse] {
	return f.search.Status()
}

func (f *TripFlow) PlanStatus() Status[services.TripPlanResponse] {
	return f.plan.Status()
}

func (f *TripFlow) Close() {
	f.Origin.Close()
	f.Destination.Close()
	f.cancel()
	f.Origin.Wait()
	f.Destination.Wait()
}

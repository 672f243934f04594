package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ─── Display model ────────────────────────────────────────────────────────────

type SegmentView struct {
	Airline           string `json:"airline"`
	AirlineCode       string `json:"airline_code"`
	FlightNumber      string `json:"flight_number"`
	Aircraft          string `json:"aircraft,omitempty"`
	DepartureCode     string `json:"departure_code"`
	DepartureTime     string `json:"departure_time"`
	DepartureDate     string `json:"departure_date"`
	DepartureTerminal string `json:"departure_terminal"`
	ArrivalCode       string `json:"arrival_code"`
	ArrivalTime       string `json:"arrival_time"`
	ArrivalDate       string `json:"arrival_date"`
	ArrivalTerminal   string `json:"arrival_terminal"`
	Duration          string `json:"duration"`
	// Layover is the wait before the next segment; empty on the last one.
	Layover string `json:"layover,omitempty"`
}

type ItineraryView struct {
	Duration string        `json:"duration"`
	Stops    int           `json:"stops"`
	Segments []SegmentView `json:"segments"`
}

type OfferView struct {
	Airline     string          `json:"airline"`
	AirlineCode string          `json:"airline_code"`
	Price       string          `json:"price"`
	Itineraries []ItineraryView `json:"itineraries"`
}

// NormalizeOffer builds the display model for one offer. The offer-level
// airline is the validating carrier, or the first segment's carrier when
// none is given. It never mutates the offer.
func NormalizeOffer(offer FlightOffer, currency string) OfferView {
	code := ""
	if len(offer.ValidatingAirlineCodes) > 0 {
		code = offer.ValidatingAirlineCodes[0]
	}
	if code == "" && len(offer.Itineraries) > 0 && len(offer.Itineraries[0].Segments) > 0 {
		code = offer.Itineraries[0].Segments[0].CarrierCode
	}

	view := OfferView{
		Airline:     AirlineName(code),
		AirlineCode: code,
		Price:       FormatPrice(offer.Price, currency),
		Itineraries: make([]ItineraryView, 0, len(offer.Itineraries)),
	}
	for _, it := range offer.Itineraries {
		view.Itineraries = append(view.Itineraries, normalizeItinerary(it))
	}
	return view
}

func NormalizeOffers(offers []FlightOffer, currency string) []OfferView {
	views := make([]OfferView, 0, len(offers))
	for _, o := range offers {
		views = append(views, NormalizeOffer(o, currency))
	}
	return views
}

func normalizeItinerary(it Itinerary) ItineraryView {
	view := ItineraryView{
		Duration: it.Duration.String(),
		Stops:    stopCount(it.Segments),
		Segments: make([]SegmentView, 0, len(it.Segments)),
	}
	for i, seg := range it.Segments {
		sv := SegmentView{
			Airline:           AirlineName(seg.CarrierCode),
			AirlineCode:       seg.CarrierCode,
			FlightNumber:      strings.TrimSpace(seg.CarrierCode + " " + seg.Number),
			Aircraft:          seg.Aircraft.Code,
			DepartureCode:     seg.Departure.IATACode,
			DepartureTime:     FormatTime(seg.Departure.At),
			DepartureDate:     FormatDate(seg.Departure.At),
			DepartureTerminal: terminal(seg.Departure.Terminal),
			ArrivalCode:       seg.Arrival.IATACode,
			ArrivalTime:       FormatTime(seg.Arrival.At),
			ArrivalDate:       FormatDate(seg.Arrival.At),
			ArrivalTerminal:   terminal(seg.Arrival.Terminal),
			Duration:          seg.Duration.String(),
		}
		if i+1 < len(it.Segments) {
			sv.Layover = FormatLayover(seg.Arrival.At, it.Segments[i+1].Departure.At)
		}
		view.Segments = append(view.Segments, sv)
	}
	return view
}

// stopCount counts connections plus technical stops inside segments.
func stopCount(segments []Segment) int {
	if len(segments) == 0 {
		return 0
	}
	stops := len(segments) - 1
	for _, s := range segments {
		stops += s.Stops
	}
	return stops
}

func terminal(t string) string {
	if t == "" {
		return "TBD"
	}
	return t
}

// ─── Formatting helpers ───────────────────────────────────────────────────────

var (
	hoursPattern   = regexp.MustCompile(`(\d+)H`)
	minutesPattern = regexp.MustCompile(`(\d+)M`)
)

// FormatDuration converts an ISO 8601 duration (PT5H30M) to "5h 30m".
func FormatDuration(iso string) string {
	if iso == "" {
		return "N/A"
	}
	// Only the time part is considered; a leading "P...T" date part would
	// otherwise match M as months.
	if i := strings.IndexByte(iso, 'T'); i >= 0 {
		iso = iso[i+1:]
	}
	hours, minutes := 0, 0
	if m := hoursPattern.FindStringSubmatch(iso); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := minutesPattern.FindStringSubmatch(iso); m != nil {
		minutes, _ = strconv.Atoi(m[1])
	}
	return formatHoursMinutes(hours, minutes)
}

func FormatMinutes(total int) string {
	if total < 0 {
		total = 0
	}
	return formatHoursMinutes(total/60, total%60)
}

func formatHoursMinutes(hours, minutes int) string {
	switch {
	case hours == 0 && minutes == 0:
		return "N/A"
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", s, lastErr)
}

// Layover is the gap between an arrival and the next departure. Bad or
// missing timestamps yield zero, and so does a negative gap.
func Layover(arrivalAt, departureAt string) time.Duration {
	arr, err := parseTimestamp(arrivalAt)
	if err != nil {
		return 0
	}
	dep, err := parseTimestamp(departureAt)
	if err != nil {
		return 0
	}
	d := dep.Sub(arr)
	if d < 0 {
		return 0
	}
	return d
}

func FormatLayover(arrivalAt, departureAt string) string {
	return FormatMinutes(int(Layover(arrivalAt, departureAt) / time.Minute))
}

// FormatTime renders the local wall-clock time of a provider timestamp.
func FormatTime(at string) string {
	if strings.TrimSpace(at) == "" {
		return "N/A"
	}
	t, err := parseTimestamp(at)
	if err != nil {
		return "Invalid time"
	}
	return t.Format("15:04")
}

func FormatDate(at string) string {
	if strings.TrimSpace(at) == "" {
		return "N/A"
	}
	t, err := parseTimestamp(at)
	if err != nil {
		return "Invalid date"
	}
	return t.Format("Mon, Jan 2")
}

// FormatPrice renders a price with two decimals. Bare amounts carry no
// currency of their own and take the one the search was made in.
func FormatPrice(p Price, searchCurrency string) string {
	switch p.Kind {
	case PriceStructured:
		cur := p.Currency
		if cur == "" {
			cur = searchCurrency
		}
		return strings.TrimSpace(fmt.Sprintf("%s %.2f", cur, p.Total))
	case PriceBare:
		return strings.TrimSpace(fmt.Sprintf("%s %.2f", searchCurrency, p.Total))
	default:
		return "Price unavailable"
	}
}

var airlineNames = map[string]string{
	"AA": "American Airlines",
	"AC": "Air Canada",
	"AF": "Air France",
	"AY": "Finnair",
	"AZ": "ITA Airways",
	"BA": "British Airways",
	"CX": "Cathay Pacific",
	"DL": "Delta Air Lines",
	"EK": "Emirates",
	"ET": "Ethiopian Airlines",
	"EY": "Etihad Airways",
	"FR": "Ryanair",
	"FZ": "FlyDubai",
	"IB": "Iberia",
	"JL": "Japan Airlines",
	"KL": "KLM Royal Dutch Airlines",
	"KQ": "Kenya Airways",
	"LH": "Lufthansa",
	"LX": "Swiss International Air Lines",
	"MS": "EgyptAir",
	"NH": "All Nippon Airways",
	"OS": "Austrian Airlines",
	"PC": "Pegasus Airlines",
	"QF": "Qantas",
	"QR": "Qatar Airways",
	"SQ": "Singapore Airlines",
	"TK": "Turkish Airlines",
	"U2": "EasyJet",
	"UA": "United Airlines",
	"VS": "Virgin Atlantic",
	"W6": "Wizz Air",
}

// AirlineName returns full airline name from IATA code
func AirlineName(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if name, ok := airlineNames[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}

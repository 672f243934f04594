package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ─── Raw provider offers ──────────────────────────────────────────────────────

type FlightOffer struct {
	Source                 string            `json:"source,omitempty"`
	Price                  Price             `json:"price"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes,omitempty"`
	Itineraries            []Itinerary       `json:"itineraries"`
	TravelerPricings       []json.RawMessage `json:"travelerPricings,omitempty"`
}

type Itinerary struct {
	Duration Duration  `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
	Terminal string `json:"terminal,omitempty"`
}

type Segment struct {
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
	Aircraft    struct {
		Code string `json:"code"`
	} `json:"aircraft"`
	Departure Endpoint `json:"departure"`
	Arrival   Endpoint `json:"arrival"`
	Duration  Duration `json:"duration"`
	Stops     int      `json:"numberOfStops"`
}

// ─── Price ────────────────────────────────────────────────────────────────────

type PriceKind int

const (
	PriceAbsent PriceKind = iota
	PriceStructured
	PriceBare
)

// Price is an offer price resolved once at decode time. Providers send it
// either as {total, currency} or as a bare number or numeric string.
type Price struct {
	Kind     PriceKind
	Total    float64
	Currency string
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = Price{}
		return nil
	}

	if data[0] == '{' {
		var obj struct {
			Total      json.RawMessage `json:"total"`
			GrandTotal json.RawMessage `json:"grandTotal"`
			Currency   string          `json:"currency"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		raw := obj.Total
		if len(raw) == 0 || string(raw) == "null" {
			raw = obj.GrandTotal
		}
		total, ok := parseAmount(raw)
		if !ok {
			*p = Price{}
			return nil
		}
		*p = Price{Kind: PriceStructured, Total: total, Currency: strings.ToUpper(obj.Currency)}
		return nil
	}

	total, ok := parseAmount(data)
	if !ok {
		*p = Price{}
		return nil
	}
	*p = Price{Kind: PriceBare, Total: total}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PriceStructured:
		return json.Marshal(struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		}{strconv.FormatFloat(p.Total, 'f', 2, 64), p.Currency})
	case PriceBare:
		return json.Marshal(strconv.FormatFloat(p.Total, 'f', 2, 64))
	default:
		return []byte("null"), nil
	}
}

func parseAmount(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// ─── Duration ─────────────────────────────────────────────────────────────────

type DurationKind int

const (
	DurationAbsent DurationKind = iota
	DurationISO
	DurationMinutes
)

// Duration holds either an ISO-8601 "PT2H30M" string or a plain minute
// count, whichever the provider sent.
type Duration struct {
	Kind    DurationKind
	ISO     string
	Minutes int
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*d = Duration{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*d = Duration{}
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			*d = Duration{Kind: DurationMinutes, Minutes: n}
			return nil
		}
		*d = Duration{Kind: DurationISO, ISO: strings.ToUpper(s)}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration: unsupported value %s", string(data))
	}
	*d = Duration{Kind: DurationMinutes, Minutes: int(n)}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DurationISO:
		return json.Marshal(d.ISO)
	case DurationMinutes:
		return json.Marshal(d.Minutes)
	default:
		return []byte("null"), nil
	}
}

// String renders the duration for display.
func (d Duration) String() string {
	switch d.Kind {
	case DurationISO:
		return FormatDuration(d.ISO)
	case DurationMinutes:
		return FormatMinutes(d.Minutes)
	default:
		return "N/A"
	}
}

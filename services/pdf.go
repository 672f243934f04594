package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type PDFData struct {
	Title        string
	TravelerName string
	Offer        OfferView
	SavedAt      time.Time
}

// ItineraryPDF renders a normalized flight offer and returns raw bytes.
func ItineraryPDF(data PDFData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(120, 10, "Drift", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	title := data.Title
	if title == "" {
		title = "Saved Flight Itinerary"
	}
	pdf.CellFormat(170, 6, title, "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	pdf.MultiCell(164, 4, "This is NOT a booking confirmation. Prices and schedules come from the search provider and may change.", "", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Traveler ─────────────────────────────────────────────
	sectionHeader("Traveler Information")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	savedAt := data.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	row("Name", name)
	row("Saved", savedAt.UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Offer ────────────────────────────────────────────────
	sectionHeader("Flight Offer")
	row("Airline", data.Offer.Airline)
	row("Price", data.Offer.Price)
	pdf.Ln(4)

	for i, it := range data.Offer.Itineraries {
		label := "Outbound"
		if i == 1 {
			label = "Return"
		} else if i > 1 {
			label = fmt.Sprintf("Leg %d", i+1)
		}
		stops := "Direct"
		if it.Stops > 0 {
			stops = fmt.Sprintf("%d stop(s)", it.Stops)
		}
		sectionHeader(fmt.Sprintf("%s - %s, %s", label, it.Duration, stops))

		for _, seg := range it.Segments {
			row(seg.FlightNumber, seg.Airline)
			row("Departs", fmt.Sprintf("%s %s %s (Terminal %s)",
				seg.DepartureCode, seg.DepartureDate, seg.DepartureTime, seg.DepartureTerminal))
			row("Arrives", fmt.Sprintf("%s %s %s (Terminal %s)",
				seg.ArrivalCode, seg.ArrivalDate, seg.ArrivalTime, seg.ArrivalTerminal))
			row("Flight time", seg.Duration)
			if seg.Layover != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.SetTextColor(130, 90, 20)
				pdf.CellFormat(170, 6, "Layover at "+seg.ArrivalCode+": "+seg.Layover, "", 1, "C", false, 0, "")
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Ln(2)
		}
		pdf.Ln(2)
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8, "Generated by Drift travel planner - Not a booking confirmation", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

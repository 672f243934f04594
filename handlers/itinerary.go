package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drift/database"
	"drift/planner"
	"drift/services"
)

type SaveItineraryRequest struct {
	OfferIndex   int    `json:"offer_index"`
	Name         string `json:"name"`
	TravelerName string `json:"traveler_name"`
}

type SaveItineraryResponse struct {
	ItineraryID string `json:"itinerary_id"`
	PDFURL      string `json:"pdf_url"`
	Message     string `json:"message"`
}

// SaveItinerary stores one offer of the session's last flight search as a
// PDF and records it in the user's saved itineraries.
func (a *API) SaveItinerary(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if s.Trip == nil {
		fail(c, planner.ErrUnsupported)
		return
	}
	var req SaveItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	offer, searchID, err := s.Trip.Offer(req.OfferIndex)
	if err != nil {
		if errors.Is(err, planner.ErrNoResult) {
			fail(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Selected flight does not exist"})
		return
	}

	form := s.Trip.Form()
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = form.Origin + " to " + form.Destination
	}

	pdfBytes, err := services.ItineraryPDF(services.PDFData{
		Title:        name,
		TravelerName: req.TravelerName,
		Offer:        offer,
		SavedAt:      time.Now(),
	})
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	offerJSON, err := json.Marshal(offer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode itinerary"})
		return
	}

	itin := &database.Itinerary{
		ID:           uuid.NewString(),
		SearchID:     searchID,
		Name:         name,
		OfferJSON:    string(offerJSON),
		PDFData:      pdfBytes,
		TravelerName: req.TravelerName,
	}
	if err := a.Itineraries.SaveItinerary(itin); err != nil {
		log.Printf("❌ Failed to save itinerary with PDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	if a.Prefs != nil {
		if _, err := a.Prefs.SaveItinerary(name, form.Destination, offerJSON); err != nil {
			log.Printf("⚠️  itinerary %s saved but not added to preferences: %v", itin.ID, err)
		}
	}

	log.Printf("✅ PDF generated for itinerary %s (%d bytes)", itin.ID, len(pdfBytes))
	c.JSON(http.StatusCreated, SaveItineraryResponse{
		ItineraryID: itin.ID,
		PDFURL:      "/api/itineraries/" + itin.ID + "/pdf",
		Message:     "Itinerary saved",
	})
}

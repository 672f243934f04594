package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift/database"
)

func (a *API) DownloadPDF(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing itinerary ID"})
		return
	}

	itinerary, err := a.Itineraries.GetItinerary(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load itinerary %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load itinerary"})
		return
	}

	if len(itinerary.PDFData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this itinerary"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=drift-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", itinerary.PDFData)
}

func (a *API) Health(c *gin.Context) {
	dbStatus := "not configured"
	if a.DB != nil {
		dbStatus = "ok"
		if err := a.DB.PingContext(c.Request.Context()); err != nil {
			dbStatus = "error: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Drift API",
		"database": dbStatus,
	})
}

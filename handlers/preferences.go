package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift/prefs"
)

func (a *API) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, a.Prefs.Read())
}

func (a *API) PatchPreferences(c *gin.Context) {
	var patch prefs.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.Prefs.Write(patch)
	if err != nil {
		log.Printf("❌ Failed to save preferences: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (a *API) ClearPreferences(c *gin.Context) {
	if err := a.Prefs.Clear(); err != nil {
		log.Printf("❌ Failed to clear preferences: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear preferences"})
		return
	}
	c.JSON(http.StatusOK, a.Prefs.Read())
}

func (a *API) Recommendations(c *gin.Context) {
	c.JSON(http.StatusOK, a.Prefs.Recommendations())
}

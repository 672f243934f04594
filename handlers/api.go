package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"drift/database"
	"drift/planner"
	"drift/prefs"
	"drift/services"
)

// Preferences is the part of the preference hub the gateway exposes.
type Preferences interface {
	Read() prefs.Preferences
	Write(patch prefs.Patch) (prefs.Preferences, error)
	Recommendations() prefs.Recommendations
	Clear() error
	SaveItinerary(name, location string, itinerary json.RawMessage) (prefs.SavedItinerary, error)
}

// Pinger reports database health. Nil when running without a database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type API struct {
	Sessions    *planner.Registry
	Prefs       Preferences
	Itineraries database.Repository
	DB          Pinger
}

func (a *API) Register(r gin.IRouter) {
	r.GET("/health", a.Health)

	r.GET("/preferences", a.GetPreferences)
	r.PATCH("/preferences", a.PatchPreferences)
	r.DELETE("/preferences", a.ClearPreferences)
	r.GET("/preferences/recommendations", a.Recommendations)

	r.POST("/sessions", a.CreateSession)
	s := r.Group("/sessions/:id")
	{
		s.DELETE("", a.DeleteSession)
		s.GET("/fields/:field", a.GetField)
		s.POST("/fields/:field/input", a.FieldInput)
		s.POST("/fields/:field/select", a.FieldSelect)
		s.POST("/fields/:field/highlight", a.FieldHighlight)
		s.POST("/fields/:field/accept", a.FieldAccept)
		s.POST("/fields/:field/focus", a.FieldFocus)
		s.POST("/fields/:field/blur", a.FieldBlur)
		s.POST("/fields/:field/cancel", a.FieldCancel)
		s.PATCH("/form", a.PatchForm)
		s.POST("/locate", a.Locate)
		s.POST("/submit", a.Submit)
		s.POST("/plan", a.Plan)
		s.GET("/results", a.Results)
		s.GET("/notifications", a.Notifications)
		s.DELETE("/notifications/:nid", a.DismissNotification)
		s.POST("/itineraries", a.SaveItinerary)
	}

	r.GET("/itineraries/:id/pdf", a.DownloadPDF)
}

func (a *API) session(c *gin.Context) (*planner.Session, bool) {
	s, ok := a.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return s, true
}

// fail maps flow errors to a status and the one-line user message.
func fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, planner.ErrSubmitInFlight):
		status = http.StatusConflict
	case planner.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, planner.ErrUnsupported), errors.Is(err, planner.ErrUnknownFlow):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrNoResult):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": planner.UserMessage(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drift/autocomplete"
	"drift/planner"
	"drift/services"
)

type CreateSessionRequest struct {
	Flow planner.Kind `json:"flow" binding:"required"`
}

type InputRequest struct {
	Text string `json:"text"`
}

type SelectRequest struct {
	Index *int `json:"index" binding:"required"`
}

type HighlightRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type LocateRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

func (a *API) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := a.Sessions.Create(req.Flow)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.ID,
		"flow":       s.Kind,
		"form":       s.Form(),
	})
}

func (a *API) DeleteSession(c *gin.Context) {
	if !a.Sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// field resolves the session and the named autocomplete input.
func (a *API) field(c *gin.Context) (autocomplete.Controller, bool) {
	s, ok := a.session(c)
	if !ok {
		return nil, false
	}
	f, ok := s.Field(c.Param("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown field " + c.Param("field")})
		return nil, false
	}
	return f, true
}

func (a *API) GetField(c *gin.Context) {
	f, ok := a.field(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.View())
}

func (a *API) FieldInput(c *gin.Context) {
	f, ok := a.field(c)
	if !ok {
		return
	}
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f.Input(req.Text)
	c.JSON(http.StatusOK, f.View())
}

func (a *API) FieldSelect(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	f, ok := s.Field(c.Param("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown field " + c.Param("field")})
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !f.Select(*req.Index) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No suggestion at that position"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": f.View(), "form": s.Form()})
}

func (a *API) FieldHighlight(c *gin.Context) {
	f, ok := a.field(c)
	if !ok {
		return
	}
	var req HighlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f.Highlight(req.Delta)
	c.JSON(http.StatusOK, f.View())
}

// FieldAccept selects the highlighted suggestion. Nothing happens when
// no suggestion is highlighted.
func (a *API) FieldAccept(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	f, ok := s.Field(c.Param("field"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown field " + c.Param("field")})
		return
	}
	accepted := f.Accept()
	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "field": f.View(), "form": s.Form()})
}

func (a *API) FieldFocus(c *gin.Context)  { a.fieldAction(c, autocomplete.Controller.Focus) }
func (a *API) FieldBlur(c *gin.Context)   { a.fieldAction(c, autocomplete.Controller.Blur) }
func (a *API) FieldCancel(c *gin.Context) { a.fieldAction(c, autocomplete.Controller.Cancel) }

func (a *API) fieldAction(c *gin.Context, action func(autocomplete.Controller)) {
	f, ok := a.field(c)
	if !ok {
		return
	}
	action(f)
	c.JSON(http.StatusOK, f.View())
}

func (a *API) PatchForm(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if s.HereNow != nil {
		var patch planner.HereNowPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, s.HereNow.Update(patch))
		return
	}
	var patch planner.TripPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Trip.Update(patch))
}

func (a *API) Locate(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if s.HereNow == nil {
		fail(c, planner.ErrUnsupported)
		return
	}
	var req LocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	place, err := s.HereNow.Locate(c.Request.Context(), services.Coordinates{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"located": false,
			"message": "Could not determine your location. Please enter it manually.",
			"form":    s.HereNow.Form(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"located": true, "place": place, "form": s.HereNow.Form()})
}

func (a *API) Submit(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	ctx := planner.WithLocale(c.Request.Context(), services.PreferredLocale(c.GetHeader("Accept-Language")))
	result, err := s.Submit(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	if s.Trip != nil {
		c.JSON(http.StatusOK, gin.H{"offers": s.Trip.Results()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) Plan(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if s.Trip == nil {
		fail(c, planner.ErrUnsupported)
		return
	}
	result, err := s.Trip.PlanTrip(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) Results(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if s.HereNow != nil {
		c.JSON(http.StatusOK, s.HereNow.Status())
		return
	}
	search := s.Trip.SearchStatus()
	c.JSON(http.StatusOK, gin.H{
		"search": gin.H{"phase": search.Phase, "error": search.Error},
		"offers": s.Trip.Results(),
		"plan":   s.Trip.PlanStatus(),
	})
}

func (a *API) Notifications(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": s.Notifier.Active()})
}

func (a *API) DismissNotification(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}
	if !s.Notifier.Dismiss(c.Param("nid")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

type Handlers struct {
	svcs interfaces.Services
}

func NewHandlers(svcs interfaces.Services) *Handlers {
	return &Handlers{svcs: svcs}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeError(c, apperrors.NewValidationError("invalid request body").WithContext("error", err.Error()))
		return false
	}
	return true
}

// POST /api/v1/auth/signup
func (h *Handlers) SignUp(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.svcs.Identity.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// POST /api/v1/auth/signin
func (h *Handlers) SignIn(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.svcs.Identity.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

// POST /api/v1/auth/signout
func (h *Handlers) SignOut(c *gin.Context) {
	if err := h.svcs.Identity.SignOut(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/me
func (h *Handlers) Me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}

// PUT /api/v1/me/timezone
func (h *Handlers) SetTimezone(c *gin.Context) {
	var req timezoneRequest
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	if err := h.svcs.Users.SetTimezone(c.Request.Context(), user.ID, req.Timezone); err != nil {
		writeError(c, err)
		return
	}
	updated, err := h.svcs.Users.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(updated))
}

// GET /api/v1/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.svcs.Settings.Resolved(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// PUT /api/v1/settings
func (h *Handlers) PutSettings(c *gin.Context) {
	var req settingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.svcs.Settings.Save(c.Request.Context(), currentUser(c).ID, ratioText(req.CarbRatio), ratioText(req.GlucoseRatio))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// GET /api/v1/entries
func (h *Handlers) ListEntries(c *gin.Context) {
	entries, err := h.svcs.Log.ListEntries(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": toEntryResponses(entries)})
}

// POST /api/v1/entries
func (h *Handlers) AddEntry(c *gin.Context) {
	var req entryRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svcs.Log.AddEntry(c.Request.Context(), currentUser(c).ID, services.NewEntry{
		Timestamp:    req.Timestamp,
		BloodGlucose: *req.BloodGlucose,
		InsulinUnits: req.InsulinUnits,
		CarbsGrams:   req.CarbsGrams,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryResponse(*entry))
}

// DELETE /api/v1/entries/:id
func (h *Handlers) DeleteEntry(c *gin.Context) {
	if err := h.svcs.Log.DeleteEntry(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/entries/stream
//
// Server-sent events, one "entries" event per snapshot of the log.
func (h *Handlers) StreamEntries(c *gin.Context) {
	snapshots := h.svcs.Watcher.Watch(c.Request.Context(), currentUser(c).ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		snapshot, ok := <-snapshots
		if !ok {
			return false
		}
		c.SSEvent("entries", toEntryResponses(snapshot))
		return true
	})
}

// POST /api/v1/dose/suggest
func (h *Handlers) SuggestDose(c *gin.Context) {
	var req doseRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.svcs.Dose.Suggest(c.Request.Context(), currentUser(c).ID, *req.BloodGlucose, req.Carbs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSuggestionResponse(result))
}

// POST /api/v1/dose/save
func (h *Handlers) SaveDose(c *gin.Context) {
	var req doseRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, result, err := h.svcs.Dose.SaveSuggestion(c.Request.Context(), currentUser(c).ID, *req.BloodGlucose, req.Carbs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"entry":      toEntryResponse(*entry),
		"suggestion": toSuggestionResponse(result),
	})
}

// GET /api/v1/trend?day=YYYY-MM-DD
func (h *Handlers) Trend(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	var (
		trend dosing.DailyTrend
		err   error
	)
	if day := strings.TrimSpace(c.Query("day")); day != "" {
		d, parseErr := civil.ParseDate(day)
		if parseErr != nil {
			writeError(c, apperrors.NewValidationError("day must be in YYYY-MM-DD format"))
			return
		}
		trend, err = h.svcs.Trend.Day(ctx, user, d)
	} else {
		trend, err = h.svcs.Trend.Today(ctx, user)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrendResponse(trend))
}

// GET /api/v1/alarms
func (h *Handlers) ListAlarms(c *gin.Context) {
	alarms, err := h.svcs.Alarms.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]alarmResponse, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, toAlarmResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"alarms": out})
}

// POST /api/v1/alarms
func (h *Handlers) AddAlarm(c *gin.Context) {
	var req alarmRequest
	if !bindJSON(c, &req) {
		return
	}
	alarm, err := h.svcs.Alarms.Add(c.Request.Context(), currentUser(c).ID, *req.Hour, *req.Minute, req.Label)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAlarmResponse(*alarm))
}

// DELETE /api/v1/alarms/:id
func (h *Handlers) DeleteAlarm(c *gin.Context) {
	if err := h.svcs.Alarms.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

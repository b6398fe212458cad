package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	"github.com/vladimiradmaev/diabetes-companion/internal/services"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type timezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
}

// settingsRequest accepts ratios as JSON numbers or strings
type settingsRequest struct {
	CarbRatio    any `json:"carb_ratio"`
	GlucoseRatio any `json:"glucose_ratio"`
}

type entryRequest struct {
	Timestamp    int64    `json:"timestamp"`
	BloodGlucose *int     `json:"blood_glucose" binding:"required"`
	InsulinUnits *float64 `json:"insulin_units"`
	CarbsGrams   *float64 `json:"carbs_grams"`
}

type doseRequest struct {
	BloodGlucose *int    `json:"blood_glucose" binding:"required"`
	Carbs        float64 `json:"carbs"`
}

type alarmRequest struct {
	Hour   *int   `json:"hour" binding:"required"`
	Minute *int   `json:"minute" binding:"required"`
	Label  string `json:"label"`
}

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email,omitempty"`
	TelegramID int64     `json:"telegram_id,omitempty"`
	Timezone   string    `json:"timezone"`
	CreatedAt  time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type settingsResponse struct {
	CarbRatio    float64 `json:"carb_ratio"`
	GlucoseRatio float64 `json:"glucose_ratio"`
}

type entryResponse struct {
	ID           string   `json:"id"`
	Timestamp    int64    `json:"timestamp"`
	BloodGlucose int      `json:"blood_glucose"`
	InsulinUnits *float64 `json:"insulin_units,omitempty"`
	CarbsGrams   *float64 `json:"carbs_grams,omitempty"`
}

type suggestionResponse struct {
	BloodGlucose    int              `json:"blood_glucose"`
	Carbs           float64          `json:"carbs"`
	NeedsDose       bool             `json:"needs_dose"`
	Units           float64          `json:"units"`
	CarbUnits       float64          `json:"carb_units"`
	CorrectionUnits float64          `json:"correction_units"`
	Total           float64          `json:"total"`
	Settings        settingsResponse `json:"settings"`
}

type trendResponse struct {
	Day          string    `json:"day"`
	Count        int       `json:"count"`
	Average      *int      `json:"average,omitempty"`
	Min          *int      `json:"min,omitempty"`
	Max          *int      `json:"max,omitempty"`
	Values       []int     `json:"values"`
	Normalized   []float64 `json:"normalized"`
	Timestamps   []int64   `json:"timestamps"`
	TotalInsulin float64   `json:"total_insulin"`
	TotalCarbs   float64   `json:"total_carbs"`
}

type alarmResponse struct {
	ID     string `json:"id"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Label  string `json:"label"`
}

func ratioText(v any) string {
	switch r := v.(type) {
	case string:
		return r
	case float64:
		return strconv.FormatFloat(r, 'f', -1, 64)
	default:
		return ""
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		TelegramID: u.TelegramID,
		Timezone:   u.Timezone,
		CreatedAt:  u.CreatedAt,
	}
}

func toSessionResponse(s *services.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.ExpiresAt,
		User:      toUserResponse(s.User),
	}
}

func toSettingsResponse(s domain.DosingSettings) settingsResponse {
	return settingsResponse{CarbRatio: s.CarbRatio, GlucoseRatio: s.GlucoseRatio}
}

func toEntryResponse(e domain.LogEntry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		Timestamp:    e.Timestamp,
		BloodGlucose: e.BloodGlucose,
		InsulinUnits: e.InsulinUnits,
		CarbsGrams:   e.CarbsGrams,
	}
}

func toEntryResponses(entries []domain.LogEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toSuggestionResponse(r *services.DoseResult) suggestionResponse {
	return suggestionResponse{
		BloodGlucose:    r.BloodGlucose,
		Carbs:           r.Carbs,
		NeedsDose:       r.Suggestion.NeedsDose,
		Units:           r.Suggestion.Units,
		CarbUnits:       r.Suggestion.CarbUnits,
		CorrectionUnits: r.Suggestion.CorrectionUnits,
		Total:           r.Suggestion.Total,
		Settings:        toSettingsResponse(r.Settings),
	}
}

func toTrendResponse(t dosing.DailyTrend) trendResponse {
	resp := trendResponse{
		Day:          t.Day.String(),
		Count:        t.Count,
		Values:       t.Values(),
		Normalized:   t.Normalized(),
		Timestamps:   make([]int64, len(t.Points)),
		TotalInsulin: t.TotalInsulin,
		TotalCarbs:   t.TotalCarbs,
	}
	for i, p := range t.Points {
		resp.Timestamps[i] = p.Timestamp
	}
	if t.HasData() {
		avg, lo, hi := t.Average, t.Min, t.Max
		resp.Average, resp.Min, resp.Max = &avg, &lo, &hi
	}
	return resp
}

func toAlarmResponse(a domain.Alarm) alarmResponse {
	return alarmResponse{ID: a.ID, Hour: a.Hour, Minute: a.Minute, Label: a.Label}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

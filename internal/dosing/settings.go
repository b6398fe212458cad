// Package dosing turns logged readings and user ratios into dose suggestions
// and same-day glucose summaries. Everything here is pure and safe for
// concurrent use.
package dosing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
)

const (
	DefaultCarbRatio    = 10.0 // grams of carbs per 1 unit
	DefaultGlucoseRatio = 50.0 // mg/dL per 1 unit
)

// DefaultSettings returns the ratios used when nothing valid is configured
func DefaultSettings() domain.DosingSettings {
	return domain.DosingSettings{
		CarbRatio:    DefaultCarbRatio,
		GlucoseRatio: DefaultGlucoseRatio,
	}
}

// Resolve normalizes raw ratio values into usable settings. Each value may be
// a string, a number, a *float64, a json.Number or nil. A value that is
// missing, unparsable, non-positive or not finite is replaced by its default
// without affecting the other one.
func Resolve(rawCarbRatio, rawGlucoseRatio any) domain.DosingSettings {
	return domain.DosingSettings{
		CarbRatio:    resolveRatio(rawCarbRatio, DefaultCarbRatio),
		GlucoseRatio: resolveRatio(rawGlucoseRatio, DefaultGlucoseRatio),
	}
}

// ResolveStored resolves persisted settings. nil means nothing was stored.
func ResolveStored(stored *domain.StoredSettings) domain.DosingSettings {
	if stored == nil {
		return DefaultSettings()
	}
	return Resolve(stored.CarbRatio, stored.GlucoseRatio)
}

// ParseRatio parses a ratio typed by a user. ok is false unless the value is
// a finite number above zero.
func ParseRatio(text string) (float64, bool) {
	v, ok := parseNumber(text)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func resolveRatio(raw any, def float64) float64 {
	v, ok := toFloat(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		return parseNumber(v)
	case json.Number:
		return parseNumber(v.String())
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case *string:
		if v == nil {
			return 0, false
		}
		return parseNumber(*v)
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// parseNumber accepts both "12.5" and "12,5"
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

package dosing

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
)

const (
	// DefaultTargetGlucose is the level that needs no correction, in mg/dL
	DefaultTargetGlucose = 110.0

	ratioFloor = 0.1
)

// Suggestion is a computed dose recommendation. It is never stored as is;
// saving it produces a LogEntry.
type Suggestion struct {
	NeedsDose bool    // false means no correction needed
	Units     float64 // rounded to 0.1, zero when NeedsDose is false

	CarbUnits       float64
	CorrectionUnits float64 // negative when glucose is below target
	Total           float64 // CarbUnits + CorrectionUnits before rounding
}

// String formats the suggestion for logs and CLI output
func (s Suggestion) String() string {
	if !s.NeedsDose {
		return "no correction needed"
	}
	return fmt.Sprintf("%.1f U", s.Units)
}

// Suggest computes a dose for the current glucose and carbs against the
// default target of 110 mg/dL
func Suggest(currentGlucose, carbs float64, settings domain.DosingSettings) Suggestion {
	return SuggestForTarget(currentGlucose, carbs, settings, DefaultTargetGlucose)
}

// SuggestForTarget computes a dose against an explicit target glucose
func SuggestForTarget(currentGlucose, carbs float64, settings domain.DosingSettings, target float64) Suggestion {
	carbRatio := math.Max(settings.CarbRatio, ratioFloor)
	glucoseRatio := math.Max(settings.GlucoseRatio, ratioFloor)
	if math.IsNaN(carbRatio) {
		carbRatio = ratioFloor
	}
	if math.IsNaN(glucoseRatio) {
		glucoseRatio = ratioFloor
	}
	if carbs < 0 {
		carbs = 0
	}

	s := Suggestion{
		CarbUnits:       carbs / carbRatio,
		CorrectionUnits: (currentGlucose - target) / glucoseRatio,
	}
	s.Total = s.CarbUnits + s.CorrectionUnits

	if math.IsNaN(s.Total) || math.IsInf(s.Total, 0) || s.Total <= 0 {
		return s
	}

	s.NeedsDose = true
	s.Units = RoundDose(s.Total)
	return s
}

// RoundDose rounds to the nearest 0.1 unit. Ties go up, decided on the
// shortest decimal form of the value, so 5.45 becomes 5.5.
func RoundDose(units float64) float64 {
	if math.IsNaN(units) || math.IsInf(units, 0) {
		return units
	}
	return decimal.NewFromFloat(units).Round(1).InexactFloat64()
}

// MaxGlucose is the highest reading ParseGlucose accepts, in mg/dL
const MaxGlucose = 10000

// ParseGlucose parses a glucose reading typed by a user. It is the caller side
// check that keeps malformed text away from the calculator.
func ParseGlucose(text string) (int, error) {
	v, ok := parseNumber(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(text)), "mg/dl"))
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewValidationError("blood glucose must be a number").
			WithContext("input", text)
	}
	if v < 0 || v > MaxGlucose {
		return 0, apperrors.NewValidationError("blood glucose must be between 0 and 10000 mg/dL").
			WithContext("input", text)
	}
	return int(math.Round(v)), nil
}

// ParseAmount parses an optional non-negative amount such as carbs or insulin.
// Empty input and "-" mean the amount was skipped.
func ParseAmount(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return nil, nil
	}
	v, ok := parseNumber(text)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, apperrors.NewValidationError("amount must be a non-negative number").
			WithContext("input", text)
	}
	return &v, nil
}

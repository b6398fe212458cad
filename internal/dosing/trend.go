package dosing

import (
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
)

// TrendPoint is one reading of a day in time order
type TrendPoint struct {
	Timestamp    int64 // ms
	BloodGlucose int
	Normalized   float64 // 0..1 within the day's min/max
}

// DailyTrend summarizes the readings of one calendar day. Count == 0 means
// there was no data; the remaining fields are then zero.
type DailyTrend struct {
	Day     civil.Date
	Count   int
	Average int
	Min     int
	Max     int
	Points  []TrendPoint

	TotalInsulin float64
	TotalCarbs   float64
}

// HasData reports whether the day had any readings
func (t DailyTrend) HasData() bool {
	return t.Count > 0
}

// Values returns the glucose values in time order
func (t DailyTrend) Values() []int {
	values := make([]int, len(t.Points))
	for i, p := range t.Points {
		values[i] = p.BloodGlucose
	}
	return values
}

// Normalized returns the 0..1 series in time order
func (t DailyTrend) Normalized() []float64 {
	series := make([]float64, len(t.Points))
	for i, p := range t.Points {
		series[i] = p.Normalized
	}
	return series
}

// Aggregate builds the trend for day from entries, converting timestamps to
// calendar dates in loc (UTC when nil). Entries with equal timestamps keep
// their input order.
func Aggregate(entries []domain.LogEntry, day civil.Date, loc *time.Location) DailyTrend {
	if loc == nil {
		loc = time.UTC
	}
	trend := DailyTrend{Day: day}

	sameDay := make([]domain.LogEntry, 0, len(entries))
	for _, e := range entries {
		if civil.DateOf(time.UnixMilli(e.Timestamp).In(loc)) == day {
			sameDay = append(sameDay, e)
		}
	}
	if len(sameDay) == 0 {
		return trend
	}

	sort.SliceStable(sameDay, func(i, j int) bool {
		return sameDay[i].Timestamp < sameDay[j].Timestamp
	})

	var sum float64
	minV, maxV := sameDay[0].BloodGlucose, sameDay[0].BloodGlucose
	for _, e := range sameDay {
		sum += float64(e.BloodGlucose)
		if e.BloodGlucose < minV {
			minV = e.BloodGlucose
		}
		if e.BloodGlucose > maxV {
			maxV = e.BloodGlucose
		}
		if e.InsulinUnits != nil {
			trend.TotalInsulin += *e.InsulinUnits
		}
		if e.CarbsGrams != nil {
			trend.TotalCarbs += *e.CarbsGrams
		}
	}

	// identical readings give a flat 0 series instead of dividing by zero
	span := math.Max(1, float64(maxV-minV))

	trend.Count = len(sameDay)
	trend.Average = int(math.Round(sum / float64(len(sameDay))))
	trend.Min = minV
	trend.Max = maxV
	trend.Points = make([]TrendPoint, len(sameDay))
	for i, e := range sameDay {
		trend.Points[i] = TrendPoint{
			Timestamp:    e.Timestamp,
			BloodGlucose: e.BloodGlucose,
			Normalized:   float64(e.BloodGlucose-minV) / span,
		}
	}
	return trend
}

// DayBounds returns the [start, end) range of day in loc as Unix milliseconds
func DayBounds(day civil.Date, loc *time.Location) (int64, int64) {
	if loc == nil {
		loc = time.UTC
	}
	start := day.In(loc)
	end := day.AddDays(1).In(loc)
	return start.UnixMilli(), end.UnixMilli()
}

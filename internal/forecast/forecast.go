// Package forecast implements the short-horizon availability predictor. The
// engine is a pure function over a window of historical observations; all
// time access goes through an injectable clock so results are reproducible
// in tests.
package forecast

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"parking-status-backend/internal/model"
)

// Forecast methods.
const (
	MethodBaseline = "baseline"
	MethodBlended  = "blended"
)

// Confidence bounds and blend weights.
const (
	confidenceMin = 0.3
	confidenceMax = 0.9

	weightSameTimeLastWeek = 0.5
	weightRecentTrend      = 0.3
	weightTimeOfDay        = 0.2
)

// Components holds the three named estimates that produced a blended
// forecast, kept for explainability.
type Components struct {
	SameTimeLastWeek float64 `json:"same_time_last_week"`
	RecentTrend      float64 `json:"recent_trend"`
	TimeOfDay        float64 `json:"time_of_day"`
}

// Result is a derived value, computed on each query and never persisted as
// state by the serving path.
type Result struct {
	HorizonMinutes    int         `json:"horizon_minutes"`
	PredictedOccupied int         `json:"predicted_occupied"`
	PredictedOpen     int         `json:"predicted_open"`
	Confidence        float64     `json:"confidence"`
	Method            string      `json:"method"`
	Components        *Components `json:"components,omitempty"`
}

// Engine computes availability forecasts. Now may be overridden for
// deterministic tests; the zero value uses wall-clock UTC.
type Engine struct {
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// Forecast predicts occupancy for the facility horizonMinutes ahead. The
// blend favors calendar recurrence over short-term momentum: parking demand
// is strongly day-of-week and hour-of-day driven.
func (e *Engine) Forecast(history []model.OccupancyObservation, facility model.Facility, horizonMinutes int) Result {
	if len(history) == 0 {
		open := int(math.Round(0.3 * float64(facility.Capacity)))
		return Result{
			HorizonMinutes:    horizonMinutes,
			PredictedOccupied: facility.Capacity - open,
			PredictedOpen:     open,
			Confidence:        confidenceMin,
			Method:            MethodBaseline,
		}
	}

	now := e.now()
	target := now.Add(time.Duration(horizonMinutes) * time.Minute)
	targetHour := target.Hour()
	targetDay := target.Weekday()

	wholeHistoryMean := meanOccupied(history)

	sameTime := e.sameTimeLastWeek(history, targetDay, targetHour, wholeHistoryMean)
	recent := e.recentTrend(history, now)
	timeOfDay := e.timeOfDay(history, targetHour, wholeHistoryMean)

	predictedOccupied := int(math.Round(
		weightSameTimeLastWeek*sameTime +
			weightRecentTrend*recent +
			weightTimeOfDay*timeOfDay))
	predictedOpen := clampInt(facility.Capacity-predictedOccupied, 0, facility.Capacity)

	return Result{
		HorizonMinutes:    horizonMinutes,
		PredictedOccupied: predictedOccupied,
		PredictedOpen:     predictedOpen,
		Confidence:        e.confidence(len(history), horizonMinutes),
		Method:            MethodBlended,
		Components: &Components{
			SameTimeLastWeek: sameTime,
			RecentTrend:      recent,
			TimeOfDay:        timeOfDay,
		},
	}
}

// sameTimeLastWeek averages observations on the target weekday within one
// hour of the target hour, falling back to the whole-window mean.
func (e *Engine) sameTimeLastWeek(history []model.OccupancyObservation, day time.Weekday, hour int, fallback float64) float64 {
	var matched []float64
	for _, obs := range history {
		if obs.ObservedAt.Weekday() == day && hourNear(obs.ObservedAt.Hour(), hour) {
			matched = append(matched, float64(obs.Occupied))
		}
	}
	if len(matched) == 0 {
		return fallback
	}
	return stat.Mean(matched, nil)
}

// recentTrend averages the last three observations inside the most recent
// 60 minutes; with none in that window it uses the single most recent
// observation.
func (e *Engine) recentTrend(history []model.OccupancyObservation, now time.Time) float64 {
	cutoff := now.Add(-60 * time.Minute)
	var recent []float64
	for _, obs := range history {
		if !obs.ObservedAt.Before(cutoff) {
			recent = append(recent, float64(obs.Occupied))
		}
	}
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	if len(recent) > 0 {
		return stat.Mean(recent, nil)
	}
	if len(history) > 0 {
		return float64(history[len(history)-1].Occupied)
	}
	return 0
}

// timeOfDay averages observations within one hour of the target hour across
// all days, falling back to the whole-window mean.
func (e *Engine) timeOfDay(history []model.OccupancyObservation, hour int, fallback float64) float64 {
	var matched []float64
	for _, obs := range history {
		if hourNear(obs.ObservedAt.Hour(), hour) {
			matched = append(matched, float64(obs.Occupied))
		}
	}
	if len(matched) == 0 {
		return fallback
	}
	return stat.Mean(matched, nil)
}

// confidence starts at 0.7, is overridden by observation count, then scaled
// down as the horizon grows. The scaling encodes growing uncertainty with
// lead time without a full probabilistic model.
func (e *Engine) confidence(observations, horizonMinutes int) float64 {
	confidence := 0.7
	if observations < 10 {
		confidence = 0.4
	} else if observations > 100 {
		confidence = 0.85
	}
	confidence *= 1 - float64(horizonMinutes)/120
	return clampFloat(confidence, confidenceMin, confidenceMax)
}

func meanOccupied(history []model.OccupancyObservation) float64 {
	values := make([]float64, len(history))
	for i, obs := range history {
		values[i] = float64(obs.Occupied)
	}
	return stat.Mean(values, nil)
}

func hourNear(hour, target int) bool {
	diff := hour - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

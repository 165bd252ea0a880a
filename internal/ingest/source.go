package ingest

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"parking-status-backend/internal/model"
)

// OccupancySnapshot is the shape of data the core expects from a sensor
// source, however that data is physically acquired.
type OccupancySnapshot struct {
	Occupied       int
	ShadedOccupied int
}

// Source is the collaborator boundary to the external sensor world. A
// snapshot fetch failing for one entity must not affect the others; the
// cadence controller enforces that.
type Source interface {
	FetchOccupancy(ctx context.Context, facilityID string) (OccupancySnapshot, error)
	FetchChargerStatus(ctx context.Context, chargerID string) (model.ChargerStatus, error)
}

// SimulatedSource produces a calendar-driven occupancy curve with noise so
// the process runs end-to-end without camera or charger-network integrations.
type SimulatedSource struct {
	mu         sync.Mutex
	rng        *rand.Rand
	facilities map[string]model.Facility
}

// NewSimulatedSource builds a source for the given facilities, seeded for
// reproducibility.
func NewSimulatedSource(facilities []model.Facility, seed int64) *SimulatedSource {
	byID := make(map[string]model.Facility, len(facilities))
	for _, f := range facilities {
		byID[f.ID] = f
	}
	return &SimulatedSource{
		rng:        rand.New(rand.NewSource(seed)),
		facilities: byID,
	}
}

// FetchOccupancy synthesizes an occupancy snapshot from the time of day.
// Demand peaks late morning and mid-afternoon on weekdays and flattens on
// weekends, with ±5% noise on top.
func (s *SimulatedSource) FetchOccupancy(ctx context.Context, facilityID string) (OccupancySnapshot, error) {
	facility, ok := s.facilities[facilityID]
	if !ok {
		return OccupancySnapshot{}, &UnknownEntityError{Kind: "facility", ID: facilityID}
	}

	s.mu.Lock()
	noise := s.rng.Float64()*0.1 - 0.05
	s.mu.Unlock()

	now := time.Now().UTC()
	fraction := demandFraction(now) + noise
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	occupied := int(math.Round(fraction * float64(facility.Capacity)))
	shaded := int(math.Round(fraction * float64(facility.ShadedCapacity)))
	return OccupancySnapshot{Occupied: occupied, ShadedOccupied: shaded}, nil
}

// FetchChargerStatus synthesizes a charger status, mostly available with
// occasional in-use and rare out-of-service readings.
func (s *SimulatedSource) FetchChargerStatus(ctx context.Context, chargerID string) (model.ChargerStatus, error) {
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	switch {
	case roll < 0.05:
		return model.ChargerOutOfService, nil
	case roll < 0.40:
		return model.ChargerInUse, nil
	default:
		return model.ChargerAvailable, nil
	}
}

// demandFraction maps a point in time to a base occupancy fraction.
func demandFraction(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60

	var base float64
	switch {
	case hour < 6:
		base = 0.10
	case hour < 9:
		base = 0.10 + (hour-6)/3*0.55 // morning ramp
	case hour < 15:
		base = 0.65 + 0.10*math.Sin((hour-9)/6*math.Pi)
	case hour < 19:
		base = 0.65 - (hour-15)/4*0.35 // evening drain
	default:
		base = 0.30 - (hour-19)/5*0.20
	}

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		base *= 0.6
	}
	return base
}

// UnknownEntityError reports a fetch for an entity the source has never
// heard of.
type UnknownEntityError struct {
	Kind string
	ID   string
}

func (e *UnknownEntityError) Error() string {
	return "unknown " + e.Kind + " " + e.ID
}

// Package ingest runs the periodic ingestion cadence: on every tick, one
// fresh snapshot per facility and charger is pulled from the external source
// and written through the stores.
package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"parking-status-backend/config"
	"parking-status-backend/internal/metrics"
	"parking-status-backend/internal/store"
)

// Service orchestrates the ingestion cadence. It holds no business state of
// its own; persistence is delegated to the injected store.
type Service struct {
	cfg     *config.IngestConfig
	store   store.Store
	source  Source
	metrics *metrics.Metrics

	// cycleMu guarantees mutual exclusion between successive cycles. An
	// overrunning cycle causes the next tick to be skipped, never queued.
	cycleMu sync.Mutex
}

// NewService creates a new ingestion service.
func NewService(cfg *config.IngestConfig, s store.Store, source Source, m *metrics.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		store:   s,
		source:  source,
		metrics: m,
	}
}

// Run starts the ingestion loop and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Ingestion is disabled. Not starting.")
		return
	}
	log.Printf("Starting ingestion service (interval %s)...", s.cfg.Interval)

	s.CycleOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ingestion service shutting down.")
			return
		case <-timer.C:
			s.CycleOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// CycleOnce performs a single ingestion cycle. Each facility and charger is
// processed independently: one bad sensor must not blank out the whole fleet.
func (s *Service) CycleOnce(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		log.Println("Previous ingestion cycle still running, skipping this tick.")
		s.metrics.RecordCycleSkipped()
		return
	}
	defer s.cycleMu.Unlock()

	now := time.Now().UTC()

	facilities, err := s.store.ListFacilities(ctx)
	if err != nil {
		log.Printf("Error listing facilities, aborting cycle: %v", err)
		return
	}

	for _, facility := range facilities {
		snapshot, err := s.source.FetchOccupancy(ctx, facility.ID)
		if err != nil {
			log.Printf("Error fetching occupancy for facility %s: %v", facility.ID, err)
			s.metrics.RecordEntityError("occupancy")
			continue
		}
		if _, err := s.store.AppendOccupancy(ctx, facility.ID, snapshot.Occupied, snapshot.ShadedOccupied, now); err != nil {
			log.Printf("Error appending occupancy for facility %s: %v", facility.ID, err)
			s.metrics.RecordEntityError("occupancy")
		}
	}

	chargers, err := s.store.ListChargers(ctx)
	if err != nil {
		log.Printf("Error listing chargers: %v", err)
		return
	}

	for _, charger := range chargers {
		status, err := s.source.FetchChargerStatus(ctx, charger.ID)
		if err != nil {
			log.Printf("Error fetching status for charger %s: %v", charger.ID, err)
			s.metrics.RecordEntityError("charger")
			continue
		}
		if err := s.store.SetChargerStatus(ctx, charger.ID, status); err != nil {
			log.Printf("Error setting status for charger %s: %v", charger.ID, err)
			s.metrics.RecordEntityError("charger")
		}
	}

	s.metrics.RecordCycle()
}

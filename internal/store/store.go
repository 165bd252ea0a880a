package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parking-status-backend/internal/model"
)

// Store defines the interface for all database operations. A single instance
// is constructed at process start and injected into the ingestion service and
// the API handlers.
type Store interface {
	Seed(ctx context.Context, facilities []model.Facility, chargers []model.Charger) error

	GetFacility(ctx context.Context, id string) (model.Facility, error)
	ListFacilities(ctx context.Context) ([]model.Facility, error)

	AppendOccupancy(ctx context.Context, facilityID string, occupied, shadedOccupied int, at time.Time) (string, error)
	LatestOccupancy(ctx context.Context, facilityID string) (*model.OccupancyObservation, error)
	OccupancyHistory(ctx context.Context, facilityID string, lookback time.Duration) ([]model.OccupancyObservation, error)

	UpsertCharger(ctx context.Context, charger model.Charger) error
	SetChargerStatus(ctx context.Context, chargerID string, status model.ChargerStatus) error
	ListChargersByFacility(ctx context.Context, facilityID string) ([]model.Charger, error)
	ListChargers(ctx context.Context) ([]model.Charger, error)

	LogForecast(ctx context.Context, entry model.ForecastLog) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Seed upserts the provisioned facilities and chargers. Facility capacity
// edits are administrative; seeding is the only write path for reference data.
func (s *gormStore) Seed(ctx context.Context, facilities []model.Facility, chargers []model.Charger) error {
	for _, f := range facilities {
		if f.ShadedCapacity > f.Capacity {
			return validationErrorf("facility %q: shaded capacity %d exceeds capacity %d", f.ID, f.ShadedCapacity, f.Capacity)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(facilities) > 0 {
			log.Printf("Seeding %d facilities...", len(facilities))
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "capacity", "shaded_capacity", "latitude", "longitude", "updated_at"}),
			}).Create(&facilities).Error; err != nil {
				return fmt.Errorf("seed facilities failed: %w", err)
			}
		}
		if len(chargers) > 0 {
			log.Printf("Seeding %d chargers...", len(chargers))
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"facility_id", "name", "power_kw", "updated_at"}),
			}).Create(&chargers).Error; err != nil {
				return fmt.Errorf("seed chargers failed: %w", err)
			}
		}
		return nil
	})
}

func (s *gormStore) GetFacility(ctx context.Context, id string) (model.Facility, error) {
	var facility model.Facility
	err := s.db.WithContext(ctx).First(&facility, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Facility{}, fmt.Errorf("facility %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Facility{}, fmt.Errorf("failed to load facility %q: %w", id, err)
	}
	return facility, nil
}

func (s *gormStore) ListFacilities(ctx context.Context) ([]model.Facility, error) {
	var facilities []model.Facility
	if err := s.db.WithContext(ctx).Order("name").Find(&facilities).Error; err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	return facilities, nil
}

// AppendOccupancy persists one occupancy observation. Negative counts are
// rejected; counts above capacity are clamped rather than rejected because
// the sensor source is noisy (a camera may over-count).
func (s *gormStore) AppendOccupancy(ctx context.Context, facilityID string, occupied, shadedOccupied int, at time.Time) (string, error) {
	if occupied < 0 {
		return "", validationErrorf("occupied count %d is negative", occupied)
	}
	if shadedOccupied < 0 {
		return "", validationErrorf("shaded occupied count %d is negative", shadedOccupied)
	}

	facility, err := s.GetFacility(ctx, facilityID)
	if err != nil {
		return "", err
	}

	if occupied > facility.Capacity {
		occupied = facility.Capacity
	}
	if shadedOccupied > facility.ShadedCapacity {
		shadedOccupied = facility.ShadedCapacity
	}

	if at.IsZero() {
		at = time.Now().UTC()
	}

	obs := model.OccupancyObservation{
		ID:             uuid.NewString(),
		FacilityID:     facilityID,
		ObservedAt:     at,
		Occupied:       occupied,
		ShadedOccupied: shadedOccupied,
	}
	if err := s.db.WithContext(ctx).Create(&obs).Error; err != nil {
		return "", fmt.Errorf("failed to append occupancy for facility %q: %w", facilityID, err)
	}
	return obs.ID, nil
}

func (s *gormStore) LatestOccupancy(ctx context.Context, facilityID string) (*model.OccupancyObservation, error) {
	var obs model.OccupancyObservation
	err := s.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("observed_at DESC").
		First(&obs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest occupancy for facility %q: %w", facilityID, err)
	}
	return &obs, nil
}

// OccupancyHistory returns observations within the lookback window, oldest
// first. Ordering happens on read so out-of-order inserts are tolerated.
func (s *gormStore) OccupancyHistory(ctx context.Context, facilityID string, lookback time.Duration) ([]model.OccupancyObservation, error) {
	cutoff := time.Now().UTC().Add(-lookback)
	var observations []model.OccupancyObservation
	err := s.db.WithContext(ctx).
		Where("facility_id = ? AND observed_at >= ?", facilityID, cutoff).
		Order("observed_at ASC").
		Find(&observations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy history for facility %q: %w", facilityID, err)
	}
	return observations, nil
}

// UpsertCharger creates the charger if new, otherwise overwrites status, power
// and name and refreshes the update timestamp. Fields left empty on an update
// keep their stored values.
func (s *gormStore) UpsertCharger(ctx context.Context, charger model.Charger) error {
	if charger.Status != "" && !model.ValidChargerStatus(charger.Status) {
		return validationErrorf("unknown charger status %q", charger.Status)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Charger
		err := tx.First(&existing, "id = ?", charger.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var facility model.Facility
			if err := tx.First(&facility, "id = ?", charger.FacilityID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("facility %q: %w", charger.FacilityID, ErrNotFound)
				}
				return fmt.Errorf("failed to load facility %q: %w", charger.FacilityID, err)
			}
			if charger.Status == "" {
				charger.Status = model.ChargerAvailable
			}
			if err := tx.Omit("Facility").Create(&charger).Error; err != nil {
				return fmt.Errorf("failed to create charger %q: %w", charger.ID, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load charger %q: %w", charger.ID, err)
		}

		if charger.Name != "" {
			existing.Name = charger.Name
		}
		if charger.PowerKW > 0 {
			existing.PowerKW = charger.PowerKW
		}
		if charger.Status != "" {
			existing.Status = charger.Status
		}
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.Omit("Facility").Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update charger %q: %w", charger.ID, err)
		}
		return nil
	})
}

func (s *gormStore) SetChargerStatus(ctx context.Context, chargerID string, status model.ChargerStatus) error {
	if !model.ValidChargerStatus(status) {
		return validationErrorf("unknown charger status %q", status)
	}
	res := s.db.WithContext(ctx).
		Model(&model.Charger{}).
		Where("id = ?", chargerID).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to set status for charger %q: %w", chargerID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("charger %q: %w", chargerID, ErrNotFound)
	}
	return nil
}

func (s *gormStore) ListChargersByFacility(ctx context.Context, facilityID string) ([]model.Charger, error) {
	var chargers []model.Charger
	err := s.db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("facility_id, id").
		Find(&chargers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chargers for facility %q: %w", facilityID, err)
	}
	return chargers, nil
}

func (s *gormStore) ListChargers(ctx context.Context) ([]model.Charger, error) {
	var chargers []model.Charger
	if err := s.db.WithContext(ctx).Order("facility_id, id").Find(&chargers).Error; err != nil {
		return nil, fmt.Errorf("failed to list chargers: %w", err)
	}
	return chargers, nil
}

// LogForecast appends one row to the write-only forecast audit log.
func (s *gormStore) LogForecast(ctx context.Context, entry model.ForecastLog) error {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to log forecast for facility %q: %w", entry.FacilityID, err)
	}
	return nil
}

package model

import "time"

// OccupancyObservation is a single timestamped occupancy snapshot for a
// facility. Rows are append-only; ordering is by ObservedAt, and the store
// sorts on read so out-of-order delivery from the sensor source is tolerated.
type OccupancyObservation struct {
	ID             string    `gorm:"primaryKey;size:36"`
	FacilityID     string    `gorm:"size:64;not null;index:idx_occupancy_facility_observed,priority:1"`
	ObservedAt     time.Time `gorm:"not null;index:idx_occupancy_facility_observed,priority:2,sort:desc"`
	Occupied       int       `gorm:"not null"`
	ShadedOccupied int       `gorm:"not null"`
}

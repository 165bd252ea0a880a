package model

import "time"

// ForecastLog is a write-only audit row recorded whenever a forecast is
// served. Nothing in the serving path reads it back; it exists so forecast
// accuracy can be evaluated offline against later observations.
type ForecastLog struct {
	ID                int64     `gorm:"autoIncrement;primaryKey"`
	FacilityID        string    `gorm:"size:64;not null;index"`
	GeneratedAt       time.Time `gorm:"not null"`
	HorizonMinutes    int       `gorm:"not null"`
	PredictedOccupied int       `gorm:"not null"`
	PredictedOpen     int       `gorm:"not null"`
	Confidence        float64   `gorm:"not null"`
	Method            string    `gorm:"size:32;not null"`
}

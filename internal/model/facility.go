package model

import "time"

// Facility represents a parking location with a fixed capacity.
type Facility struct {
	ID             string `gorm:"primaryKey;size:64"`
	Name           string `gorm:"uniqueIndex;size:128;not null"`
	Capacity       int    `gorm:"not null"`
	ShadedCapacity int    `gorm:"not null"`
	Latitude       *float64
	Longitude      *float64
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`

	// Associations
	Chargers []Charger `gorm:"foreignKey:FacilityID"`
}

package model

import "time"

// ChargerStatus is the tri-state status of an EV charging point.
type ChargerStatus string

const (
	ChargerAvailable    ChargerStatus = "available"
	ChargerInUse        ChargerStatus = "in_use"
	ChargerOutOfService ChargerStatus = "out_of_service"
)

// ValidChargerStatus reports whether s is one of the recognized states.
func ValidChargerStatus(s ChargerStatus) bool {
	switch s {
	case ChargerAvailable, ChargerInUse, ChargerOutOfService:
		return true
	}
	return false
}

// Charger represents an EV charging point attached to a facility. Status and
// UpdatedAt are overwritten in place (last-write-wins, no history).
type Charger struct {
	ID         string        `gorm:"primaryKey;size:64"`
	FacilityID string        `gorm:"size:64;not null;index"`
	Name       string        `gorm:"size:128;not null"`
	PowerKW    float64       `gorm:"not null"`
	Status     ChargerStatus `gorm:"size:32;not null"`
	CreatedAt  time.Time     `gorm:"not null"`
	UpdatedAt  time.Time     `gorm:"not null"`

	// Associations
	Facility Facility `gorm:"constraint:OnDelete:CASCADE"`
}

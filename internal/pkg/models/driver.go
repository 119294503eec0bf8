package models

import (
	"time"

	"github.com/google/uuid"
)

// Driver is the dispatch-facing availability and live-location record.
// Account data (license, vehicle, profile) lives in the user service and
// is out of scope here.
type Driver struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CurrentLocation *Location `json:"current_location,omitempty"`
	Earnings        float64   `json:"earnings" db:"earnings"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DriverRegistration is the payload for registering a driver record
// against an existing user account.
type DriverRegistration struct {
	UserID uuid.UUID `json:"user_id"`
}

// NearbyDriver is a geo-index hit: an available driver with its last
// known position and distance from the query origin in kilometers.
type NearbyDriver struct {
	ID         string   `json:"id"`
	Location   Location `json:"location"`
	DistanceKm float64  `json:"distance_km"`
}

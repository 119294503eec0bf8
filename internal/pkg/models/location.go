package models

import "time"

// Location represents a geographic point with an optional street address.
type Location struct {
	Address   string    `json:"address,omitempty" db:"address"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Valid reports whether the coordinates are within the WGS84 ranges.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// LocationUpdate is the payload a driver pushes over the real-time channel.
type LocationUpdate struct {
	RideID    string  `json:"ride_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DriverLocationEvent is broadcast to a ride room on every location push
// from the assigned driver.
type DriverLocationEvent struct {
	RideID    string  `json:"ride_id"`
	DriverID  string  `json:"driver_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

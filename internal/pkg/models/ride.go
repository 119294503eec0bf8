package models

import (
	"time"

	"github.com/google/uuid"
)

// RideStatus represents the lifecycle state of a ride.
type RideStatus string

const (
	RideStatusRequested  RideStatus = "requested"
	RideStatusAccepted   RideStatus = "accepted"
	RideStatusInProgress RideStatus = "in_progress"
	RideStatusCompleted  RideStatus = "completed"
	RideStatusCancelled  RideStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// PaymentMethod is how the rider intends to settle the fare.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodWallet:
		return true
	}
	return false
}

// Ride represents a single trip record from request to terminal state.
// DriverID is nil until a driver accepts; a cancelled ride keeps its last
// driver for audit even though the driver is freed.
type Ride struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	RiderID       uuid.UUID     `json:"rider_id" db:"rider_id"`
	DriverID      *uuid.UUID    `json:"driver_id,omitempty" db:"driver_id"`
	Pickup        Location      `json:"pickup"`
	Dropoff       Location      `json:"dropoff"`
	Fare          float64       `json:"fare" db:"fare"`
	DistanceKm    float64       `json:"distance_km" db:"distance_km"`
	DurationMin   int           `json:"duration_min" db:"duration_min"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	Status        RideStatus    `json:"status" db:"status"`
	RequestedAt   time.Time     `json:"requested_at" db:"requested_at"`
	AcceptedAt    *time.Time    `json:"accepted_at,omitempty" db:"accepted_at"`
	StartedAt     *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// RideRequest is the rider-facing payload for requesting a ride.
type RideRequest struct {
	Pickup        Location      `json:"pickup"`
	Dropoff       Location      `json:"dropoff"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// FareEstimate is the deterministic output of the fare calculator.
type FareEstimate struct {
	Fare        float64 `json:"fare"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	Currency    string  `json:"currency"`
}

// DispatchCandidate is a driver considered for a ride at dispatch time.
// Candidates are ephemeral; they are never persisted.
type DispatchCandidate struct {
	Driver     Driver  `json:"driver"`
	DistanceKm float64 `json:"distance_km"`
}

// RideWithCandidates is the response to a successful ride request. The
// candidate list is informational only; no driver is committed yet.
type RideWithCandidates struct {
	Ride       *Ride               `json:"ride"`
	Candidates []DispatchCandidate `json:"nearby_drivers"`
}

// RideOffer is the notification payload fanned out to candidate drivers
// when a new ride is requested.
type RideOffer struct {
	RideID      string   `json:"ride_id"`
	RiderID     string   `json:"rider_id"`
	DriverID    string   `json:"driver_id"`
	Pickup      Location `json:"pickup"`
	Dropoff     Location `json:"dropoff"`
	Fare        float64  `json:"fare"`
	DistanceKm  float64  `json:"distance_km"`
	DurationMin int      `json:"duration_min"`
}

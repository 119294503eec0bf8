package rides

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// StatusChange carries the field updates applied together with a
// conditional status transition.
type StatusChange struct {
	DriverID    *uuid.UUID
	AcceptedAt  *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// RideRepo defines the interface for ride data access operations.
// UpdateStatusIf is the concurrency primitive: the transition applies
// only when the ride is currently in one of the from statuses, and the
// caller learns atomically whether it won.
type RideRepo interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error)
	UpdateStatusIf(ctx context.Context, rideID uuid.UUID, from []models.RideStatus, to models.RideStatus, change StatusChange) (bool, error)
	UpdateDropoff(ctx context.Context, rideID uuid.UUID, dropoff models.Location, fare, distanceKm float64, durationMin int) error
	ListByRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error)
	ListByRiderWithStatus(ctx context.Context, riderID uuid.UUID, statuses []models.RideStatus) ([]*models.Ride, error)
	ListByStatus(ctx context.Context, status models.RideStatus, limit int) ([]*models.Ride, error)
	ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error)
}

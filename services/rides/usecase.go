package rides

import (
	"context"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// RideUC defines the interface for ride lifecycle business logic
type RideUC interface {
	EstimateFare(ctx context.Context, pickup, dropoff models.Location) (models.FareEstimate, error)
	RequestRide(ctx context.Context, riderID uuid.UUID, req models.RideRequest) (*models.RideWithCandidates, error)
	AcceptRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error)
	StartRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error)
	CompleteRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error)
	CancelRide(ctx context.Context, riderID, rideID uuid.UUID) (*models.Ride, error)
	UpdateDropoff(ctx context.Context, riderID, rideID uuid.UUID, dropoff models.Location) (*models.Ride, error)
	GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error)
	ListRidesForRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error)
	ListUpcomingForRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error)
	ListOpenRides(ctx context.Context, limit int) ([]*models.Ride, error)
	GetDriverLocation(ctx context.Context, riderID, rideID uuid.UUID) (*models.Location, error)
	ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error)
}

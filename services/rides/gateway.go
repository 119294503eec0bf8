package rides

import (
	"context"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// RideGW defines the interface for ride gateway operations: real-time
// room events, broker notifications and payment settlement. All calls
// happen after the owning state change has committed and are
// best-effort; failures are logged by implementations, never bubbled
// into ride state.
type RideGW interface {
	PublishRideOffer(ctx context.Context, offer models.RideOffer)
	PublishStatusChange(ctx context.Context, ride *models.Ride)
	PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent)
	SettlePayment(ctx context.Context, ride *models.Ride) error
}

// DriverRegistry is the slice of the driver service the ride lifecycle
// needs: candidate search plus busy/free/earnings bookkeeping.
type DriverRegistry interface {
	FindAvailableNear(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.DispatchCandidate, error)
	SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) error
	AddEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error
	GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
}

// FareEstimator prices a trip. Implemented by services/pricing.
type FareEstimator interface {
	Estimate(pickup, dropoff models.Location) (models.FareEstimate, error)
}

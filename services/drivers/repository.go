package drivers

import (
	"context"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// DriverRepo defines the interface for driver registry data access
type DriverRepo interface {
	CreateDriver(ctx context.Context, driver *models.Driver) error
	GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
	GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error)
	UpdateAvailability(ctx context.Context, driverID uuid.UUID, available bool) error
	UpdateLocation(ctx context.Context, driverID uuid.UUID, location models.Location) error
	IncrementEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error
	ListAvailableDrivers(ctx context.Context) ([]*models.Driver, error)
}

// GeoIndex is the redis-backed geospatial view of available drivers.
type GeoIndex interface {
	AddAvailableDriver(ctx context.Context, driverID string, location *models.Location) error
	RemoveAvailableDriver(ctx context.Context, driverID string) error
	UpdateDriverLocation(ctx context.Context, driverID string, location *models.Location) error
	FindNearbyDrivers(ctx context.Context, origin *models.Location, radiusKm float64) ([]models.NearbyDriver, error)
}

// ActiveRideFinder reports the ride a driver is currently serving, if
// any. Implemented by the rides service; consumed on location updates.
type ActiveRideFinder interface {
	ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error)
}

// LocationPublisher fans a driver location out to ride subscribers.
type LocationPublisher interface {
	PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent)
}

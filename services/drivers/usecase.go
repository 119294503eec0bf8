package drivers

import (
	"context"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// DriverUC defines the interface for driver registry business logic
type DriverUC interface {
	RegisterDriver(ctx context.Context, userID uuid.UUID) (*models.Driver, string, error)
	GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
	SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) error
	ToggleAvailability(ctx context.Context, driverID uuid.UUID) (bool, error)
	UpdateLocation(ctx context.Context, driverID uuid.UUID, location models.Location) error
	FindAvailableNear(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.DispatchCandidate, error)
	AddEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error
}

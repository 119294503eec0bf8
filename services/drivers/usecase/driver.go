package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	jwtpkg "github.com/mishwarapp/mishwar/internal/pkg/jwt"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/pkg/observability"
	"github.com/mishwarapp/mishwar/internal/utils"
	"github.com/mishwarapp/mishwar/services/drivers"
)

// driverUC implements the drivers.DriverUC interface
type driverUC struct {
	cfg         *models.Config
	driversRepo drivers.DriverRepo
	geo         drivers.GeoIndex
	activeRides drivers.ActiveRideFinder
	publisher   drivers.LocationPublisher
}

// NewDriverUC creates a new driver registry use case
func NewDriverUC(
	cfg *models.Config,
	driversRepo drivers.DriverRepo,
	geo drivers.GeoIndex,
	activeRides drivers.ActiveRideFinder,
	publisher drivers.LocationPublisher,
) (drivers.DriverUC, error) {
	return &driverUC{
		cfg:         cfg,
		driversRepo: driversRepo,
		geo:         geo,
		activeRides: activeRides,
		publisher:   publisher,
	}, nil
}

// RegisterDriver creates the registry row for a user account and
// returns a driver-scoped token.
func (uc *driverUC) RegisterDriver(ctx context.Context, userID uuid.UUID) (*models.Driver, string, error) {
	existing, err := uc.driversRepo.GetDriverByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("driver for user %s: %w", userID, apperr.ErrAlreadyExists)
	}

	now := time.Now()
	driver := &models.Driver{
		ID:          uuid.New(),
		UserID:      userID,
		IsAvailable: false,
		Earnings:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.driversRepo.CreateDriver(ctx, driver); err != nil {
		return nil, "", err
	}

	token, _, err := jwtpkg.GenerateToken(driver.ID, "driver", uc.cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue driver token: %w", err)
	}

	logger.Info("Driver registered",
		logger.String("driver_id", driver.ID.String()),
		logger.String("user_id", userID.String()))

	return driver, token, nil
}

// GetDriver returns the registry record for a driver
func (uc *driverUC) GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	return uc.driversRepo.GetDriver(ctx, driverID)
}

// SetAvailability flips the driver's availability flag. Idempotent:
// setting the current value is a no-op that still succeeds.
func (uc *driverUC) SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) error {
	driver, err := uc.driversRepo.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}

	if driver.IsAvailable != available {
		if err := uc.driversRepo.UpdateAvailability(ctx, driverID, available); err != nil {
			return err
		}
		if available {
			observability.DriversAvailable.Inc()
		} else {
			observability.DriversAvailable.Dec()
		}
	}

	// The geo index mirrors the row; refresh it even when the flag is
	// unchanged so a lost redis entry heals on the next call.
	uc.syncGeoIndex(ctx, driver, available)
	return nil
}

// ToggleAvailability flips the flag and returns the new state
func (uc *driverUC) ToggleAvailability(ctx context.Context, driverID uuid.UUID) (bool, error) {
	driver, err := uc.driversRepo.GetDriver(ctx, driverID)
	if err != nil {
		return false, err
	}

	next := !driver.IsAvailable
	if err := uc.SetAvailability(ctx, driverID, next); err != nil {
		return false, err
	}
	return next, nil
}

// syncGeoIndex keeps the redis availability view aligned with the row.
// Redis failures are logged, not returned: postgres stays the source of
// truth and candidate search falls back to it.
func (uc *driverUC) syncGeoIndex(ctx context.Context, driver *models.Driver, available bool) {
	var err error
	if available {
		err = uc.geo.AddAvailableDriver(ctx, driver.ID.String(), driver.CurrentLocation)
	} else {
		err = uc.geo.RemoveAvailableDriver(ctx, driver.ID.String())
	}
	if err != nil {
		logger.Warn("Failed to sync driver geo index",
			logger.String("driver_id", driver.ID.String()),
			logger.Bool("available", available),
			logger.Err(err))
	}
}

// UpdateLocation overwrites the driver's position and, when the driver
// is serving a ride, fans the position out to the ride's subscribers.
func (uc *driverUC) UpdateLocation(ctx context.Context, driverID uuid.UUID, location models.Location) error {
	if !location.Valid() {
		return fmt.Errorf("coordinates out of range: %w", apperr.ErrValidation)
	}

	driver, err := uc.driversRepo.GetDriver(ctx, driverID)
	if err != nil {
		return err
	}

	if err := uc.driversRepo.UpdateLocation(ctx, driverID, location); err != nil {
		return err
	}

	if driver.IsAvailable {
		if err := uc.geo.UpdateDriverLocation(ctx, driverID.String(), &location); err != nil {
			logger.Warn("Failed to update driver geo position",
				logger.String("driver_id", driverID.String()),
				logger.Err(err))
		}
	}

	ride, err := uc.activeRides.ActiveRideForDriver(ctx, driverID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Warn("Failed to look up active ride for location push",
				logger.String("driver_id", driverID.String()),
				logger.Err(err))
		}
		return nil
	}

	uc.publisher.PublishDriverLocation(ctx, models.DriverLocationEvent{
		RideID:    ride.ID.String(),
		DriverID:  driverID.String(),
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	})
	return nil
}

// FindAvailableNear returns up to limit available drivers within
// radiusKm of origin, nearest first with driver ID as tie-break. An
// empty slice, not an error, means nobody is around.
func (uc *driverUC) FindAvailableNear(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.DispatchCandidate, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("origin coordinates out of range: %w", apperr.ErrValidation)
	}

	start := time.Now()
	defer func() {
		observability.DispatchLatency.Observe(time.Since(start).Seconds())
	}()

	nearby, err := uc.geo.FindNearbyDrivers(ctx, &origin, radiusKm)
	if err != nil {
		logger.Warn("Geo index unavailable, falling back to registry scan", logger.Err(err))
		nearby, err = uc.scanRegistry(ctx, origin, radiusKm)
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})

	// The registry re-check below can reject geo hits, so the limit is
	// applied to surviving candidates rather than raw hits. A stale
	// entry in the top-N must not displace an eligible driver.
	candidates := make([]models.DispatchCandidate, 0, len(nearby))
	for _, hit := range nearby {
		if limit > 0 && len(candidates) == limit {
			break
		}

		id, err := uuid.Parse(hit.ID)
		if err != nil {
			logger.Warn("Skipping geo entry with malformed driver ID", logger.String("member", hit.ID))
			continue
		}

		driver, err := uc.driversRepo.GetDriver(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				// Stale geo entry; the row is gone.
				continue
			}
			return nil, err
		}
		if !driver.IsAvailable {
			continue
		}

		candidates = append(candidates, models.DispatchCandidate{
			Driver:     *driver,
			DistanceKm: hit.DistanceKm,
		})
	}

	return candidates, nil
}

// scanRegistry is the postgres fallback for candidate search: a geohash
// prefilter over available drivers, then an exact haversine check.
func (uc *driverUC) scanRegistry(ctx context.Context, origin models.Location, radiusKm float64) ([]models.NearbyDriver, error) {
	available, err := uc.driversRepo.ListAvailableDrivers(ctx)
	if err != nil {
		return nil, err
	}

	cells := searchCells(origin, radiusKm)

	nearby := make([]models.NearbyDriver, 0, len(available))
	for _, driver := range available {
		if driver.CurrentLocation == nil {
			continue
		}
		if cells != nil && !cells[utils.EncodeLocation(*driver.CurrentLocation, coarseGeohashPrecision)] {
			continue
		}
		dist := utils.DistanceKm(origin, *driver.CurrentLocation)
		if dist > radiusKm {
			continue
		}
		nearby = append(nearby, models.NearbyDriver{
			ID:         driver.ID.String(),
			Location:   *driver.CurrentLocation,
			DistanceKm: dist,
		})
	}
	return nearby, nil
}

// coarseGeohashPrecision gives cells of roughly 20 by 39 kilometers, so
// the origin cell plus its eight neighbors always covers the default
// search radius with margin.
const coarseGeohashPrecision = 4

// searchCells returns the origin's coarse geohash cell and its eight
// neighbors as a membership set. A radius wider than one cell cannot be
// covered this way, so nil disables the prefilter.
func searchCells(origin models.Location, radiusKm float64) map[string]bool {
	if radiusKm > 15.0 {
		return nil
	}

	center := utils.EncodeLocation(origin, coarseGeohashPrecision)
	cells := map[string]bool{center: true}
	for _, neighbor := range utils.GeohashNeighbors(center) {
		cells[neighbor] = true
	}
	return cells
}

// AddEarnings credits a completed fare to the driver
func (uc *driverUC) AddEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("earnings amount must not be negative: %w", apperr.ErrValidation)
	}
	return uc.driversRepo.IncrementEarnings(ctx, driverID, amount)
}

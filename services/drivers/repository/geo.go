package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/database"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// GeoRepo maintains the redis geospatial index of available drivers.
type GeoRepo struct {
	redisClient *database.RedisClient
}

// NewGeoRepo creates a new geo index repository
func NewGeoRepo(redisClient *database.RedisClient) *GeoRepo {
	return &GeoRepo{redisClient: redisClient}
}

// AddAvailableDriver adds a driver to the geo set and availability set
func (r *GeoRepo) AddAvailableDriver(ctx context.Context, driverID string, location *models.Location) error {
	if location != nil {
		if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo, location.Longitude, location.Latitude, driverID); err != nil {
			return fmt.Errorf("failed to add to geo index: %w", err)
		}
	}

	if err := r.redisClient.SAdd(ctx, constants.KeyAvailableDrivers, driverID); err != nil {
		return fmt.Errorf("failed to add to available set: %w", err)
	}

	if location != nil {
		if err := r.storeLocation(ctx, driverID, location); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAvailableDriver removes a driver from the availability sets
func (r *GeoRepo) RemoveAvailableDriver(ctx context.Context, driverID string) error {
	if err := r.redisClient.ZRem(ctx, constants.KeyDriverGeo, driverID); err != nil {
		return fmt.Errorf("failed to remove from geo index: %w", err)
	}

	if err := r.redisClient.SRem(ctx, constants.KeyAvailableDrivers, driverID); err != nil {
		return fmt.Errorf("failed to remove from available set: %w", err)
	}

	locationKey := fmt.Sprintf(constants.KeyDriverLocation, driverID)
	if err := r.redisClient.Delete(ctx, locationKey); err != nil {
		return fmt.Errorf("failed to remove location data: %w", err)
	}
	return nil
}

// UpdateDriverLocation refreshes the geo set position for a driver
func (r *GeoRepo) UpdateDriverLocation(ctx context.Context, driverID string, location *models.Location) error {
	if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo, location.Longitude, location.Latitude, driverID); err != nil {
		return fmt.Errorf("failed to update geo index: %w", err)
	}
	return r.storeLocation(ctx, driverID, location)
}

func (r *GeoRepo) storeLocation(ctx context.Context, driverID string, location *models.Location) error {
	locationKey := fmt.Sprintf(constants.KeyDriverLocation, driverID)
	locationData := map[string]interface{}{
		constants.FieldLatitude:  location.Latitude,
		constants.FieldLongitude: location.Longitude,
		constants.FieldTimestamp: time.Now().Unix(),
	}
	if err := r.redisClient.HMSet(ctx, locationKey, locationData); err != nil {
		return fmt.Errorf("failed to store location: %w", err)
	}
	return nil
}

// FindNearbyDrivers finds available drivers within the radius, nearest
// first. Geo set hits are filtered by the availability set so a driver
// mid-ride never shows up as a candidate.
func (r *GeoRepo) FindNearbyDrivers(ctx context.Context, origin *models.Location, radiusKm float64) ([]models.NearbyDriver, error) {
	results, err := r.redisClient.GeoRadius(
		ctx,
		constants.KeyDriverGeo,
		origin.Longitude,
		origin.Latitude,
		radiusKm,
		"km",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby drivers: %w", err)
	}

	nearby := make([]models.NearbyDriver, 0, len(results))
	for _, result := range results {
		isMember, err := r.redisClient.SIsMember(ctx, constants.KeyAvailableDrivers, result.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check driver availability: %w", err)
		}
		if !isMember {
			continue
		}

		nearby = append(nearby, models.NearbyDriver{
			ID: result.Name,
			Location: models.Location{
				Latitude:  result.Latitude,
				Longitude: result.Longitude,
				Timestamp: time.Now(),
			},
			DistanceKm: result.Dist,
		})
	}

	return nearby, nil
}

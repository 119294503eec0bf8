// Package pricing computes deterministic fare estimates.
package pricing

import (
	"fmt"
	"math"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/utils"
)

// Service calculates fares from the configured tariff.
type Service struct {
	cfg models.PricingConfig
}

// NewService creates a pricing service. Zero-valued tariff fields fall
// back to the standard rates.
func NewService(cfg models.PricingConfig) *Service {
	if cfg.BaseFare <= 0 {
		cfg.BaseFare = 5.0
	}
	if cfg.PerKmRate <= 0 {
		cfg.PerKmRate = 2.0
	}
	if cfg.AverageSpeedKmh <= 0 {
		cfg.AverageSpeedKmh = 30.0
	}
	if cfg.Currency == "" {
		cfg.Currency = "KWD"
	}
	return &Service{cfg: cfg}
}

// Estimate returns the fare, distance and expected duration for a trip.
// Same inputs always produce the same output.
func (s *Service) Estimate(pickup, dropoff models.Location) (models.FareEstimate, error) {
	if !pickup.Valid() {
		return models.FareEstimate{}, fmt.Errorf("pickup coordinates out of range: %w", apperr.ErrValidation)
	}
	if !dropoff.Valid() {
		return models.FareEstimate{}, fmt.Errorf("dropoff coordinates out of range: %w", apperr.ErrValidation)
	}

	dist := utils.DistanceKm(pickup, dropoff)
	fare := utils.Round2(s.cfg.BaseFare + dist*s.cfg.PerKmRate)
	durationMin := int(math.Round(dist / s.cfg.AverageSpeedKmh * 60))

	return models.FareEstimate{
		Fare:        fare,
		DistanceKm:  utils.Round2(dist),
		DurationMin: durationMin,
		Currency:    s.cfg.Currency,
	}, nil
}

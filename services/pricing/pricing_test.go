package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

func TestEstimateKuwaitCityTrip(t *testing.T) {
	svc := NewService(models.PricingConfig{})

	// Roughly 7.3 km due north of Kuwait City center.
	pickup := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	dropoff := models.Location{Latitude: 29.4415505, Longitude: 47.9774}

	est, err := svc.Estimate(pickup, dropoff)
	require.NoError(t, err)

	assert.Equal(t, 19.60, est.Fare)
	assert.InDelta(t, 7.3, est.DistanceKm, 0.01)
	assert.Equal(t, 15, est.DurationMin)
	assert.Equal(t, "KWD", est.Currency)
}

func TestEstimateDeterministic(t *testing.T) {
	svc := NewService(models.PricingConfig{})

	pickup := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	dropoff := models.Location{Latitude: 29.3339, Longitude: 48.0478}

	first, err := svc.Estimate(pickup, dropoff)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.Estimate(pickup, dropoff)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEstimateZeroDistance(t *testing.T) {
	svc := NewService(models.PricingConfig{})

	loc := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	est, err := svc.Estimate(loc, loc)
	require.NoError(t, err)

	assert.Equal(t, 5.0, est.Fare) // base fare only
	assert.Equal(t, 0.0, est.DistanceKm)
	assert.Equal(t, 0, est.DurationMin)
}

func TestEstimateCustomTariff(t *testing.T) {
	svc := NewService(models.PricingConfig{
		BaseFare:        10.0,
		PerKmRate:       3.0,
		AverageSpeedKmh: 60.0,
		Currency:        "USD",
	})

	pickup := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	dropoff := models.Location{Latitude: 29.4415505, Longitude: 47.9774}

	est, err := svc.Estimate(pickup, dropoff)
	require.NoError(t, err)

	assert.InDelta(t, 10.0+3.0*7.3, est.Fare, 0.02)
	assert.Equal(t, 7, est.DurationMin) // 7.3 km at 60 km/h
	assert.Equal(t, "USD", est.Currency)
}

func TestEstimateInvalidCoordinates(t *testing.T) {
	svc := NewService(models.PricingConfig{})

	good := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	bad := models.Location{Latitude: 99.0, Longitude: 47.9774}

	_, err := svc.Estimate(bad, good)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Estimate(good, models.Location{Latitude: 29.0, Longitude: 200.0})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEstimateRounding(t *testing.T) {
	svc := NewService(models.PricingConfig{})

	pickup := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	dropoff := models.Location{Latitude: 29.3800, Longitude: 47.9820}

	est, err := svc.Estimate(pickup, dropoff)
	require.NoError(t, err)

	assert.Equal(t, est.Fare, float64(int(est.Fare*100+0.5))/100)
}

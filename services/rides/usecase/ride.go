package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/pkg/observability"
	"github.com/mishwarapp/mishwar/services/rides"
)

// rideUC implements the rides.RideUC interface
type rideUC struct {
	cfg       *models.Config
	ridesRepo rides.RideRepo
	ridesGW   rides.RideGW
	registry  rides.DriverRegistry
	pricing   rides.FareEstimator
}

// NewRideUC creates a new ride use case
func NewRideUC(
	cfg *models.Config,
	ridesRepo rides.RideRepo,
	ridesGW rides.RideGW,
	registry rides.DriverRegistry,
	pricing rides.FareEstimator,
) (rides.RideUC, error) {
	return &rideUC{
		cfg:       cfg,
		ridesRepo: ridesRepo,
		ridesGW:   ridesGW,
		registry:  registry,
		pricing:   pricing,
	}, nil
}

// EstimateFare prices a trip without creating anything
func (uc *rideUC) EstimateFare(ctx context.Context, pickup, dropoff models.Location) (models.FareEstimate, error) {
	return uc.pricing.Estimate(pickup, dropoff)
}

// RequestRide prices the trip, finds candidate drivers and persists a
// requested ride. No ride is created when no driver is in range. Offers
// fan out only after the ride is stored.
func (uc *rideUC) RequestRide(ctx context.Context, riderID uuid.UUID, req models.RideRequest) (*models.RideWithCandidates, error) {
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("unsupported payment method %q: %w", req.PaymentMethod, apperr.ErrValidation)
	}

	estimate, err := uc.pricing.Estimate(req.Pickup, req.Dropoff)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.registry.FindAvailableNear(ctx, req.Pickup, uc.cfg.Dispatch.SearchRadiusKm, uc.cfg.Dispatch.MaxCandidates)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no drivers within %.1f km: %w", uc.cfg.Dispatch.SearchRadiusKm, apperr.ErrNoDriversAvailable)
	}

	ride := &models.Ride{
		ID:            uuid.New(),
		RiderID:       riderID,
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		Fare:          estimate.Fare,
		DistanceKm:    estimate.DistanceKm,
		DurationMin:   estimate.DurationMin,
		PaymentMethod: req.PaymentMethod,
		Status:        models.RideStatusRequested,
		RequestedAt:   time.Now(),
	}

	if err := uc.ridesRepo.CreateRide(ctx, ride); err != nil {
		return nil, err
	}
	observability.RidesRequestedTotal.Inc()

	for _, candidate := range candidates {
		uc.ridesGW.PublishRideOffer(ctx, models.RideOffer{
			RideID:      ride.ID.String(),
			RiderID:     riderID.String(),
			DriverID:    candidate.Driver.ID.String(),
			Pickup:      ride.Pickup,
			Dropoff:     ride.Dropoff,
			Fare:        ride.Fare,
			DistanceKm:  ride.DistanceKm,
			DurationMin: ride.DurationMin,
		})
	}

	logger.Info("Ride requested",
		logger.String("ride_id", ride.ID.String()),
		logger.String("rider_id", riderID.String()),
		logger.Int("candidates", len(candidates)),
		logger.Float64("fare", ride.Fare))

	return &models.RideWithCandidates{Ride: ride, Candidates: candidates}, nil
}

// AcceptRide claims a requested ride for a driver. The conditional
// status update decides races: exactly one accepting driver wins, the
// rest see ErrRideNotAvailable.
func (uc *rideUC) AcceptRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error) {
	if _, err := uc.registry.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}

	now := time.Now()
	won, err := uc.ridesRepo.UpdateStatusIf(ctx, rideID,
		[]models.RideStatus{models.RideStatusRequested},
		models.RideStatusAccepted,
		rides.StatusChange{DriverID: &driverID, AcceptedAt: &now})
	if err != nil {
		return nil, err
	}
	if !won {
		// Either the ride does not exist or another driver got there
		// first; distinguish for the caller.
		if _, getErr := uc.ridesRepo.GetRide(ctx, rideID); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("ride %s: %w", rideID, apperr.ErrRideNotAvailable)
	}

	observability.RidesAcceptedTotal.Inc()

	if err := uc.registry.SetAvailability(ctx, driverID, false); err != nil {
		logger.Warn("Failed to mark accepting driver busy",
			logger.String("driver_id", driverID.String()),
			logger.Err(err))
	}

	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	uc.ridesGW.PublishStatusChange(ctx, ride)

	logger.Info("Ride accepted",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID.String()))

	return ride, nil
}

// StartRide moves an accepted ride to in_progress. Only the assigned
// driver may start it.
func (uc *rideUC) StartRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == nil || *ride.DriverID != driverID {
		return nil, fmt.Errorf("ride %s is not assigned to driver %s: %w", rideID, driverID, apperr.ErrForbidden)
	}

	now := time.Now()
	won, err := uc.ridesRepo.UpdateStatusIf(ctx, rideID,
		[]models.RideStatus{models.RideStatusAccepted},
		models.RideStatusInProgress,
		rides.StatusChange{StartedAt: &now})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("ride %s is %s, not accepted: %w", rideID, ride.Status, apperr.ErrInvalidTransition)
	}

	ride, err = uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	uc.ridesGW.PublishStatusChange(ctx, ride)
	return ride, nil
}

// CompleteRide finishes a ride, frees the driver and credits the fare.
// Accepted rides may complete directly; some clients skip the explicit
// start. Settlement is best-effort and never rolls the ride back.
func (uc *rideUC) CompleteRide(ctx context.Context, driverID, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID == nil || *ride.DriverID != driverID {
		return nil, fmt.Errorf("ride %s is not assigned to driver %s: %w", rideID, driverID, apperr.ErrForbidden)
	}

	now := time.Now()
	won, err := uc.ridesRepo.UpdateStatusIf(ctx, rideID,
		[]models.RideStatus{models.RideStatusAccepted, models.RideStatusInProgress},
		models.RideStatusCompleted,
		rides.StatusChange{CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("ride %s is %s: %w", rideID, ride.Status, apperr.ErrInvalidTransition)
	}
	observability.RidesCompletedTotal.Inc()

	if err := uc.registry.SetAvailability(ctx, driverID, true); err != nil {
		logger.Warn("Failed to free driver after completion",
			logger.String("driver_id", driverID.String()),
			logger.Err(err))
	}
	if err := uc.registry.AddEarnings(ctx, driverID, ride.Fare); err != nil {
		logger.Error("Failed to credit driver earnings",
			logger.String("driver_id", driverID.String()),
			logger.Float64("fare", ride.Fare),
			logger.Err(err))
	}

	ride, err = uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err := uc.ridesGW.SettlePayment(ctx, ride); err != nil {
		logger.Error("Payment settlement failed, ride stays completed",
			logger.String("ride_id", rideID.String()),
			logger.String("payment_method", string(ride.PaymentMethod)),
			logger.Err(err))
	}

	uc.ridesGW.PublishStatusChange(ctx, ride)

	logger.Info("Ride completed",
		logger.String("ride_id", rideID.String()),
		logger.String("driver_id", driverID.String()),
		logger.Float64("fare", ride.Fare))

	return ride, nil
}

// CancelRide cancels a non-terminal ride. Only the requesting rider may
// cancel; an assigned driver is freed.
func (uc *rideUC) CancelRide(ctx context.Context, riderID, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, fmt.Errorf("ride %s does not belong to rider %s: %w", rideID, riderID, apperr.ErrForbidden)
	}
	if ride.Status.Terminal() {
		return nil, fmt.Errorf("ride %s is already %s: %w", rideID, ride.Status, apperr.ErrInvalidTransition)
	}

	now := time.Now()
	won, err := uc.ridesRepo.UpdateStatusIf(ctx, rideID,
		[]models.RideStatus{models.RideStatusRequested, models.RideStatusAccepted, models.RideStatusInProgress},
		models.RideStatusCancelled,
		rides.StatusChange{CancelledAt: &now})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("ride %s reached a terminal state: %w", rideID, apperr.ErrInvalidTransition)
	}
	observability.RidesCancelledTotal.Inc()

	if ride.DriverID != nil {
		if err := uc.registry.SetAvailability(ctx, *ride.DriverID, true); err != nil {
			logger.Warn("Failed to free driver after cancellation",
				logger.String("driver_id", ride.DriverID.String()),
				logger.Err(err))
		}
	}

	ride, err = uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	uc.ridesGW.PublishStatusChange(ctx, ride)

	logger.Info("Ride cancelled",
		logger.String("ride_id", rideID.String()),
		logger.String("rider_id", riderID.String()))

	return ride, nil
}

// UpdateDropoff changes the destination of a ride that has not started
// and reprices it from the original pickup.
func (uc *rideUC) UpdateDropoff(ctx context.Context, riderID, rideID uuid.UUID, dropoff models.Location) (*models.Ride, error) {
	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, fmt.Errorf("ride %s does not belong to rider %s: %w", rideID, riderID, apperr.ErrForbidden)
	}
	if ride.Status != models.RideStatusRequested && ride.Status != models.RideStatusAccepted {
		return nil, fmt.Errorf("dropoff can only change before the trip starts, ride is %s: %w", ride.Status, apperr.ErrInvalidTransition)
	}

	estimate, err := uc.pricing.Estimate(ride.Pickup, dropoff)
	if err != nil {
		return nil, err
	}

	if err := uc.ridesRepo.UpdateDropoff(ctx, rideID, dropoff, estimate.Fare, estimate.DistanceKm, estimate.DurationMin); err != nil {
		return nil, err
	}

	ride, err = uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	uc.ridesGW.PublishStatusChange(ctx, ride)
	return ride, nil
}

// GetRide returns a single ride by ID
func (uc *rideUC) GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	return uc.ridesRepo.GetRide(ctx, rideID)
}

// ListRidesForRider returns the rider's full history, newest first
func (uc *rideUC) ListRidesForRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error) {
	return uc.ridesRepo.ListByRider(ctx, riderID)
}

// ListUpcomingForRider returns the rider's rides that have not reached
// a terminal state.
func (uc *rideUC) ListUpcomingForRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error) {
	return uc.ridesRepo.ListByRiderWithStatus(ctx, riderID, []models.RideStatus{
		models.RideStatusRequested,
		models.RideStatusAccepted,
		models.RideStatusInProgress,
	})
}

// ListOpenRides returns unassigned requested rides for driver browsing
func (uc *rideUC) ListOpenRides(ctx context.Context, limit int) ([]*models.Ride, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.ridesRepo.ListByStatus(ctx, models.RideStatusRequested, limit)
}

// GetDriverLocation returns the assigned driver's last known position
// for a ride the caller requested. Only live rides expose it.
func (uc *rideUC) GetDriverLocation(ctx context.Context, riderID, rideID uuid.UUID) (*models.Location, error) {
	ride, err := uc.ridesRepo.GetRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.RiderID != riderID {
		return nil, fmt.Errorf("ride %s does not belong to rider %s: %w", rideID, riderID, apperr.ErrForbidden)
	}
	if ride.DriverID == nil ||
		(ride.Status != models.RideStatusAccepted && ride.Status != models.RideStatusInProgress) {
		return nil, fmt.Errorf("ride %s has no driver en route: %w", rideID, apperr.ErrInvalidTransition)
	}

	driver, err := uc.registry.GetDriver(ctx, *ride.DriverID)
	if err != nil {
		return nil, err
	}
	if driver.CurrentLocation == nil {
		return nil, fmt.Errorf("driver %s has no reported location: %w", driver.ID, apperr.ErrNotFound)
	}
	return driver.CurrentLocation, nil
}

// ActiveRideForDriver returns the accepted or in-progress ride the
// driver is serving, if any.
func (uc *rideUC) ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error) {
	return uc.ridesRepo.ActiveRideForDriver(ctx, driverID)
}

package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/pkg/observability"
	"github.com/mishwarapp/mishwar/services/pricing"
	"github.com/mishwarapp/mishwar/services/rides"
)

// fakeRideRepo is an in-memory rides.RideRepo whose UpdateStatusIf
// honours the same conditional-update contract as the SQL version.
type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*models.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[uuid.UUID]*models.Ride)}
}

func (f *fakeRideRepo) CreateRide(ctx context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *ride
	f.rides[ride.ID] = &copied
	return nil
}

func (f *fakeRideRepo) GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return nil, fmt.Errorf("ride %s: %w", rideID, apperr.ErrNotFound)
	}
	copied := *ride
	return &copied, nil
}

func (f *fakeRideRepo) UpdateStatusIf(ctx context.Context, rideID uuid.UUID, from []models.RideStatus, to models.RideStatus, change rides.StatusChange) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ride, ok := f.rides[rideID]
	if !ok {
		return false, nil
	}

	matched := false
	for _, status := range from {
		if ride.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	ride.Status = to
	if change.DriverID != nil {
		ride.DriverID = change.DriverID
	}
	if change.AcceptedAt != nil {
		ride.AcceptedAt = change.AcceptedAt
	}
	if change.StartedAt != nil {
		ride.StartedAt = change.StartedAt
	}
	if change.CompletedAt != nil {
		ride.CompletedAt = change.CompletedAt
	}
	if change.CancelledAt != nil {
		ride.CancelledAt = change.CancelledAt
	}
	return true, nil
}

func (f *fakeRideRepo) UpdateDropoff(ctx context.Context, rideID uuid.UUID, dropoff models.Location, fare, distanceKm float64, durationMin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return fmt.Errorf("ride %s: %w", rideID, apperr.ErrNotFound)
	}
	ride.Dropoff = dropoff
	ride.Fare = fare
	ride.DistanceKm = distanceKm
	ride.DurationMin = durationMin
	return nil
}

func (f *fakeRideRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if ride.RiderID == riderID {
			copied := *ride
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRideRepo) ListByRiderWithStatus(ctx context.Context, riderID uuid.UUID, statuses []models.RideStatus) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if ride.RiderID != riderID {
			continue
		}
		for _, status := range statuses {
			if ride.Status == status {
				copied := *ride
				out = append(out, &copied)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRideRepo) ListByStatus(ctx context.Context, status models.RideStatus, limit int) ([]*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Ride
	for _, ride := range f.rides {
		if ride.Status == status {
			copied := *ride
			out = append(out, &copied)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRideRepo) ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ride := range f.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID &&
			(ride.Status == models.RideStatusAccepted || ride.Status == models.RideStatusInProgress) {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
}

// fakeRideGW records gateway calls.
type fakeRideGW struct {
	mu             sync.Mutex
	offers         []models.RideOffer
	statusChanges  []models.RideStatus
	settledRides   []uuid.UUID
	settlementFail bool
}

func (f *fakeRideGW) PublishRideOffer(ctx context.Context, offer models.RideOffer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = append(f.offers, offer)
}

func (f *fakeRideGW) PublishStatusChange(ctx context.Context, ride *models.Ride) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanges = append(f.statusChanges, ride.Status)
}

func (f *fakeRideGW) PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent) {}

func (f *fakeRideGW) SettlePayment(ctx context.Context, ride *models.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settlementFail {
		return fmt.Errorf("settlement declined: %w", apperr.ErrDependencyUnavailable)
	}
	f.settledRides = append(f.settledRides, ride.ID)
	return nil
}

// fakeRegistry is an in-memory rides.DriverRegistry.
type fakeRegistry struct {
	mu         sync.Mutex
	drivers    map[uuid.UUID]*models.Driver
	candidates []models.DispatchCandidate
	findErr    error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{drivers: make(map[uuid.UUID]*models.Driver)}
}

func (f *fakeRegistry) addDriver(available bool) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.drivers[id] = &models.Driver{ID: id, UserID: uuid.New(), IsAvailable: available}
	return id
}

func (f *fakeRegistry) FindAvailableNear(ctx context.Context, origin models.Location, radiusKm float64, limit int) ([]models.DispatchCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if limit > 0 && len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeRegistry) SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[driverID]
	if !ok {
		return fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	driver.IsAvailable = available
	return nil
}

func (f *fakeRegistry) AddEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[driverID]
	if !ok {
		return fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	driver.Earnings += amount
	return nil
}

func (f *fakeRegistry) GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	driver, ok := f.drivers[driverID]
	if !ok {
		return nil, fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	copied := *driver
	return &copied, nil
}

func testConfig() *models.Config {
	return &models.Config{
		Dispatch: models.DispatchConfig{SearchRadiusKm: 5.0, MaxCandidates: 5},
		Pricing:  models.PricingConfig{},
	}
}

func newTestUC(t *testing.T) (rides.RideUC, *fakeRideRepo, *fakeRideGW, *fakeRegistry) {
	t.Helper()
	repo := newFakeRideRepo()
	gw := &fakeRideGW{}
	registry := newFakeRegistry()

	uc, err := NewRideUC(testConfig(), repo, gw, registry, pricing.NewService(models.PricingConfig{}))
	require.NoError(t, err)
	return uc, repo, gw, registry
}

var (
	testPickup  = models.Location{Address: "Kuwait City", Latitude: 29.3759, Longitude: 47.9774}
	testDropoff = models.Location{Address: "Salmiya", Latitude: 29.3339, Longitude: 48.0478}
)

func seedCandidates(registry *fakeRegistry, n int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		id := registry.addDriver(true)
		ids = append(ids, id)
		registry.mu.Lock()
		registry.candidates = append(registry.candidates, models.DispatchCandidate{
			Driver:     *registry.drivers[id],
			DistanceKm: float64(i) + 0.5,
		})
		registry.mu.Unlock()
	}
	return ids
}

func requestRide(t *testing.T, uc rides.RideUC, riderID uuid.UUID) *models.Ride {
	t.Helper()
	resp, err := uc.RequestRide(context.Background(), riderID, models.RideRequest{
		Pickup:        testPickup,
		Dropoff:       testDropoff,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)
	return resp.Ride
}

func TestRequestRideHappyPath(t *testing.T) {
	uc, repo, gw, registry := newTestUC(t)
	seedCandidates(registry, 3)

	riderID := uuid.New()
	resp, err := uc.RequestRide(context.Background(), riderID, models.RideRequest{
		Pickup:        testPickup,
		Dropoff:       testDropoff,
		PaymentMethod: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RideStatusRequested, resp.Ride.Status)
	assert.Equal(t, riderID, resp.Ride.RiderID)
	assert.Nil(t, resp.Ride.DriverID)
	assert.Greater(t, resp.Ride.Fare, 0.0)
	assert.Len(t, resp.Candidates, 3)

	stored, err := repo.GetRide(context.Background(), resp.Ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusRequested, stored.Status)

	// One offer per candidate, all for this ride.
	require.Len(t, gw.offers, 3)
	for _, offer := range gw.offers {
		assert.Equal(t, resp.Ride.ID.String(), offer.RideID)
	}
}

func TestRequestRideNoDriversLeavesNothingBehind(t *testing.T) {
	uc, repo, gw, _ := newTestUC(t)

	_, err := uc.RequestRide(context.Background(), uuid.New(), models.RideRequest{
		Pickup:        testPickup,
		Dropoff:       testDropoff,
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, apperr.ErrNoDriversAvailable)

	assert.Empty(t, repo.rides)
	assert.Empty(t, gw.offers)
}

func TestRequestRideInvalidPaymentMethod(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	seedCandidates(registry, 1)

	_, err := uc.RequestRide(context.Background(), uuid.New(), models.RideRequest{
		Pickup:        testPickup,
		Dropoff:       testDropoff,
		PaymentMethod: "cheque",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAcceptRide(t *testing.T) {
	uc, _, gw, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	ride := requestRide(t, uc, uuid.New())

	acceptedBefore := testutil.ToFloat64(observability.RidesAcceptedTotal)
	accepted, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	assert.Equal(t, acceptedBefore+1, testutil.ToFloat64(observability.RidesAcceptedTotal))

	assert.Equal(t, models.RideStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, driverIDs[0], *accepted.DriverID)
	assert.NotNil(t, accepted.AcceptedAt)

	// Accepting driver is pulled out of the candidate pool.
	driver, err := registry.GetDriver(context.Background(), driverIDs[0])
	require.NoError(t, err)
	assert.False(t, driver.IsAvailable)

	assert.Contains(t, gw.statusChanges, models.RideStatusAccepted)
}

func TestAcceptRideRace(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 2)
	ride := requestRide(t, uc, uuid.New())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.AcceptRide(context.Background(), driverIDs[i], ride.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, apperr.ErrRideNotAvailable)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestAcceptRideTwiceFails(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 2)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	_, err = uc.AcceptRide(context.Background(), driverIDs[1], ride.ID)
	assert.ErrorIs(t, err, apperr.ErrRideNotAvailable)
}

func TestAcceptRideUnknownRide(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartRideGuards(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	stranger := registry.addDriver(true)
	ride := requestRide(t, uc, uuid.New())

	// Cannot start an unaccepted ride.
	_, err := uc.StartRide(context.Background(), driverIDs[0], ride.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Only the assigned driver may start.
	_, err = uc.StartRide(context.Background(), stranger, ride.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	started, err := uc.StartRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	// Starting twice is an invalid transition.
	_, err = uc.StartRide(context.Background(), driverIDs[0], ride.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestCompleteRideFromInProgress(t *testing.T) {
	uc, _, gw, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	_, err = uc.StartRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	completed, err := uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// Driver freed and credited with the fare.
	driver, err := registry.GetDriver(context.Background(), driverIDs[0])
	require.NoError(t, err)
	assert.True(t, driver.IsAvailable)
	assert.InDelta(t, completed.Fare, driver.Earnings, 0.001)

	assert.Contains(t, gw.settledRides, ride.ID)
}

func TestCompleteRideDirectlyFromAccepted(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	completed, err := uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
}

func TestCompleteRideGuards(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	stranger := registry.addDriver(true)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	_, err = uc.CompleteRide(context.Background(), stranger, ride.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Completing twice is an invalid transition.
	_, err = uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestCompleteRideSurvivesSettlementFailure(t *testing.T) {
	uc, _, gw, registry := newTestUC(t)
	gw.settlementFail = true
	driverIDs := seedCandidates(registry, 1)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	completed, err := uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCompleted, completed.Status)
}

func TestCancelRideFreesDriver(t *testing.T) {
	uc, _, gw, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	riderID := uuid.New()
	ride := requestRide(t, uc, riderID)

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	cancelled, err := uc.CancelRide(context.Background(), riderID, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RideStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	// Driver reference kept for audit.
	assert.NotNil(t, cancelled.DriverID)

	driver, err := registry.GetDriver(context.Background(), driverIDs[0])
	require.NoError(t, err)
	assert.True(t, driver.IsAvailable)

	assert.Contains(t, gw.statusChanges, models.RideStatusCancelled)
}

func TestCancelRideGuards(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	riderID := uuid.New()
	ride := requestRide(t, uc, riderID)

	// Only the requesting rider may cancel.
	_, err := uc.CancelRide(context.Background(), uuid.New(), ride.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)
	_, err = uc.CompleteRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Terminal rides cannot be cancelled.
	_, err = uc.CancelRide(context.Background(), riderID, ride.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestUpdateDropoffReprices(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	seedCandidates(registry, 1)
	riderID := uuid.New()
	ride := requestRide(t, uc, riderID)
	originalFare := ride.Fare

	farther := models.Location{Address: "Fahaheel", Latitude: 29.0825, Longitude: 48.1302}
	updated, err := uc.UpdateDropoff(context.Background(), riderID, ride.ID, farther)
	require.NoError(t, err)

	assert.Equal(t, farther, updated.Dropoff)
	assert.Greater(t, updated.Fare, originalFare)
	assert.Equal(t, testPickup, updated.Pickup)
}

func TestUpdateDropoffGuards(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	riderID := uuid.New()
	ride := requestRide(t, uc, riderID)

	dropoff := models.Location{Latitude: 29.30, Longitude: 48.00}

	_, err := uc.UpdateDropoff(context.Background(), uuid.New(), ride.ID, dropoff)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Still allowed while merely accepted.
	_, err = uc.UpdateDropoff(context.Background(), riderID, ride.ID, dropoff)
	require.NoError(t, err)

	_, err = uc.StartRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Not once the trip is underway.
	_, err = uc.UpdateDropoff(context.Background(), riderID, ride.ID, dropoff)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestListUpcomingForRider(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	riderID := uuid.New()

	first := requestRide(t, uc, riderID)
	second := requestRide(t, uc, riderID)

	_, err := uc.AcceptRide(context.Background(), driverIDs[0], first.ID)
	require.NoError(t, err)
	_, err = uc.CompleteRide(context.Background(), driverIDs[0], first.ID)
	require.NoError(t, err)

	upcoming, err := uc.ListUpcomingForRider(context.Background(), riderID)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, second.ID, upcoming[0].ID)

	history, err := uc.ListRidesForRider(context.Background(), riderID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestListOpenRides(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	seedCandidates(registry, 1)

	requestRide(t, uc, uuid.New())
	requestRide(t, uc, uuid.New())

	open, err := uc.ListOpenRides(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestGetDriverLocation(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	riderID := uuid.New()
	ride := requestRide(t, uc, riderID)

	// No driver en route yet.
	_, err := uc.GetDriverLocation(context.Background(), riderID, ride.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	// Driver has not reported a position.
	_, err = uc.GetDriverLocation(context.Background(), riderID, ride.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	registry.mu.Lock()
	registry.drivers[driverIDs[0]].CurrentLocation = &models.Location{Latitude: 29.38, Longitude: 47.99}
	registry.mu.Unlock()

	loc, err := uc.GetDriverLocation(context.Background(), riderID, ride.ID)
	require.NoError(t, err)
	assert.Equal(t, 29.38, loc.Latitude)

	// Not visible to other riders.
	_, err = uc.GetDriverLocation(context.Background(), uuid.New(), ride.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestActiveRideForDriver(t *testing.T) {
	uc, _, _, registry := newTestUC(t)
	driverIDs := seedCandidates(registry, 1)
	ride := requestRide(t, uc, uuid.New())

	_, err := uc.ActiveRideForDriver(context.Background(), driverIDs[0])
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = uc.AcceptRide(context.Background(), driverIDs[0], ride.ID)
	require.NoError(t, err)

	active, err := uc.ActiveRideForDriver(context.Background(), driverIDs[0])
	require.NoError(t, err)
	assert.Equal(t, ride.ID, active.ID)
}

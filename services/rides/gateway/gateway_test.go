package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

type sentFrame struct {
	target string
	event  string
}

type fakeNotifier struct {
	direct    []sentFrame
	broadcast []sentFrame
	connected bool
}

func (f *fakeNotifier) NotifyUser(userID, event string, data interface{}) bool {
	f.direct = append(f.direct, sentFrame{target: userID, event: event})
	return f.connected
}

func (f *fakeNotifier) BroadcastToRoom(rideID, event string, data interface{}) {
	f.broadcast = append(f.broadcast, sentFrame{target: rideID, event: event})
}

type fakeProducer struct {
	topics []string
	err    error
}

func (f *fakeProducer) Publish(topic string, message interface{}) error {
	f.topics = append(f.topics, topic)
	return f.err
}

type fakeCharger struct {
	charged  float64
	currency string
	err      error
}

func (f *fakeCharger) Charge(ctx context.Context, amount float64, currency, customerID string) (string, error) {
	f.charged = amount
	f.currency = currency
	if f.err != nil {
		return "", f.err
	}
	return "pi_test_123", nil
}

func newTestGateway() (*RideGateway, *fakeNotifier, *fakeProducer, *fakeCharger) {
	notifier := &fakeNotifier{connected: true}
	producer := &fakeProducer{}
	charger := &fakeCharger{}
	cfg := &models.Config{Pricing: models.PricingConfig{Currency: "kwd"}}
	return NewRideGateway(cfg, notifier, producer, charger), notifier, producer, charger
}

func TestPublishRideOffer(t *testing.T) {
	gw, notifier, producer, _ := newTestGateway()
	driverID := uuid.NewString()

	gw.PublishRideOffer(context.Background(), models.RideOffer{
		RideID:   uuid.NewString(),
		DriverID: driverID,
	})

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, driverID, notifier.direct[0].target)
	assert.Equal(t, constants.EventRideOffer, notifier.direct[0].event)
	assert.Equal(t, []string{constants.TopicRideOffer}, producer.topics)
}

func TestPublishRideOfferSurvivesBrokerOutage(t *testing.T) {
	gw, notifier, producer, _ := newTestGateway()
	producer.err = errors.New("nsqd unreachable")

	gw.PublishRideOffer(context.Background(), models.RideOffer{
		RideID:   uuid.NewString(),
		DriverID: uuid.NewString(),
	})

	assert.Len(t, notifier.direct, 1)
}

func TestPublishStatusChangeEvents(t *testing.T) {
	tests := []struct {
		status models.RideStatus
		event  string
	}{
		{models.RideStatusAccepted, constants.EventDriverAssigned},
		{models.RideStatusInProgress, constants.EventRideStarted},
		{models.RideStatusCompleted, constants.EventRideCompleted},
		{models.RideStatusCancelled, constants.EventRideCancelled},
		{models.RideStatusRequested, constants.EventDropoffUpdated},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			gw, notifier, producer, _ := newTestGateway()
			driverID := uuid.New()
			ride := &models.Ride{
				ID:       uuid.New(),
				RiderID:  uuid.New(),
				DriverID: &driverID,
				Status:   tt.status,
			}

			gw.PublishStatusChange(context.Background(), ride)

			require.Len(t, notifier.broadcast, 1)
			assert.Equal(t, ride.ID.String(), notifier.broadcast[0].target)
			assert.Equal(t, tt.event, notifier.broadcast[0].event)
			assert.Equal(t, []string{constants.TopicRideStatus}, producer.topics)
		})
	}
}

func TestPublishStatusChangeNotifiesRiderOnAssignment(t *testing.T) {
	gw, notifier, _, _ := newTestGateway()
	driverID := uuid.New()
	ride := &models.Ride{
		ID:       uuid.New(),
		RiderID:  uuid.New(),
		DriverID: &driverID,
		Status:   models.RideStatusAccepted,
	}

	gw.PublishStatusChange(context.Background(), ride)

	require.Len(t, notifier.direct, 1)
	assert.Equal(t, ride.RiderID.String(), notifier.direct[0].target)
	assert.Equal(t, constants.EventDriverAssigned, notifier.direct[0].event)
}

func TestPublishDriverLocation(t *testing.T) {
	gw, notifier, producer, _ := newTestGateway()
	rideID := uuid.NewString()

	gw.PublishDriverLocation(context.Background(), models.DriverLocationEvent{
		RideID:    rideID,
		DriverID:  uuid.NewString(),
		Latitude:  29.38,
		Longitude: 47.99,
	})

	require.Len(t, notifier.broadcast, 1)
	assert.Equal(t, rideID, notifier.broadcast[0].target)
	assert.Equal(t, constants.EventDriverLocation, notifier.broadcast[0].event)
	assert.Equal(t, []string{constants.TopicRideLocation}, producer.topics)
}

func TestSettlePaymentCash(t *testing.T) {
	gw, _, _, charger := newTestGateway()

	err := gw.SettlePayment(context.Background(), &models.Ride{
		ID:            uuid.New(),
		PaymentMethod: models.PaymentMethodCash,
		Fare:          19.60,
	})
	require.NoError(t, err)
	assert.Zero(t, charger.charged)
}

func TestSettlePaymentCard(t *testing.T) {
	gw, _, _, charger := newTestGateway()

	err := gw.SettlePayment(context.Background(), &models.Ride{
		ID:            uuid.New(),
		PaymentMethod: models.PaymentMethodCard,
		Fare:          19.60,
	})
	require.NoError(t, err)
	assert.Equal(t, 19.60, charger.charged)
	assert.Equal(t, "kwd", charger.currency)
}

func TestSettlePaymentCardDeclined(t *testing.T) {
	gw, _, _, charger := newTestGateway()
	charger.err = errors.New("card declined")

	err := gw.SettlePayment(context.Background(), &models.Ride{
		ID:            uuid.New(),
		PaymentMethod: models.PaymentMethodCard,
		Fare:          19.60,
	})
	assert.ErrorIs(t, err, apperr.ErrDependencyUnavailable)
}

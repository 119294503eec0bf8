// Package gateway fans ride lifecycle events out to connected clients,
// the message broker and the payment processor. Every publish happens
// after the owning state change has committed, so failures here are
// logged and never unwind ride state.
package gateway

import (
	"context"
	"fmt"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// RoomNotifier is the slice of the WebSocket manager the gateway needs.
type RoomNotifier interface {
	NotifyUser(userID string, event string, data interface{}) bool
	BroadcastToRoom(rideID string, event string, data interface{})
}

// BrokerProducer publishes JSON messages to a topic.
type BrokerProducer interface {
	Publish(topic string, message interface{}) error
}

// CardCharger settles a card fare with the payment processor.
type CardCharger interface {
	Charge(ctx context.Context, amount float64, currency, customerID string) (string, error)
}

// RideGateway implements the ride gateway interface
type RideGateway struct {
	cfg      *models.Config
	notifier RoomNotifier
	producer BrokerProducer
	charger  CardCharger
}

// NewRideGateway creates a new ride gateway instance
func NewRideGateway(cfg *models.Config, notifier RoomNotifier, producer BrokerProducer, charger CardCharger) *RideGateway {
	return &RideGateway{
		cfg:      cfg,
		notifier: notifier,
		producer: producer,
		charger:  charger,
	}
}

// PublishRideOffer pushes an offer to one candidate driver over WebSocket
// and mirrors it to the broker for drivers connected elsewhere.
func (g *RideGateway) PublishRideOffer(ctx context.Context, offer models.RideOffer) {
	delivered := g.notifier.NotifyUser(offer.DriverID, constants.EventRideOffer, offer)
	if !delivered {
		logger.Debug("Driver not connected locally for offer",
			logger.String("ride_id", offer.RideID),
			logger.String("driver_id", offer.DriverID))
	}

	if err := g.producer.Publish(constants.TopicRideOffer, offer); err != nil {
		logger.Warn("Failed to publish ride offer",
			logger.String("ride_id", offer.RideID),
			logger.Err(err))
	}
}

// PublishStatusChange broadcasts a lifecycle event to the ride room and
// mirrors the ride to the broker.
func (g *RideGateway) PublishStatusChange(ctx context.Context, ride *models.Ride) {
	event := statusEvent(ride.Status)

	payload := models.RideStatusEvent{
		RideID: ride.ID.String(),
		Status: ride.Status,
	}
	if ride.DriverID != nil {
		payload.DriverID = ride.DriverID.String()
	}

	g.notifier.BroadcastToRoom(ride.ID.String(), event, ride)

	// The rider may not have joined the room yet when a driver accepts.
	if event == constants.EventDriverAssigned {
		g.notifier.NotifyUser(ride.RiderID.String(), event, ride)
	}

	if err := g.producer.Publish(constants.TopicRideStatus, payload); err != nil {
		logger.Warn("Failed to publish ride status",
			logger.String("ride_id", payload.RideID),
			logger.String("status", string(payload.Status)),
			logger.Err(err))
	}
}

// statusEvent maps a ride status to its client-facing event name. A ride
// still in requested status only changes through a dropoff rewrite.
func statusEvent(status models.RideStatus) string {
	switch status {
	case models.RideStatusAccepted:
		return constants.EventDriverAssigned
	case models.RideStatusInProgress:
		return constants.EventRideStarted
	case models.RideStatusCompleted:
		return constants.EventRideCompleted
	case models.RideStatusCancelled:
		return constants.EventRideCancelled
	default:
		return constants.EventDropoffUpdated
	}
}

// PublishDriverLocation streams a position fix to the ride room and the
// broker.
func (g *RideGateway) PublishDriverLocation(ctx context.Context, event models.DriverLocationEvent) {
	g.notifier.BroadcastToRoom(event.RideID, constants.EventDriverLocation, event)

	if err := g.producer.Publish(constants.TopicRideLocation, event); err != nil {
		logger.Warn("Failed to publish driver location",
			logger.String("ride_id", event.RideID),
			logger.Err(err))
	}
}

// SettlePayment charges the fare for card rides. Cash and wallet fares
// settle outside the platform and need no processor call.
func (g *RideGateway) SettlePayment(ctx context.Context, ride *models.Ride) error {
	if ride.PaymentMethod != models.PaymentMethodCard {
		return nil
	}

	intentID, err := g.charger.Charge(ctx, ride.Fare, g.cfg.Pricing.Currency, "")
	if err != nil {
		return fmt.Errorf("card settlement for ride %s: %v: %w", ride.ID, err, apperr.ErrDependencyUnavailable)
	}

	logger.Info("Fare settled",
		logger.String("ride_id", ride.ID.String()),
		logger.String("payment_intent", intentID),
		logger.Float64("fare", ride.Fare))
	return nil
}

// Package nsq consumes broker topics so that offers and status changes
// published by one instance reach drivers connected to another.
package nsq

import (
	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	nsqpkg "github.com/mishwarapp/mishwar/internal/pkg/nsq"
)

// ClientNotifier delivers an event to a locally connected user.
type ClientNotifier interface {
	NotifyUser(userID string, event string, data interface{}) bool
}

// OfferHandler relays broker ride offers to WebSocket clients
type OfferHandler struct {
	notifier ClientNotifier
}

// NewOfferHandler creates a new offer relay handler
func NewOfferHandler(notifier ClientNotifier) *OfferHandler {
	return &OfferHandler{notifier: notifier}
}

// HandleRideOffer forwards an offer to the target driver if connected
// here. A driver connected to another instance is someone else's problem;
// the message is never requeued for that.
func (h *OfferHandler) HandleRideOffer(message []byte) error {
	var offer models.RideOffer
	if err := nsqpkg.UnmarshalMessage(message, &offer); err != nil {
		logger.Error("Malformed ride offer message", logger.Err(err))
		// Requeueing a malformed message loops forever.
		return nil
	}

	delivered := h.notifier.NotifyUser(offer.DriverID, constants.EventRideOffer, offer)
	logger.Debug("Relayed ride offer",
		logger.String("ride_id", offer.RideID),
		logger.String("driver_id", offer.DriverID),
		logger.Bool("delivered", delivered))
	return nil
}

// HandleRideStatus forwards a lifecycle change to the assigned driver.
// Room members get theirs from the publishing instance directly.
func (h *OfferHandler) HandleRideStatus(message []byte) error {
	var event models.RideStatusEvent
	if err := nsqpkg.UnmarshalMessage(message, &event); err != nil {
		logger.Error("Malformed ride status message", logger.Err(err))
		return nil
	}

	if event.DriverID == "" {
		return nil
	}

	statusEvent := ""
	switch event.Status {
	case models.RideStatusCancelled:
		statusEvent = constants.EventRideCancelled
	case models.RideStatusAccepted:
		statusEvent = constants.EventDriverAssigned
	default:
		return nil
	}

	h.notifier.NotifyUser(event.DriverID, statusEvent, event)
	return nil
}

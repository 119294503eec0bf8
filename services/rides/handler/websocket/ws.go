// Package websocket handles the client side of the real-time channel:
// ride room membership, driver location pushes and keepalives.
package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	ws "github.com/mishwarapp/mishwar/internal/pkg/websocket"
	"github.com/mishwarapp/mishwar/services/drivers"
	"github.com/mishwarapp/mishwar/services/rides"
)

// WebSocketHandler routes inbound frames to the ride and driver usecases
type WebSocketHandler struct {
	manager  *ws.Manager
	rideUC   rides.RideUC
	driverUC drivers.DriverUC
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(manager *ws.Manager, rideUC rides.RideUC, driverUC drivers.DriverUC) *WebSocketHandler {
	return &WebSocketHandler{
		manager:  manager,
		rideUC:   rideUC,
		driverUC: driverUC,
	}
}

// HandleWebSocket upgrades the connection and runs the read loop until
// the client disconnects.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	return h.manager.HandleConnection(c, h.handleClient)
}

func (h *WebSocketHandler) handleClient(client *ws.Client) error {
	logger.Info("WebSocket client connected",
		logger.String("user_id", client.UserID),
		logger.String("role", client.Role))

	for {
		var msg models.WSMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket client disconnected",
				logger.String("user_id", client.UserID),
				logger.Err(err))
			return nil
		}
		h.routeMessage(client, msg)
	}
}

func (h *WebSocketHandler) routeMessage(client *ws.Client, msg models.WSMessage) {
	switch msg.Event {
	case constants.EventPing:
		client.Send(constants.EventPong, nil)
	case constants.EventJoinRide:
		h.handleJoinRide(client, msg.Data)
	case constants.EventLeaveRide:
		h.handleLeaveRide(client, msg.Data)
	case constants.EventUpdateLocation:
		h.handleUpdateLocation(client, msg.Data)
	default:
		h.manager.SendErrorMessage(client, constants.ErrorInvalidFormat, "Unknown event: "+msg.Event)
	}
}

// handleJoinRide adds the client to a ride room after checking they are
// a participant. Anyone else watching a ride would leak rider positions.
func (h *WebSocketHandler) handleJoinRide(client *ws.Client, data json.RawMessage) {
	var payload models.WSRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.manager.SendErrorMessage(client, constants.ErrorInvalidFormat, "Invalid join payload")
		return
	}

	rideID, err := uuid.Parse(payload.RideID)
	if err != nil {
		h.manager.SendErrorMessage(client, constants.ErrorValidationFailed, "Invalid ride ID")
		return
	}

	ride, err := h.rideUC.GetRide(context.Background(), rideID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.manager.SendErrorMessage(client, constants.ErrorRideNotFound, "Ride not found")
		} else {
			h.manager.SendErrorMessage(client, constants.ErrorInternalError, "Failed to load ride")
		}
		return
	}

	if !isParticipant(ride, client.UserID) {
		h.manager.SendErrorMessage(client, constants.ErrorForbidden, "Not a participant of this ride")
		return
	}

	h.manager.JoinRoom(payload.RideID, client)
	logger.Debug("Client joined ride room",
		logger.String("user_id", client.UserID),
		logger.String("ride_id", payload.RideID))
}

func (h *WebSocketHandler) handleLeaveRide(client *ws.Client, data json.RawMessage) {
	var payload models.WSRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		h.manager.SendErrorMessage(client, constants.ErrorInvalidFormat, "Invalid leave payload")
		return
	}
	h.manager.LeaveRoom(payload.RideID, client)
}

// handleUpdateLocation accepts a position push from a driver. The
// location flows through the driver usecase, which refreshes the geo
// index and relays the fix to the driver's active ride room.
func (h *WebSocketHandler) handleUpdateLocation(client *ws.Client, data json.RawMessage) {
	if client.Role != "driver" {
		h.manager.SendErrorMessage(client, constants.ErrorForbidden, "Only drivers push locations")
		return
	}

	var payload models.LocationUpdate
	if err := json.Unmarshal(data, &payload); err != nil {
		h.manager.SendErrorMessage(client, constants.ErrorInvalidFormat, "Invalid location payload")
		return
	}

	driverID, err := uuid.Parse(client.UserID)
	if err != nil {
		h.manager.SendErrorMessage(client, constants.ErrorUnauthorized, "Invalid driver identity")
		return
	}

	location := models.Location{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}
	if err := h.driverUC.UpdateLocation(context.Background(), driverID, location); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			h.manager.SendErrorMessage(client, constants.ErrorValidationFailed, "Coordinates out of range")
		} else {
			logger.Warn("Failed to process location update",
				logger.String("driver_id", client.UserID),
				logger.Err(err))
			h.manager.SendErrorMessage(client, constants.ErrorInternalError, "Failed to update location")
		}
	}
}

func isParticipant(ride *models.Ride, userID string) bool {
	if ride.RiderID.String() == userID {
		return true
	}
	return ride.DriverID != nil && ride.DriverID.String() == userID
}

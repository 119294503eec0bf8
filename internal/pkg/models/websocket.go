package models

import "encoding/json"

// WSMessage is the envelope for every frame exchanged over the
// real-time channel, in both directions.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// WSErrorMessage is the data payload for error frames.
type WSErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSRoomPayload is the data payload for joinRide/leaveRide frames.
type WSRoomPayload struct {
	RideID string `json:"ride_id"`
}

// RideStatusEvent is broadcast to a ride room whenever the ride
// transitions state.
type RideStatusEvent struct {
	RideID   string     `json:"ride_id"`
	Status   RideStatus `json:"status"`
	DriverID string     `json:"driver_id,omitempty"`
}

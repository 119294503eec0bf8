package constants

// WebSocket event types
const (
	// Common events
	EventError = "error"
	EventPing  = "ping"
	EventPong  = "pong"

	// Room events
	EventJoinRide  = "joinRide"
	EventLeaveRide = "leaveRide"

	// Driver events
	EventUpdateLocation = "updateLocation"
	EventDriverLocation = "driverLocation"

	// Ride lifecycle events
	EventRideOffer      = "rideOffer"
	EventDriverAssigned = "driverAssigned"
	EventRideStarted    = "rideStarted"
	EventRideCompleted  = "rideCompleted"
	EventRideCancelled  = "rideCancelled"
	EventDropoffUpdated = "dropoffUpdated"
)

// WebSocket error codes
const (
	ErrorInvalidFormat    = "invalid_format"
	ErrorValidationFailed = "validation_failed"
	ErrorUnauthorized     = "unauthorized"
	ErrorForbidden        = "forbidden"
	ErrorInternalError    = "internal_error"
	ErrorRideNotFound     = "ride_not_found"
)

package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/middleware"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/utils"
	"github.com/mishwarapp/mishwar/services/rides"
)

// RidesHandler handles HTTP requests for the ride lifecycle
type RidesHandler struct {
	rideUC rides.RideUC
}

// NewRidesHandler creates a new ride HTTP handler
func NewRidesHandler(rideUC rides.RideUC) *RidesHandler {
	return &RidesHandler{rideUC: rideUC}
}

type estimateRequest struct {
	Pickup  models.Location `json:"pickup"`
	Dropoff models.Location `json:"dropoff"`
}

// EstimateFare quotes a trip without creating anything
func (h *RidesHandler) EstimateFare(c echo.Context) error {
	var req estimateRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	estimate, err := h.rideUC.EstimateFare(c.Request().Context(), req.Pickup, req.Dropoff)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", estimate)
}

// RequestRide creates a ride for the authenticated rider and fans offers
// out to nearby drivers.
func (h *RidesHandler) RequestRide(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.RideRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	result, err := h.rideUC.RequestRide(c.Request().Context(), riderID, req)
	if err != nil {
		logger.Warn("Ride request failed",
			logger.String("rider_id", riderID.String()),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "Ride requested", result)
}

// GetRide returns a single ride by ID
func (h *RidesHandler) GetRide(c echo.Context) error {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.GetRide(c.Request().Context(), rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", ride)
}

// ListRides returns the authenticated rider's ride history
func (h *RidesHandler) ListRides(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	result, err := h.rideUC.ListRidesForRider(c.Request().Context(), riderID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListUpcomingRides returns the rider's rides that have not reached a
// terminal state.
func (h *RidesHandler) ListUpcomingRides(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	result, err := h.rideUC.ListUpcomingForRider(c.Request().Context(), riderID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CancelRide cancels the rider's ride if it has not finished
func (h *RidesHandler) CancelRide(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.CancelRide(c.Request().Context(), riderID, rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride cancelled", ride)
}

type dropoffRequest struct {
	Dropoff models.Location `json:"dropoff"`
}

// UpdateDropoff changes the destination of a ride that has not started
// and reprices the trip.
func (h *RidesHandler) UpdateDropoff(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	var req dropoffRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	ride, err := h.rideUC.UpdateDropoff(c.Request().Context(), riderID, rideID, req.Dropoff)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Dropoff updated", ride)
}

// GetDriverLocation returns the assigned driver's last known position
// for the rider's active ride.
func (h *RidesHandler) GetDriverLocation(c echo.Context) error {
	riderID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	location, err := h.rideUC.GetDriverLocation(c.Request().Context(), riderID, rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", location)
}

// ListOpenRides returns rides still waiting for a driver
func (h *RidesHandler) ListOpenRides(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return utils.BadRequestResponse(c, "Invalid limit")
		}
		limit = parsed
	}

	result, err := h.rideUC.ListOpenRides(c.Request().Context(), limit)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", result)
}

// AcceptRide claims an open ride for the authenticated driver. Exactly
// one driver wins; the rest get a conflict.
func (h *RidesHandler) AcceptRide(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.AcceptRide(c.Request().Context(), driverID, rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride accepted", ride)
}

// StartRide marks the trip as underway
func (h *RidesHandler) StartRide(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.StartRide(c.Request().Context(), driverID, rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride started", ride)
}

// CompleteRide finishes the trip, frees the driver and settles the fare
func (h *RidesHandler) CompleteRide(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid ride ID")
	}

	ride, err := h.rideUC.CompleteRide(c.Request().Context(), driverID, rideID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Ride completed", ride)
}

// ActiveRide returns the authenticated driver's current ride, if any
func (h *RidesHandler) ActiveRide(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	ride, err := h.rideUC.ActiveRideForDriver(c.Request().Context(), driverID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", ride)
}

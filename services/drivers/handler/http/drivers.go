package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/middleware"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/internal/utils"
	"github.com/mishwarapp/mishwar/services/drivers"
)

// DriversHandler handles HTTP requests for driver registry operations
type DriversHandler struct {
	driverUC drivers.DriverUC
}

// NewDriversHandler creates a new driver HTTP handler
func NewDriversHandler(driverUC drivers.DriverUC) *DriversHandler {
	return &DriversHandler{driverUC: driverUC}
}

// RegisterDriver creates a driver registry record for an existing user
// account and returns a driver-scoped token.
func (h *DriversHandler) RegisterDriver(c echo.Context) error {
	var req models.DriverRegistration
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}
	if req.UserID == uuid.Nil {
		return utils.BadRequestResponse(c, "user_id is required")
	}

	driver, token, err := h.driverUC.RegisterDriver(c.Request().Context(), req.UserID)
	if err != nil {
		logger.Error("Failed to register driver",
			logger.String("user_id", req.UserID.String()),
			logger.Err(err))
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Driver registered", map[string]interface{}{
		"driver": driver,
		"token":  token,
	})
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

// SetAvailability sets or toggles the authenticated driver's
// availability. With no body the flag is toggled.
func (h *DriversHandler) SetAvailability(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req availabilityRequest
	_ = c.Bind(&req)

	if req.IsAvailable == nil {
		state, err := h.driverUC.ToggleAvailability(c.Request().Context(), driverID)
		if err != nil {
			return utils.DomainErrorResponse(c, err)
		}
		return utils.SuccessResponse(c, http.StatusOK, "Availability toggled", map[string]bool{"is_available": state})
	}

	if err := h.driverUC.SetAvailability(c.Request().Context(), driverID, *req.IsAvailable); err != nil {
		return utils.DomainErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Availability updated", map[string]bool{"is_available": *req.IsAvailable})
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// UpdateLocation pushes the authenticated driver's current position
func (h *DriversHandler) UpdateLocation(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body: "+err.Error())
	}

	location := models.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}
	if err := h.driverUC.UpdateLocation(c.Request().Context(), driverID, location); err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Location updated", nil)
}

// GetDriver returns the authenticated driver's registry record,
// including accumulated earnings.
func (h *DriversHandler) GetDriver(c echo.Context) error {
	driverID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	driver, err := h.driverUC.GetDriver(c.Request().Context(), driverID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "", driver)
}

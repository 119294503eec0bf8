package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSuccessResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		message    string
		data       interface{}
	}{
		{
			name:       "Success with string data",
			statusCode: http.StatusOK,
			message:    "Operation successful",
			data:       "test data",
		},
		{
			name:       "Success with map data",
			statusCode: http.StatusCreated,
			message:    "Resource created",
			data:       map[string]interface{}{"id": "123"},
		},
		{
			name:       "Success with nil data",
			statusCode: http.StatusOK,
			message:    "Success",
			data:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext()

			err := SuccessResponse(c, tt.statusCode, tt.message, tt.data)
			assert.NoError(t, err)
			assert.Equal(t, tt.statusCode, rec.Code)

			var response Response
			err = json.Unmarshal(rec.Body.Bytes(), &response)
			assert.NoError(t, err)
			assert.True(t, response.Success)
			assert.Equal(t, tt.message, response.Message)
		})
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		fn         func(echo.Context, string) error
		statusCode int
	}{
		{name: "BadRequest", fn: BadRequestResponse, statusCode: http.StatusBadRequest},
		{name: "Unauthorized", fn: UnauthorizedResponse, statusCode: http.StatusUnauthorized},
		{name: "Forbidden", fn: ForbiddenResponse, statusCode: http.StatusForbidden},
		{name: "NotFound", fn: NotFoundResponse, statusCode: http.StatusNotFound},
		{name: "Conflict", fn: ConflictResponse, statusCode: http.StatusConflict},
		{name: "UnprocessableEntity", fn: UnprocessableEntityResponse, statusCode: http.StatusUnprocessableEntity},
		{name: "InternalServerError", fn: InternalServerErrorResponse, statusCode: http.StatusInternalServerError},
		{name: "ServiceUnavailable", fn: ServiceUnavailableResponse, statusCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext()

			err := tt.fn(c, "boom")
			assert.NoError(t, err)
			assert.Equal(t, tt.statusCode, rec.Code)

			var response ErrorResponse
			err = json.Unmarshal(rec.Body.Bytes(), &response)
			assert.NoError(t, err)
			assert.False(t, response.Success)
			assert.Equal(t, "boom", response.Error)
			assert.Equal(t, tt.statusCode, response.Code)
		})
	}
}

func TestErrorResponsesDefaultMessage(t *testing.T) {
	c, rec := newTestContext()

	err := NotFoundResponse(c, "")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Resource not found", response.Error)
}

func TestDomainErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "Not found", err: apperr.ErrNotFound, statusCode: http.StatusNotFound},
		{name: "Wrapped not found", err: fmt.Errorf("ride %s: %w", "abc", apperr.ErrNotFound), statusCode: http.StatusNotFound},
		{name: "Forbidden", err: apperr.ErrForbidden, statusCode: http.StatusForbidden},
		{name: "Invalid transition", err: apperr.ErrInvalidTransition, statusCode: http.StatusConflict},
		{name: "Ride not available", err: apperr.ErrRideNotAvailable, statusCode: http.StatusConflict},
		{name: "Already exists", err: apperr.ErrAlreadyExists, statusCode: http.StatusConflict},
		{name: "No drivers", err: apperr.ErrNoDriversAvailable, statusCode: http.StatusUnprocessableEntity},
		{name: "Validation", err: apperr.ErrValidation, statusCode: http.StatusBadRequest},
		{name: "Dependency unavailable", err: apperr.ErrDependencyUnavailable, statusCode: http.StatusServiceUnavailable},
		{name: "Unknown error hides detail", err: fmt.Errorf("pq: connection refused"), statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext()

			err := DomainErrorResponse(c, tt.err)
			assert.NoError(t, err)
			assert.Equal(t, tt.statusCode, rec.Code)

			if tt.statusCode == http.StatusInternalServerError {
				var response ErrorResponse
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				assert.NotContains(t, response.Error, "pq:")
			}
		})
	}
}

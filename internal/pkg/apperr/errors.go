// Package apperr defines the sentinel error kinds shared across services.
// Handlers map these to HTTP status codes; usecases wrap them with
// fmt.Errorf("...: %w", err) to add context without losing the kind.
package apperr

import "errors"

var (
	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is authenticated but not allowed to
	// act on this entity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition means the ride is not in a state that permits
	// the requested operation.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRideNotAvailable means another driver already accepted the ride.
	ErrRideNotAvailable = errors.New("ride no longer available")

	// ErrNoDriversAvailable means no available driver was found within
	// the search radius.
	ErrNoDriversAvailable = errors.New("no available drivers found")

	// ErrAlreadyExists means the entity being created is already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation means the request payload failed validation.
	ErrValidation = errors.New("validation failed")

	// ErrDependencyUnavailable means a downstream dependency (database,
	// cache, broker) could not serve the request.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// IsConflict reports whether err represents a state conflict rather than
// a client mistake, used to pick 409 over 422.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrRideNotAvailable) ||
		errors.Is(err, ErrAlreadyExists)
}

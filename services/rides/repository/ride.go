package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
	"github.com/mishwarapp/mishwar/services/rides"
)

const rideColumns = `id, rider_id, driver_id,
		pickup_latitude, pickup_longitude, pickup_address,
		dropoff_latitude, dropoff_longitude, dropoff_address,
		fare, distance_km, duration_min, payment_method, status,
		requested_at, accepted_at, started_at, completed_at, cancelled_at`

// RideRepo implements the ride data access interface on Postgres
type RideRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewRideRepo creates a new ride repository instance
func NewRideRepo(cfg *models.Config, db *sqlx.DB) *RideRepo {
	return &RideRepo{
		cfg: cfg,
		db:  db,
	}
}

// rideRow is the flat scan target for the rides table.
type rideRow struct {
	ID               uuid.UUID      `db:"id"`
	RiderID          uuid.UUID      `db:"rider_id"`
	DriverID         *uuid.UUID     `db:"driver_id"`
	PickupLatitude   float64        `db:"pickup_latitude"`
	PickupLongitude  float64        `db:"pickup_longitude"`
	PickupAddress    sql.NullString `db:"pickup_address"`
	DropoffLatitude  float64        `db:"dropoff_latitude"`
	DropoffLongitude float64        `db:"dropoff_longitude"`
	DropoffAddress   sql.NullString `db:"dropoff_address"`
	Fare             float64        `db:"fare"`
	DistanceKm       float64        `db:"distance_km"`
	DurationMin      int            `db:"duration_min"`
	PaymentMethod    string         `db:"payment_method"`
	Status           string         `db:"status"`
	RequestedAt      time.Time      `db:"requested_at"`
	AcceptedAt       *time.Time     `db:"accepted_at"`
	StartedAt        *time.Time     `db:"started_at"`
	CompletedAt      *time.Time     `db:"completed_at"`
	CancelledAt      *time.Time     `db:"cancelled_at"`
}

func (row rideRow) toRide() *models.Ride {
	return &models.Ride{
		ID:       row.ID,
		RiderID:  row.RiderID,
		DriverID: row.DriverID,
		Pickup: models.Location{
			Address:   row.PickupAddress.String,
			Latitude:  row.PickupLatitude,
			Longitude: row.PickupLongitude,
		},
		Dropoff: models.Location{
			Address:   row.DropoffAddress.String,
			Latitude:  row.DropoffLatitude,
			Longitude: row.DropoffLongitude,
		},
		Fare:          row.Fare,
		DistanceKm:    row.DistanceKm,
		DurationMin:   row.DurationMin,
		PaymentMethod: models.PaymentMethod(row.PaymentMethod),
		Status:        models.RideStatus(row.Status),
		RequestedAt:   row.RequestedAt,
		AcceptedAt:    row.AcceptedAt,
		StartedAt:     row.StartedAt,
		CompletedAt:   row.CompletedAt,
		CancelledAt:   row.CancelledAt,
	}
}

// CreateRide inserts a new ride record
func (r *RideRepo) CreateRide(ctx context.Context, ride *models.Ride) error {
	query := `
		INSERT INTO rides (
			id, rider_id,
			pickup_latitude, pickup_longitude, pickup_address,
			dropoff_latitude, dropoff_longitude, dropoff_address,
			fare, distance_km, duration_min, payment_method, status, requested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		ride.ID,
		ride.RiderID,
		ride.Pickup.Latitude,
		ride.Pickup.Longitude,
		ride.Pickup.Address,
		ride.Dropoff.Latitude,
		ride.Dropoff.Longitude,
		ride.Dropoff.Address,
		ride.Fare,
		ride.DistanceKm,
		ride.DurationMin,
		string(ride.PaymentMethod),
		string(ride.Status),
		ride.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

// GetRide retrieves a ride by ID
func (r *RideRepo) GetRide(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	query := fmt.Sprintf(`SELECT %s FROM rides WHERE id = $1`, rideColumns)

	var row rideRow
	if err := r.db.GetContext(ctx, &row, query, rideID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ride %s: %w", rideID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}
	return row.toRide(), nil
}

// UpdateStatusIf applies a status transition only when the ride currently
// sits in one of the from statuses. The WHERE clause makes the check and
// the write a single atomic statement, so concurrent accepts cannot both
// win.
func (r *RideRepo) UpdateStatusIf(ctx context.Context, rideID uuid.UUID, from []models.RideStatus, to models.RideStatus, change rides.StatusChange) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("update status: empty from set")
	}

	sets := []string{"status = $1"}
	args := []interface{}{string(to)}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if change.DriverID != nil {
		appendSet("driver_id", *change.DriverID)
	}
	if change.AcceptedAt != nil {
		appendSet("accepted_at", *change.AcceptedAt)
	}
	if change.StartedAt != nil {
		appendSet("started_at", *change.StartedAt)
	}
	if change.CompletedAt != nil {
		appendSet("completed_at", *change.CompletedAt)
	}
	if change.CancelledAt != nil {
		appendSet("cancelled_at", *change.CancelledAt)
	}

	args = append(args, rideID)
	idArg := len(args)

	placeholders := make([]string, 0, len(from))
	for _, status := range from {
		args = append(args, string(status))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(
		`UPDATE rides SET %s WHERE id = $%d AND status IN (%s)`,
		strings.Join(sets, ", "),
		idArg,
		strings.Join(placeholders, ", "),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update ride status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// UpdateDropoff rewrites the destination and the repriced trip figures
func (r *RideRepo) UpdateDropoff(ctx context.Context, rideID uuid.UUID, dropoff models.Location, fare, distanceKm float64, durationMin int) error {
	query := `
		UPDATE rides
		SET dropoff_latitude = $1, dropoff_longitude = $2, dropoff_address = $3,
			fare = $4, distance_km = $5, duration_min = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(
		ctx,
		query,
		dropoff.Latitude,
		dropoff.Longitude,
		dropoff.Address,
		fare,
		distanceKm,
		durationMin,
		rideID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dropoff: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ride %s: %w", rideID, apperr.ErrNotFound)
	}
	return nil
}

// ListByRider returns the full ride history for a rider, newest first
func (r *RideRepo) ListByRider(ctx context.Context, riderID uuid.UUID) ([]*models.Ride, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM rides WHERE rider_id = $1 ORDER BY requested_at DESC`,
		rideColumns,
	)

	var rows []rideRow
	if err := r.db.SelectContext(ctx, &rows, query, riderID); err != nil {
		return nil, fmt.Errorf("failed to list rides by rider: %w", err)
	}
	return toRides(rows), nil
}

// ListByRiderWithStatus returns the rider's rides in the given statuses
func (r *RideRepo) ListByRiderWithStatus(ctx context.Context, riderID uuid.UUID, statuses []models.RideStatus) ([]*models.Ride, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	args := []interface{}{riderID}
	placeholders := make([]string, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM rides WHERE rider_id = $1 AND status IN (%s) ORDER BY requested_at DESC`,
		rideColumns,
		strings.Join(placeholders, ", "),
	)

	var rows []rideRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rides by rider and status: %w", err)
	}
	return toRides(rows), nil
}

// ListByStatus returns up to limit rides in a status, oldest first so
// drivers browsing open requests see the longest-waiting riders.
func (r *RideRepo) ListByStatus(ctx context.Context, status models.RideStatus, limit int) ([]*models.Ride, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM rides WHERE status = $1 ORDER BY requested_at ASC LIMIT $2`,
		rideColumns,
	)

	var rows []rideRow
	if err := r.db.SelectContext(ctx, &rows, query, string(status), limit); err != nil {
		return nil, fmt.Errorf("failed to list rides by status: %w", err)
	}
	return toRides(rows), nil
}

// ActiveRideForDriver returns the driver's current accepted or
// in-progress ride, if any. A driver can hold at most one.
func (r *RideRepo) ActiveRideForDriver(ctx context.Context, driverID uuid.UUID) (*models.Ride, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM rides WHERE driver_id = $1 AND status IN ($2, $3) LIMIT 1`,
		rideColumns,
	)

	var row rideRow
	err := r.db.GetContext(
		ctx,
		&row,
		query,
		driverID,
		string(models.RideStatusAccepted),
		string(models.RideStatusInProgress),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active ride for driver %s: %w", driverID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active ride: %w", err)
	}
	return row.toRide(), nil
}

func toRides(rows []rideRow) []*models.Ride {
	result := make([]*models.Ride, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toRide())
	}
	return result
}

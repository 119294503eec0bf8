package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mishwarapp/mishwar/internal/pkg/apperr"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// DriverRepo implements the driver registry data access interface
type DriverRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewDriverRepo creates a new driver repository instance
func NewDriverRepo(cfg *models.Config, db *sqlx.DB) *DriverRepo {
	return &DriverRepo{
		cfg: cfg,
		db:  db,
	}
}

// driverRow is the flat scan target for the drivers table.
type driverRow struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	IsAvailable bool            `db:"is_available"`
	Latitude    sql.NullFloat64 `db:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude"`
	LocatedAt   sql.NullTime    `db:"located_at"`
	Earnings    float64         `db:"earnings"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row driverRow) toDriver() *models.Driver {
	d := &models.Driver{
		ID:          row.ID,
		UserID:      row.UserID,
		IsAvailable: row.IsAvailable,
		Earnings:    row.Earnings,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Latitude.Valid && row.Longitude.Valid {
		d.CurrentLocation = &models.Location{
			Latitude:  row.Latitude.Float64,
			Longitude: row.Longitude.Float64,
		}
		if row.LocatedAt.Valid {
			d.CurrentLocation.Timestamp = row.LocatedAt.Time
		}
	}
	return d
}

// CreateDriver inserts a new driver registry row
func (r *DriverRepo) CreateDriver(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (id, user_id, is_available, earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		driver.ID,
		driver.UserID,
		driver.IsAvailable,
		driver.Earnings,
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

// GetDriver retrieves a driver by ID
func (r *DriverRepo) GetDriver(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	query := `
		SELECT id, user_id, is_available, latitude, longitude, located_at, earnings, created_at, updated_at
		FROM drivers
		WHERE id = $1
	`
	var row driverRow
	if err := r.db.GetContext(ctx, &row, query, driverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return row.toDriver(), nil
}

// GetDriverByUserID retrieves a driver by its owning user account
func (r *DriverRepo) GetDriverByUserID(ctx context.Context, userID uuid.UUID) (*models.Driver, error) {
	query := `
		SELECT id, user_id, is_available, latitude, longitude, located_at, earnings, created_at, updated_at
		FROM drivers
		WHERE user_id = $1
	`
	var row driverRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("driver for user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get driver by user: %w", err)
	}
	return row.toDriver(), nil
}

// UpdateAvailability flips the availability flag
func (r *DriverRepo) UpdateAvailability(ctx context.Context, driverID uuid.UUID, available bool) error {
	query := `UPDATE drivers SET is_available = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, available, time.Now(), driverID)
	if err != nil {
		return fmt.Errorf("failed to update availability: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	return nil
}

// UpdateLocation overwrites the driver's last known position
func (r *DriverRepo) UpdateLocation(ctx context.Context, driverID uuid.UUID, location models.Location) error {
	query := `
		UPDATE drivers
		SET latitude = $1, longitude = $2, located_at = $3, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, location.Latitude, location.Longitude, time.Now(), driverID)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	return nil
}

// IncrementEarnings adds a completed fare to the driver's total
func (r *DriverRepo) IncrementEarnings(ctx context.Context, driverID uuid.UUID, amount float64) error {
	query := `UPDATE drivers SET earnings = earnings + $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, amount, time.Now(), driverID)
	if err != nil {
		return fmt.Errorf("failed to increment earnings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("driver %s: %w", driverID, apperr.ErrNotFound)
	}
	return nil
}

// ListAvailableDrivers returns every available driver with a known
// location. Fallback path for candidate search when the geo index is
// unreachable.
func (r *DriverRepo) ListAvailableDrivers(ctx context.Context) ([]*models.Driver, error) {
	query := `
		SELECT id, user_id, is_available, latitude, longitude, located_at, earnings, created_at, updated_at
		FROM drivers
		WHERE is_available = TRUE AND latitude IS NOT NULL AND longitude IS NOT NULL
	`
	var rows []driverRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list available drivers: %w", err)
	}

	result := make([]*models.Driver, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDriver())
	}
	return result, nil
}

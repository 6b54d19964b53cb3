package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
)

const carColumns = `id, plate, is_free, is_special_taxi, is_blocked, position, license_ref`

// CarRepository handles the plate registry (free, special taxi, blocked).
type CarRepository struct {
	db *sql.DB
}

// NewCarRepository returns repository.
func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

// Upsert creates or updates the registry record for a plate.
func (r *CarRepository) Upsert(ctx context.Context, car *models.Car) (*models.Car, error) {
	const query = `
		INSERT INTO cars (plate, is_free, is_special_taxi, is_blocked, position, license_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (plate) DO UPDATE SET
			is_free = EXCLUDED.is_free,
			is_special_taxi = EXCLUDED.is_special_taxi,
			is_blocked = EXCLUDED.is_blocked,
			position = EXCLUDED.position,
			license_ref = EXCLUDED.license_ref
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		car.Plate,
		car.Free,
		car.SpecialTaxi,
		car.Blocked,
		car.Position,
		car.LicenseRef,
	).Scan(&car.ID)
	if err != nil {
		return nil, err
	}
	return car, nil
}

// GetByPlate returns the registry record for a plate, or nil when the plate
// is unregistered (ordinary paying vehicle).
func (r *CarRepository) GetByPlate(ctx context.Context, plate string) (*models.Car, error) {
	const query = `SELECT ` + carColumns + ` FROM cars WHERE plate = $1`
	var car models.Car
	var position, licenseRef sql.NullString
	err := r.db.QueryRowContext(ctx, query, plate).Scan(
		&car.ID,
		&car.Plate,
		&car.Free,
		&car.SpecialTaxi,
		&car.Blocked,
		&position,
		&licenseRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	car.Position = position.String
	car.LicenseRef = licenseRef.String
	return &car, nil
}

// List returns all registry records.
func (r *CarRepository) List(ctx context.Context) ([]models.Car, error) {
	const query = `SELECT ` + carColumns + ` FROM cars ORDER BY plate`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []models.Car
	for rows.Next() {
		var car models.Car
		var position, licenseRef sql.NullString
		if err := rows.Scan(
			&car.ID,
			&car.Plate,
			&car.Free,
			&car.SpecialTaxi,
			&car.Blocked,
			&position,
			&licenseRef,
		); err != nil {
			return nil, err
		}
		car.Position = position.String
		car.LicenseRef = licenseRef.String
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cars, nil
}

// Delete removes a registry record.
func (r *CarRepository) Delete(ctx context.Context, plate string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE plate = $1`, plate)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

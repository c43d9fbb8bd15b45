package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func (r *pgVehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	// Exact match, case-insensitive. LOWER on both sides keeps this an
	// equality test rather than a pattern match.
	query := `SELECT id, client_id, plate_num, owner_name, make, model, color, created_at, updated_at
	           FROM vehicles WHERE LOWER(plate_num) = LOWER($1)`
	err := r.db.QueryRowContext(ctx, query, plate).Scan(
		&vehicle.ID, &vehicle.ClientID, &vehicle.PlateNum, &vehicle.OwnerName,
		&vehicle.Make, &vehicle.Model, &vehicle.Color, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByPlate: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	query := `SELECT id, client_id, plate_num, owner_name, make, model, color, created_at, updated_at
	           FROM vehicles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID, &vehicle.ClientID, &vehicle.PlateNum, &vehicle.OwnerName,
		&vehicle.Make, &vehicle.Model, &vehicle.Color, &vehicle.CreatedAt, &vehicle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	vehicle.UpdatedAt = vehicle.UpdatedAt.In(time.UTC)
	return vehicle, nil
}

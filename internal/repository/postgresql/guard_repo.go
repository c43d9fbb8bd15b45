package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"github.com/lib/pq"
)

type pgGuardRepository struct {
	db *sql.DB
}

func NewPgGuardRepository(db *sql.DB) repository.GuardRepository {
	return &pgGuardRepository{db: db}
}

func (r *pgGuardRepository) Create(ctx context.Context, guard *domain.Guard) (*domain.Guard, error) {
	query := `INSERT INTO guards (username, password_hash, email, supervisor, suspended, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		guard.Username, guard.Password, guard.Email, guard.Supervisor, guard.Suspended,
	).Scan(&guard.ID, &guard.CreatedAt, &guard.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: guard '%s'", repository.ErrDuplicateEntry, guard.Username)
			}
		}
		return nil, fmt.Errorf("GuardRepository.Create: %w", err)
	}
	guard.CreatedAt = guard.CreatedAt.In(time.UTC)
	guard.UpdatedAt = guard.UpdatedAt.In(time.UTC)
	return guard, nil
}

func (r *pgGuardRepository) FindByUsername(ctx context.Context, username string) (*domain.Guard, error) {
	guard := &domain.Guard{}
	query := `SELECT id, username, password_hash, email, supervisor, suspended, created_at, updated_at
	           FROM guards WHERE username = $1`
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&guard.ID, &guard.Username, &guard.Password, &guard.Email,
		&guard.Supervisor, &guard.Suspended, &guard.CreatedAt, &guard.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("GuardRepository.FindByUsername: %w", err)
	}
	guard.CreatedAt = guard.CreatedAt.In(time.UTC)
	guard.UpdatedAt = guard.UpdatedAt.In(time.UTC)
	return guard, nil
}

func (r *pgGuardRepository) FindByID(ctx context.Context, id int) (*domain.Guard, error) {
	guard := &domain.Guard{}
	query := `SELECT id, username, password_hash, email, supervisor, suspended, created_at, updated_at
	           FROM guards WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&guard.ID, &guard.Username, &guard.Password, &guard.Email,
		&guard.Supervisor, &guard.Suspended, &guard.CreatedAt, &guard.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("GuardRepository.FindByID: %w", err)
	}
	guard.CreatedAt = guard.CreatedAt.In(time.UTC)
	guard.UpdatedAt = guard.UpdatedAt.In(time.UTC)
	return guard, nil
}

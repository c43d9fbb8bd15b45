package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

type pgApprovalRepository struct {
	db *sql.DB
}

func NewPgApprovalRepository(db *sql.DB) repository.ApprovalRepository {
	return &pgApprovalRepository{db: db}
}

func (r *pgApprovalRepository) Create(ctx context.Context, approval *domain.EntryApproval) (*domain.EntryApproval, error) {
	query := `INSERT INTO entry_approvals (client_id, guard_id, approved, approval_time)
	           VALUES ($1, $2, $3, $4)
	           RETURNING id`

	var clientIDVal sql.NullInt64
	if approval.ClientID.Valid {
		clientIDVal = sql.NullInt64{Int64: approval.ClientID.Int64, Valid: true}
	}
	var guardIDVal sql.NullInt64
	if approval.GuardID.Valid {
		guardIDVal = sql.NullInt64{Int64: approval.GuardID.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		clientIDVal, guardIDVal, approval.Approved, approval.ApprovalTime,
	).Scan(&approval.ID)
	if err != nil {
		return nil, fmt.Errorf("ApprovalRepository.Create: %w", err)
	}
	approval.ApprovalTime = approval.ApprovalTime.In(time.UTC)
	return approval, nil
}

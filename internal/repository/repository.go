package repository

import (
	"context"
	"errors"
	"time"

	"gate_access/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoOpenSession = errors.New("no open access session for client")

type GuardRepository interface {
	Create(ctx context.Context, guard *domain.Guard) (*domain.Guard, error)
	FindByUsername(ctx context.Context, username string) (*domain.Guard, error)
	FindByID(ctx context.Context, id int) (*domain.Guard, error)
}

// VehicleRepository is the pipeline's read-only view of the registry.
// Vehicle rows are created and edited elsewhere.
type VehicleRepository interface {
	// FindByPlate matches the plate number case-insensitively and exactly.
	FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
}

// ApprovalRepository appends to the audit log. Approval rows are never
// updated or deleted by the pipeline.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *domain.EntryApproval) (*domain.EntryApproval, error)
}

type AccessSessionRepository interface {
	Create(ctx context.Context, session *domain.AccessSession) (*domain.AccessSession, error)
	// FindOpenByClientID returns the client's session with a null exit time,
	// or ErrNoOpenSession.
	FindOpenByClientID(ctx context.Context, clientID int) (*domain.AccessSession, error)
	SetExitTime(ctx context.Context, sessionID int, exitTime time.Time) error
	// CountEntriesBetween counts sessions whose entry time falls in
	// [from, to). Used by the chart aggregation.
	CountEntriesBetween(ctx context.Context, from, to time.Time) (int, error)
}

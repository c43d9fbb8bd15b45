package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

// BarrierCommander opens the physical gate. Failures must not affect the
// decision outcome.
type BarrierCommander interface {
	OpenBarrier(ctx context.Context, requestID string, plate string) error
}

// DecisionBroadcaster pushes decision notifications to live dashboards.
type DecisionBroadcaster interface {
	BroadcastDecision(notification domain.DecisionNotification)
}

// DecisionResult is the outcome of one consumed recognition.
type DecisionResult struct {
	Plate         string
	Approved      bool
	ClientID      null.Int
	SessionOpened bool
	SessionClosed bool
}

// AccessService matches recognized plate text against the vehicle registry,
// appends the approval record and toggles the client's entry/exit session.
type AccessService struct {
	vehicleRepo  repository.VehicleRepository
	approvalRepo repository.ApprovalRepository
	sessionRepo  repository.AccessSessionRepository

	barrier     BarrierCommander    // optional
	broadcaster DecisionBroadcaster // optional

	now func() time.Time
}

func NewAccessService(
	vehicleRepo repository.VehicleRepository,
	approvalRepo repository.ApprovalRepository,
	sessionRepo repository.AccessSessionRepository,
	barrier BarrierCommander,
	broadcaster DecisionBroadcaster,
) *AccessService {
	return &AccessService{
		vehicleRepo:  vehicleRepo,
		approvalRepo: approvalRepo,
		sessionRepo:  sessionRepo,
		barrier:      barrier,
		broadcaster:  broadcaster,
		now:          time.Now,
	}
}

// Decide looks up the plate, writes exactly one approval record (denials
// included, for audit) and, on approval, toggles the owning client's
// session: no open session opens one, an open session is closed. A
// persistence failure is returned to the caller; losing an approval record
// would break the audit trail.
func (s *AccessService) Decide(ctx context.Context, plate string, guardID null.Int) (*DecisionResult, error) {
	now := s.now().UTC()

	var clientID null.Int
	vehicle, err := s.vehicleRepo.FindByPlate(ctx, plate)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("registry lookup for plate %s: %w", plate, err)
	}
	approved := vehicle != nil
	if approved {
		clientID = null.IntFrom(int64(vehicle.ClientID))
	}

	approval := &domain.EntryApproval{
		ClientID:     clientID,
		GuardID:      guardID,
		Approved:     approved,
		ApprovalTime: now,
	}
	if _, err := s.approvalRepo.Create(ctx, approval); err != nil {
		return nil, fmt.Errorf("recording approval for plate %s: %w", plate, err)
	}

	result := &DecisionResult{
		Plate:    plate,
		Approved: approved,
		ClientID: clientID,
	}

	if approved {
		if err := s.toggleSession(ctx, result, vehicle, guardID, now); err != nil {
			return nil, err
		}
		s.commandBarrier(ctx, plate)
	}

	s.notify(result)
	return result, nil
}

// toggleSession applies the two-state entry/exit machine: a client outside
// enters, a client inside leaves. The same scan event means entry or exit
// purely based on the current open-session state.
func (s *AccessService) toggleSession(ctx context.Context, result *DecisionResult, vehicle *domain.Vehicle, guardID null.Int, now time.Time) error {
	open, err := s.sessionRepo.FindOpenByClientID(ctx, vehicle.ClientID)
	if err != nil {
		if !errors.Is(err, repository.ErrNoOpenSession) {
			return fmt.Errorf("looking up open session for client %d: %w", vehicle.ClientID, err)
		}
		session := &domain.AccessSession{
			GuardID:   guardID,
			ClientID:  vehicle.ClientID,
			PlateNum:  result.Plate,
			EntryTime: now,
		}
		if _, err := s.sessionRepo.Create(ctx, session); err != nil {
			return fmt.Errorf("opening session for client %d: %w", vehicle.ClientID, err)
		}
		result.SessionOpened = true
		return nil
	}

	if err := s.sessionRepo.SetExitTime(ctx, open.ID, now); err != nil {
		return fmt.Errorf("closing session %d for client %d: %w", open.ID, vehicle.ClientID, err)
	}
	result.SessionClosed = true
	return nil
}

func (s *AccessService) commandBarrier(ctx context.Context, plate string) {
	if s.barrier == nil {
		return
	}
	requestID := uuid.NewString()
	if err := s.barrier.OpenBarrier(ctx, requestID, plate); err != nil {
		// Best effort: the verdict stands, the guard can open manually.
		log.Printf("AccessService: barrier open command failed (req %s): %v", requestID, err)
	}
}

func (s *AccessService) notify(result *DecisionResult) {
	if s.broadcaster == nil {
		return
	}
	notification := domain.DecisionNotification{
		EventID:       uuid.NewString(),
		Plate:         result.Plate,
		Approved:      result.Approved,
		SessionOpened: result.SessionOpened,
		Timestamp:     s.now().UTC(),
	}
	if result.ClientID.Valid {
		id := int(result.ClientID.Int64)
		notification.ClientID = &id
	}
	s.broadcaster.BroadcastDecision(notification)
}

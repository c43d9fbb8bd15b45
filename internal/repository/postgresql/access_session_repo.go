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

type pgAccessSessionRepository struct {
	db *sql.DB
}

func NewPgAccessSessionRepository(db *sql.DB) repository.AccessSessionRepository {
	return &pgAccessSessionRepository{db: db}
}

func (r *pgAccessSessionRepository) Create(ctx context.Context, session *domain.AccessSession) (*domain.AccessSession, error) {
	query := `INSERT INTO access_sessions (guard_id, client_id, plate_num, entry_time, exit_time)
	           VALUES ($1, $2, $3, $4, NULL)
	           RETURNING id`

	var guardIDVal sql.NullInt64
	if session.GuardID.Valid {
		guardIDVal = sql.NullInt64{Int64: session.GuardID.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		guardIDVal, session.ClientID, session.PlateNum, session.EntryTime,
	).Scan(&session.ID)
	if err != nil {
		return nil, fmt.Errorf("AccessSessionRepository.Create: %w", err)
	}
	session.EntryTime = session.EntryTime.In(time.UTC)
	return session, nil
}

func (r *pgAccessSessionRepository) FindOpenByClientID(ctx context.Context, clientID int) (*domain.AccessSession, error) {
	session := &domain.AccessSession{}
	query := `SELECT id, guard_id, client_id, plate_num, entry_time, exit_time
	           FROM access_sessions
	           WHERE client_id = $1 AND exit_time IS NULL
	           ORDER BY entry_time DESC LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, clientID).Scan(
		&session.ID, &session.GuardID, &session.ClientID, &session.PlateNum,
		&session.EntryTime, &session.ExitTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoOpenSession
		}
		return nil, fmt.Errorf("AccessSessionRepository.FindOpenByClientID: %w", err)
	}
	session.EntryTime = session.EntryTime.In(time.UTC)
	if session.ExitTime.Valid {
		session.ExitTime.Time = session.ExitTime.Time.In(time.UTC)
	}
	return session, nil
}

func (r *pgAccessSessionRepository) SetExitTime(ctx context.Context, sessionID int, exitTime time.Time) error {
	query := `UPDATE access_sessions SET exit_time = $1 WHERE id = $2 AND exit_time IS NULL`

	result, err := r.db.ExecContext(ctx, query, exitTime, sessionID)
	if err != nil {
		return fmt.Errorf("AccessSessionRepository.SetExitTime: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("AccessSessionRepository.SetExitTime (rows affected): %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgAccessSessionRepository) CountEntriesBetween(ctx context.Context, from, to time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM access_sessions WHERE entry_time >= $1 AND entry_time < $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("AccessSessionRepository.CountEntriesBetween: %w", err)
	}
	return count, nil
}

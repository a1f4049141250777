package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propfest-backend/models"
	"propfest-backend/voucher"
)

// SessionStore persists game sessions in Postgres.
type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `id, event_id, player_wallet, player_email, zone, score, targets_hit, reward_tier, voucher_claimed, played_at`

func scanSession(row pgx.Row) (*models.GameSession, error) {
	var s models.GameSession
	err := row.Scan(
		&s.ID,
		&s.EventID,
		&s.PlayerWallet,
		&s.PlayerEmail,
		&s.Zone,
		&s.Score,
		&s.TargetsHit,
		&s.RewardTier,
		&s.VoucherClaimed,
		&s.PlayedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, voucher.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan game session: %w", err)
	}
	return &s, nil
}

// CreateSession inserts a new session, generating its id and timestamp.
func (s *SessionStore) CreateSession(ctx context.Context, session *models.GameSession) error {
	session.ID = uuid.NewString()
	session.PlayedAt = time.Now()

	query := `
		INSERT INTO game_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.Exec(ctx, query,
		session.ID,
		session.EventID,
		session.PlayerWallet,
		session.PlayerEmail,
		session.Zone,
		session.Score,
		session.TargetsHit,
		session.RewardTier,
		session.VoucherClaimed,
		session.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	return scanSession(s.db.QueryRow(ctx, query, id))
}

// GetEventSessions lists sessions for an event, newest first.
func (s *SessionStore) GetEventSessions(ctx context.Context, eventID string) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE event_id = $1 ORDER BY played_at DESC`
	rows, err := s.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.GameSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// FinalizeClaim flips voucher_claimed false -> true and runs transfer
// while the row lock from that update is held. The flip is committed
// only if transfer succeeds, so the flag and the asset transfer move as
// one unit; a failed transfer rolls back and leaves the session
// claimable. A concurrent finalize blocks on the row lock and then sees
// zero affected rows, which surfaces as ErrAlreadyClaimed. The commit
// of this transaction is the claim's linearizable point.
func (s *SessionStore) FinalizeClaim(ctx context.Context, sessionID string, transfer func(ctx context.Context) (string, error)) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE game_sessions
		SET voucher_claimed = true
		WHERE id = $1 AND voucher_claimed = false
	`, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to mark session claimed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM game_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
			return "", fmt.Errorf("failed to check session existence: %w", err)
		}
		if !exists {
			return "", voucher.ErrSessionNotFound
		}
		return "", voucher.ErrAlreadyClaimed
	}

	txID, err := transfer(ctx)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit claim transaction: %w", err)
	}
	return txID, nil
}

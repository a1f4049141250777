package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"propfest-backend/models"
)

// ErrEventNotFound is returned for event lookups with no matching row.
var ErrEventNotFound = errors.New("event not found")

// EventStore persists events and their reward configuration in Postgres.
// The rewards and zones columns are jsonb.
type EventStore struct {
	db *pgxpool.Pool
}

func NewEventStore(db *pgxpool.Pool) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, name, description, organizer_wallet, organizer_name, date, location, game_type, game_duration, rewards, zones, status, player_count, total_score, created_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var (
		e          models.Event
		rewardsRaw []byte
		zonesRaw   []byte
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.OrganizerWallet,
		&e.OrganizerName,
		&e.Date,
		&e.Location,
		&e.GameType,
		&e.GameDuration,
		&rewardsRaw,
		&zonesRaw,
		&e.Status,
		&e.PlayerCount,
		&e.TotalScore,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	if err := json.Unmarshal(rewardsRaw, &e.Rewards); err != nil {
		return nil, fmt.Errorf("failed to decode event rewards: %w", err)
	}
	if err := json.Unmarshal(zonesRaw, &e.Zones); err != nil {
		return nil, fmt.Errorf("failed to decode event zones: %w", err)
	}
	return &e, nil
}

func (s *EventStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(s.db.QueryRow(ctx, query, id))
}

func (s *EventStore) GetEvents(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// CreateEvent inserts a new event with its reward thresholds.
func (s *EventStore) CreateEvent(ctx context.Context, event *models.Event) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()
	if event.GameType == "" {
		event.GameType = "tap_targets"
	}
	if event.GameDuration == 0 {
		event.GameDuration = 30
	}
	if event.Status == "" {
		event.Status = models.EventStatusDraft
	}
	if event.Zones == nil {
		event.Zones = []string{"A1", "A2", "B1", "B2"}
	}

	rewards, err := json.Marshal(event.Rewards)
	if err != nil {
		return fmt.Errorf("failed to encode rewards config: %w", err)
	}
	zones, err := json.Marshal(event.Zones)
	if err != nil {
		return fmt.Errorf("failed to encode event zones: %w", err)
	}

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.OrganizerWallet,
		event.OrganizerName,
		event.Date,
		event.Location,
		event.GameType,
		event.GameDuration,
		rewards,
		zones,
		event.Status,
		event.PlayerCount,
		event.TotalScore,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// RecordPlay bumps the event's aggregate play stats after a session is
// persisted.
func (s *EventStore) RecordPlay(ctx context.Context, eventID string, score int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE events
		SET player_count = player_count + 1, total_score = total_score + $1
		WHERE id = $2
	`, score, eventID)
	if err != nil {
		return fmt.Errorf("failed to update event stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

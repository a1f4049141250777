package models

import (
	"time"
)

// Event status constants
const (
	EventStatusDraft     = "draft"
	EventStatusActive    = "active"
	EventStatusCompleted = "completed"
)

// RewardThresholds is the per-event scoring and reward configuration.
// Thresholds are non-decreasing (bronze <= silver <= gold). The per-tier
// asset ids identify the on-chain medal token for each tier; a tier with
// no asset id configured cannot be claimed even if earned.
type RewardThresholds struct {
	PointsPerTarget int    `json:"pointsPerTarget"`
	BronzeThreshold int    `json:"bronzeThreshold"`
	SilverThreshold int    `json:"silverThreshold"`
	GoldThreshold   int    `json:"goldThreshold"`
	BronzeAssetID   string `json:"bronzeAssetId,omitempty"`
	SilverAssetID   string `json:"silverAssetId,omitempty"`
	GoldAssetID     string `json:"goldAssetId,omitempty"`
}

// Event represents an AR experience created by an organizer
type Event struct {
	ID              string           `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Description     string           `json:"description" db:"description"`
	OrganizerWallet string           `json:"organizer_wallet" db:"organizer_wallet"`
	OrganizerName   string           `json:"organizer_name" db:"organizer_name"`
	Date            string           `json:"date" db:"date"`
	Location        string           `json:"location" db:"location"`
	GameType        string           `json:"game_type" db:"game_type"`
	GameDuration    int              `json:"game_duration" db:"game_duration"`
	Rewards         RewardThresholds `json:"rewards" db:"rewards"`
	Zones           []string         `json:"zones" db:"zones"`
	Status          string           `json:"status" db:"status"`
	PlayerCount     int              `json:"player_count" db:"player_count"`
	TotalScore      int              `json:"total_score" db:"total_score"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

type CreateEventRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     string           `json:"description"`
	OrganizerWallet string           `json:"organizer_wallet" binding:"required"`
	OrganizerName   string           `json:"organizer_name" binding:"required"`
	Date            string           `json:"date" binding:"required"`
	Location        string           `json:"location"`
	GameType        string           `json:"game_type"`
	GameDuration    int              `json:"game_duration"`
	Rewards         RewardThresholds `json:"rewards" binding:"required"`
	Zones           []string         `json:"zones"`
}

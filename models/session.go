package models

import (
	"time"
)

// GameSession represents one play of the AR game. VoucherClaimed flips
// false -> true exactly once, inside the claim finalize step, and never
// reverses.
type GameSession struct {
	ID             string    `json:"id" db:"id"`
	EventID        string    `json:"event_id" db:"event_id"`
	PlayerWallet   *string   `json:"player_wallet,omitempty" db:"player_wallet"`
	PlayerEmail    *string   `json:"player_email,omitempty" db:"player_email"`
	Zone           string    `json:"zone" db:"zone"`
	Score          int       `json:"score" db:"score"`
	TargetsHit     int       `json:"targets_hit" db:"targets_hit"`
	RewardTier     *string   `json:"reward_tier,omitempty" db:"reward_tier"`
	VoucherClaimed bool      `json:"voucher_claimed" db:"voucher_claimed"`
	PlayedAt       time.Time `json:"played_at" db:"played_at"`
}

type CreateGameSessionRequest struct {
	EventID      string `json:"event_id" binding:"required"`
	Zone         string `json:"zone" binding:"required"`
	Score        *int   `json:"score" binding:"required"`
	TargetsHit   *int   `json:"targets_hit" binding:"required"`
	PlayerWallet string `json:"player_wallet"`
	PlayerEmail  string `json:"player_email"`
}

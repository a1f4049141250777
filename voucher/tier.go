package voucher

import (
	"propfest-backend/models"
)

// Tier is the integer encoding of a reward tier carried in voucher
// payloads (0=none, 1=bronze, 2=silver, 3=gold).
type Tier int

const (
	TierNone Tier = iota
	TierBronze
	TierSilver
	TierGold
)

// Name returns the string form stored on game sessions, or "" for TierNone.
func (t Tier) Name() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	default:
		return ""
	}
}

// EvaluateTier maps a score to the highest tier whose threshold it meets.
// A score meeting multiple thresholds resolves to the highest tier only.
// Misconfigured thresholds (silver below bronze etc.) are the caller's
// problem; this function just compares in descending priority.
func EvaluateTier(score int, thresholds models.RewardThresholds) Tier {
	switch {
	case score >= thresholds.GoldThreshold:
		return TierGold
	case score >= thresholds.SilverThreshold:
		return TierSilver
	case score >= thresholds.BronzeThreshold:
		return TierBronze
	default:
		return TierNone
	}
}

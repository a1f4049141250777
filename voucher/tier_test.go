package voucher

import (
	"testing"

	"propfest-backend/models"
)

func TestEvaluateTier(t *testing.T) {
	thresholds := models.RewardThresholds{
		PointsPerTarget: 10,
		BronzeThreshold: 30,
		SilverThreshold: 60,
		GoldThreshold:   100,
	}

	tests := []struct {
		name  string
		score int
		want  Tier
	}{
		{"below bronze", 10, TierNone},
		{"zero score", 0, TierNone},
		{"one short of bronze", 29, TierNone},
		{"exactly bronze", 30, TierBronze},
		{"mid bronze", 35, TierBronze},
		{"one short of silver", 59, TierBronze},
		{"exactly silver", 60, TierSilver},
		{"one short of gold", 99, TierSilver},
		{"exactly gold", 100, TierGold},
		{"far past gold resolves to gold only", 150, TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateTier(tt.score, thresholds); got != tt.want {
				t.Errorf("EvaluateTier(%d) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestEvaluateTierEqualThresholds(t *testing.T) {
	// With all thresholds equal, a qualifying score wins the highest tier.
	thresholds := models.RewardThresholds{BronzeThreshold: 50, SilverThreshold: 50, GoldThreshold: 50}
	if got := EvaluateTier(50, thresholds); got != TierGold {
		t.Errorf("EvaluateTier(50) = %v, want TierGold", got)
	}
	if got := EvaluateTier(49, thresholds); got != TierNone {
		t.Errorf("EvaluateTier(49) = %v, want TierNone", got)
	}
}

func TestTierName(t *testing.T) {
	names := map[Tier]string{
		TierNone:   "",
		TierBronze: "bronze",
		TierSilver: "silver",
		TierGold:   "gold",
	}
	for tier, want := range names {
		if got := tier.Name(); got != want {
			t.Errorf("Tier(%d).Name() = %q, want %q", tier, got, want)
		}
	}
}

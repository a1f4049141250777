package claim

import (
	"context"
	"fmt"
	"log"

	"propfest-backend/models"
	"propfest-backend/voucher"
)

const transferAmount = 1 // one medal per claim

// Orchestrator drives the two claim phases against the session store,
// event store and blockchain collaborator.
type Orchestrator struct {
	sessions SessionStore
	events   EventStore
	chain    AssetService
	verifier *voucher.Verifier
}

func NewOrchestrator(sessions SessionStore, events EventStore, chain AssetService, verifier *voucher.Verifier) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		events:   events,
		chain:    chain,
		verifier: verifier,
	}
}

// PrepareClaim is phase 1: verify the voucher, resolve the medal for its
// tier, and either finalize the transfer or hand back an unsigned opt-in
// transaction. The wallet sentinel is rejected before signature checks.
func (o *Orchestrator) PrepareClaim(ctx context.Context, sv *models.SignedVoucher) (Outcome, error) {
	if sv.VoucherData.Wallet == "" || sv.VoucherData.Wallet == models.WalletUnclaimed {
		return nil, ErrWalletRequired
	}

	session, err := o.verifier.Verify(ctx, sv)
	if err != nil {
		return nil, err
	}

	event, err := o.events.GetEvent(ctx, sv.VoucherData.EventID)
	if err != nil {
		return nil, err
	}

	tier := voucher.Tier(sv.VoucherData.Tier)
	assetID := assetForTier(event.Rewards, tier)
	if assetID == "" {
		return nil, ErrAssetNotConfigured
	}

	wallet := sv.VoucherData.Wallet
	optedIn, err := o.chain.IsOptedIn(ctx, wallet, assetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlockchainUnavailable, err)
	}

	if !optedIn {
		unsigned, err := o.chain.BuildOptInTxn(ctx, wallet, assetID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBlockchainUnavailable, err)
		}
		log.Printf("Claim needs opt-in: session=%s asset=%s wallet=%s", session.ID, assetID, wallet)
		return OptInRequired{
			UnsignedTxn: unsigned,
			AssetID:     assetID,
			SessionID:   session.ID,
			Tier:        tier.Name(),
		}, nil
	}

	txID, err := o.finalize(ctx, session.ID, wallet, assetID)
	if err != nil {
		return nil, err
	}
	return Completed{TxID: txID, AssetID: assetID, Tier: tier.Name()}, nil
}

// CompleteClaim is phase 2, called after the player signed and submitted
// the opt-in transaction. If the opt-in is not visible on-chain yet the
// caller gets ErrOptInNotConfirmed and should retry after a delay; the
// session stays unclaimed.
func (o *Orchestrator) CompleteClaim(ctx context.Context, req CompleteClaimRequest) (Completed, error) {
	session, err := o.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return Completed{}, err
	}
	if session.VoucherClaimed {
		return Completed{}, voucher.ErrAlreadyClaimed
	}

	optedIn, err := o.chain.IsOptedIn(ctx, req.Wallet, req.AssetID)
	if err != nil {
		return Completed{}, fmt.Errorf("%w: %v", ErrBlockchainUnavailable, err)
	}
	if !optedIn {
		return Completed{}, ErrOptInNotConfirmed
	}

	txID, err := o.finalize(ctx, req.SessionID, req.Wallet, req.AssetID)
	if err != nil {
		return Completed{}, err
	}

	tier := ""
	if session.RewardTier != nil {
		tier = *session.RewardTier
	}
	return Completed{TxID: txID, AssetID: req.AssetID, Tier: tier}, nil
}

// finalize wins the voucher_claimed guard and transfers inside it. If
// the transfer fails the store rolls the flip back, leaving the session
// claimable, so the flag and the transfer move together.
func (o *Orchestrator) finalize(ctx context.Context, sessionID, wallet, assetID string) (string, error) {
	txID, err := o.sessions.FinalizeClaim(ctx, sessionID, func(ctx context.Context) (string, error) {
		txID, err := o.chain.TransferAsset(ctx, wallet, assetID, transferAmount)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBlockchainUnavailable, err)
		}
		return txID, nil
	})
	if err != nil {
		return "", err
	}
	log.Printf("Claim finalized: session=%s asset=%s tx=%s", sessionID, assetID, txID)
	return txID, nil
}

func assetForTier(rewards models.RewardThresholds, tier voucher.Tier) string {
	switch tier {
	case voucher.TierBronze:
		return rewards.BronzeAssetID
	case voucher.TierSilver:
		return rewards.SilverAssetID
	case voucher.TierGold:
		return rewards.GoldAssetID
	default:
		return ""
	}
}

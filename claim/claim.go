// Package claim turns verified vouchers into on-chain medal transfers.
//
// A claim runs as a two-phase state machine. Phase 1 (PrepareClaim)
// verifies the voucher and either finishes the transfer in the same call
// (wallet already opted in to the medal asset) or hands back an unsigned
// opt-in transaction for the player to countersign. Phase 2
// (CompleteClaim) finishes a claim that needed the opt-in round trip.
// Exactly-once delivery is enforced by the session store's conditional
// update on voucher_claimed, not by the state machine remembering calls.
package claim

import (
	"context"
	"errors"

	"propfest-backend/models"
)

// Claim failures on top of the verifier's taxonomy. ErrOptInNotConfirmed
// and ErrBlockchainUnavailable are retryable; everything else is terminal
// for the voucher.
var (
	ErrWalletRequired        = errors.New("wallet must be connected before claiming")
	ErrAssetNotConfigured    = errors.New("reward asset not configured for this tier")
	ErrOptInNotConfirmed     = errors.New("asset opt-in not confirmed on-chain yet")
	ErrBlockchainUnavailable = errors.New("blockchain service unavailable")
)

// SessionStore is the mutable collaborator holding claim state.
// FinalizeClaim is the single linearizable point of a claim: it must
// conditionally flip voucher_claimed false -> true, run transfer while
// holding that guard, and make the flip durable only if transfer
// succeeds. Concurrent losers get voucher.ErrAlreadyClaimed.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (*models.GameSession, error)
	FinalizeClaim(ctx context.Context, sessionID string, transfer func(ctx context.Context) (string, error)) (string, error)
}

// EventStore provides read-only access to reward configuration.
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

// AssetService is the opaque blockchain collaborator.
type AssetService interface {
	IsOptedIn(ctx context.Context, wallet, assetID string) (bool, error)
	BuildOptInTxn(ctx context.Context, wallet, assetID string) ([]byte, error)
	TransferAsset(ctx context.Context, wallet, assetID string, amount uint64) (string, error)
}

// Outcome is the tagged result of PrepareClaim: either Completed or
// OptInRequired. Handlers type-switch over it.
type Outcome interface {
	isOutcome()
}

// Completed means the medal transfer went through and the session is
// marked claimed.
type Completed struct {
	TxID    string
	AssetID string
	Tier    string
}

// OptInRequired means the destination wallet has not opted in to the
// medal asset. The session is NOT yet claimed; the player must sign
// UnsignedTxn and call CompleteClaim.
type OptInRequired struct {
	UnsignedTxn []byte
	AssetID     string
	SessionID   string
	Tier        string
}

func (Completed) isOutcome()     {}
func (OptInRequired) isOutcome() {}

// CompleteClaimRequest carries the phase 2 inputs, resubmitted by the
// client after it signed and sent the opt-in transaction.
type CompleteClaimRequest struct {
	SessionID string
	OptInTxID string
	Wallet    string
	AssetID   string
}

package voucher

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"propfest-backend/models"
)

// DefaultTTL is how long a freshly minted voucher stays claimable.
const DefaultTTL = 30 * 24 * time.Hour

const nonceSize = 16 // 128 bits

// Issuer mints signed vouchers for qualifying game sessions.
type Issuer struct {
	signer *Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer with the default 30-day expiry. A ttl of
// zero keeps the default.
func NewIssuer(signer *Signer, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{signer: signer, ttl: ttl, now: time.Now}
}

// Issue builds, hashes and signs a voucher for the session. It returns
// (nil, nil) when the score earns no tier: non-qualifying play never
// gets a voucher. Persisting the session is the caller's job; Issue has
// no side effects.
func (i *Issuer) Issue(session *models.GameSession, event *models.Event) (*models.SignedVoucher, error) {
	tier := EvaluateTier(session.Score, event.Rewards)
	if tier == TierNone {
		return nil, nil
	}

	wallet := models.WalletUnclaimed
	if session.PlayerWallet != nil && *session.PlayerWallet != "" {
		wallet = *session.PlayerWallet
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate voucher nonce: %w", err)
	}

	payload := models.VoucherPayload{
		EventID:   event.ID,
		Exp:       i.now().Add(i.ttl).Unix(),
		Nonce:     hex.EncodeToString(nonce),
		Points:    session.Score,
		SessionID: session.ID,
		Tier:      int(tier),
		V:         models.VoucherVersion,
		Wallet:    wallet,
	}

	digest := HashPayload(payload)
	sig := i.signer.Sign(digest[:])

	return &models.SignedVoucher{
		VoucherData: payload,
		Signature:   hex.EncodeToString(sig),
		VoucherHash: hex.EncodeToString(digest[:]),
	}, nil
}

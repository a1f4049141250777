package voucher

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"propfest-backend/models"
)

// SessionReader is the read-only slice of the session store the verifier
// needs. It must return ErrSessionNotFound for unknown ids.
type SessionReader interface {
	GetSession(ctx context.Context, id string) (*models.GameSession, error)
}

// Verifier re-checks a submitted voucher end to end: digest, signature,
// expiry, then session state. It only reads; the claimed flag is never
// written here, so Verify is safe to call any number of times.
type Verifier struct {
	signer   *Signer
	sessions SessionReader
	now      func() time.Time
}

func NewVerifier(signer *Signer, sessions SessionReader) *Verifier {
	return &Verifier{signer: signer, sessions: sessions, now: time.Now}
}

// Verify runs the checks in order, short-circuiting on the first
// failure: TamperedPayload, InvalidSignature, Expired, SessionNotFound,
// AlreadyClaimed. On success it returns the referenced session.
func (v *Verifier) Verify(ctx context.Context, sv *models.SignedVoucher) (*models.GameSession, error) {
	digest := HashPayload(sv.VoucherData)

	submitted, err := hex.DecodeString(sv.VoucherHash)
	if err != nil || subtle.ConstantTimeCompare(digest[:], submitted) != 1 {
		return nil, ErrTamperedPayload
	}

	sig, err := hex.DecodeString(sv.Signature)
	if err != nil || !v.signer.Verify(digest[:], sig) {
		return nil, ErrInvalidSignature
	}

	if sv.VoucherData.Exp < v.now().Unix() {
		return nil, ErrExpired
	}

	session, err := v.sessions.GetSession(ctx, sv.VoucherData.SessionID)
	if err != nil {
		return nil, err
	}
	if session.VoucherClaimed {
		return nil, ErrAlreadyClaimed
	}

	return session, nil
}

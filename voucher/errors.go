package voucher

import "errors"

// Verification failures. Each is terminal for the submitted voucher and
// is surfaced to callers verbatim, never collapsed into a generic
// "invalid voucher".
var (
	ErrTamperedPayload  = errors.New("voucher hash does not match payload")
	ErrInvalidSignature = errors.New("voucher signature verification failed")
	ErrExpired          = errors.New("voucher expired")
	ErrSessionNotFound  = errors.New("game session not found")
	ErrAlreadyClaimed   = errors.New("voucher already claimed")
)

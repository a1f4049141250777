package voucher

import (
	"crypto/sha256"
	"encoding/json"

	"propfest-backend/models"
)

// CanonicalBytes returns the reproducible byte encoding of a payload:
// compact JSON with the fields in the fixed order declared on
// models.VoucherPayload (alphabetical). encoding/json emits struct
// fields in declaration order, which is what pins the byte sequence.
func CanonicalBytes(p models.VoucherPayload) []byte {
	// Marshal of a flat struct with string/int fields cannot fail.
	b, _ := json.Marshal(p)
	return b
}

// HashPayload computes the sha256 digest of the canonical encoding.
func HashPayload(p models.VoucherPayload) [sha256.Size]byte {
	return sha256.Sum256(CanonicalBytes(p))
}

package models

// WalletUnclaimed is the sentinel wallet value for sessions played before
// the player connected a wallet. Such vouchers verify fine but cannot be
// claimed until a real wallet is present.
const WalletUnclaimed = "UNCLAIMED"

// VoucherVersion is the fixed format marker carried in every payload.
const VoucherVersion = 1

// VoucherPayload is the unsigned claim data, immutable once created.
//
// The bytes that get hashed and signed are the JSON encoding of this
// struct with the fields in the declared (alphabetical) order, no
// indentation and no extra whitespace. Any verifier can reproduce them
// from the payload alone; do not reorder these fields.
type VoucherPayload struct {
	EventID   string `json:"eventId"`
	Exp       int64  `json:"exp"`
	Nonce     string `json:"nonce"`
	Points    int    `json:"points"`
	SessionID string `json:"sessionId"`
	Tier      int    `json:"tier"`
	V         int    `json:"v"`
	Wallet    string `json:"wallet"`
}

// SignedVoucher is the wire artifact handed to the player: the payload,
// the hex sha256 of its canonical encoding, and a hex Ed25519 signature
// over that digest. The server keeps no copy; everything is recomputed
// from what the client submits.
type SignedVoucher struct {
	VoucherData VoucherPayload `json:"voucherData"`
	Signature   string         `json:"signature"`
	VoucherHash string         `json:"voucherHash"`
}

package voucher

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
)

// Signer holds the process-wide Ed25519 keypair used for all vouchers.
// It is constructed once at startup and passed to the issuer and
// verifier; the public key is derived at construction, not lazily.
// Rotating the key invalidates every outstanding unclaimed voucher.
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewSigner builds a Signer from a hex-encoded 32-byte Ed25519 seed.
func NewSigner(seedHex string) (*Signer, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid voucher signing key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("voucher signing key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// Sign signs the voucher digest and returns the raw signature bytes.
func (s *Signer) Sign(digest []byte) []byte {
	return ed25519.Sign(s.priv, digest)
}

// Verify reports whether sig is a valid signature over digest by this
// signer's public key.
func (s *Signer) Verify(digest, sig []byte) bool {
	return ed25519.Verify(s.pub, digest, sig)
}

// PublicKeyHex returns the hex form of the verification key, for clients
// that want to check vouchers themselves.
func (s *Signer) PublicKeyHex() string {
	return hex.EncodeToString(s.pub)
}

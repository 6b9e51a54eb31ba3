package hybrid

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/curve25519"

	"github.com/mozilla/libprio/sampling"
)

// KeySize is the byte length of an X25519 public or private key.
const KeySize = 32

// PrivateKey is an X25519 scalar.
type PrivateKey [KeySize]byte

// PublicKey is an X25519 curve point.
type PublicKey [KeySize]byte

// Keypair is an X25519 key pair, per spec §6 Keypair::new.
type Keypair struct {
	Private PrivateKey
	Public  PublicKey
}

// GenerateKeypair draws a fresh X25519 key pair from rnd (spec §9: the
// SecureRandom capability is passed in explicitly, never read from a global).
func GenerateKeypair(rnd sampling.SecureRandom) (Keypair, error) {
	raw, err := sampling.RandomBytes(rnd, KeySize)
	if err != nil {
		return Keypair{}, fmt.Errorf("hybrid: generating private scalar: %w", err)
	}

	var priv PrivateKey
	copy(priv[:], raw)

	pub, err := priv.Public()
	if err != nil {
		return Keypair{}, err
	}

	return Keypair{Private: priv, Public: pub}, nil
}

// Public derives the public key matching a private scalar.
func (sk PrivateKey) Public() (PublicKey, error) {
	raw, err := curve25519.X25519(sk[:], curve25519.Basepoint)
	if err != nil {
		return PublicKey{}, fmt.Errorf("hybrid: deriving public key: %w", err)
	}
	var pk PublicKey
	copy(pk[:], raw)
	return pk, nil
}

// ExportHex renders a private key as 64 lowercase hex characters, per §6.
func (sk PrivateKey) ExportHex() string {
	return hex.EncodeToString(sk[:])
}

// ImportPrivateKeyHex parses 64 hex characters into a private key.
func ImportPrivateKeyHex(s string) (PrivateKey, error) {
	var sk PrivateKey
	raw, err := decodeFixedHex(s, KeySize)
	if err != nil {
		return sk, fmt.Errorf("hybrid: importing private key: %w", err)
	}
	copy(sk[:], raw)
	return sk, nil
}

// ExportHex renders a public key as 64 lowercase hex characters, per §6.
func (pk PublicKey) ExportHex() string {
	return hex.EncodeToString(pk[:])
}

// ImportPublicKeyHex parses 64 hex characters into a public key.
func ImportPublicKeyHex(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := decodeFixedHex(s, KeySize)
	if err != nil {
		return pk, fmt.Errorf("hybrid: importing public key: %w", err)
	}
	copy(pk[:], raw)
	return pk, nil
}

func decodeFixedHex(s string, n int) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != n {
		return nil, fmt.Errorf("expected %d bytes, got %d", n, len(raw))
	}
	return raw, nil
}

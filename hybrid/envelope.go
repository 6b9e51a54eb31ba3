// Package hybrid implements the ephemeral-X25519 + AES-128-GCM encryption
// envelope of SPEC_FULL.md §4.3 that protects client shares in transit:
//
//	[ephemeral public key (32)] [nonce (12)] [ciphertext (L)] [tag (16)]
package hybrid

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/crypto/curve25519"

	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/sampling"
)

const (
	nonceSize  = 12
	tagSize    = 16
	aesKeySize = 16
	// Overhead is the number of bytes Encrypt adds beyond the plaintext
	// length (spec I5): ephemeral public key + nonce + tag.
	Overhead = KeySize + nonceSize + tagSize
)

var aadTag = []byte("PrioPacket")

// HasAESNI reports whether the CPU this process is running on exposes
// hardware AES-NI, probed once at package init (SPEC_FULL.md §4.3
// expansion). crypto/aes dispatches to hardware AES internally regardless;
// this is purely an operational fact callers may want to log.
var HasAESNI = cpuid.CPU.Supports(cpuid.AESNI)

// Encrypt builds the hybrid envelope for plaintext, bound to recipient.
func Encrypt(rnd sampling.SecureRandom, recipient PublicKey, plaintext []byte) ([]byte, error) {
	ephemeral, err := GenerateKeypair(rnd)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: generating ephemeral key", err)
	}

	aesKey, err := deriveKey(ephemeral.Private, recipient)
	if err != nil {
		return nil, err
	}

	nonce, err := sampling.RandomBytes(rnd, nonceSize)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: drawing nonce", err)
	}

	aead, err := newGCM(aesKey)
	if err != nil {
		return nil, err
	}

	aad := buildAAD(ephemeral.Public, nonce)
	sealed := aead.Seal(nil, nonce, plaintext, aad)

	out := make([]byte, 0, KeySize+nonceSize+len(sealed))
	out = append(out, ephemeral.Public[:]...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt inverts Encrypt using the recipient's private key. It fails
// (without releasing any partial plaintext) on a short input or a tag
// mismatch, per spec §4.3/§7.
func Decrypt(recipient PrivateKey, envelope []byte) ([]byte, error) {
	if len(envelope) < Overhead {
		return nil, prioerr.Newf(prioerr.CryptoFailure, "hybrid: envelope too short: %d bytes", len(envelope))
	}

	var ephemeralPub PublicKey
	copy(ephemeralPub[:], envelope[:KeySize])
	nonce := envelope[KeySize : KeySize+nonceSize]
	sealed := envelope[KeySize+nonceSize:]

	aesKey, err := deriveKey(recipient, ephemeralPub)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(aesKey)
	if err != nil {
		return nil, err
	}

	aad := buildAAD(ephemeralPub, nonce)
	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: tag verification failed", err)
	}
	return plaintext, nil
}

// buildAAD binds the ciphertext to the ephemeral public key and nonce, per
// spec §4.3 step 4: AAD = "PrioPacket" || eph_pk || nonce.
func buildAAD(ephemeralPub PublicKey, nonce []byte) []byte {
	aad := make([]byte, 0, len(aadTag)+KeySize+nonceSize)
	aad = append(aad, aadTag...)
	aad = append(aad, ephemeralPub[:]...)
	aad = append(aad, nonce...)
	return aad
}

// deriveKey runs ECDH between a local scalar and a peer point, then applies
// the PKCS#11 CKD_SHA256_KDF: hash the raw shared secret with SHA-256 and
// keep the first 16 bytes as the AES-128 key.
func deriveKey(local PrivateKey, peer PublicKey) ([]byte, error) {
	shared, err := curve25519.X25519(local[:], peer[:])
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: ecdh", err)
	}
	digest := sha256.Sum256(shared)
	return digest[:aesKeySize], nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: aes key setup", err)
	}
	aead, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.CryptoFailure, "hybrid: gcm setup", err)
	}
	return aead, nil
}

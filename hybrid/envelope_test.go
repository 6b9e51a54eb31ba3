package hybrid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/sampling"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	rnd := sampling.DefaultSecureRandom()

	kp, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	envelope, err := hybrid.Encrypt(rnd, kp.Public, plaintext)
	require.NoError(t, err)
	require.Len(t, envelope, len(plaintext)+hybrid.Overhead) // I5

	got, err := hybrid.Decrypt(kp.Private, envelope)
	require.NoError(t, err) // I4
	require.Equal(t, plaintext, got)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	rnd := sampling.DefaultSecureRandom()
	kp, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	envelope, err := hybrid.Encrypt(rnd, kp.Public, []byte("submission payload"))
	require.NoError(t, err)

	tampered := append([]byte{}, envelope...)
	tampered[len(tampered)-1] ^= 0x01

	_, err = hybrid.Decrypt(kp.Private, tampered)
	require.Error(t, err)
	require.True(t, prioerr.Is(err, prioerr.CryptoFailure))
}

func TestDecryptRejectsShortEnvelope(t *testing.T) {
	rnd := sampling.DefaultSecureRandom()
	kp, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	_, err = hybrid.Decrypt(kp.Private, make([]byte, hybrid.Overhead-1))
	require.Error(t, err)
	require.True(t, prioerr.Is(err, prioerr.CryptoFailure))
}

func TestDecryptFailsWithWrongKey(t *testing.T) {
	rnd := sampling.DefaultSecureRandom()
	kpA, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)
	kpB, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	envelope, err := hybrid.Encrypt(rnd, kpA.Public, []byte("for A only"))
	require.NoError(t, err)

	_, err = hybrid.Decrypt(kpB.Private, envelope)
	require.Error(t, err)
}

func TestKeyHexRoundTrip(t *testing.T) {
	rnd := sampling.DefaultSecureRandom()
	kp, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	sk, err := hybrid.ImportPrivateKeyHex(kp.Private.ExportHex())
	require.NoError(t, err)
	require.Equal(t, kp.Private, sk)

	pk, err := hybrid.ImportPublicKeyHex(kp.Public.ExportHex())
	require.NoError(t, err)
	require.Equal(t, kp.Public, pk)
}

package client_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla/libprio/client"
	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prg"
	"github.com/mozilla/libprio/sampling"
	"github.com/mozilla/libprio/wire"
)

// reconstruct replays the PRG seed in the exact order encodeBits consumed it
// and adds each draw back onto server A's explicit share, recovering the
// client's original secret values (the additive inverse of prg.ShareInt).
func reconstruct(t *testing.T, seed []byte, a *wire.PacketA) (triple wire.BeaverTriple, f0, g0, h0 field.Element, data, hPoints []field.Element) {
	t.Helper()
	gen, err := prg.New(seed)
	require.NoError(t, err)

	draw := func() field.Element { return field.Element(gen.GetInt(field.Modulus)) }

	triple.A = field.Add(a.Triple.A, draw())
	triple.B = field.Add(a.Triple.B, draw())
	triple.C = field.Add(a.Triple.C, draw())
	f0 = field.Add(a.F0Share, draw())
	g0 = field.Add(a.G0Share, draw())
	h0 = field.Add(a.H0Share, draw())

	data = make([]field.Element, len(a.DataShares))
	for i, s := range a.DataShares {
		data[i] = field.Add(s, draw())
	}
	hPoints = make([]field.Element, len(a.HPoints))
	for i, s := range a.HPoints {
		hPoints[i] = field.Add(s, draw())
	}
	return
}

func testConfig(t *testing.T, n, precision int) (*config.Config, hybrid.PrivateKey, hybrid.PrivateKey) {
	t.Helper()
	rnd := sampling.DefaultSecureRandom()
	kpA, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)
	kpB, err := hybrid.GenerateKeypair(rnd)
	require.NoError(t, err)

	cfg, err := config.New(n, precision, &kpA.Public, &kpB.Public, []byte("test-batch"))
	require.NoError(t, err)
	return cfg, kpA.Private, kpB.Private
}

func TestEncodeBooleanRoundTripsToExplicitShares(t *testing.T) {
	cfg, skA, skB := testConfig(t, 3, 1)
	rnd := sampling.DefaultSecureRandom()

	cipherA, cipherB, err := client.Encode(cfg, rnd, []bool{true, false, true})
	require.NoError(t, err)

	plainA, err := hybrid.Decrypt(skA, cipherA)
	require.NoError(t, err)
	packetA, err := wire.UnmarshalPacket(plainA)
	require.NoError(t, err)
	require.Equal(t, wire.ServerA, packetA.ServerID)

	plainB, err := hybrid.Decrypt(skB, cipherB)
	require.NoError(t, err)
	packetB, err := wire.UnmarshalPacket(plainB)
	require.NoError(t, err)
	require.Equal(t, wire.ServerB, packetB.ServerID)

	triple, f0, g0, h0, data, hPoints := reconstruct(t, packetB.B.Seed[:], packetA.A)

	require.Equal(t, field.Mul(triple.A, triple.B), triple.C, "beaver triple must satisfy c = a*b")
	require.Equal(t, field.Mul(f0, g0), h0, "h's constant term must equal f0*g0")
	require.Equal(t, []field.Element{1, 0, 1}, data)
	require.Equal(t, cfg.HPoints(), len(hPoints))
}

func TestEncodeIntsBitDecomposesEachValue(t *testing.T) {
	cfg, skA, _ := testConfig(t, 2, 4)
	rnd := sampling.DefaultSecureRandom()

	cipherA, _, err := client.EncodeInts(cfg, rnd, []uint64{5, 9})
	require.NoError(t, err)

	plainA, err := hybrid.Decrypt(skA, cipherA)
	require.NoError(t, err)
	packetA, err := wire.UnmarshalPacket(plainA)
	require.NoError(t, err)
	require.Len(t, packetA.A.DataShares, cfg.BitVectorLen())
}

func TestEncodeRejectsWrongFieldCount(t *testing.T) {
	cfg, _, _ := testConfig(t, 3, 1)
	rnd := sampling.DefaultSecureRandom()

	_, _, err := client.Encode(cfg, rnd, []bool{true, false})
	require.Error(t, err)
}

func TestEncodeFixedPointScalesBeforeEncoding(t *testing.T) {
	cfg, skA, _ := testConfig(t, 1, 16)
	fp := cfg.WithFixedPoint(8)
	rnd := sampling.DefaultSecureRandom()

	cipherA, _, err := client.EncodeFixedPoint(fp, rnd, []float64{3.5})
	require.NoError(t, err)

	plainA, err := hybrid.Decrypt(skA, cipherA)
	require.NoError(t, err)
	packetA, err := wire.UnmarshalPacket(plainA)
	require.NoError(t, err)
	require.Len(t, packetA.A.DataShares, fp.BitVectorLen())
}

func TestEncodeFixedPointRejectsPlainConfig(t *testing.T) {
	cfg, _, _ := testConfig(t, 1, 16)
	rnd := sampling.DefaultSecureRandom()

	_, _, err := client.EncodeFixedPoint(cfg, rnd, []float64{1.0})
	require.Error(t, err)
}

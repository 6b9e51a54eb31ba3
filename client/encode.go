// Package client implements the Prio client encoder of SPEC_FULL.md §4.4:
// bit-decompose a submission, build its SNIP proof polynomials, split every
// share in the PRG-consumption order servers expect, and seal the two
// resulting packets to each server's public key.
package client

import (
	"encoding/binary"

	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prg"
	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/sampling"
	"github.com/mozilla/libprio/wire"
)

// Encode bit-decomposes a boolean submission and emits the two encrypted
// packets a client sends to server A and server B (spec §4.4).
func Encode(cfg *config.Config, rnd sampling.SecureRandom, data []bool) ([]byte, []byte, error) {
	if len(data) != cfg.NumDataFields {
		return nil, nil, prioerr.Newf(prioerr.BadInput, "client: expected %d data fields, got %d", cfg.NumDataFields, len(data))
	}
	return encodeBits(cfg, rnd, BoolVector(data))
}

// EncodeInts bit-decomposes an integer submission (each value in
// [0, 2^Precision)) and emits the two encrypted packets.
func EncodeInts(cfg *config.Config, rnd sampling.SecureRandom, data []uint64) ([]byte, []byte, error) {
	if len(data) != cfg.NumDataFields {
		return nil, nil, prioerr.Newf(prioerr.BadInput, "client: expected %d data fields, got %d", cfg.NumDataFields, len(data))
	}
	bitVector, err := BitDecomposeVector(data, cfg.Precision)
	if err != nil {
		return nil, nil, err
	}
	return encodeBits(cfg, rnd, bitVector)
}

// EncodeFixedPoint scales each float by 2^cfg.FracBits, rounds to the
// nearest integer, and encodes the result as an integer submission
// (SPEC_FULL.md §3 fixed-point expansion). cfg must have FracBits > 0.
func EncodeFixedPoint(cfg *config.Config, rnd sampling.SecureRandom, values []float64) ([]byte, []byte, error) {
	if cfg.FracBits <= 0 {
		return nil, nil, prioerr.New(prioerr.BadConfig, "client: EncodeFixedPoint requires a Config with FracBits > 0")
	}
	scale := float64(uint64(1) << uint(cfg.FracBits))
	data := make([]uint64, len(values))
	for i, v := range values {
		if v < 0 {
			return nil, nil, prioerr.Newf(prioerr.BadInput, "client: fixed-point value %d is negative: %f", i, v)
		}
		data[i] = uint64(v*scale + 0.5)
	}
	return EncodeInts(cfg, rnd, data)
}

// encodeBits runs the shared tail of every Encode* entry point: build the
// SNIP polynomials over bitVector, draw a Beaver triple, split every share
// in PRG order, and seal both packets.
func encodeBits(cfg *config.Config, rnd sampling.SecureRandom, bitVector []field.Element) ([]byte, []byte, error) {
	if len(bitVector) != cfg.BitVectorLen() {
		return nil, nil, prioerr.Newf(prioerr.Internal, "client: bit vector length %d does not match config N=%d", len(bitVector), cfg.BitVectorLen())
	}
	if cfg.PubKeyA == nil || cfg.PubKeyB == nil {
		return nil, nil, prioerr.New(prioerr.BadConfig, "client: Encode requires both server public keys to be set")
	}

	h := cfg.HPoints()
	domainH, err := field.NewDomain(uint64(h))
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: building h-domain", err)
	}
	domain2H, err := field.NewDomain(uint64(2 * h))
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: building 2h-domain", err)
	}

	f0, err := randomElement(rnd)
	if err != nil {
		return nil, nil, err
	}
	g0, err := randomElement(rnd)
	if err != nil {
		return nil, nil, err
	}
	h0 := field.Mul(f0, g0)

	a, err := randomElement(rnd)
	if err != nil {
		return nil, nil, err
	}
	b, err := randomElement(rnd)
	if err != nil {
		return nil, nil, err
	}
	c := field.Mul(a, b)

	pointsF, pointsG := buildFG(h, bitVector, f0, g0)
	hPoints, err := buildH(domainH, domain2H, pointsF, pointsG)
	if err != nil {
		return nil, nil, err
	}

	seed, err := sampling.RandomBytes(rnd, prg.SeedSize)
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: drawing prg seed", err)
	}
	gen, err := prg.New(seed)
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: seeding share prg", err)
	}

	// Canonical PRG-consumption order (spec §4.4.3): triple, then the three
	// constant-term shares, then the data shares, then the h points.
	packetA := &wire.PacketA{
		Triple: wire.BeaverTriple{
			A: gen.ShareInt(a),
			B: gen.ShareInt(b),
			C: gen.ShareInt(c),
		},
		F0Share:    gen.ShareInt(f0),
		G0Share:    gen.ShareInt(g0),
		H0Share:    gen.ShareInt(h0),
		DataShares: gen.ShareArray(bitVector),
		HPoints:    gen.ShareArray(hPoints),
	}

	var seedArr [16]byte
	copy(seedArr[:], seed)
	packetB := &wire.PacketB{Seed: seedArr}

	plainA, err := wire.MarshalPacket(&wire.Packet{ServerID: wire.ServerA, A: packetA})
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: marshaling server-a packet", err)
	}
	plainB, err := wire.MarshalPacket(&wire.Packet{ServerID: wire.ServerB, B: packetB})
	if err != nil {
		return nil, nil, prioerr.Wrap(prioerr.Internal, "client: marshaling server-b packet", err)
	}

	cipherA, err := hybrid.Encrypt(rnd, *cfg.PubKeyA, plainA)
	if err != nil {
		return nil, nil, err
	}
	cipherB, err := hybrid.Encrypt(rnd, *cfg.PubKeyB, plainB)
	if err != nil {
		return nil, nil, err
	}
	return cipherA, cipherB, nil
}

// randomElement draws a uniform field element from rnd, rejection-sampling
// away the small fraction of 64-bit draws at or above Modulus so every
// element of the field is equally likely.
func randomElement(rnd sampling.SecureRandom) (field.Element, error) {
	for {
		raw, err := sampling.RandomBytes(rnd, 8)
		if err != nil {
			return 0, prioerr.Wrap(prioerr.Internal, "client: drawing random field element", err)
		}
		x := binary.BigEndian.Uint64(raw)
		if x < field.Modulus {
			return field.Element(x), nil
		}
	}
}

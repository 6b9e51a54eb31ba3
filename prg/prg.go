// Package prg implements the field-aware pseudorandom generator of
// SPEC_FULL.md §4.2: rejection-sampled draws of field elements below a
// bound, and the additive-share primitives client and server use to turn a
// PRG seed into one half of a secret share.
package prg

import (
	"fmt"
	"math/bits"

	"github.com/zeebo/blake3"

	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/sampling"
)

// PRG is a field.Element-producing pseudorandom generator seeded
// deterministically from a 16-byte key, per spec §4.2.
type PRG struct {
	stream *sampling.KeyedPRNG
	buf    []byte
	pos    int
}

// SeedSize is the length, in bytes, of a PRG seed.
const SeedSize = sampling.KeySize

// New constructs a PRG from a 16-byte seed.
func New(seed []byte) (*PRG, error) {
	stream, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return nil, err
	}
	// pos starts at the end of the pool so the first nextByte fills it from
	// the stream.
	buf := make([]byte, 4096)
	return &PRG{stream: stream, buf: buf, pos: len(buf)}, nil
}

// GetBytes returns the next n bytes of the stream.
func (p *PRG) GetBytes(n int) []byte {
	out := make([]byte, n)
	p.stream.Read(out)
	return out
}

// nextByte services GetInt's bit-level rejection sampling from a byte-aligned
// refillable pool, the same refill-and-mask shape as
// ring.UniformSampler.Read's randomBufferN loop.
func (p *PRG) nextByte() byte {
	if p.pos == len(p.buf) {
		p.stream.Read(p.buf)
		p.pos = 0
	}
	b := p.buf[p.pos]
	p.pos++
	return b
}

// GetInt draws a uniform value in [0, max) by rejection sampling on the low
// ceil(log2 max) bits of a byte-aligned draw (the leading byte's excess
// high-order bits are masked off), per spec §4.2.
func (p *PRG) GetInt(max uint64) uint64 {
	if max == 0 {
		return 0
	}
	if max == 1 {
		return 0
	}

	bitLen := bits.Len64(max - 1)
	byteLen := (bitLen + 7) / 8
	topBits := uint(bitLen % 8)
	var topMask byte
	if topBits == 0 {
		topMask = 0xFF
	} else {
		topMask = byte(1<<topBits) - 1
	}

	for {
		buf := make([]byte, byteLen)
		for i := 0; i < byteLen; i++ {
			buf[i] = p.nextByte()
		}
		buf[0] &= topMask

		var x uint64
		for _, b := range buf {
			x = x<<8 | uint64(b)
		}
		if x < max {
			return x
		}
	}
}

// GetIntRange draws a uniform value in [lo, max).
func (p *PRG) GetIntRange(lo, max uint64) uint64 {
	if max <= lo {
		return lo
	}
	return lo + p.GetInt(max-lo)
}

// GetArray fills every slot of arr with a draw from GetInt(mod).
func (p *PRG) GetArray(arr []field.Element, mod uint64) {
	for i := range arr {
		arr[i] = field.Element(p.GetInt(mod))
	}
}

// ShareInt draws tmp <- GetInt(field.Modulus) and returns shareA = src - tmp
// mod p, such that shareA + tmp == src (mod p). The consumer of tmp is a second
// PRG seeded identically, run by the other party (spec §4.2).
func (p *PRG) ShareInt(src field.Element) field.Element {
	tmp := field.Element(p.GetInt(field.Modulus))
	return field.Sub(src, tmp)
}

// ShareArray applies ShareInt component-wise.
func (p *PRG) ShareArray(src []field.Element) []field.Element {
	out := make([]field.Element, len(src))
	for i, s := range src {
		out[i] = p.ShareInt(s)
	}
	return out
}

// BatchSalt derives a deterministic salt from a batch id, used to mix into
// the shared challenge-point seed (SPEC_FULL.md §4.4 expansion). It is not
// part of the PKCS#11 KDF (that one is fixed to SHA-256 by spec §6); this
// one is free to use the pack's own fast hash.
func BatchSalt(batchID []byte) [SeedSize]byte {
	sum := blake3.Sum256(batchID)
	var salt [SeedSize]byte
	copy(salt[:], sum[:SeedSize])
	return salt
}

// ChallengeSeed XORs the batch-wide shared seed with the batch-id salt to
// produce the seed used to derive the verification challenge point R (spec
// §4.5.2 step 4). Both servers compute this independently and get the same
// result because both hold the same shared seed and the same batch_id.
func ChallengeSeed(sharedSeed [SeedSize]byte, batchID []byte) []byte {
	salt := BatchSalt(batchID)
	out := make([]byte, SeedSize)
	for i := 0; i < SeedSize; i++ {
		out[i] = sharedSeed[i] ^ salt[i]
	}
	return out
}

// DeriveChallenge draws R deterministically from the batch-wide shared seed
// and the batch id. Both servers, sharing seed and batch_id, obtain the same
// R without communicating (spec §4.5.2 step 4).
func DeriveChallenge(sharedSeed [SeedSize]byte, batchID []byte) (field.Element, error) {
	seed := ChallengeSeed(sharedSeed, batchID)
	g, err := New(seed)
	if err != nil {
		return 0, fmt.Errorf("prg: deriving challenge point: %w", err)
	}
	return field.Element(g.GetInt(field.Modulus)), nil
}

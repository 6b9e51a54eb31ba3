// Package config implements the batch-wide Config of SPEC_FULL.md §3: the
// immutable parameters a client encoder and both servers agree on before a
// batch starts.
package config

import (
	"golang.org/x/exp/constraints"

	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prioerr"
)

// MaxPrecision is the largest number of bits a single scalar may be
// bit-decomposed into (spec §3: "1 ≤ precision ≤ 32").
const MaxPrecision = 32

// Config holds the parameters shared by a client and both servers for one
// batch. It is constructed once via New and never mutated afterward; it may
// be read concurrently by multiple goroutines (spec §5).
type Config struct {
	NumDataFields int
	Precision     int
	BatchID       []byte

	// PubKeyA and PubKeyB are the recipient public keys a client encrypts
	// to. They are optional in test mode (spec §3).
	PubKeyA, PubKeyB *hybrid.PublicKey

	// FracBits > 0 puts the batch in fixed-point mode (SPEC_FULL.md §3
	// expansion): client values are scaled floats, pre-scaled to integers
	// by 2^FracBits before bit decomposition, and post-scaled back to
	// float64 after aggregation. FracBits == 0 is plain boolean/integer
	// mode.
	FracBits int

	// Label is a free-form diagnostic string never serialized and never
	// consulted by the protocol; it exists purely so demo/test code can
	// name a batch in log output.
	Label string
}

// NRoots is the FFT domain size every Config uses: the full 2-power subgroup
// field.NRoots of the Prio field.
const NRoots = field.NRoots

// MaxDataFields returns the largest num_data_fields a given precision
// admits under the n_roots/2 - 1 budget of spec §3.
func MaxDataFields(precision int) int {
	if precision <= 0 {
		return 0
	}
	return int((NRoots/2 - 1) / uint64(precision))
}

// New validates and constructs a Config, per spec §3's invariants:
// num_data_fields*precision <= n_roots/2 - 1, and 1 <= precision <= 32.
func New(numDataFields, precision int, pubKeyA, pubKeyB *hybrid.PublicKey, batchID []byte) (*Config, error) {
	if precision < 1 || precision > MaxPrecision {
		return nil, prioerr.Newf(prioerr.BadConfig, "precision %d out of range [1, %d]", precision, MaxPrecision)
	}
	if numDataFields <= 0 {
		return nil, prioerr.Newf(prioerr.BadConfig, "num_data_fields must be positive, got %d", numDataFields)
	}
	if !clampPow2(numDataFields, MaxDataFields(precision)) {
		return nil, prioerr.Newf(prioerr.BadConfig, "num_data_fields=%d exceeds max %d for precision=%d", numDataFields, MaxDataFields(precision), precision)
	}
	if len(batchID) == 0 {
		return nil, prioerr.New(prioerr.BadConfig, "batch_id must not be empty")
	}

	id := make([]byte, len(batchID))
	copy(id, batchID)

	return &Config{
		NumDataFields: numDataFields,
		Precision:     precision,
		BatchID:       id,
		PubKeyA:       pubKeyA,
		PubKeyB:       pubKeyB,
	}, nil
}

// NewTest builds a Config for test/demo use, with no recipient keys and a
// fixed batch id, mirroring PrioConfig_newTest in the original C source.
func NewTest(numDataFields, precision int) (*Config, error) {
	return New(numDataFields, precision, nil, nil, []byte("testBatch"))
}

// BitVectorLen returns N = num_data_fields * precision, the length of the
// bit vector the SNIP operates on.
func (c *Config) BitVectorLen() int {
	return c.NumDataFields * c.Precision
}

// HPoints returns H = next_pow2(N + 1), the SNIP's f/g evaluation-domain
// size (spec §4.4.2).
func (c *Config) HPoints() int {
	return int(field.NextPow2(uint64(c.BitVectorLen() + 1)))
}

// WithFixedPoint returns a copy of c in fixed-point mode with the given
// number of fractional bits (SPEC_FULL.md §3 expansion).
func (c *Config) WithFixedPoint(fracBits int) *Config {
	clone := *c
	clone.FracBits = fracBits
	return &clone
}

// clampPow2 is a small generic bound check used by Config validation:
// reports whether v lies in [0, limit].
func clampPow2[T constraints.Integer](v, limit T) bool {
	return v >= 0 && v <= limit
}

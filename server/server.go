// Package server implements the server-side half of the protocol
// (SPEC_FULL.md §4.5): per-batch accumulation state, the three-round SNIP
// verifier, sharded-deployment merging, and end-of-batch finalization.
package server

import (
	"bytes"

	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/wire"
)

// Server holds one aggregation party's state for the duration of a batch
// (spec §4.5.1). It is not safe for concurrent use without external
// synchronization (spec §5).
type Server struct {
	cfg        *config.Config
	idx        wire.ServerID
	priv       hybrid.PrivateKey
	sharedSeed [16]byte
	accum      []field.Element
}

// New allocates a Server's zeroed accumulator. sharedSeed is a batch-wide
// PRG seed established out of band and shared by both servers; it is used
// exclusively to pick each submission's verification challenge point R, so
// that both servers derive the same R without communicating (spec §4.5.1).
func New(cfg *config.Config, idx wire.ServerID, priv hybrid.PrivateKey, sharedSeed [16]byte) (*Server, error) {
	if cfg == nil {
		return nil, prioerr.New(prioerr.BadConfig, "server: Config must not be nil")
	}
	return &Server{
		cfg:        cfg,
		idx:        idx,
		priv:       priv,
		sharedSeed: sharedSeed,
		accum:      make([]field.Element, cfg.BitVectorLen()),
	}, nil
}

// Aggregate folds a successfully verified submission's data shares into the
// running accumulator. It rejects a Verifier whose three-round check did not
// succeed (spec §4.5.4, §7: "Server::aggregate rejects a Verifier whose
// verification did not succeed").
func (s *Server) Aggregate(v *Verifier) error {
	if !v.verified {
		return prioerr.New(prioerr.VerifyFailed, "server: cannot aggregate an unverified submission")
	}
	for i, share := range v.dataShares {
		s.accum[i] = field.Add(s.accum[i], share)
	}
	return nil
}

// Merge folds other's accumulator into s, for sharded deployments where
// multiple Server instances collect partial batches under the same Config
// (spec §4.5.4). It fails if the two servers' configs disagree or if they
// carry the same server index.
func (s *Server) Merge(other *Server) error {
	if err := checkMergeable(s, other); err != nil {
		return err
	}
	for i, share := range other.accum {
		s.accum[i] = field.Add(s.accum[i], share)
	}
	return nil
}

// MergeAll folds a slice of shards into one, associatively (SPEC_FULL.md
// §4.5 expansion, I9). It never mutates the inputs.
func MergeAll(servers []*Server) (*Server, error) {
	if len(servers) == 0 {
		return nil, prioerr.New(prioerr.BadConfig, "server: MergeAll requires at least one server")
	}
	merged := servers[0].clone()
	for _, other := range servers[1:] {
		if err := merged.Merge(other); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

func (s *Server) clone() *Server {
	c := *s
	c.accum = make([]field.Element, len(s.accum))
	copy(c.accum, s.accum)
	return &c
}

func checkMergeable(a, b *Server) error {
	if a.idx == b.idx {
		return prioerr.New(prioerr.BadConfig, "server: cannot merge two servers with the same index")
	}
	if a.cfg.NumDataFields != b.cfg.NumDataFields || a.cfg.Precision != b.cfg.Precision {
		return prioerr.New(prioerr.BadConfig, "server: cannot merge servers with mismatched field count or precision")
	}
	if !bytes.Equal(a.cfg.BatchID, b.cfg.BatchID) {
		return prioerr.New(prioerr.BadConfig, "server: cannot merge servers with mismatched batch id")
	}
	if !pubKeyEqual(a.cfg.PubKeyA, b.cfg.PubKeyA) || !pubKeyEqual(a.cfg.PubKeyB, b.cfg.PubKeyB) {
		return prioerr.New(prioerr.BadConfig, "server: cannot merge servers with mismatched recipient keys")
	}
	return nil
}

func pubKeyEqual(a, b *hybrid.PublicKey) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// TotalShare is one server's final sum over its accumulator (spec §3,
// §4.5.5), ready to be exchanged with its peer and combined via Final.
type TotalShare struct {
	Index      wire.ServerID
	DataShares []field.Element
}

// TotalShare exports s's current accumulator as a TotalShare.
func (s *Server) TotalShare() TotalShare {
	shares := make([]field.Element, len(s.accum))
	copy(shares, s.accum)
	return TotalShare{Index: s.idx, DataShares: shares}
}

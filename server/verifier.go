package server

import (
	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/hybrid"
	"github.com/mozilla/libprio/prg"
	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/wire"
)

// Verifier is the ephemeral per-submission state driving the three-round
// SNIP check (spec §3, §4.5.2). It is created from exactly one decrypted
// packet, used for exactly three rounds, then discarded; no per-submission
// state survives past Server.Aggregate.
type Verifier struct {
	idx        wire.ServerID
	triple     wire.BeaverTriple
	dataShares []field.Element

	shareFR, shareGR, shareHR field.Element
	verified                  bool
}

// NewVerifier decrypts ciphertext with the server's private key, parses it
// into the long-form packet shape (regenerating server B's share from its
// seed if needed), and evaluates this server's shares of f, g, and h at the
// shared challenge point R (spec §4.5.2).
func NewVerifier(s *Server, ciphertext []byte) (*Verifier, error) {
	plaintext, err := hybrid.Decrypt(s.priv, ciphertext)
	if err != nil {
		return nil, err
	}

	packet, err := wire.UnmarshalPacket(plaintext)
	if err != nil {
		return nil, err
	}
	if packet.ServerID != s.idx {
		return nil, prioerr.Newf(prioerr.BadInput, "server: packet tagged for server %s but this server is %s", packet.ServerID, s.idx)
	}

	a, err := resolvePacketA(s.cfg, packet)
	if err != nil {
		return nil, err
	}

	n := s.cfg.BitVectorLen()
	h := s.cfg.HPoints()
	if len(a.DataShares) != n {
		return nil, prioerr.Newf(prioerr.BadInput, "server: expected %d data shares, got %d", n, len(a.DataShares))
	}
	if len(a.HPoints) != h {
		return nil, prioerr.Newf(prioerr.BadInput, "server: expected %d h points, got %d", h, len(a.HPoints))
	}

	domainH, err := field.NewDomain(uint64(h))
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: building h-domain", err)
	}
	domain2H, err := field.NewDomain(uint64(2 * h))
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: building 2h-domain", err)
	}

	R, err := challengePoint(s)
	if err != nil {
		return nil, err
	}

	pointsF, pointsG := splitPointShares(h, s.idx, a.DataShares, a.F0Share, a.G0Share)

	shareFR, err := field.PolyInterpEvaluate(domainH, pointsF, R)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: evaluating f(R) share", err)
	}
	shareGR, err := field.PolyInterpEvaluate(domainH, pointsG, R)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: evaluating g(R) share", err)
	}

	hFull := interleaveHPoints(a.H0Share, a.HPoints)
	shareHR, err := field.PolyInterpEvaluate(domain2H, hFull, R)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: evaluating h(R) share", err)
	}

	return &Verifier{
		idx:        s.idx,
		triple:     a.Triple,
		dataShares: a.DataShares,
		shareFR:    shareFR,
		shareGR:    shareGR,
		shareHR:    shareHR,
	}, nil
}

// resolvePacketA returns the long-form packet content for packet,
// regenerating it from a PRG seed when this is server B's packet (spec
// §4.5.2 step 2). The bit-accumulation invariant of step 3 needs no
// separate check here: data_shares doubles as the authoritative bit-share
// vector the SNIP itself verifies, so there is nothing to check beyond the
// three-round protocol.
func resolvePacketA(cfg *config.Config, packet *wire.Packet) (*wire.PacketA, error) {
	switch packet.ServerID {
	case wire.ServerA:
		if packet.A == nil {
			return nil, prioerr.New(prioerr.BadInput, "server: server-a packet missing its payload")
		}
		return packet.A, nil
	case wire.ServerB:
		if packet.B == nil {
			return nil, prioerr.New(prioerr.BadInput, "server: server-b packet missing its payload")
		}
		return regeneratePacketA(cfg.BitVectorLen(), cfg.HPoints(), packet.B.Seed)
	default:
		return nil, prioerr.Newf(prioerr.BadInput, "server: unknown server id %d", packet.ServerID)
	}
}

// regeneratePacketA replays the client's PRG seed in the exact canonical
// consumption order of spec §4.4.3 to recover server B's share of every
// field PacketA carries explicitly for server A.
func regeneratePacketA(n, h int, seed [16]byte) (*wire.PacketA, error) {
	gen, err := prg.New(seed[:])
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "server: seeding share prg", err)
	}
	draw := func() field.Element { return field.Element(gen.GetInt(field.Modulus)) }

	a := &wire.PacketA{
		Triple: wire.BeaverTriple{
			A: draw(),
			B: draw(),
			C: draw(),
		},
		F0Share: draw(),
		G0Share: draw(),
		H0Share: draw(),
	}
	a.DataShares = make([]field.Element, n)
	gen.GetArray(a.DataShares, field.Modulus)
	a.HPoints = make([]field.Element, h)
	gen.GetArray(a.HPoints, field.Modulus)
	return a, nil
}

// interleaveHPoints rebuilds this server's share of the full 2H-point
// evaluation table of h = f*g from what the client actually sent: h's value
// at the H-th roots of unity (the even indices of the 2H-th roots) is zero
// everywhere except at x=1, since an honest client's f*g vanishes at every
// nonzero bit-check position — so only h0Share (the share of h(1) = f0*g0)
// needs to travel on the wire for the even positions. The odd indices carry
// the H points the client actually computed via buildH. h is a
// degree-up-to-2H-2 polynomial, so all 2H of these points, not just the H
// odd ones, are required to interpolate h(R) (spec §4.4.3, §4.5.2 step 5).
func interleaveHPoints(h0Share field.Element, oddShares []field.Element) []field.Element {
	full := make([]field.Element, 2*len(oddShares))
	full[0] = h0Share
	for i, share := range oddShares {
		full[2*i+1] = share
	}
	return full
}

// splitPointShares rebuilds this server's share of points_f and points_g
// from its share of the bit vector, per the client's construction in spec
// §4.4.2. f needs no adjustment (points_f[i] is exactly the bit share); g
// needs the public constant -1 folded in at the bit positions, and by
// convention only server A applies it, so that the two servers' g-shares
// still sum to bit-1 (SPEC_FULL.md Open Question decision, see DESIGN.md).
func splitPointShares(h int, idx wire.ServerID, dataShares []field.Element, f0Share, g0Share field.Element) (pointsF, pointsG []field.Element) {
	pointsF = make([]field.Element, h)
	pointsG = make([]field.Element, h)
	pointsF[0] = f0Share
	pointsG[0] = g0Share

	var offset field.Element
	if idx == wire.ServerA {
		offset = 1
	}
	for i, share := range dataShares {
		pointsF[i+1] = share
		pointsG[i+1] = field.Sub(share, offset)
	}
	return pointsF, pointsG
}

// challengePoint derives R from the batch-wide shared seed and the batch id
// (spec §4.5.2 step 4); both servers, sharing both inputs, obtain the same
// R without communicating.
func challengePoint(s *Server) (field.Element, error) {
	R, err := prg.DeriveChallenge(s.sharedSeed, s.cfg.BatchID)
	if err != nil {
		return 0, prioerr.Wrap(prioerr.Internal, "server: deriving challenge point", err)
	}
	return R, nil
}

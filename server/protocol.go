package server

import (
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/wire"
)

// Verify1 is the first message exchanged between the two servers verifying
// one submission: their shares of d = f(R)-a and e = g(R)-b (spec §3,
// §4.5.3 round 1).
type Verify1 struct {
	ShareD, ShareE field.Element
}

// Verify2 is the second exchanged message: a server's share of the final
// zero-check f(R)*g(R)-h(R) (spec §3, §4.5.3 round 2).
type Verify2 struct {
	ShareOut field.Element
}

// MakeVerify1 computes this Verifier's share of round 1's masked values.
func (v *Verifier) MakeVerify1() Verify1 {
	return Verify1{
		ShareD: field.Sub(v.shareFR, v.triple.A),
		ShareE: field.Sub(v.shareGR, v.triple.B),
	}
}

// IngestVerify1 reconstructs the public d and e from both servers' round-1
// shares and computes this Verifier's share of f(R)*g(R)-h(R) via the
// standard Beaver multiplication identity (spec §4.5.3 round 2). The public
// cross term d*e is folded entirely into server A's share, by convention,
// so it is not double-counted once the two Verify2 shares are summed.
func (v *Verifier) IngestVerify1(own, peer Verify1) Verify2 {
	d := field.Add(own.ShareD, peer.ShareD)
	e := field.Add(own.ShareE, peer.ShareE)

	out := field.Add(field.Mul(d, v.triple.B), field.Mul(e, v.triple.A))
	out = field.Add(out, v.triple.C)
	out = field.Sub(out, v.shareHR)
	if v.idx == wire.ServerA {
		out = field.Add(out, field.Mul(d, e))
	}
	return Verify2{ShareOut: out}
}

// IsValid reconstructs the public zero-check from both servers' round-2
// shares and reports whether the submission is well-formed (spec §4.5.3
// round 3). It also records the outcome so Server.Aggregate can reject an
// unverified Verifier.
func (v *Verifier) IsValid(own, peer Verify2) bool {
	sum := field.Add(own.ShareOut, peer.ShareOut)
	v.verified = sum == 0
	return v.verified
}

package client

import (
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/prioerr"
)

// buildFG lays the bit vector and the two random constant terms out as the
// H evaluation points of f and g on the H-th roots of unity, per spec
// §4.4.2: point 0 carries the secret constant term, points 1..N carry the
// data (g's point i is bit[i-1]-1, the "is this a 0-or-1 bit" check), and
// the rest of the domain is padded with zero.
func buildFG(h int, bitVector []field.Element, f0, g0 field.Element) (pointsF, pointsG []field.Element) {
	pointsF = make([]field.Element, h)
	pointsG = make([]field.Element, h)
	pointsF[0] = f0
	pointsG[0] = g0
	for i, bit := range bitVector {
		pointsF[i+1] = bit
		pointsG[i+1] = field.Sub(bit, 1)
	}
	return pointsF, pointsG
}

// buildH computes h = f*g's evaluations on the 2H-th roots of unity via the
// standard FFT convolution: inverse-FFT f and g (already evaluations on the
// H-th roots) to recover their coefficients, zero-pad to 2H, FFT both on the
// finer domain, and multiply pointwise — per spec §4.4.2.
func buildH(domainH, domain2H *field.Domain, pointsF, pointsG []field.Element) ([]field.Element, error) {
	h := len(pointsF)

	coeffsF, err := domainH.FFT(pointsF, true)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "client: inverse-fft f", err)
	}
	coeffsG, err := domainH.FFT(pointsG, true)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "client: inverse-fft g", err)
	}

	padF := make([]field.Element, 2*h)
	padG := make([]field.Element, 2*h)
	copy(padF, coeffsF)
	copy(padG, coeffsG)

	evalF, err := domain2H.FFT(padF, false)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "client: fft f on 2h domain", err)
	}
	evalG, err := domain2H.FFT(padG, false)
	if err != nil {
		return nil, prioerr.Wrap(prioerr.Internal, "client: fft g on 2h domain", err)
	}

	pointsH2H := make([]field.Element, 2*h)
	for i := range pointsH2H {
		pointsH2H[i] = field.Mul(evalF[i], evalG[i])
	}

	// h restricted to the even indices coincides with f*g on the H-th roots
	// (domain2H's even-indexed roots are exactly domainH's roots): for a
	// valid submission every position past index 0 is a bit-check term
	// bit*(bit-1), which is zero, or padding, also zero — so only the
	// constant term h0 = f0*g0 (carried separately as H0Share/H0 in the
	// packet, not here) and the odd-indexed points below are new
	// information a server cannot derive on its own.
	hPoints := make([]field.Element, h)
	for i := 0; i < h; i++ {
		hPoints[i] = pointsH2H[2*i+1]
	}
	return hPoints, nil
}

package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFFTRoundTrip(t *testing.T) {
	for _, n := range []uint64{2, 4, 8, 16, 32} {
		d, err := NewDomain(n)
		require.NoError(t, err)

		v := make([]Element, n)
		for i := range v {
			v[i] = Element(i*i + 1)
		}

		freq, err := d.FFT(v, false)
		require.NoError(t, err)

		back, err := d.FFT(freq, true)
		require.NoError(t, err)

		require.Equal(t, v, back)
	}
}

func TestNewDomainRejectsBadSizes(t *testing.T) {
	_, err := NewDomain(3)
	require.Error(t, err)

	_, err = NewDomain(0)
	require.Error(t, err)
}

func TestPolyEvalHorner(t *testing.T) {
	// p(x) = 1 + 2x + 3x^2
	coeffs := []Element{1, 2, 3}
	require.Equal(t, Element(1+2*5+3*25), PolyEval(coeffs, 5))
}

func TestPolyInterpEvaluateMatchesDirectEval(t *testing.T) {
	const n = 8
	d, err := NewDomain(n)
	require.NoError(t, err)

	coeffs := []Element{1, 2, 3, 4, 5, 6, 7, 8}
	points := make([]Element, n)
	for i, r := range d.Roots(false) {
		points[i] = PolyEval(coeffs, r)
	}

	for _, x := range []Element{0, 1, 2, 42} {
		got, err := PolyInterpEvaluate(d, points, x)
		require.NoError(t, err)
		require.Equal(t, PolyEval(coeffs, x), got)
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 1025: 2048}
	for in, want := range cases {
		require.Equal(t, want, NextPow2(in))
	}
}

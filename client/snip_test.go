package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla/libprio/field"
)

func TestBuildFGPlacesConstantTermsAndData(t *testing.T) {
	bitVector := []field.Element{1, 0, 1}
	f0, g0 := field.Element(42), field.Element(99)

	pointsF, pointsG := buildFG(8, bitVector, f0, g0)
	require.Equal(t, f0, pointsF[0])
	require.Equal(t, g0, pointsG[0])
	require.Equal(t, bitVector, pointsF[1:4])
	require.Equal(t, []field.Element{field.Sub(1, 1), field.Sub(0, 1), field.Sub(1, 1)}, pointsG[1:4])
	for i := 4; i < 8; i++ {
		require.Equal(t, field.Element(0), pointsF[i])
		require.Equal(t, field.Element(0), pointsG[i])
	}
}

func TestBuildHMatchesPointwiseProductAtEvaluationPoints(t *testing.T) {
	const h = 4
	bitVector := []field.Element{1, 0, 1}
	f0, g0 := field.Element(7), field.Element(11)

	domainH, err := field.NewDomain(h)
	require.NoError(t, err)
	domain2H, err := field.NewDomain(2 * h)
	require.NoError(t, err)

	pointsF, pointsG := buildFG(h, bitVector, f0, g0)
	hPoints, err := buildH(domainH, domain2H, pointsF, pointsG)
	require.NoError(t, err)
	require.Len(t, hPoints, h)

	roots2H := domain2H.Roots(false)
	for i := 0; i < h; i++ {
		x := roots2H[2*i+1]
		fx, err := field.PolyInterpEvaluate(domainH, pointsF, x)
		require.NoError(t, err)
		gx, err := field.PolyInterpEvaluate(domainH, pointsG, x)
		require.NoError(t, err)
		require.Equal(t, field.Mul(fx, gx), hPoints[i])
	}
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/prioerr"
)

func TestNewAcceptsBooleanAndMaxPrecision(t *testing.T) {
	_, err := config.New(3, 1, nil, nil, []byte("test4"))
	require.NoError(t, err)

	_, err = config.New(10, 32, nil, nil, []byte("test4"))
	require.NoError(t, err)
}

func TestNewRejectsPrecisionOutOfRange(t *testing.T) {
	_, err := config.New(1, 0, nil, nil, []byte("x"))
	require.Error(t, err)
	require.True(t, prioerr.Is(err, prioerr.BadConfig))

	_, err = config.New(1, 33, nil, nil, []byte("x"))
	require.Error(t, err)
	require.True(t, prioerr.Is(err, prioerr.BadConfig))
}

func TestNewRejectsTooManyFields(t *testing.T) {
	max := config.MaxDataFields(32)
	_, err := config.New(max+1, 32, nil, nil, []byte("x"))
	require.Error(t, err)
	require.True(t, prioerr.Is(err, prioerr.BadConfig))

	_, err = config.New(max, 32, nil, nil, []byte("x"))
	require.NoError(t, err)
}

func TestNewRejectsEmptyBatchID(t *testing.T) {
	_, err := config.New(1, 1, nil, nil, nil)
	require.Error(t, err)
}

func TestHPoints(t *testing.T) {
	cfg, err := config.NewTest(3, 1)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.BitVectorLen())
	require.Equal(t, 4, cfg.HPoints())
}

func TestWithFixedPointIsACopy(t *testing.T) {
	cfg, err := config.NewTest(4, 8)
	require.NoError(t, err)

	fp := cfg.WithFixedPoint(16)
	require.Equal(t, 0, cfg.FracBits)
	require.Equal(t, 16, fp.FracBits)
}

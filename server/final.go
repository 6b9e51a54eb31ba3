package server

import (
	"github.com/mozilla/libprio/config"
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/prioerr"
	"github.com/mozilla/libprio/wire"
)

// Final recombines both servers' TotalShares into the batch's plaintext
// aggregate (spec §4.5.5): bit-sums at each of a field's precision
// positions are summed with the same positional weights bit decomposition
// used, which — being linear — yields the sum of every client's plaintext
// value directly, with no re-carrying needed.
func Final(cfg *config.Config, totalA, totalB TotalShare) ([]uint64, error) {
	if totalA.Index != wire.ServerA || totalB.Index != wire.ServerB {
		return nil, prioerr.New(prioerr.BadInput, "server: Final requires one server-A and one server-B total share")
	}
	n := cfg.BitVectorLen()
	if len(totalA.DataShares) != n || len(totalB.DataShares) != n {
		return nil, prioerr.Newf(prioerr.BadInput, "server: expected %d data shares from each total, got %d and %d", n, len(totalA.DataShares), len(totalB.DataShares))
	}

	out := make([]uint64, cfg.NumDataFields)
	for i := 0; i < cfg.NumDataFields; i++ {
		var acc uint64
		for j := 0; j < cfg.Precision; j++ {
			idx := i*cfg.Precision + j
			bitSum := field.Add(totalA.DataShares[idx], totalB.DataShares[idx])
			acc += uint64(bitSum) << uint(cfg.Precision-1-j)
		}
		out[i] = acc
	}
	return out, nil
}

// FinalFixedPoint is Final followed by the fixed-point post-scale of
// SPEC_FULL.md §3: divide each recombined integer by 2^FracBits to recover
// the aggregate as a float64. cfg must have FracBits > 0.
func FinalFixedPoint(cfg *config.Config, totalA, totalB TotalShare) ([]float64, error) {
	if cfg.FracBits <= 0 {
		return nil, prioerr.New(prioerr.BadConfig, "server: FinalFixedPoint requires a Config with FracBits > 0")
	}
	ints, err := Final(cfg, totalA, totalB)
	if err != nil {
		return nil, err
	}
	scale := float64(uint64(1) << uint(cfg.FracBits))
	out := make([]float64, len(ints))
	for i, x := range ints {
		out[i] = float64(x) / scale
	}
	return out, nil
}

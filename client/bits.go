package client

import (
	"github.com/mozilla/libprio/field"
	"github.com/mozilla/libprio/prioerr"
)

// BitDecompose expands x into precision bits, big-endian, such that
// x == Σ bits[i]*2^(precision-1-i) (spec §4.4.1, I3). Boolean mode is the
// special case precision == 1.
func BitDecompose(x uint64, precision int) ([]field.Element, error) {
	if precision < 1 || precision > 32 {
		return nil, prioerr.Newf(prioerr.BadInput, "bit decomposition precision %d out of range [1, 32]", precision)
	}
	if precision < 64 && x >= uint64(1)<<uint(precision) {
		return nil, prioerr.Newf(prioerr.BadInput, "value %d does not fit in %d bits", x, precision)
	}

	bits := make([]field.Element, precision)
	for i := 0; i < precision; i++ {
		shift := precision - 1 - i
		bits[i] = field.Bit((x>>uint(shift))&1 == 1)
	}
	return bits, nil
}

// BitDecomposeVector expands every value in data into precision bits each
// and concatenates the results into one bit vector of length
// len(data)*precision, the N of spec §4.4.1.
func BitDecomposeVector(data []uint64, precision int) ([]field.Element, error) {
	out := make([]field.Element, 0, len(data)*precision)
	for _, x := range data {
		bits, err := BitDecompose(x, precision)
		if err != nil {
			return nil, err
		}
		out = append(out, bits...)
	}
	return out, nil
}

// BoolVector converts boolean flags directly into a bit vector (precision
// 1), the boolean-mode special case of spec §4.4.1.
func BoolVector(data []bool) []field.Element {
	out := make([]field.Element, len(data))
	for i, b := range data {
		out[i] = field.Bit(b)
	}
	return out
}

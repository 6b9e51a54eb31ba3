package field

import "fmt"

// Domain caches the forward and inverse roots of unity for one FFT size n,
// the way ring.Ring caches its NTT tables once per modulus instead of
// recomputing them on every transform.
type Domain struct {
	n        uint64
	roots    []Element // roots[i] = Generator^(i * NRoots/n)
	invRoots []Element
	nInv     Element // n^-1 mod Modulus, equal to Inv2^log2(n)
}

// NewDomain builds the roots-of-unity tables for an FFT of size n. n must be
// a power of two dividing NRoots.
func NewDomain(n uint64) (*Domain, error) {
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("field: fft size %d is not a power of two", n)
	}
	if NRoots%n != 0 {
		return nil, fmt.Errorf("field: fft size %d does not divide the %d-th root subgroup", n, NRoots)
	}

	step := NRoots / n
	gen := Exp(Generator, step)
	genInv, _ := Inverse(gen)

	d := &Domain{
		n:        n,
		roots:    make([]Element, n),
		invRoots: make([]Element, n),
	}
	d.roots[0] = 1
	d.invRoots[0] = 1
	for i := uint64(1); i < n; i++ {
		d.roots[i] = Mul(d.roots[i-1], gen)
		d.invRoots[i] = Mul(d.invRoots[i-1], genInv)
	}

	nInv := Element(1)
	for m := uint64(1); m < n; m <<= 1 {
		nInv = Mul(nInv, Inv2)
	}
	d.nInv = nInv

	return d, nil
}

// Roots returns the n-th roots of unity g^(i*NRoots/n), or their inverses
// when invert is true — the analogue of spec §4.1's fft_roots.
func (d *Domain) Roots(invert bool) []Element {
	if invert {
		return d.invRoots
	}
	return d.roots
}

// FFT computes the radix-2 Cooley-Tukey DFT of pointsIn over this domain. If
// invert is true the classical inverse-DFT twist (multiply every output by
// n^-1) is additionally applied, so FFT(FFT(v, false), true) == v (I2).
func (d *Domain) FFT(pointsIn []Element, invert bool) ([]Element, error) {
	n := uint64(len(pointsIn))
	if n != d.n {
		return nil, fmt.Errorf("field: fft input length %d does not match domain size %d", n, d.n)
	}

	out := make([]Element, n)
	copy(out, pointsIn)
	bitReverse(out)

	roots := d.Roots(invert)
	for length := uint64(2); length <= n; length <<= 1 {
		half := length / 2
		rootStep := n / length
		for start := uint64(0); start < n; start += length {
			for i := uint64(0); i < half; i++ {
				w := roots[i*rootStep]
				u := out[start+i]
				v := Mul(out[start+i+half], w)
				out[start+i] = Add(u, v)
				out[start+i+half] = Sub(u, v)
			}
		}
	}

	if invert {
		for i := range out {
			out[i] = Mul(out[i], d.nInv)
		}
	}
	return out, nil
}

func bitReverse(a []Element) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
}

// PolyEval evaluates the polynomial with coefficients coeffs (coeffs[i] is
// the coefficient of x^i) at x via Horner's method.
func PolyEval(coeffs []Element, x Element) Element {
	y := Element(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = Add(Mul(y, x), coeffs[i])
	}
	return y
}

// PolyInterpEvaluate interprets pointsIn as the evaluations of a polynomial
// on the len(pointsIn)-th roots of unity and returns that polynomial's value
// at x: inverse-FFT to recover coefficients, then Horner-evaluate at x.
func PolyInterpEvaluate(d *Domain, pointsIn []Element, x Element) (Element, error) {
	coeffs, err := d.FFT(pointsIn, true)
	if err != nil {
		return 0, err
	}
	return PolyEval(coeffs, x), nil
}

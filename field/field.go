// Package field implements modular arithmetic over the Prio prime and the
// 2-power-root-of-unity subgroup used by the FFT-based SNIP construction.
//
// Field elements are represented as raw uint64 words, always held in
// canonical form (strictly less than Modulus). Add, Sub and Mul correct for
// carries, borrows and the final canonical reduction with ordinary if
// statements on the operand values; they are not written to be constant-time.
package field

import "math/bits"

// Element is a value in [0, Modulus).
type Element uint64

// Modulus is the Prio prime p = 2^64 - 2^32 + 1. p-1 = 2^32 * (2^32 - 1), so
// the multiplicative group of F_p admits a subgroup of order 2^32 on which a
// radix-2 FFT runs.
const Modulus uint64 = 0xFFFFFFFF00000001

// epsilon satisfies 2^64 ≡ epsilon (mod Modulus); it falls out of
// Modulus = 2^64 - epsilon and is the basis of the fast reduction below.
const epsilon uint64 = 0xFFFFFFFF

// Generator is an element of order exactly 2^Generator2Order in F_p — i.e. a
// generator of the whole 2-power subgroup, not merely of F_p's group.
// Implementers must hard-code this exact value to interoperate (spec §6).
const Generator Element = 1753635133440165772

// Generator2Order is k such that the 2^k-th roots of unity are exactly the
// subgroup Generator generates.
const Generator2Order = 32

// NRoots is 2^Generator2Order, the largest FFT domain this field supports.
const NRoots = uint64(1) << Generator2Order

func canon(x uint64) uint64 {
	if x >= Modulus {
		x -= Modulus
	}
	return x
}

// reduce128 folds a 128-bit product (hi, lo) back into [0, Modulus), using
// the 2^64 ≡ epsilon identity twice: once to fold the high 32 bits of hi in
// (via a subtraction, since that contribution is negative), once to fold the
// low 32 bits of hi in (via a multiplication by epsilon).
func reduce128(lo, hi uint64) uint64 {
	hiHi := hi >> 32
	hiLo := hi & epsilon

	t0, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t0 -= epsilon
	}

	t1 := hiLo * epsilon

	t2, carry := bits.Add64(t0, t1, 0)
	if carry != 0 {
		t2 += epsilon
	}
	return canon(t2)
}

// New reduces x into canonical form.
func New(x uint64) Element {
	return Element(canon(x))
}

// Add returns a+b mod Modulus.
func Add(a, b Element) Element {
	s, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		s += epsilon
	}
	return Element(canon(s))
}

// Sub returns a-b mod Modulus.
func Sub(a, b Element) Element {
	d, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		d -= epsilon
	}
	return Element(canon(d))
}

// Neg returns -a mod Modulus.
func Neg(a Element) Element {
	return Sub(0, a)
}

// Mul returns a*b mod Modulus.
func Mul(a, b Element) Element {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return Element(reduce128(lo, hi))
}

// Exp returns a^e mod Modulus via square-and-multiply.
func Exp(a Element, e uint64) Element {
	result := Element(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = Mul(result, base)
		}
		base = Mul(base, base)
		e >>= 1
	}
	return result
}

// Inverse returns a^-1 mod Modulus via Fermat's little theorem. Fails (ok
// false) on a == 0, matching spec §4.1's "modular inverse of zero fails".
func Inverse(a Element) (Element, bool) {
	if a == 0 {
		return 0, false
	}
	return Exp(a, Modulus-2), true
}

// Inv2 is the multiplicative inverse of 2 mod Modulus, used by the inverse
// FFT (NewDomain builds n^-1 from it); it
// equals (Modulus+1)/2 since Modulus is odd.
var Inv2 = Element((Modulus + 1) / 2)

// Bit returns 0 or 1 as a field element.
func Bit(b bool) Element {
	if b {
		return 1
	}
	return 0
}

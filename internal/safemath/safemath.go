// Package safemath provides overflow-checked uint64 arithmetic.
// Operations report failure instead of wrapping; reward and aggregate
// bookkeeping must match checked 64-bit semantics exactly, so these
// stay fixed-width rather than using arbitrary-precision integers.
package safemath

import "math/bits"

// Add returns a+b and false if the sum overflows.
func Add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// Sub returns a-b and false if the difference underflows.
func Sub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// Mul returns a*b and false if the product overflows.
func Mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// Package fixedpoint implements the checked integer arithmetic used for all
// monetary amounts. Every amount, price and fee rate shares one fixed scale
// of 10^9 fractional units; there is no floating point anywhere in the core.
package fixedpoint

import (
	"errors"
	"math/bits"
)

// Scale is 10^9, matching program.DefaultDecimals.
const Scale uint64 = 1_000_000_000

var (
	ErrOverflow  = errors.New("fixedpoint: overflow")
	ErrUnderflow = errors.New("fixedpoint: underflow")
)

// MulScaled returns a*b/Scale, computed with a 128-bit intermediate so the
// product itself cannot overflow. The result must fit in a uint64.
func MulScaled(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= Scale {
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, Scale)
	return q, nil
}

// Mul is a checked plain multiply (no rescaling).
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// Add is a checked addition.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub is a checked subtraction. Underflow is an error, never a wrap; callers
// treat it as insufficient funds.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

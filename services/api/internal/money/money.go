// Package money provides fixed-point arithmetic for ledger amounts.
//
// Amounts are unsigned integers of base-currency units. Multiplication and
// division go through a 128-bit intermediate so that multiplier math never
// silently wraps; addition of aggregate totals saturates instead of
// overflowing.
package money

import "math/bits"

// Amount is a quantity of currency in its smallest unit.
type Amount uint64

// Max is the largest representable amount. Saturating additions clamp here.
const Max = Amount(^uint64(0))

// MulDiv returns floor(a*b/div) computed with a 128-bit intermediate.
// It reports false when div is zero or the quotient does not fit in 64 bits.
func MulDiv(a Amount, b, div uint64) (Amount, bool) {
	if div == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), b)
	if hi >= div {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, div)
	return Amount(q), true
}

// MulDivSat is MulDiv clamped to Max when the quotient overflows.
// A zero divisor still yields zero.
func MulDivSat(a Amount, b, div uint64) Amount {
	if div == 0 {
		return 0
	}
	v, ok := MulDiv(a, b, div)
	if !ok {
		return Max
	}
	return v
}

// SatAdd returns a+b, clamped to Max on overflow.
func SatAdd(a, b Amount) Amount {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return Max
	}
	return Amount(sum)
}

// Package combin implements exact combinatorial counting and unranking.
//
// All counts and ranks use math/big integers: 20! already exceeds 2^61 and
// 30! exceeds 2^128, so native widths cannot represent the enumeration
// spaces this package indexes into.
package combin

import "math/big"

// Factorial returns n! as a big integer. Factorial(0) == Factorial(1) == 1.
// Negative n is treated as 0.
func Factorial(n int) *big.Int {
	result := big.NewInt(1)
	for i := int64(2); i <= int64(n); i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result
}

// FallingRange returns the product (lo+1)*(lo+2)*...*hi. It returns 1 when
// lo == hi, so that Binomial can use it in place of a full factorial when
// only the tail of the product is needed.
func FallingRange(lo, hi int) *big.Int {
	if lo == hi {
		return big.NewInt(1)
	}

	result := big.NewInt(int64(lo) + 1)
	for i := int64(lo) + 2; i <= int64(hi); i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result
}

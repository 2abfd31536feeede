package combin

import "math/big"

// Binomial returns C(n, k), the number of k-element subsets of an n-element
// set, and reports whether the pair is countable. It returns false when
// k > n; k == 0 and k == n both yield 1.
//
// The quotient is formed from the smaller of k and n-k on the factorial
// side, keeping intermediate magnitudes down. Division is always exact.
func Binomial(n, k int) (*big.Int, bool) {
	if k > n {
		return nil, false
	}

	if k == n {
		return big.NewInt(1), true
	}

	rest := n - k

	var factorial, rng *big.Int
	if rest >= k {
		factorial = Factorial(k)
		rng = FallingRange(rest, n)
	} else {
		factorial = Factorial(rest)
		rng = FallingRange(k, n)
	}

	return rng.Div(rng, factorial), true
}

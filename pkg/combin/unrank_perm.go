package combin

import "math/big"

// UnrankPerm maps a 0-based rank to the positions of the rank-th permutation
// of {0, ..., n-1} in lexicographic order. The returned slice p satisfies
// "element i of the permutation is source position p[i]".
//
// The decomposition walks the factorial number system without building an
// explicit digit array: a list of leftover positions shrinks by one per
// step, and the rank (shifted to 1-based space so rank 0 is the identity)
// is reduced by the factorial-sized block it falls into. The list scan makes
// this O(n^2); it runs once per worker, not per step, so that is acceptable.
//
// The second return value reports whether the decomposition made progress;
// it is false for degenerate inputs such as n == 0.
func UnrankPerm(n int, rank *big.Int) ([]int, bool) {
	results := make([]int, 0, n)

	leftovers := make([]int, n)
	for i := 0; i < n; i++ {
		leftovers[i] = i
	}

	remaining := new(big.Int).Add(rank, bigOne)
	processed := false

	pos := new(big.Int)
	for setSize := n; setSize > 0; {
		prevSize := setSize
		setSize--

		factorial := Factorial(setSize)
		prevMult := new(big.Int)
		for i := 1; i <= prevSize; i++ {
			pos.Mul(factorial, big.NewInt(int64(i)))

			if remaining.Cmp(pos) <= 0 {
				if prevMult.Cmp(remaining) <= 0 {
					processed = true
					remaining.Sub(remaining, prevMult)
				}

				results = append(results, leftovers[i-1])
				leftovers = append(leftovers[:i-1], leftovers[i:]...)
				break
			}

			prevMult.Set(pos)
		}
	}

	return results, processed
}

var bigOne = big.NewInt(1)

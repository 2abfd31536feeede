package combin

import "math/big"

// UnrankComb maps a 0-based rank to the rank-th k-element subset of
// {0, ..., n-1} in lexicographic order. The returned positions are strictly
// ascending. It reports false when k > n, n == 0, or k == 0.
//
// This is the combinatorial number system walked largest-block-first: for
// each output position the candidate window is scanned, accumulating
// C(remainingSet, remainingComb) block sizes until the block containing the
// rank is found. The final position is resolved by a direct countdown, since
// at that point each candidate accounts for exactly one subset.
func UnrankComb(n, k int, rank *big.Int) ([]int, bool) {
	if k > n || n == 0 || k == 0 {
		return nil, false
	}

	results := make([]int, k)
	index := new(big.Int).Set(rank)

	remainingSet := n - 1
	remainingComb := k - 1

	for x := 0; x < k; x++ {
		if x == k-1 { // last element
			for index.Sign() != 0 {
				index.Sub(index, bigOne)
				remainingSet--
			}
			results[x] = n - remainingSet - 1
			continue
		}

		total := new(big.Int)
		prev := new(big.Int)

		loop := remainingSet - remainingComb
		found := false
		xPrev := 0
		if x > 0 {
			xPrev = results[x-1] + 1
		}

		var y int
		for y = 0; y < loop; y++ {
			count, ok := Binomial(remainingSet, remainingComb)
			if !ok {
				return nil, false
			}

			total.Add(count, prev)
			if total.Cmp(index) > 0 { // prev is the found one
				index.Sub(index, prev)
				results[x] = y + xPrev
				found = true
				break
			}
			prev.Set(total)
			remainingSet--
		}

		if !found {
			index.Sub(index, total)
			results[x] = y + xPrev
		}

		remainingSet--
		remainingComb--
	}

	return results, true
}

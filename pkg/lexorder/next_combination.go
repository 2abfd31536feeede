package lexorder

import "cmp"

// NextCombination advances sub, an ascending k-selection drawn from full, to
// the lexicographically next k-selection under the natural ordering. If sub
// is already the last selection, it is rewound to the first one and false is
// returned. full itself is never modified.
func NextCombination[T cmp.Ordered](full, sub []T) bool {
	return NextCombinationFunc(full, sub, cmp.Less[T])
}

// NextCombinationFunc is NextCombination under an explicit strict ordering.
// Elements of sub are located in full by ordering-equivalence; sequences
// containing equivalent elements get no deduplication guarantees.
func NextCombinationFunc[T any](full, sub []T, less func(a, b T) bool) bool {
	n := len(full)
	k := len(sub)
	if n == 0 || k == 0 || k > n {
		return false
	}

	equiv := func(a, b T) bool {
		return !less(a, b) && !less(b, a)
	}

	// Recover the positions of sub within full. sub is an ascending
	// selection, so a single forward scan suffices.
	idx := make([]int, k)
	j := 0
	for i := 0; i < k; i++ {
		for j < n && !equiv(sub[i], full[j]) {
			j++
		}
		if j == n {
			return false
		}
		idx[i] = j
		j++
	}

	// Rightmost position that can still move up.
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}

	if i < 0 {
		// Last selection: rewind to the first.
		for x := 0; x < k; x++ {
			sub[x] = full[x]
		}
		return false
	}

	idx[i]++
	for x := i + 1; x < k; x++ {
		idx[x] = idx[x-1] + 1
	}

	for x := 0; x < k; x++ {
		sub[x] = full[idx[x]]
	}
	return true
}

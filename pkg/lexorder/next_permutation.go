// Package lexorder provides in-place lexicographic successor operations:
// the next permutation of a sequence and the next fixed-size combination
// drawn from a full set. Both come in an Ordered variant using the natural
// ordering and a Func variant taking an explicit less function, mirroring
// the slices.Sort / slices.SortFunc split.
package lexorder

import "cmp"

// NextPermutation rearranges s into the lexicographically next permutation
// under the natural ordering. If s is already the last permutation, it is
// rewound to the first (ascending) one and false is returned.
func NextPermutation[T cmp.Ordered](s []T) bool {
	return NextPermutationFunc(s, cmp.Less[T])
}

// NextPermutationFunc is NextPermutation under an explicit strict ordering.
func NextPermutationFunc[T any](s []T, less func(a, b T) bool) bool {
	n := len(s)
	if n < 2 {
		return false
	}

	// Rightmost position whose value is exceeded by its successor.
	i := n - 2
	for i >= 0 && !less(s[i], s[i+1]) {
		i--
	}

	if i < 0 {
		reverse(s)
		return false
	}

	// Rightmost value greater than the pivot.
	j := n - 1
	for !less(s[i], s[j]) {
		j--
	}

	s[i], s[j] = s[j], s[i]
	reverse(s[i+1:])
	return true
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

package enumerate

import (
	"math"
	"math/big"
	"slices"
	"strconv"

	"github.com/permcomb/pkg/combin"
	"github.com/permcomb/pkg/lexorder"
)

// counterKind selects the loop counter width for a worker. The planner hands
// workers big-integer ranges, but when the range end fits a native integer
// the hot loop compares and increments that instead of a big.Int: the native
// word when end fits 32 bits, int64 when it fits 64, big.Int otherwise.
type counterKind int

const (
	counterInt32 counterKind = iota
	counterInt64
	counterBig
)

func counterFor(end *big.Int) counterKind {
	if end.IsInt64() {
		if end.Int64() <= math.MaxInt32 {
			return counterInt32
		}
		return counterInt64
	}
	return counterBig
}

// permWorker enumerates the permutations with ranks [start, end). It seeds a
// private copy of src, fast-forwards via unranking when start > 0, then
// walks with the successor operation, one callback per rank.
func permWorker[T any](threadIndex int, src []T, start, end *big.Int, less func(a, b T) bool, cb PermCallback[T], errCb PermErrCallback[T]) {
	vec := slices.Clone(src)

	if start.Sign() > 0 {
		if positions, ok := combin.UnrankPerm(len(src), start); ok {
			for i, p := range positions {
				vec[i] = src[p]
			}
		}
	}

	switch counterFor(end) {
	case counterInt32:
		permLoopNative(threadIndex, vec, int(start.Int64()), int(end.Int64()), less, cb, errCb)
	case counterInt64:
		permLoopNative(threadIndex, vec, start.Int64(), end.Int64(), less, cb, errCb)
	default:
		permLoopBig(threadIndex, vec, start, end, less, cb, errCb)
	}
}

func permLoopNative[T any, C int | int64](threadIndex int, vec []T, start, end C, less func(a, b T) bool, cb PermCallback[T], errCb PermErrCallback[T]) {
	j := start
	defer func() {
		if r := recover(); r != nil && errCb != nil {
			errCb(threadIndex, vec, loopDiagnostic("perm_loop", r,
				strconv.FormatInt(int64(start), 10), strconv.FormatInt(int64(end), 10), strconv.FormatInt(int64(j), 10)))
		}
	}()

	for ; j < end; j++ {
		if !cb(threadIndex, vec) {
			return
		}
		lexorder.NextPermutationFunc(vec, less)
	}
}

func permLoopBig[T any](threadIndex int, vec []T, start, end *big.Int, less func(a, b T) bool, cb PermCallback[T], errCb PermErrCallback[T]) {
	j := new(big.Int).Set(start)
	defer func() {
		if r := recover(); r != nil && errCb != nil {
			errCb(threadIndex, vec, loopDiagnostic("perm_loop", r,
				start.String(), end.String(), j.String()))
		}
	}()

	for ; j.Cmp(end) < 0; j.Add(j, bigOne) {
		if !cb(threadIndex, vec) {
			return
		}
		lexorder.NextPermutationFunc(vec, less)
	}
}

// combWorker enumerates the k-element combinations with ranks [start, end).
// The worker's mutable state is the current selection; the full set is a
// private immutable copy consulted by the successor operation.
func combWorker[T any](threadIndex int, src []T, start, end *big.Int, subset int, less func(a, b T) bool, cb CombCallback[T], errCb CombErrCallback[T]) {
	positions := make([]int, subset)
	for i := range positions {
		positions[i] = i
	}

	if start.Sign() > 0 {
		if p, ok := combin.UnrankComb(len(src), subset, start); ok {
			positions = p
		}
	}

	sub := make([]T, subset)
	for i, p := range positions {
		sub[i] = src[p]
	}
	full := slices.Clone(src)

	switch counterFor(end) {
	case counterInt32:
		combLoopNative(threadIndex, full, sub, int(start.Int64()), int(end.Int64()), less, cb, errCb)
	case counterInt64:
		combLoopNative(threadIndex, full, sub, start.Int64(), end.Int64(), less, cb, errCb)
	default:
		combLoopBig(threadIndex, full, sub, start, end, less, cb, errCb)
	}
}

func combLoopNative[T any, C int | int64](threadIndex int, full, sub []T, start, end C, less func(a, b T) bool, cb CombCallback[T], errCb CombErrCallback[T]) {
	j := start
	defer func() {
		if r := recover(); r != nil && errCb != nil {
			errCb(threadIndex, len(full), sub, loopDiagnostic("comb_loop", r,
				strconv.FormatInt(int64(start), 10), strconv.FormatInt(int64(end), 10), strconv.FormatInt(int64(j), 10)))
		}
	}()

	for ; j < end; j++ {
		if !cb(threadIndex, len(full), sub) {
			return
		}
		lexorder.NextCombinationFunc(full, sub, less)
	}
}

func combLoopBig[T any](threadIndex int, full, sub []T, start, end *big.Int, less func(a, b T) bool, cb CombCallback[T], errCb CombErrCallback[T]) {
	j := new(big.Int).Set(start)
	defer func() {
		if r := recover(); r != nil && errCb != nil {
			errCb(threadIndex, len(full), sub, loopDiagnostic("comb_loop", r,
				start.String(), end.String(), j.String()))
		}
	}()

	for ; j.Cmp(end) < 0; j.Add(j, bigOne) {
		if !cb(threadIndex, len(full), sub) {
			return
		}
		lexorder.NextCombinationFunc(full, sub, less)
	}
}

var bigOne = big.NewInt(1)

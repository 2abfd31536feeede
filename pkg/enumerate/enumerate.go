package enumerate

import (
	"cmp"
	"fmt"
	"math/big"

	"github.com/permcomb/pkg/combin"
)

// ComputeAllPerm enumerates every permutation of seq across threadCnt
// workers under the natural ordering. seq must be in ascending order for the
// enumeration to cover the whole space; it is never mutated. The return
// value is false only when validation fails before any worker ran; worker
// failures surface through errCb instead.
func ComputeAllPerm[T cmp.Ordered](threadCnt int, seq []T, cb PermCallback[T], errCb PermErrCallback[T]) bool {
	return ComputeAllPermShard(0, 1, threadCnt, seq, cb, errCb)
}

// ComputeAllPermFunc is ComputeAllPerm under an explicit strict ordering.
func ComputeAllPermFunc[T any](threadCnt int, seq []T, less func(a, b T) bool, cb PermCallback[T], errCb PermErrCallback[T]) bool {
	return ComputeAllPermShardFunc(0, 1, threadCnt, seq, less, cb, errCb)
}

// ComputeAllPermShard enumerates the shard of the permutation space owned by
// process cpuIndex out of cpuCnt. Running it once per cpuIndex in
// [0, cpuCnt) — typically one process per machine — covers the whole space
// with no gaps or overlaps.
func ComputeAllPermShard[T cmp.Ordered](cpuIndex, cpuCnt, threadCnt int, seq []T, cb PermCallback[T], errCb PermErrCallback[T]) bool {
	return ComputeAllPermShardFunc(cpuIndex, cpuCnt, threadCnt, seq, cmp.Less[T], cb, errCb)
}

// ComputeAllPermShardFunc is ComputeAllPermShard under an explicit strict
// ordering.
func ComputeAllPermShardFunc[T any](cpuIndex, cpuCnt, threadCnt int, seq []T, less func(a, b T) bool, cb PermCallback[T], errCb PermErrCallback[T]) bool {
	fail := func(msg string) bool {
		if errCb != nil {
			errCb(0, seq, msg)
		}
		return false
	}

	if cpuCnt <= 0 {
		return fail(fmt.Sprintf("Error: cpu_cnt(%d) <= 0", cpuCnt))
	}
	if threadCnt <= 0 {
		return fail(fmt.Sprintf("Error: thread_cnt(%d) <= 0", threadCnt))
	}

	factorial := combin.Factorial(len(seq))

	plan, errMsg := planShard(cpuIndex, cpuCnt, threadCnt, factorial, "factorial")
	if errMsg != "" {
		return fail(errMsg)
	}

	plan.run(func(threadIndex int, start, end *big.Int) {
		permWorker(threadIndex, seq, start, end, less, cb, errCb)
	})
	return true
}

// ComputeAllComb enumerates every subset-element combination of seq across
// threadCnt workers under the natural ordering. Each combination is
// delivered in ascending order. seq is never mutated.
func ComputeAllComb[T cmp.Ordered](threadCnt, subset int, seq []T, cb CombCallback[T], errCb CombErrCallback[T]) bool {
	return ComputeAllCombShard(0, 1, threadCnt, subset, seq, cb, errCb)
}

// ComputeAllCombFunc is ComputeAllComb under an explicit strict ordering.
func ComputeAllCombFunc[T any](threadCnt, subset int, seq []T, less func(a, b T) bool, cb CombCallback[T], errCb CombErrCallback[T]) bool {
	return ComputeAllCombShardFunc(0, 1, threadCnt, subset, seq, less, cb, errCb)
}

// ComputeAllCombShard enumerates the shard of the combination space owned by
// process cpuIndex out of cpuCnt.
func ComputeAllCombShard[T cmp.Ordered](cpuIndex, cpuCnt, threadCnt, subset int, seq []T, cb CombCallback[T], errCb CombErrCallback[T]) bool {
	return ComputeAllCombShardFunc(cpuIndex, cpuCnt, threadCnt, subset, seq, cmp.Less[T], cb, errCb)
}

// ComputeAllCombShardFunc is ComputeAllCombShard under an explicit strict
// ordering.
func ComputeAllCombShardFunc[T any](cpuIndex, cpuCnt, threadCnt, subset int, seq []T, less func(a, b T) bool, cb CombCallback[T], errCb CombErrCallback[T]) bool {
	fail := func(msg string) bool {
		if errCb != nil {
			errCb(0, len(seq), seq, msg)
		}
		return false
	}

	if cpuCnt <= 0 {
		return fail(fmt.Sprintf("Error: cpu_cnt(%d) <= 0", cpuCnt))
	}
	if threadCnt <= 0 {
		return fail(fmt.Sprintf("Error: thread_cnt(%d) <= 0", threadCnt))
	}
	if subset <= 0 {
		return fail(fmt.Sprintf("Error: subset(%d) <= 0", subset))
	}

	total, ok := combin.Binomial(len(seq), subset)
	if !ok {
		return fail("Error: compute_total_comb() return false")
	}

	plan, errMsg := planShard(cpuIndex, cpuCnt, threadCnt, total, "total_comb")
	if errMsg != "" {
		return fail(errMsg)
	}

	plan.run(func(threadIndex int, start, end *big.Int) {
		combWorker(threadIndex, seq, start, end, subset, less, cb, errCb)
	})
	return true
}

// FindPermByIdx returns the permutation of seq with the given 0-based
// lexicographic rank, without any threading. It returns nil when seq is
// empty or the rank cannot be decomposed over it.
func FindPermByIdx[T any](index *big.Int, seq []T) []T {
	positions, ok := combin.UnrankPerm(len(seq), index)
	if !ok || len(positions) != len(seq) {
		return nil
	}

	results := make([]T, 0, len(seq))
	for _, p := range positions {
		results = append(results, seq[p])
	}
	return results
}

// FindCombByIdx returns the k-element combination of seq with the given
// 0-based lexicographic rank. Impossible subset sizes (k <= 0 or k >
// len(seq)) and out-of-range ranks uniformly return nil.
func FindCombByIdx[T any](k int, index *big.Int, seq []T) []T {
	positions := FindCombStateByIdx(k, index, seq)
	if positions == nil {
		return nil
	}

	results := make([]T, 0, k)
	for _, p := range positions {
		results = append(results, seq[p])
	}
	return results
}

// FindCombStateByIdx is FindCombByIdx returning positions into seq instead
// of elements, for callers that need to address the originals.
func FindCombStateByIdx[T any](k int, index *big.Int, seq []T) []int {
	total, ok := combin.Binomial(len(seq), k)
	if !ok || k <= 0 || index.Sign() < 0 || index.Cmp(total) >= 0 {
		return nil
	}

	positions, ok := combin.UnrankComb(len(seq), k, index)
	if !ok {
		return nil
	}
	return positions
}

package enumerate

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permcomb/pkg/lexorder"
)

// permCollector gathers emitted permutations per thread index. Each worker
// only appends to its own slice, so no locking is needed.
type permCollector struct {
	byThread [][][]int
}

func newPermCollector(threadCnt int) *permCollector {
	return &permCollector{byThread: make([][][]int, threadCnt)}
}

func (c *permCollector) callback(threadIndex int, seq []int) bool {
	c.byThread[threadIndex] = append(c.byThread[threadIndex], slices.Clone(seq))
	return true
}

func (c *permCollector) merged() [][]int {
	var all [][]int
	for _, seqs := range c.byThread {
		all = append(all, seqs...)
	}
	return all
}

type combCollector struct {
	byThread [][][]string
}

func newCombCollector(threadCnt int) *combCollector {
	return &combCollector{byThread: make([][][]string, threadCnt)}
}

func (c *combCollector) callback(threadIndex int, fullSize int, sub []string) bool {
	c.byThread[threadIndex] = append(c.byThread[threadIndex], slices.Clone(sub))
	return true
}

func (c *combCollector) merged() [][]string {
	var all [][]string
	for _, seqs := range c.byThread {
		all = append(all, seqs...)
	}
	return all
}

func noPermErr(t *testing.T) PermErrCallback[int] {
	return func(threadIndex int, seq []int, msg string) {
		t.Errorf("unexpected error callback from thread %d: %s", threadIndex, msg)
	}
}

func allPermsOf(seq []int) [][]int {
	s := slices.Clone(seq)
	all := [][]int{slices.Clone(s)}
	for lexorder.NextPermutation(s) {
		all = append(all, slices.Clone(s))
	}
	return all
}

func sortLex[T int | string](seqs [][]T) {
	sort.Slice(seqs, func(i, j int) bool {
		a, b := seqs[i], seqs[j]
		for x := range a {
			if a[x] != b[x] {
				return a[x] < b[x]
			}
		}
		return false
	})
}

func TestComputeAllPermSingleThreadOrder(t *testing.T) {
	c := newPermCollector(1)
	ok := ComputeAllPerm(1, []int{1, 2, 3}, c.callback, noPermErr(t))
	require.True(t, ok)

	want := [][]int{
		{1, 2, 3}, {1, 3, 2}, {2, 1, 3}, {2, 3, 1}, {3, 1, 2}, {3, 2, 1},
	}
	assert.Equal(t, want, c.byThread[0])
}

func TestComputeAllPermTwoThreadsCoverage(t *testing.T) {
	c := newPermCollector(2)
	ok := ComputeAllPerm(2, []int{1, 2, 3, 4}, c.callback, noPermErr(t))
	require.True(t, ok)

	merged := c.merged()
	require.Len(t, merged, 24)

	sortLex(merged)
	assert.Equal(t, allPermsOf([]int{1, 2, 3, 4}), merged)
}

func TestComputeAllPermThreadCountSweep(t *testing.T) {
	// Coverage and uniqueness must hold for every worker count, including
	// counts that do not divide the total and counts above it.
	want := allPermsOf([]int{0, 1, 2, 3})

	for _, threadCnt := range []int{1, 2, 3, 5, 7, 23, 24, 100} {
		t.Run(fmt.Sprintf("threads=%d", threadCnt), func(t *testing.T) {
			c := newPermCollector(threadCnt)
			ok := ComputeAllPerm(threadCnt, []int{0, 1, 2, 3}, c.callback, noPermErr(t))
			require.True(t, ok)

			merged := c.merged()
			require.Len(t, merged, 24)

			seen := make(map[string]int)
			for _, seq := range merged {
				seen[fmt.Sprint(seq)]++
			}
			for key, cnt := range seen {
				assert.Equal(t, 1, cnt, "%s emitted %d times", key, cnt)
			}

			sortLex(merged)
			assert.Equal(t, want, merged)
		})
	}
}

func TestComputeAllPermWorkerOrderWithinThread(t *testing.T) {
	c := newPermCollector(3)
	ok := ComputeAllPerm(3, []int{0, 1, 2, 3}, c.callback, noPermErr(t))
	require.True(t, ok)

	for ti, seqs := range c.byThread {
		for i := 1; i < len(seqs); i++ {
			assert.True(t, slices.Compare(seqs[i-1], seqs[i]) < 0,
				"thread %d emitted out of order at %d", ti, i)
		}
	}
}

func TestComputeAllPermFuncReversedOrdering(t *testing.T) {
	greater := func(a, b int) bool { return a > b }

	var got [][]int
	cb := func(threadIndex int, seq []int) bool {
		got = append(got, slices.Clone(seq))
		return true
	}

	ok := ComputeAllPermFunc(1, []int{3, 2, 1}, greater, cb, nil)
	require.True(t, ok)
	require.Len(t, got, 6)
	assert.Equal(t, []int{3, 2, 1}, got[0])
	assert.Equal(t, []int{1, 2, 3}, got[5])
}

func TestComputeAllPermShardLastShard(t *testing.T) {
	c := newPermCollector(2)
	ok := ComputeAllPermShard(1, 2, 2, []int{1, 2, 3, 4}, c.callback, noPermErr(t))
	require.True(t, ok)

	// The second of two shards owns ranks [12, 24): thread 0 covers
	// [12, 18), thread 1 covers [18, 24), so the concatenation is the last
	// 12 permutations in lexicographic order.
	got := append(slices.Clone(c.byThread[0]), c.byThread[1]...)
	want := allPermsOf([]int{1, 2, 3, 4})[12:]
	assert.Equal(t, want, got)
	assert.Equal(t, [][]int{{3, 1, 2, 4}}, got[:1])
}

func TestComputeAllPermShardUnion(t *testing.T) {
	single := newPermCollector(2)
	require.True(t, ComputeAllPerm(2, []int{0, 1, 2, 3}, single.callback, noPermErr(t)))

	for _, cpuCnt := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("cpus=%d", cpuCnt), func(t *testing.T) {
			var merged [][]int
			for cpuIndex := 0; cpuIndex < cpuCnt; cpuIndex++ {
				c := newPermCollector(2)
				ok := ComputeAllPermShard(cpuIndex, cpuCnt, 2, []int{0, 1, 2, 3}, c.callback, noPermErr(t))
				require.True(t, ok)
				merged = append(merged, c.merged()...)
			}

			require.Len(t, merged, 24)
			sortLex(merged)

			wantAll := single.merged()
			sortLex(wantAll)
			assert.Equal(t, wantAll, merged)
		})
	}
}

func TestComputeAllPermThreadDowngrade(t *testing.T) {
	// 3! = 6 elements over 10 requested threads: the planner must fall back
	// to a single worker instead of creating empty ranges.
	c := newPermCollector(10)
	ok := ComputeAllPerm(10, []int{1, 2, 3}, c.callback, noPermErr(t))
	require.True(t, ok)

	assert.Len(t, c.byThread[0], 6)
	for ti := 1; ti < 10; ti++ {
		assert.Empty(t, c.byThread[ti], "thread %d should not have run", ti)
	}
}

func TestComputeAllPermEarlyTermination(t *testing.T) {
	calls := 0
	cb := func(threadIndex int, seq []int) bool {
		calls++
		return calls < 3
	}

	ok := ComputeAllPerm(1, []int{1, 2, 3, 4}, cb, noPermErr(t))
	assert.True(t, ok, "early termination is not a planner failure")
	assert.Equal(t, 3, calls)
}

func TestComputeAllPermEarlyTerminationOneWorkerOnly(t *testing.T) {
	stopped := newPermCollector(2)
	cb := func(threadIndex int, seq []int) bool {
		if threadIndex == 1 {
			return false
		}
		return stopped.callback(threadIndex, seq)
	}

	ok := ComputeAllPerm(2, []int{1, 2, 3, 4}, cb, noPermErr(t))
	require.True(t, ok)

	// Thread 1 stopped immediately; thread 0 still covers its full half.
	assert.Len(t, stopped.byThread[0], 12)
	assert.Empty(t, stopped.byThread[1])
}

func TestComputeAllPermValidation(t *testing.T) {
	seq := []int{1, 2, 3}

	tests := []struct {
		name    string
		run     func(errCb PermErrCallback[int]) bool
		wantMsg string
	}{
		{
			name: "ZeroCPUCount",
			run: func(errCb PermErrCallback[int]) bool {
				return ComputeAllPermShard(0, 0, 1, seq, nil, errCb)
			},
			wantMsg: "Error: cpu_cnt(0) <= 0",
		},
		{
			name: "NegativeCPUCount",
			run: func(errCb PermErrCallback[int]) bool {
				return ComputeAllPermShard(0, -2, 1, seq, nil, errCb)
			},
			wantMsg: "Error: cpu_cnt(-2) <= 0",
		},
		{
			name: "ZeroThreadCount",
			run: func(errCb PermErrCallback[int]) bool {
				return ComputeAllPerm(0, seq, nil, errCb)
			},
			wantMsg: "Error: thread_cnt(0) <= 0",
		},
		{
			name: "MoreCPUsThanWork",
			run: func(errCb PermErrCallback[int]) bool {
				return ComputeAllPermShard(0, 10, 1, seq, nil, errCb)
			},
			wantMsg: "Error: factorial(6) < cpu_cnt(10)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msgs []string
			errCb := func(threadIndex int, s []int, msg string) {
				assert.Equal(t, 0, threadIndex)
				msgs = append(msgs, msg)
			}

			ok := tt.run(errCb)
			assert.False(t, ok)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.wantMsg, msgs[0])
		})
	}
}

func TestComputeAllPermWorkerPanic(t *testing.T) {
	t.Run("ErrorPanic", func(t *testing.T) {
		var msgs []string
		errCb := func(threadIndex int, seq []int, msg string) {
			msgs = append(msgs, msg)
		}
		cb := func(threadIndex int, seq []int) bool {
			panic(errors.New("callback exploded"))
		}

		ok := ComputeAllPerm(1, []int{1, 2, 3}, cb, errCb)
		assert.True(t, ok, "worker failure is not a planner failure")
		require.Len(t, msgs, 1)
		assert.Equal(t,
			"Exception thrown thrown in perm_loop:callback exploded, start index:0, end index:6, counting index:0",
			msgs[0])
	})

	t.Run("UnknownPanic", func(t *testing.T) {
		var msgs []string
		errCb := func(threadIndex int, seq []int, msg string) {
			msgs = append(msgs, msg)
		}
		calls := 0
		cb := func(threadIndex int, seq []int) bool {
			calls++
			if calls == 3 {
				panic(struct{ code int }{42})
			}
			return true
		}

		ok := ComputeAllPerm(1, []int{1, 2, 3}, cb, errCb)
		assert.True(t, ok)
		require.Len(t, msgs, 1)
		assert.Equal(t,
			"Unknown exception thrown in perm_loop:, start index:0, end index:6, counting index:2",
			msgs[0])
	})

	t.Run("SiblingsContinueAfterPanic", func(t *testing.T) {
		c := newPermCollector(2)
		var msgs []string
		errCb := func(threadIndex int, seq []int, msg string) {
			assert.Equal(t, 1, threadIndex)
			msgs = append(msgs, msg)
		}
		cb := func(threadIndex int, seq []int) bool {
			if threadIndex == 1 {
				panic("shard one is unwell")
			}
			return c.callback(threadIndex, seq)
		}

		ok := ComputeAllPerm(2, []int{1, 2, 3, 4}, cb, errCb)
		assert.True(t, ok)
		require.Len(t, msgs, 1)
		assert.Equal(t,
			"Exception thrown thrown in perm_loop:shard one is unwell, start index:12, end index:24, counting index:12",
			msgs[0])
		assert.Len(t, c.byThread[0], 12)
	})
}

func TestComputeAllCombSingleThreadOrder(t *testing.T) {
	c := newCombCollector(1)
	errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
		t.Errorf("unexpected error callback: %s", msg)
	}

	ok := ComputeAllComb(1, 2, []string{"a", "b", "c", "d"}, c.callback, errCb)
	require.True(t, ok)

	want := [][]string{
		{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "c"}, {"b", "d"}, {"c", "d"},
	}
	assert.Equal(t, want, c.byThread[0])
}

func TestComputeAllCombThreeThreadsCoverage(t *testing.T) {
	c := newCombCollector(3)
	errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
		t.Errorf("unexpected error callback: %s", msg)
	}

	ok := ComputeAllComb(3, 3, []string{"1", "2", "3", "4", "5"}, c.callback, errCb)
	require.True(t, ok)

	merged := c.merged()
	require.Len(t, merged, 10)
	sortLex(merged)

	assert.Equal(t, [][]string{
		{"1", "2", "3"}, {"1", "2", "4"}, {"1", "2", "5"},
		{"1", "3", "4"}, {"1", "3", "5"}, {"1", "4", "5"},
		{"2", "3", "4"}, {"2", "3", "5"}, {"2", "4", "5"},
		{"3", "4", "5"},
	}, merged)
}

func TestComputeAllCombCallbackReceivesFullSize(t *testing.T) {
	errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
		t.Errorf("unexpected error callback: %s", msg)
	}

	ok := ComputeAllComb(2, 2, []string{"a", "b", "c", "d"}, func(threadIndex int, fullSize int, sub []string) bool {
		assert.Equal(t, 4, fullSize)
		assert.Len(t, sub, 2)
		return true
	}, errCb)
	require.True(t, ok)
}

func TestComputeAllCombValidation(t *testing.T) {
	seq := []string{"a", "b", "c"}

	tests := []struct {
		name    string
		run     func(errCb CombErrCallback[string]) bool
		wantMsg string
	}{
		{
			name: "ZeroSubset",
			run: func(errCb CombErrCallback[string]) bool {
				return ComputeAllComb(1, 0, seq, nil, errCb)
			},
			wantMsg: "Error: subset(0) <= 0",
		},
		{
			name: "SubsetLargerThanSet",
			run: func(errCb CombErrCallback[string]) bool {
				return ComputeAllComb(1, 4, seq, nil, errCb)
			},
			wantMsg: "Error: compute_total_comb() return false",
		},
		{
			name: "MoreCPUsThanWork",
			run: func(errCb CombErrCallback[string]) bool {
				return ComputeAllCombShard(0, 7, 1, 2, seq, nil, errCb)
			},
			wantMsg: "Error: total_comb(3) < cpu_cnt(7)",
		},
		{
			name: "ZeroThreadCount",
			run: func(errCb CombErrCallback[string]) bool {
				return ComputeAllComb(0, 2, seq, nil, errCb)
			},
			wantMsg: "Error: thread_cnt(0) <= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msgs []string
			errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
				assert.Equal(t, 0, threadIndex)
				assert.Equal(t, len(seq), fullSize)
				msgs = append(msgs, msg)
			}

			ok := tt.run(errCb)
			assert.False(t, ok)
			require.Len(t, msgs, 1)
			assert.Equal(t, tt.wantMsg, msgs[0])
		})
	}
}

func TestComputeAllCombWorkerPanicDiagnostic(t *testing.T) {
	var msgs []string
	errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
		msgs = append(msgs, msg)
	}
	cb := func(threadIndex int, fullSize int, sub []string) bool {
		panic(errors.New("bad subset"))
	}

	ok := ComputeAllComb(1, 2, []string{"a", "b", "c", "d"}, cb, errCb)
	assert.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t,
		"Exception thrown thrown in comb_loop:bad subset, start index:0, end index:6, counting index:0",
		msgs[0])
}

func TestComputeAllCombShardUnion(t *testing.T) {
	single := newCombCollector(1)
	errCb := func(threadIndex int, fullSize int, sub []string, msg string) {
		t.Errorf("unexpected error callback: %s", msg)
	}
	require.True(t, ComputeAllComb(1, 3, []string{"a", "b", "c", "d", "e", "f"}, single.callback, errCb))

	var merged [][]string
	for cpuIndex := 0; cpuIndex < 4; cpuIndex++ {
		c := newCombCollector(2)
		ok := ComputeAllCombShard(cpuIndex, 4, 2, 3, []string{"a", "b", "c", "d", "e", "f"}, c.callback, errCb)
		require.True(t, ok)
		merged = append(merged, c.merged()...)
	}

	require.Len(t, merged, 20)
	sortLex(merged)
	assert.Equal(t, single.byThread[0], merged)
}

func TestFindPermByIdx(t *testing.T) {
	seq := []int{10, 20, 30}

	assert.Equal(t, []int{10, 20, 30}, FindPermByIdx(big.NewInt(0), seq))
	assert.Equal(t, []int{30, 20, 10}, FindPermByIdx(big.NewInt(5), seq))
	assert.Nil(t, FindPermByIdx(big.NewInt(0), []int{}))
}

func TestFindPermByIdxAgreesWithSuccessor(t *testing.T) {
	// Unranking rank i must match applying the successor i times from the
	// first permutation.
	walked := []int{0, 1, 2, 3}
	for i := int64(0); i < 24; i++ {
		found := FindPermByIdx(big.NewInt(i), []int{0, 1, 2, 3})
		require.Equal(t, walked, found, "rank %d", i)
		lexorder.NextPermutation(walked)
	}
}

func TestFindCombByIdx(t *testing.T) {
	seq := []string{"a", "b", "c", "d"}

	t.Run("KnownRanks", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, FindCombByIdx(2, big.NewInt(0), seq))
		assert.Equal(t, []string{"a", "d"}, FindCombByIdx(2, big.NewInt(2), seq))
		assert.Equal(t, []string{"c", "d"}, FindCombByIdx(2, big.NewInt(5), seq))
	})

	t.Run("OutOfRangeRank", func(t *testing.T) {
		assert.Nil(t, FindCombByIdx(2, big.NewInt(6), seq))
		assert.Nil(t, FindCombByIdx(2, big.NewInt(-1), seq))
	})

	t.Run("ImpossibleSubset", func(t *testing.T) {
		assert.Nil(t, FindCombByIdx(5, big.NewInt(0), seq))
		assert.Nil(t, FindCombByIdx(0, big.NewInt(0), seq))
	})

	t.Run("AgreesWithSuccessor", func(t *testing.T) {
		full := []string{"a", "b", "c", "d", "e"}
		walked := []string{"a", "b", "c"}
		for i := int64(0); i < 10; i++ {
			require.Equal(t, walked, FindCombByIdx(3, big.NewInt(i), full), "rank %d", i)
			lexorder.NextCombination(full, walked)
		}
	})
}

func TestFindCombStateByIdx(t *testing.T) {
	seq := []string{"a", "b", "c", "d"}

	assert.Equal(t, []int{0, 2}, FindCombStateByIdx(2, big.NewInt(1), seq))
	assert.Nil(t, FindCombStateByIdx(9, big.NewInt(0), seq))
	assert.Nil(t, FindCombStateByIdx(2, big.NewInt(100), seq))
}

func TestCounterFor(t *testing.T) {
	assert.Equal(t, counterInt32, counterFor(big.NewInt(1000)))
	assert.Equal(t, counterInt32, counterFor(big.NewInt(1<<31-1)))
	assert.Equal(t, counterInt64, counterFor(big.NewInt(1<<31)))
	assert.Equal(t, counterInt64, counterFor(new(big.Int).SetInt64(1<<62)))

	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	assert.Equal(t, counterBig, counterFor(huge))
}

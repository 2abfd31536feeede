package enumerate

import (
	"fmt"
	"math/big"
	"sync"
)

// shardPlan is one process's slice of the enumeration space, split into
// per-thread ranges. All arithmetic is exact big-integer arithmetic; totals
// routinely exceed 64 bits.
type shardPlan struct {
	threadCnt int
	offset    *big.Int // first index owned by this process
	perThread *big.Int // slice length per thread before remainder absorption
	remainder *big.Int // absorbed by the last thread
}

// planShard partitions [0, total) across cpuCnt processes and this process's
// share across threadCnt threads. The last process absorbs the CPU-level
// remainder and the last thread the thread-level remainder, so the union of
// all ranges over all processes covers the space exactly once.
//
// totalLabel names the total in validation messages ("factorial" for
// permutation runs, "total_comb" for combination runs). A non-empty errMsg
// return means the plan is unusable and the message must reach the caller's
// error callback.
func planShard(cpuIndex, cpuCnt, threadCnt int, total *big.Int, totalLabel string) (shardPlan, string) {
	if total.Cmp(big.NewInt(int64(cpuCnt))) < 0 {
		return shardPlan{}, fmt.Sprintf("Error: %s(%s) < cpu_cnt(%d)", totalLabel, total.String(), cpuCnt)
	}

	bigCPUCnt := big.NewInt(int64(cpuCnt))
	eachCPU := new(big.Int)
	cpuRem := new(big.Int)
	eachCPU.QuoRem(total, bigCPUCnt, cpuRem)

	offset := new(big.Int).Mul(big.NewInt(int64(cpuIndex)), eachCPU)
	if cpuIndex == cpuCnt-1 && cpuRem.Sign() > 0 {
		eachCPU.Add(eachCPU, cpuRem)
	}

	if eachCPU.Sign() <= 0 {
		return shardPlan{}, fmt.Sprintf("Error: each_cpu_elem_cnt(%s) <= 0", eachCPU.String())
	}

	// Not enough work to give every thread a non-empty range: run single
	// threaded rather than spawning workers over empty slices.
	if eachCPU.Cmp(big.NewInt(int64(threadCnt))) < 0 {
		threadCnt = 1
	}

	bigThreadCnt := big.NewInt(int64(threadCnt))
	perThread := new(big.Int)
	remainder := new(big.Int)
	perThread.QuoRem(eachCPU, bigThreadCnt, remainder)

	return shardPlan{
		threadCnt: threadCnt,
		offset:    offset,
		perThread: perThread,
		remainder: remainder,
	}, ""
}

// run spawns threadCnt-1 worker goroutines for thread indices 1..threadCnt-1,
// executes thread 0 on the calling goroutine, and joins everything before
// returning. Each worker owns its [start, end) pair by value.
func (p shardPlan) run(worker func(threadIndex int, start, end *big.Int)) {
	var wg sync.WaitGroup

	for i := 1; i < p.threadCnt; i++ {
		bulk := new(big.Int).Set(p.perThread)
		if i == p.threadCnt-1 && p.remainder.Sign() > 0 {
			bulk.Add(bulk, p.remainder)
		}

		start := new(big.Int).Mul(big.NewInt(int64(i)), p.perThread)
		start.Add(start, p.offset)
		end := new(big.Int).Add(start, bulk)

		wg.Add(1)
		go func(threadIndex int, start, end *big.Int) {
			defer wg.Done()
			worker(threadIndex, start, end)
		}(i, start, end)
	}

	start := new(big.Int).Set(p.offset)
	end := new(big.Int).Add(start, p.perThread)
	worker(0, start, end)

	wg.Wait()
}

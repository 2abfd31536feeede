package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/permcomb/internal/repository"
	"github.com/permcomb/internal/runner"
	"github.com/permcomb/internal/storage"
	"github.com/permcomb/pkg/model"
)

// Shared flags for the perm and comb commands.
var (
	elementsFlag string
	threadCnt    int
	cpuIndex     int
	cpuCnt       int
	runUUID      string
	printSeqs    bool
	noStore      bool
	keepOrder    bool
)

// addRunFlags registers the flags shared by perm and comb.
func addRunFlags(c *cobra.Command) {
	c.Flags().StringVarP(&elementsFlag, "elements", "e", "", "Comma-separated elements to enumerate (required)")
	c.MarkFlagRequired("elements")

	c.Flags().IntVarP(&threadCnt, "threads", "t", 0, "Worker thread count (default from config)")
	c.Flags().IntVar(&cpuIndex, "cpu-index", -1, "This process's shard index (default from config)")
	c.Flags().IntVar(&cpuCnt, "cpu-cnt", 0, "Total shard count across processes (default from config)")
	c.Flags().StringVar(&runUUID, "uuid", "", "Run UUID shared by all shards (auto-generated if empty)")
	c.Flags().BoolVar(&printSeqs, "print", false, "Log every emitted sequence")
	c.Flags().BoolVar(&noStore, "no-store", false, "Skip artifact storage and database bookkeeping")
	c.Flags().BoolVar(&keepOrder, "keep-order", false, "Enumerate elements as given instead of sorting them first")
}

// parseElements splits and normalizes the element list. Elements are sorted
// unless --keep-order is set: enumeration covers the whole space only when
// it starts from the ascending arrangement.
func parseElements(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	elements := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		elements = append(elements, p)
	}

	if len(elements) == 0 {
		return nil, fmt.Errorf("no elements given")
	}

	if !keepOrder {
		sort.Strings(elements)
	}
	return elements, nil
}

// buildRunRequest merges flags with config defaults.
func buildRunRequest(kind model.RunKind, elements []string, subset int) *model.RunRequest {
	req := &model.RunRequest{
		RunUUID:    runUUID,
		Kind:       kind,
		Elements:   elements,
		SubsetSize: subset,
		CPUIndex:   cpuIndex,
		CPUCount:   cpuCnt,
		ThreadCnt:  threadCnt,
		Print:      printSeqs,
	}

	enumCfg := GetConfig().Enumerate
	if req.ThreadCnt == 0 {
		req.ThreadCnt = enumCfg.ThreadCnt
	}
	if req.CPUIndex < 0 {
		req.CPUIndex = enumCfg.CPUIndex
	}
	if req.CPUCount == 0 {
		req.CPUCount = enumCfg.CPUCount
	}

	return req
}

// buildRunner wires the runner with the configured backends. With
// --no-store both backends stay nil and the cleanup is a no-op.
func buildRunner() (*runner.Runner, func(), error) {
	log := GetLogger()

	if noStore {
		return runner.New(log, nil, nil), func() {}, nil
	}

	cleanup := func() {}

	var repo repository.RunRepository
	if dbCfg := GetConfig().Database; dbCfg.Enabled() {
		db, err := repository.NewGormDB(&dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect bookkeeping database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			return nil, nil, err
		}
		repo = repos.Run
		cleanup = func() {
			if err := repos.Close(); err != nil {
				log.Warn("failed to close database: %v", err)
			}
		}
	}

	store, err := storage.NewStorage(&GetConfig().Storage)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return runner.New(log, repo, store), cleanup, nil
}

// reportResult logs the outcome of a run.
func reportResult(result *model.RunResult) {
	log := GetLogger()

	log.Info("run %s: emitted %d of %s (%s)", result.RunUUID, result.Emitted, result.Total, result.Kind)
	for i, count := range result.PerThread {
		log.Debug("thread %d emitted %d", i, count)
	}
	if result.ResultKey != "" {
		log.Info("artifact stored at %s", result.ResultKey)
	}
	for _, msg := range result.Errors {
		log.Error("%s", msg)
	}
}

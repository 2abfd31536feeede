// Package runner executes one shard run end to end: it plans and drives the
// enumeration, collects per-thread output, records bookkeeping in the
// repository, and uploads the artifact to storage. Repository and storage
// are both optional; without them a run is purely in-memory.
package runner

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/permcomb/internal/repository"
	"github.com/permcomb/internal/storage"
	"github.com/permcomb/pkg/combin"
	"github.com/permcomb/pkg/enumerate"
	apperrors "github.com/permcomb/pkg/errors"
	"github.com/permcomb/pkg/model"
	"github.com/permcomb/pkg/utils"
	"github.com/permcomb/pkg/writer"
)

// Runner binds the enumeration core to bookkeeping and storage.
type Runner struct {
	logger utils.Logger
	repo   repository.RunRepository
	store  storage.Storage
	tracer trace.Tracer
}

// New creates a Runner. repo and store may be nil to disable bookkeeping
// and artifact upload respectively. A nil logger discards output.
func New(logger utils.Logger, repo repository.RunRepository, store storage.Storage) *Runner {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Runner{
		logger: logger,
		repo:   repo,
		store:  store,
		tracer: otel.Tracer("github.com/permcomb/internal/runner"),
	}
}

// Run executes one shard run. Validation failures return an error wrapping
// ErrPlanError; worker failures are best-effort and surface only in the
// result's Errors, matching the planner's contract that a successful
// dispatch-and-join is a successful run.
func (r *Runner) Run(ctx context.Context, req *model.RunRequest) (*model.RunResult, error) {
	if len(req.Elements) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "no elements to enumerate", nil)
	}
	if req.RunUUID == "" {
		req.RunUUID = newRunUUID()
	}

	ctx, span := r.tracer.Start(ctx, "shard_run", trace.WithAttributes(
		attribute.String("run.uuid", req.RunUUID),
		attribute.String("run.kind", req.Kind.String()),
		attribute.Int("run.cpu_index", req.CPUIndex),
		attribute.Int("run.cpu_cnt", req.CPUCount),
		attribute.Int("run.thread_cnt", req.ThreadCnt),
	))
	defer span.End()

	timer := utils.NewTimer("shard-run", nil)
	log := r.logger.WithFields(map[string]interface{}{
		"run":       req.RunUUID,
		"kind":      req.Kind.String(),
		"cpu_index": req.CPUIndex,
	})

	total, err := r.totalFor(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	record := r.registerRun(ctx, req, total, log)

	log.Info("starting enumeration: n=%d k=%d total=%s threads=%d",
		len(req.Elements), req.SubsetSize, total, req.ThreadCnt)

	timer.StartPhase("enumerate")
	collector := newCollector(req.ThreadCnt)
	if req.Print {
		collector.echo = func(threadIndex int, seq []string) {
			log.Info("[thread %d] %s", threadIndex, strings.Join(seq, " "))
		}
	}
	planOK := r.enumerate(req, collector)
	timer.StopPhase("enumerate")

	result := &model.RunResult{
		RunUUID:   req.RunUUID,
		Kind:      req.Kind,
		Total:     total,
		Emitted:   collector.emitted(),
		PerThread: collector.perThread(),
		Errors:    collector.errors(),
		Elapsed:   timer.Total(),
	}

	if !planOK {
		span.SetStatus(codes.Error, "shard plan rejected")
		r.recordFailure(ctx, record, result, log)
		return result, apperrors.Wrap(apperrors.CodePlanError, strings.Join(result.Errors, "; "), nil)
	}

	timer.StartPhase("persist")
	if err := r.persistArtifacts(ctx, req, collector, result); err != nil {
		timer.StopPhase("persist")
		span.SetStatus(codes.Error, err.Error())
		r.recordFailure(ctx, record, result, log)
		return result, err
	}
	timer.StopPhase("persist")

	r.recordCompletion(ctx, record, result, log)

	result.Elapsed = timer.Total()
	span.SetAttributes(attribute.Int64("run.emitted", result.Emitted))
	timer.LogSummary(log)

	return result, nil
}

// totalFor computes the size of the enumeration space as a decimal string.
func (r *Runner) totalFor(req *model.RunRequest) (string, error) {
	n := len(req.Elements)

	if req.Kind == model.RunKindComb {
		total, ok := combin.Binomial(n, req.SubsetSize)
		if !ok {
			return "", apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("subset size %d exceeds set size %d", req.SubsetSize, n), nil)
		}
		return total.String(), nil
	}

	return combin.Factorial(n).String(), nil
}

// enumerate drives the actual shard enumeration. Returns the planner's
// verdict: false means validation rejected the run before any worker ran.
func (r *Runner) enumerate(req *model.RunRequest, c *collector) bool {
	if req.Kind == model.RunKindComb {
		return enumerate.ComputeAllCombShard(
			req.CPUIndex, req.CPUCount, req.ThreadCnt, req.SubsetSize, req.Elements,
			c.combCallback, c.combErrCallback)
	}

	return enumerate.ComputeAllPermShard(
		req.CPUIndex, req.CPUCount, req.ThreadCnt, req.Elements,
		c.permCallback, c.permErrCallback)
}

// registerRun creates the bookkeeping row and marks it running. Bookkeeping
// is best effort: a failure is logged and the run proceeds.
func (r *Runner) registerRun(ctx context.Context, req *model.RunRequest, total string, log utils.Logger) *model.ShardRun {
	if r.repo == nil {
		return nil
	}

	record := &model.ShardRun{
		RunUUID:    req.RunUUID,
		Kind:       req.Kind,
		SetSize:    len(req.Elements),
		SubsetSize: req.SubsetSize,
		CPUIndex:   req.CPUIndex,
		CPUCount:   req.CPUCount,
		ThreadCnt:  req.ThreadCnt,
		Total:      total,
		Status:     model.RunStatusPending,
	}

	if err := r.repo.CreateShardRun(ctx, record); err != nil {
		log.Warn("failed to register shard run: %v", err)
		return nil
	}
	if err := r.repo.UpdateStatus(ctx, record.ID, model.RunStatusRunning); err != nil {
		log.Warn("failed to mark shard run running: %v", err)
	}
	return record
}

// persistArtifacts uploads the sequence lines and the run summary.
func (r *Runner) persistArtifacts(ctx context.Context, req *model.RunRequest, c *collector, result *model.RunResult) error {
	if r.store == nil {
		return nil
	}

	artifactKey := storage.ShardArtifactKey(req.RunUUID, req.CPUIndex)
	summaryKey := storage.RunSummaryKey(req.RunUUID, req.CPUIndex)

	summary := new(bytes.Buffer)
	if err := writer.NewJSONWriter[*model.RunResult]().Write(result, summary); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "encode run summary", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.store.Upload(ctx, artifactKey, c.artifact())
	})
	g.Go(func() error {
		return r.store.Upload(ctx, summaryKey, summary)
	})
	if err := g.Wait(); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageError, "upload shard artifacts", err)
	}

	result.ResultKey = artifactKey
	return nil
}

func (r *Runner) recordCompletion(ctx context.Context, record *model.ShardRun, result *model.RunResult, log utils.Logger) {
	if r.repo == nil || record == nil {
		return
	}

	if result.Failed() {
		info := strings.Join(result.Errors, "; ")
		if err := r.repo.UpdateStatusWithInfo(ctx, record.ID, model.RunStatusFailed, info); err != nil {
			log.Warn("failed to record worker failures: %v", err)
		}
		return
	}

	if err := r.repo.CompleteShardRun(ctx, record.ID, result.Emitted, result.ResultKey); err != nil {
		log.Warn("failed to record completion: %v", err)
	}
}

func (r *Runner) recordFailure(ctx context.Context, record *model.ShardRun, result *model.RunResult, log utils.Logger) {
	if r.repo == nil || record == nil {
		return
	}

	info := strings.Join(result.Errors, "; ")
	if err := r.repo.UpdateStatusWithInfo(ctx, record.ID, model.RunStatusFailed, info); err != nil {
		log.Warn("failed to record failure: %v", err)
	}
}

// newRunUUID returns a random run identifier.
func newRunUUID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// collector gathers per-thread output. Each worker writes only to its own
// slot; the error list is the one shared structure and takes a mutex, since
// failure diagnostics can arrive from any worker.
type collector struct {
	buffers []*bytes.Buffer
	writers []*writer.LineWriter[[]string]

	// echo, when set, mirrors every sequence to the logger.
	echo func(threadIndex int, seq []string)

	mu   sync.Mutex
	errs []string
}

func newCollector(threadCnt int) *collector {
	if threadCnt < 0 {
		threadCnt = 0
	}
	c := &collector{
		buffers: make([]*bytes.Buffer, threadCnt),
		writers: make([]*writer.LineWriter[[]string], threadCnt),
	}
	for i := 0; i < threadCnt; i++ {
		c.buffers[i] = new(bytes.Buffer)
		c.writers[i] = writer.NewLineWriter[[]string](c.buffers[i])
	}
	return c
}

func (c *collector) permCallback(threadIndex int, seq []string) bool {
	if c.echo != nil {
		c.echo(threadIndex, seq)
	}
	return c.writers[threadIndex].WriteLine(seq) == nil
}

func (c *collector) permErrCallback(threadIndex int, seq []string, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, msg)
}

func (c *collector) combCallback(threadIndex int, fullSize int, sub []string) bool {
	if c.echo != nil {
		c.echo(threadIndex, sub)
	}
	return c.writers[threadIndex].WriteLine(sub) == nil
}

func (c *collector) combErrCallback(threadIndex int, fullSize int, sub []string, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, msg)
}

func (c *collector) emitted() int64 {
	var total int64
	for _, w := range c.writers {
		total += w.Lines()
	}
	return total
}

func (c *collector) perThread() []int64 {
	counts := make([]int64, len(c.writers))
	for i, w := range c.writers {
		counts[i] = w.Lines()
	}
	return counts
}

func (c *collector) errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errs...)
}

// artifact concatenates the per-thread buffers in thread order. Within a
// thread the lines are in lexicographic order; thread ranges are contiguous
// and ascending, so the concatenation is the shard's slice in order.
func (c *collector) artifact() *bytes.Buffer {
	out := new(bytes.Buffer)
	for _, buf := range c.buffers {
		out.Write(buf.Bytes())
	}
	return out
}

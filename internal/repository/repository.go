// Package repository provides database persistence for shard-run
// bookkeeping. One row per (run UUID, cpu index) records how far a process's
// slice of the enumeration got and where its artifact went.
package repository

import (
	"context"

	"github.com/permcomb/pkg/model"
)

// RunRepository defines the interface for shard-run operations.
type RunRepository interface {
	// CreateShardRun registers a new shard run. The run's ID is filled in
	// on return.
	CreateShardRun(ctx context.Context, run *model.ShardRun) error

	// GetShardRun retrieves one shard of a run.
	GetShardRun(ctx context.Context, runUUID string, cpuIndex int) (*model.ShardRun, error)

	// ListShardRuns retrieves all shards of a run, ordered by cpu index.
	ListShardRuns(ctx context.Context, runUUID string) ([]*model.ShardRun, error)

	// UpdateStatus updates the lifecycle status of a shard run.
	UpdateStatus(ctx context.Context, id int64, status model.RunStatus) error

	// UpdateStatusWithInfo updates the status and attaches diagnostic info
	// (validation messages, worker failure diagnostics).
	UpdateStatusWithInfo(ctx context.Context, id int64, status model.RunStatus, info string) error

	// CompleteShardRun marks a shard run completed with its emitted count
	// and the storage key of its artifact.
	CompleteShardRun(ctx context.Context, id int64, emitted int64, resultKey string) error

	// ListIncomplete returns shard runs that are still pending or running,
	// newest first.
	ListIncomplete(ctx context.Context, limit int) ([]*model.ShardRun, error)
}

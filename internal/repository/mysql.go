package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/permcomb/pkg/model"
)

// MySQLRunRepository implements RunRepository with hand-written SQL over a
// plain *sql.DB, for deployments that bypass GORM.
type MySQLRunRepository struct {
	db *sql.DB
}

// NewMySQLRunRepository creates a new MySQLRunRepository.
func NewMySQLRunRepository(db *sql.DB) *MySQLRunRepository {
	return &MySQLRunRepository{db: db}
}

const shardRunColumns = `id, run_uuid, kind, set_size, subset_size, cpu_index, cpu_cnt,
thread_cnt, total, emitted, status, status_info, result_key, create_time, begin_time, end_time`

// CreateShardRun registers a new shard run.
func (r *MySQLRunRepository) CreateShardRun(ctx context.Context, run *model.ShardRun) error {
	query := `INSERT INTO enum_shard_runs
(run_uuid, kind, set_size, subset_size, cpu_index, cpu_cnt, thread_cnt, total, emitted, status, status_info, result_key, create_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		run.RunUUID, run.Kind, run.SetSize, run.SubsetSize, run.CPUIndex, run.CPUCount,
		run.ThreadCnt, run.Total, run.Emitted, run.Status, run.StatusInfo, run.ResultKey, now)
	if err != nil {
		return fmt.Errorf("failed to create shard run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}

	run.ID = id
	run.CreateTime = now
	return nil
}

// GetShardRun retrieves one shard of a run.
func (r *MySQLRunRepository) GetShardRun(ctx context.Context, runUUID string, cpuIndex int) (*model.ShardRun, error) {
	query := `SELECT ` + shardRunColumns + ` FROM enum_shard_runs WHERE run_uuid = ? AND cpu_index = ?`

	run, err := scanShardRun(r.db.QueryRowContext(ctx, query, runUUID, cpuIndex))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("shard run not found: %s[%d]", runUUID, cpuIndex)
		}
		return nil, fmt.Errorf("failed to get shard run: %w", err)
	}
	return run, nil
}

// ListShardRuns retrieves all shards of a run, ordered by cpu index.
func (r *MySQLRunRepository) ListShardRuns(ctx context.Context, runUUID string) ([]*model.ShardRun, error) {
	query := `SELECT ` + shardRunColumns + ` FROM enum_shard_runs WHERE run_uuid = ? ORDER BY cpu_index ASC`

	rows, err := r.db.QueryContext(ctx, query, runUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shard runs: %w", err)
	}
	defer rows.Close()

	return collectShardRuns(rows)
}

// UpdateStatus updates the lifecycle status of a shard run.
func (r *MySQLRunRepository) UpdateStatus(ctx context.Context, id int64, status model.RunStatus) error {
	var query string
	switch status {
	case model.RunStatusRunning:
		query = `UPDATE enum_shard_runs SET status = ?, begin_time = NOW() WHERE id = ?`
	case model.RunStatusCompleted, model.RunStatusFailed:
		query = `UPDATE enum_shard_runs SET status = ?, end_time = NOW() WHERE id = ?`
	default:
		query = `UPDATE enum_shard_runs SET status = ? WHERE id = ?`
	}

	return r.exec(ctx, query, status, id)
}

// UpdateStatusWithInfo updates the status and attaches diagnostic info.
func (r *MySQLRunRepository) UpdateStatusWithInfo(ctx context.Context, id int64, status model.RunStatus, info string) error {
	if status == model.RunStatusCompleted || status == model.RunStatusFailed {
		query := `UPDATE enum_shard_runs SET status = ?, status_info = ?, end_time = NOW() WHERE id = ?`
		return r.exec(ctx, query, status, info, id)
	}

	query := `UPDATE enum_shard_runs SET status = ?, status_info = ? WHERE id = ?`
	return r.exec(ctx, query, status, info, id)
}

// CompleteShardRun marks a shard run completed.
func (r *MySQLRunRepository) CompleteShardRun(ctx context.Context, id int64, emitted int64, resultKey string) error {
	query := `UPDATE enum_shard_runs SET status = ?, emitted = ?, result_key = ?, end_time = NOW() WHERE id = ?`
	return r.exec(ctx, query, model.RunStatusCompleted, emitted, resultKey, id)
}

// ListIncomplete returns shard runs that are still pending or running.
func (r *MySQLRunRepository) ListIncomplete(ctx context.Context, limit int) ([]*model.ShardRun, error) {
	query := `SELECT ` + shardRunColumns + ` FROM enum_shard_runs WHERE status IN (?, ?) ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, model.RunStatusPending, model.RunStatusRunning, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete shard runs: %w", err)
	}
	defer rows.Close()

	return collectShardRuns(rows)
}

func (r *MySQLRunRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update shard run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shard run not found")
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShardRun(row rowScanner) (*model.ShardRun, error) {
	var run model.ShardRun
	err := row.Scan(
		&run.ID, &run.RunUUID, &run.Kind, &run.SetSize, &run.SubsetSize,
		&run.CPUIndex, &run.CPUCount, &run.ThreadCnt, &run.Total, &run.Emitted,
		&run.Status, &run.StatusInfo, &run.ResultKey, &run.CreateTime,
		&run.BeginTime, &run.EndTime)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func collectShardRuns(rows *sql.Rows) ([]*model.ShardRun, error) {
	var runs []*model.ShardRun
	for rows.Next() {
		run, err := scanShardRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shard run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shard runs: %w", err)
	}
	return runs, nil
}

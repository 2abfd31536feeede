package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/permcomb/pkg/model"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// CreateShardRun registers a new shard run.
func (r *GormRunRepository) CreateShardRun(ctx context.Context, run *model.ShardRun) error {
	record := fromModel(run)
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create shard run: %w", err)
	}
	run.ID = record.ID
	run.CreateTime = record.CreateTime
	return nil
}

// GetShardRun retrieves one shard of a run.
func (r *GormRunRepository) GetShardRun(ctx context.Context, runUUID string, cpuIndex int) (*model.ShardRun, error) {
	var record EnumShardRun

	err := r.db.WithContext(ctx).
		Where("run_uuid = ? AND cpu_index = ?", runUUID, cpuIndex).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shard run not found: %s[%d]", runUUID, cpuIndex)
		}
		return nil, fmt.Errorf("failed to get shard run: %w", err)
	}

	return record.ToModel(), nil
}

// ListShardRuns retrieves all shards of a run, ordered by cpu index.
func (r *GormRunRepository) ListShardRuns(ctx context.Context, runUUID string) ([]*model.ShardRun, error) {
	var records []EnumShardRun

	err := r.db.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		Order("cpu_index ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shard runs: %w", err)
	}

	runs := make([]*model.ShardRun, len(records))
	for i, record := range records {
		runs[i] = record.ToModel()
	}
	return runs, nil
}

// UpdateStatus updates the lifecycle status of a shard run.
func (r *GormRunRepository) UpdateStatus(ctx context.Context, id int64, status model.RunStatus) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case model.RunStatusRunning:
		updates["begin_time"] = time.Now()
	case model.RunStatusCompleted, model.RunStatusFailed:
		updates["end_time"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&EnumShardRun{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shard run not found: %d", id)
	}
	return nil
}

// UpdateStatusWithInfo updates the status and attaches diagnostic info.
func (r *GormRunRepository) UpdateStatusWithInfo(ctx context.Context, id int64, status model.RunStatus, info string) error {
	updates := map[string]interface{}{
		"status":      status,
		"status_info": info,
	}
	if status == model.RunStatusCompleted || status == model.RunStatusFailed {
		updates["end_time"] = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&EnumShardRun{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update status with info: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shard run not found: %d", id)
	}
	return nil
}

// CompleteShardRun marks a shard run completed.
func (r *GormRunRepository) CompleteShardRun(ctx context.Context, id int64, emitted int64, resultKey string) error {
	result := r.db.WithContext(ctx).
		Model(&EnumShardRun{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.RunStatusCompleted,
			"emitted":    emitted,
			"result_key": resultKey,
			"end_time":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to complete shard run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shard run not found: %d", id)
	}
	return nil
}

// ListIncomplete returns shard runs that are still pending or running.
func (r *GormRunRepository) ListIncomplete(ctx context.Context, limit int) ([]*model.ShardRun, error) {
	var records []EnumShardRun

	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.RunStatus{model.RunStatusPending, model.RunStatusRunning}).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete shard runs: %w", err)
	}

	runs := make([]*model.ShardRun, len(records))
	for i, record := range records {
		runs[i] = record.ToModel()
	}
	return runs, nil
}

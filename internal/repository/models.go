package repository

import (
	"time"

	"github.com/permcomb/pkg/model"
)

// EnumShardRun represents the enum_shard_runs table. Total is a decimal
// string; permutation totals overflow BIGINT columns long before sequences
// get interesting.
type EnumShardRun struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string          `gorm:"column:run_uuid;type:varchar(64);uniqueIndex:idx_run_cpu"`
	Kind       model.RunKind   `gorm:"column:kind"`
	SetSize    int             `gorm:"column:set_size"`
	SubsetSize int             `gorm:"column:subset_size"`
	CPUIndex   int             `gorm:"column:cpu_index;uniqueIndex:idx_run_cpu"`
	CPUCount   int             `gorm:"column:cpu_cnt"`
	ThreadCnt  int             `gorm:"column:thread_cnt"`
	Total      string          `gorm:"column:total;type:varchar(128)"`
	Emitted    int64           `gorm:"column:emitted"`
	Status     model.RunStatus `gorm:"column:status;index"`
	StatusInfo string          `gorm:"column:status_info;type:text"`
	ResultKey  string          `gorm:"column:result_key;type:varchar(512)"`
	CreateTime time.Time       `gorm:"column:create_time;autoCreateTime"`
	BeginTime  *time.Time      `gorm:"column:begin_time"`
	EndTime    *time.Time      `gorm:"column:end_time"`
}

// TableName returns the table name for EnumShardRun.
func (EnumShardRun) TableName() string {
	return "enum_shard_runs"
}

// ToModel converts EnumShardRun to model.ShardRun.
func (r *EnumShardRun) ToModel() *model.ShardRun {
	return &model.ShardRun{
		ID:         r.ID,
		RunUUID:    r.RunUUID,
		Kind:       r.Kind,
		SetSize:    r.SetSize,
		SubsetSize: r.SubsetSize,
		CPUIndex:   r.CPUIndex,
		CPUCount:   r.CPUCount,
		ThreadCnt:  r.ThreadCnt,
		Total:      r.Total,
		Emitted:    r.Emitted,
		Status:     r.Status,
		StatusInfo: r.StatusInfo,
		ResultKey:  r.ResultKey,
		CreateTime: r.CreateTime,
		BeginTime:  r.BeginTime,
		EndTime:    r.EndTime,
	}
}

// fromModel converts model.ShardRun to its record form.
func fromModel(run *model.ShardRun) *EnumShardRun {
	return &EnumShardRun{
		ID:         run.ID,
		RunUUID:    run.RunUUID,
		Kind:       run.Kind,
		SetSize:    run.SetSize,
		SubsetSize: run.SubsetSize,
		CPUIndex:   run.CPUIndex,
		CPUCount:   run.CPUCount,
		ThreadCnt:  run.ThreadCnt,
		Total:      run.Total,
		Emitted:    run.Emitted,
		Status:     run.Status,
		StatusInfo: run.StatusInfo,
		ResultKey:  run.ResultKey,
		CreateTime: run.CreateTime,
		BeginTime:  run.BeginTime,
		EndTime:    run.EndTime,
	}
}

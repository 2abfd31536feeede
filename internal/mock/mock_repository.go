// Package mock provides testify mocks for the repository and storage
// interfaces.
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/permcomb/pkg/model"
)

// MockRunRepository is a mock implementation of repository.RunRepository.
type MockRunRepository struct {
	mock.Mock
}

// CreateShardRun mocks the CreateShardRun method.
func (m *MockRunRepository) CreateShardRun(ctx context.Context, run *model.ShardRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetShardRun mocks the GetShardRun method.
func (m *MockRunRepository) GetShardRun(ctx context.Context, runUUID string, cpuIndex int) (*model.ShardRun, error) {
	args := m.Called(ctx, runUUID, cpuIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShardRun), args.Error(1)
}

// ListShardRuns mocks the ListShardRuns method.
func (m *MockRunRepository) ListShardRuns(ctx context.Context, runUUID string) ([]*model.ShardRun, error) {
	args := m.Called(ctx, runUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ShardRun), args.Error(1)
}

// UpdateStatus mocks the UpdateStatus method.
func (m *MockRunRepository) UpdateStatus(ctx context.Context, id int64, status model.RunStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// UpdateStatusWithInfo mocks the UpdateStatusWithInfo method.
func (m *MockRunRepository) UpdateStatusWithInfo(ctx context.Context, id int64, status model.RunStatus, info string) error {
	args := m.Called(ctx, id, status, info)
	return args.Error(0)
}

// CompleteShardRun mocks the CompleteShardRun method.
func (m *MockRunRepository) CompleteShardRun(ctx context.Context, id int64, emitted int64, resultKey string) error {
	args := m.Called(ctx, id, emitted, resultKey)
	return args.Error(0)
}

// ListIncomplete mocks the ListIncomplete method.
func (m *MockRunRepository) ListIncomplete(ctx context.Context, limit int) ([]*model.ShardRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ShardRun), args.Error(1)
}

// ExpectCreateShardRun sets up an expectation for CreateShardRun.
func (m *MockRunRepository) ExpectCreateShardRun(err error) *mock.Call {
	return m.On("CreateShardRun", mock.Anything, mock.Anything).Return(err)
}

// ExpectUpdateStatus sets up an expectation for UpdateStatus.
func (m *MockRunRepository) ExpectUpdateStatus(status model.RunStatus, err error) *mock.Call {
	return m.On("UpdateStatus", mock.Anything, mock.Anything, status).Return(err)
}

// ExpectCompleteShardRun sets up an expectation for CompleteShardRun.
func (m *MockRunRepository) ExpectCompleteShardRun(err error) *mock.Call {
	return m.On("CompleteShardRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(err)
}

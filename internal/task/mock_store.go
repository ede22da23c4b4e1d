package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTaskStore implements the TaskStore interface for testing
type MockTaskStore struct {
	mutex           sync.RWMutex
	tasks           map[uuid.UUID]*MockTask
	taskStatusTimes map[uuid.UUID]time.Time
	SaveFn          func(ctx context.Context, t Task) error
	UpdateStatusFn  func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

// NewMockTaskStore creates a new MockTaskStore with default implementations
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		tasks:           make(map[uuid.UUID]*MockTask),
		taskStatusTimes: make(map[uuid.UUID]time.Time),
	}
}

// SaveTask persists a task to the mock store
func (s *MockTaskStore) SaveTask(ctx context.Context, t Task) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, t)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	mockTask, ok := t.(*MockTask)
	if !ok {
		mockTask = NewMockTask(t.ID(), t.Type(), t.Payload())
		mockTask.TaskStatus = t.Status()
	}

	s.tasks[t.ID()] = mockTask
	s.taskStatusTimes[t.ID()] = time.Now()
	return nil
}

// UpdateTaskStatus updates the status of a task in the mock store
func (s *MockTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, taskID, status, errorMsg)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	mockTask, exists := s.tasks[taskID]
	if !exists {
		return nil
	}

	mockTask.TaskStatus = status
	s.taskStatusTimes[taskID] = time.Now()
	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *MockTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var pendingTasks []Task
	for _, t := range s.tasks {
		if t.Status() == TaskStatusPending {
			pendingTasks = append(pendingTasks, t)
		}
	}

	return pendingTasks, nil
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *MockTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var processingTasks []Task
	now := time.Now()

	for _, t := range s.tasks {
		if t.Status() != TaskStatusProcessing {
			continue
		}
		statusTime, exists := s.taskStatusTimes[t.ID()]
		if olderThan == 0 || (exists && now.Sub(statusTime) > olderThan) {
			processingTasks = append(processingTasks, t)
		}
	}

	return processingTasks, nil
}

// TaskStatusOf reports the stored status for a task ID.
func (s *MockTaskStore) TaskStatusOf(taskID uuid.UUID) (TaskStatus, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	t, exists := s.tasks[taskID]
	if !exists {
		return "", false
	}
	return t.Status(), true
}

// WithTx implements TaskStore.WithTx for the mock store
// In the mock implementation, we just return the same store instance
func (s *MockTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

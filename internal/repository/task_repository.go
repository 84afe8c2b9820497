package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// TaskRepository handles CRUD for tasks. Create is a single atomic
// insert, so a materialized recurring instance never appears partially
// written.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByUser returns the full task snapshot for a user, the input to
// every analytics pass.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("due_date ASC, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListPending returns not-yet-completed tasks ordered by due date.
func (r *TaskRepository) ListPending(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_completed = ?", userID, false).
		Order("due_date ASC, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// MarkCompleted flags the task done and stamps its completion time.
func (r *TaskRepository) MarkCompleted(ctx context.Context, task *model.Task, completedAt time.Time) error {
	task.IsCompleted = true
	task.CompletionDate = &completedAt
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return nil
}

// Reopen clears completion; the completion date goes with it.
func (r *TaskRepository) Reopen(ctx context.Context, task *model.Task) error {
	task.IsCompleted = false
	task.CompletionDate = nil
	if err := r.db.WithContext(ctx).Model(task).
		Select("is_completed", "completion_date").
		Updates(map[string]interface{}{"is_completed": false, "completion_date": nil}).Error; err != nil {
		return fmt.Errorf("reopen task: %w", err)
	}
	return nil
}

// MarkSuccessorCreated records that the task's next chain instance
// has been materialized.
func (r *TaskRepository) MarkSuccessorCreated(ctx context.Context, task *model.Task) error {
	task.SuccessorCreated = true
	if err := r.db.WithContext(ctx).Model(task).
		Update("successor_created", true).Error; err != nil {
		return fmt.Errorf("mark successor created: %w", err)
	}
	return nil
}

// ClearRecurrence detaches the rule from the task in place.
func (r *TaskRepository) ClearRecurrence(ctx context.Context, task *model.Task) error {
	task.SetRecurrence(nil)
	if err := r.db.WithContext(ctx).Model(task).
		Select("recur_frequency", "recur_end_date").
		Updates(map[string]interface{}{"recur_frequency": "", "recur_end_date": nil}).Error; err != nil {
		return fmt.Errorf("clear recurrence: %w", err)
	}
	return nil
}

// Delete removes a task for the given user, recurring or not.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

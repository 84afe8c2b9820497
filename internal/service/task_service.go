package service

import (
	"context"
	"fmt"
	"time"

	"focus-planner/internal/model"
	"focus-planner/internal/parse"
	"focus-planner/internal/recur"
	"focus-planner/internal/repository"
)

// TaskService wraps task-related business logic: free-text creation,
// completion toggling and recurrence-chain operations.
type TaskService struct {
	taskRepo *repository.TaskRepository
	parser   *parse.Parser
	recur    *recur.Engine
}

func NewTaskService(taskRepo *repository.TaskRepository, parser *parse.Parser, engine *recur.Engine) *TaskService {
	return &TaskService{taskRepo: taskRepo, parser: parser, recur: engine}
}

// CreateFromText parses a single line of free text into a task and
// inserts it. A recognized date phrase becomes the due date (now when
// absent); a recognized recurrence phrase attaches a rule and, per the
// engine's policy, eagerly materializes the next instance.
func (s *TaskService) CreateFromText(ctx context.Context, user *model.User, text string, now time.Time) (*model.Task, error) {
	parsed := s.parser.Parse(text, now)
	if parsed.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	dueDate := now
	if parsed.DueDate != nil {
		dueDate = *parsed.DueDate
	}

	task := model.Task{
		UserID:   user.ID,
		Title:    parsed.Title,
		DueDate:  dueDate,
		Priority: parsed.Priority,
	}
	task.SetRecurrence(parsed.Recurrence)

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	if _, err := s.recur.OnCreated(ctx, &task); err != nil {
		return nil, fmt.Errorf("materialize next: %w", err)
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, user.ID)
}

func (s *TaskService) ListPending(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListPending(ctx, user.ID)
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

// CompleteTask marks a task done, stamping its completion time. For a
// recurring task the engine then materializes the next instance when
// its policy says so.
func (s *TaskService) CompleteTask(ctx context.Context, user *model.User, taskID uint, completedAt time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted {
		return task, nil
	}

	if err := s.taskRepo.MarkCompleted(ctx, task, completedAt); err != nil {
		return nil, err
	}
	if _, err := s.recur.OnCompleted(ctx, task); err != nil {
		return nil, fmt.Errorf("materialize next: %w", err)
	}
	return task, nil
}

// ReopenTask clears completion, which also clears the completion date.
func (s *TaskService) ReopenTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Reopen(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SkipNext jumps the chain one occurrence ahead: a new task at the
// next occurrence date, rule detached, original untouched.
func (s *TaskService) SkipNext(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	skipped, err := s.recur.SkipNext(ctx, task)
	if err != nil {
		return nil, err
	}
	if skipped == nil {
		return nil, fmt.Errorf("task %d does not recur", taskID)
	}
	return skipped, nil
}

// StopRecurrence detaches the rule from the task in place.
func (s *TaskService) StopRecurrence(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.recur.StopRecurrence(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task completely (one-time or recurring).
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}

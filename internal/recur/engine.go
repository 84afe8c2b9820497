package recur

import (
	"context"
	"time"

	"focus-planner/internal/model"
)

// Store is the slice of the task store the engine needs: one atomic
// insert for materialized instances and an in-place rule detach.
type Store interface {
	Create(ctx context.Context, task *model.Task) error
	MarkSuccessorCreated(ctx context.Context, task *model.Task) error
	ClearRecurrence(ctx context.Context, task *model.Task) error
}

// TriggerPolicy decides when a recurring task materializes its next
// instance. OnCreate keeps the chain one step ahead from the moment a
// recurring task is created; OnComplete re-materializes when an
// instance is completed. Skipping always produces its rule-detached
// successor; that is the skip operation itself, not a policy choice.
type TriggerPolicy struct {
	OnCreate   bool
	OnComplete bool
}

// DefaultPolicy materializes both at creation and on completion.
func DefaultPolicy() TriggerPolicy {
	return TriggerPolicy{OnCreate: true, OnComplete: true}
}

// Engine materializes recurring task instances into the store.
type Engine struct {
	store  Store
	policy TriggerPolicy
}

func NewEngine(store Store, policy TriggerPolicy) *Engine {
	return &Engine{store: store, policy: policy}
}

// NextOccurrence adds exactly one calendar unit to due. Monthly and
// yearly steps clamp the day-of-month, so Jan 31 plus one month lands
// on the last day of February. Total: every date has a successor for
// all four frequencies.
func NextOccurrence(due time.Time, freq model.Frequency) time.Time {
	switch freq {
	case model.Daily:
		return due.AddDate(0, 0, 1)
	case model.Weekly:
		return due.AddDate(0, 0, 7)
	case model.Monthly:
		return addMonthsClamped(due, 1)
	case model.Yearly:
		return addMonthsClamped(due, 12)
	default:
		return due
	}
}

// MaterializeNext creates exactly one sibling of a recurring task: same
// title, notes and priority, its own copy of the rule, due at the next
// occurrence, not completed. Returns nil without error when the task
// has no rule or the rule's end date is already behind the next
// occurrence. Only one step ahead is ever created.
func (e *Engine) MaterializeNext(ctx context.Context, task *model.Task) (*model.Task, error) {
	rule := task.Recurrence()
	if rule == nil {
		return nil, nil
	}
	due := NextOccurrence(task.DueDate, rule.Frequency)
	if rule.EndDate != nil && due.After(*rule.EndDate) {
		return nil, nil
	}

	next := &model.Task{
		UserID:   task.UserID,
		Title:    task.Title,
		Notes:    task.Notes,
		Priority: task.Priority,
		DueDate:  due,
	}
	next.SetRecurrence(rule)
	if err := e.store.Create(ctx, next); err != nil {
		return nil, err
	}
	if err := e.store.MarkSuccessorCreated(ctx, task); err != nil {
		return nil, err
	}
	return next, nil
}

// OnCreated runs the creation trigger for a freshly inserted task.
func (e *Engine) OnCreated(ctx context.Context, task *model.Task) (*model.Task, error) {
	if !e.policy.OnCreate || !task.IsRecurring() || task.SuccessorCreated {
		return nil, nil
	}
	return e.MaterializeNext(ctx, task)
}

// OnCompleted runs the completion trigger for a just-completed task.
// A no-op when the creation trigger already filled the next slot.
func (e *Engine) OnCompleted(ctx context.Context, task *model.Task) (*model.Task, error) {
	if !e.policy.OnComplete || !task.IsRecurring() || task.SuccessorCreated {
		return nil, nil
	}
	return e.MaterializeNext(ctx, task)
}

// SkipNext creates the successor for the next occurrence with the rule
// detached. The original task keeps its own recurrence; callers that
// want the chain gone use StopRecurrence separately.
func (e *Engine) SkipNext(ctx context.Context, task *model.Task) (*model.Task, error) {
	rule := task.Recurrence()
	if rule == nil {
		return nil, nil
	}
	next := &model.Task{
		UserID:   task.UserID,
		Title:    task.Title,
		Notes:    task.Notes,
		Priority: task.Priority,
		DueDate:  NextOccurrence(task.DueDate, rule.Frequency),
	}
	if err := e.store.Create(ctx, next); err != nil {
		return nil, err
	}
	if err := e.store.MarkSuccessorCreated(ctx, task); err != nil {
		return nil, err
	}
	return next, nil
}

// StopRecurrence detaches the rule from the task in place. No new task
// is created.
func (e *Engine) StopRecurrence(ctx context.Context, task *model.Task) error {
	return e.store.ClearRecurrence(ctx, task)
}

// addMonthsClamped steps forward whole months, clamping the day to the
// target month's length instead of letting time.AddDate normalize
// Jan 31 into early March.
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := daysInMonth(first.Month(), first.Year()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysInMonth moves to the next month and rolls back a day.
func daysInMonth(month time.Month, year int) int {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

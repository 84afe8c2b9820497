package model

import "time"

// Frequency is how often a recurring task repeats.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// RecurrenceRule describes how a task repeats. Each task instance owns
// its own copy; materialized siblings never share a rule.
type RecurrenceRule struct {
	Frequency Frequency
	EndDate   *time.Time
}

// Task represents a single item in the planner.
//
// CompletionDate is set if and only if IsCompleted is true; the
// repository stamps it on completion and clears it on reopen.
type Task struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"index"`
	Title          string
	Notes          string
	DueDate        time.Time
	Priority       int  `gorm:"default:1"`
	IsCompleted    bool `gorm:"default:false"`
	CompletionDate *time.Time
	RecurFrequency string // empty when the task does not recur
	RecurEndDate   *time.Time

	// SuccessorCreated marks that the next occurrence of this task's
	// chain has already been materialized, whichever trigger did it.
	// Keeps create-time and completion-time triggers from both filling
	// the same slot.
	SuccessorCreated bool `gorm:"default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recurrence returns the task's rule, or nil for one-off tasks.
func (t *Task) Recurrence() *RecurrenceRule {
	if t.RecurFrequency == "" {
		return nil
	}
	return &RecurrenceRule{Frequency: Frequency(t.RecurFrequency), EndDate: t.RecurEndDate}
}

// SetRecurrence attaches a copy of the rule; nil detaches it.
func (t *Task) SetRecurrence(rule *RecurrenceRule) {
	if rule == nil {
		t.RecurFrequency = ""
		t.RecurEndDate = nil
		return
	}
	t.RecurFrequency = string(rule.Frequency)
	t.RecurEndDate = rule.EndDate
}

// IsRecurring reports whether the task carries a recurrence rule.
func (t *Task) IsRecurring() bool {
	return t.RecurFrequency != ""
}

package recur

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-planner/internal/model"
)

// memStore collects created tasks in memory.
type memStore struct {
	created []*model.Task
	failing bool
}

func (s *memStore) Create(_ context.Context, task *model.Task) error {
	if s.failing {
		return fmt.Errorf("storage unavailable")
	}
	task.ID = uint(len(s.created) + 1)
	s.created = append(s.created, task)
	return nil
}

func (s *memStore) MarkSuccessorCreated(_ context.Context, task *model.Task) error {
	task.SuccessorCreated = true
	return nil
}

func (s *memStore) ClearRecurrence(_ context.Context, task *model.Task) error {
	task.SetRecurrence(nil)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		freq model.Frequency
		want time.Time
	}{
		{"daily", date(2024, time.June, 3), model.Daily, date(2024, time.June, 4)},
		{"weekly", date(2024, time.June, 3), model.Weekly, date(2024, time.June, 10)},
		{"monthly", date(2024, time.June, 3), model.Monthly, date(2024, time.July, 3)},
		{"monthly clamps into leap february", date(2024, time.January, 31), model.Monthly, date(2024, time.February, 29)},
		{"monthly clamps into plain february", date(2023, time.January, 31), model.Monthly, date(2023, time.February, 28)},
		{"monthly clamps 31st into 30-day month", date(2024, time.May, 31), model.Monthly, date(2024, time.June, 30)},
		{"monthly across year boundary", date(2023, time.December, 15), model.Monthly, date(2024, time.January, 15)},
		{"yearly", date(2024, time.June, 3), model.Yearly, date(2025, time.June, 3)},
		{"yearly clamps leap day", date(2024, time.February, 29), model.Yearly, date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOccurrence(tt.due, tt.freq))
		})
	}
}

func TestNextOccurrenceKeepsClockTime(t *testing.T) {
	due := time.Date(2024, 1, 31, 18, 45, 12, 0, time.UTC)
	next := NextOccurrence(due, model.Monthly)
	assert.Equal(t, 18, next.Hour())
	assert.Equal(t, 45, next.Minute())
	assert.Equal(t, 12, next.Second())
}

func recurringTask(freq model.Frequency) *model.Task {
	task := &model.Task{
		ID:       1,
		UserID:   7,
		Title:    "water plants",
		Priority: 2,
		DueDate:  date(2024, time.June, 3),
	}
	task.SetRecurrence(&model.RecurrenceRule{Frequency: freq})
	return task
}

func TestMaterializeNext(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, DefaultPolicy())
	task := recurringTask(model.Weekly)

	next, err := engine.MaterializeNext(context.Background(), task)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, task.Title, next.Title)
	assert.Equal(t, task.UserID, next.UserID)
	assert.Equal(t, task.Priority, next.Priority)
	assert.Equal(t, date(2024, time.June, 10), next.DueDate)
	assert.False(t, next.IsCompleted)
	assert.Nil(t, next.CompletionDate)
	assert.True(t, next.IsRecurring())
	assert.True(t, task.SuccessorCreated)

	// Exactly one step ahead, not a chain.
	assert.Len(t, store.created, 1)
}

func TestMaterializeNextWithoutRule(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, DefaultPolicy())

	next, err := engine.MaterializeNext(context.Background(), &model.Task{Title: "one-off"})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Empty(t, store.created)
}

func TestMaterializeNextRespectsEndDate(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, DefaultPolicy())

	task := recurringTask(model.Monthly)
	end := date(2024, time.June, 20)
	task.RecurEndDate = &end

	next, err := engine.MaterializeNext(context.Background(), task)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Empty(t, store.created)
}

func TestMaterializeNextPropagatesStoreFailure(t *testing.T) {
	engine := NewEngine(&memStore{failing: true}, DefaultPolicy())

	_, err := engine.MaterializeNext(context.Background(), recurringTask(model.Daily))
	assert.Error(t, err)
}

func TestTriggerPolicy(t *testing.T) {
	t.Run("creation trigger disabled", func(t *testing.T) {
		store := &memStore{}
		engine := NewEngine(store, TriggerPolicy{OnCreate: false, OnComplete: true})

		next, err := engine.OnCreated(context.Background(), recurringTask(model.Daily))
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.Empty(t, store.created)
	})

	t.Run("completion trigger disabled", func(t *testing.T) {
		store := &memStore{}
		engine := NewEngine(store, TriggerPolicy{OnCreate: true, OnComplete: false})

		next, err := engine.OnCompleted(context.Background(), recurringTask(model.Daily))
		require.NoError(t, err)
		assert.Nil(t, next)
		assert.Empty(t, store.created)
	})

	t.Run("completion does not duplicate the created successor", func(t *testing.T) {
		store := &memStore{}
		engine := NewEngine(store, DefaultPolicy())
		task := recurringTask(model.Daily)

		first, err := engine.OnCreated(context.Background(), task)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := engine.OnCompleted(context.Background(), task)
		require.NoError(t, err)
		assert.Nil(t, second)
		assert.Len(t, store.created, 1)
	})

	t.Run("completing the successor extends the chain", func(t *testing.T) {
		store := &memStore{}
		engine := NewEngine(store, DefaultPolicy())

		first, err := engine.OnCreated(context.Background(), recurringTask(model.Daily))
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := engine.OnCompleted(context.Background(), first)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, NextOccurrence(first.DueDate, model.Daily), second.DueDate)
	})
}

func TestSkipNext(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, DefaultPolicy())
	task := recurringTask(model.Weekly)

	skipped, err := engine.SkipNext(context.Background(), task)
	require.NoError(t, err)
	require.NotNil(t, skipped)

	assert.Equal(t, date(2024, time.June, 10), skipped.DueDate)
	assert.False(t, skipped.IsRecurring(), "skip detaches the rule on the successor")
	assert.True(t, task.IsRecurring(), "the original keeps its rule")
}

func TestSkipNextWithoutRule(t *testing.T) {
	engine := NewEngine(&memStore{}, DefaultPolicy())

	skipped, err := engine.SkipNext(context.Background(), &model.Task{Title: "one-off"})
	require.NoError(t, err)
	assert.Nil(t, skipped)
}

func TestStopRecurrence(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, DefaultPolicy())
	task := recurringTask(model.Monthly)

	require.NoError(t, engine.StopRecurrence(context.Background(), task))
	assert.False(t, task.IsRecurring())
	assert.Empty(t, store.created, "stopping creates no new task")
}

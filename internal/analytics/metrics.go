package analytics

import (
	"sort"
	"time"

	"focus-planner/internal/model"
)

// ProductivityMetrics is a derived, stateless snapshot of a user's
// task history. It has no identity and is never persisted; callers
// recompute it after any task-set mutation.
type ProductivityMetrics struct {
	TasksCompleted int
	TotalTasks     int

	// AverageCompletionTime is the mean signed gap between completion
	// and due date, in seconds. Negative means tasks tend to finish
	// before they are due.
	AverageCompletionTime float64

	// HourlyCompletions counts completions per local hour of day.
	HourlyCompletions [24]int

	// PeakProductivityHours holds up to 3 hour-of-day values, ordered
	// by descending completion count, ties by ascending hour. Hours
	// with zero completions never appear.
	PeakProductivityHours []int

	WeeklyTrend      []int
	TrendAnnotations []string

	// EstimatedTimeSavings is pending-task count times the average
	// completion gap, in seconds.
	EstimatedTimeSavings float64
}

// Refresh computes fresh metrics from a task snapshot. Pure: identical
// snapshots yield identical metrics, and an empty snapshot yields the
// zero value with empty sequences.
func Refresh(tasks []model.Task, now time.Time) ProductivityMetrics {
	var m ProductivityMetrics
	m.TotalTasks = len(tasks)

	var completedWithDates int
	var totalGap float64
	for _, t := range tasks {
		if !t.IsCompleted {
			continue
		}
		m.TasksCompleted++
		if t.CompletionDate == nil {
			continue
		}
		completedWithDates++
		totalGap += t.CompletionDate.Sub(t.DueDate).Seconds()
		m.HourlyCompletions[t.CompletionDate.Hour()]++
	}
	if completedWithDates > 0 {
		m.AverageCompletionTime = totalGap / float64(completedWithDates)
	}

	m.PeakProductivityHours = peakHours(m.HourlyCompletions)
	m.EstimatedTimeSavings = float64(m.TotalTasks-m.TasksCompleted) * m.AverageCompletionTime

	for _, bucket := range BucketByWeek(tasks, now) {
		m.WeeklyTrend = append(m.WeeklyTrend, len(bucket.Tasks))
		m.TrendAnnotations = append(m.TrendAnnotations, bucket.Label)
	}
	return m
}

// peakHours picks the top 3 nonzero histogram slots, descending by
// count; equal counts resolve to the lower hour.
func peakHours(hist [24]int) []int {
	type slot struct{ hour, count int }
	var slots []slot
	for hour, count := range hist {
		if count > 0 {
			slots = append(slots, slot{hour, count})
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].count != slots[j].count {
			return slots[i].count > slots[j].count
		}
		return slots[i].hour < slots[j].hour
	})
	if len(slots) > 3 {
		slots = slots[:3]
	}
	hours := make([]int, 0, len(slots))
	for _, s := range slots {
		hours = append(hours, s.hour)
	}
	return hours
}

package analytics

import (
	"fmt"
	"time"

	"focus-planner/internal/model"
)

// WeekBucket groups completed tasks whose completion time falls inside
// one 7-day window. Transient, recomputed on every call.
type WeekBucket struct {
	Label string
	Start time.Time
	Tasks []model.Task
}

// BucketByWeek splits the completed tasks of a snapshot into
// contiguous, non-overlapping 7-day windows between the earliest
// completion and now. Week starts are the successive midnights
// strictly after the earliest completion, stepped by 7 days; the
// in-progress trailing week is included. Each window covers its full
// seven labeled days: [start, start+7d).
func BucketByWeek(tasks []model.Task, now time.Time) []WeekBucket {
	var completed []model.Task
	for _, t := range tasks {
		if t.IsCompleted && t.CompletionDate != nil {
			completed = append(completed, t)
		}
	}
	if len(completed) == 0 {
		return nil
	}

	earliest := *completed[0].CompletionDate
	for _, t := range completed[1:] {
		if t.CompletionDate.Before(earliest) {
			earliest = *t.CompletionDate
		}
	}

	var buckets []WeekBucket
	for ws := nextMidnight(earliest); ws.Before(now); ws = ws.AddDate(0, 0, 7) {
		bucket := WeekBucket{
			Label: fmt.Sprintf("%s - %s", ws.Format("2 Jan"), ws.AddDate(0, 0, 6).Format("2 Jan")),
			Start: ws,
		}
		weekEnd := ws.AddDate(0, 0, 7)
		for _, t := range completed {
			c := *t.CompletionDate
			if !c.Before(ws) && c.Before(weekEnd) {
				bucket.Tasks = append(bucket.Tasks, t)
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// nextMidnight returns the first midnight strictly after t.
func nextMidnight(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1)
}

package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// FocusSession is a contiguous run of high-activity hours. Derived and
// ephemeral; the ID exists only so the notification scheduler can keep
// per-session bookkeeping.
type FocusSession struct {
	ID        uuid.UUID
	StartHour int // inclusive
	EndHour   int // exclusive
	Intensity float64
}

// TimeRange formats the session for user-facing alerts.
func (s FocusSession) TimeRange() string {
	return fmt.Sprintf("%d:00 - %d:00", s.StartHour, s.EndHour)
}

// RecommendFocusSessions clusters the 24-slot completion histogram into
// sustained high-activity windows. An hour belongs to a cluster when
// its count strictly exceeds half the histogram maximum; the cluster
// closes at the first hour at or below the threshold. Intensity is the
// average hourly count within the cluster. The 50%-of-peak threshold
// tolerates noise between adjacent peak hours instead of splitting
// them into isolated spikes.
//
// Sessions come back sorted by descending intensity, ties by ascending
// start hour. An all-zero histogram yields no sessions.
func RecommendFocusSessions(hist [24]int) []FocusSession {
	maxCount := 0
	for _, c := range hist {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil
	}
	threshold := 0.5 * float64(maxCount)

	var sessions []FocusSession
	start := -1
	sum := 0
	for hour := 0; hour <= 24; hour++ {
		if hour < 24 && float64(hist[hour]) > threshold {
			if start < 0 {
				start = hour
			}
			sum += hist[hour]
			continue
		}
		if start >= 0 {
			sessions = append(sessions, FocusSession{
				ID:        uuid.New(),
				StartHour: start,
				EndHour:   hour,
				Intensity: float64(sum) / float64(hour-start),
			})
			start = -1
			sum = 0
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Intensity != sessions[j].Intensity {
			return sessions[i].Intensity > sessions[j].Intensity
		}
		return sessions[i].StartHour < sessions[j].StartHour
	})
	return sessions
}

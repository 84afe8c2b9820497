package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"focus-planner/internal/analytics"
)

// SchedulerService wraps cron-based jobs: periodic reports and the
// daily pre-session focus alerts.
type SchedulerService struct {
	cron *cron.Cron

	// focusEntries tracks registered alert jobs per chat so a refresh
	// replaces them instead of stacking duplicates.
	focusEntries map[int64][]cron.EntryID
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron:         cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		focusEntries: make(map[int64][]cron.EntryID),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	// Convert to cron spec: every N seconds.
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

// ScheduleFocusAlerts registers a daily alert 5 minutes before each of
// the top 3 focus windows for one chat, dropping that chat's previous
// registrations first.
func (s *SchedulerService) ScheduleFocusAlerts(chatID int64, sessions []analytics.FocusSession, alert func(analytics.FocusSession)) error {
	for _, id := range s.focusEntries[chatID] {
		s.cron.Remove(id)
	}
	s.focusEntries[chatID] = nil

	if len(sessions) > 3 {
		sessions = sessions[:3]
	}
	for _, session := range sessions {
		hour := session.StartHour - 1
		if hour < 0 {
			hour += 24
		}
		session := session
		id, err := s.cron.AddFunc(fmt.Sprintf("0 55 %d * * *", hour), func() { alert(session) })
		if err != nil {
			return fmt.Errorf("schedule focus alert %s: %w", session.TimeRange(), err)
		}
		s.focusEntries[chatID] = append(s.focusEntries[chatID], id)
	}
	return nil
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

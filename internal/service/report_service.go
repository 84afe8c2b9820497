package service

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"focus-planner/internal/analytics"
	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// ReportService turns task snapshots into productivity metrics, focus
// recommendations and human-readable summaries for notifications.
type ReportService struct {
	taskRepo *repository.TaskRepository
}

func NewReportService(taskRepo *repository.TaskRepository) *ReportService {
	return &ReportService{taskRepo: taskRepo}
}

// Metrics recomputes the full productivity snapshot for a user.
func (s *ReportService) Metrics(ctx context.Context, user model.User, now time.Time) (analytics.ProductivityMetrics, error) {
	tasks, err := s.taskRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return analytics.ProductivityMetrics{}, err
	}
	return analytics.Refresh(tasks, now), nil
}

// FocusSessions returns the ranked focus windows for a user.
func (s *ReportService) FocusSessions(ctx context.Context, user model.User, now time.Time) ([]analytics.FocusSession, error) {
	metrics, err := s.Metrics(ctx, user, now)
	if err != nil {
		return nil, err
	}
	return analytics.RecommendFocusSessions(metrics.HourlyCompletions), nil
}

// ProductivitySummary renders the metrics and top focus windows as
// Telegram HTML.
func (s *ReportService) ProductivitySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	metrics, err := s.Metrics(ctx, user, now)
	if err != nil {
		return "", err
	}
	sessions := analytics.RecommendFocusSessions(metrics.HourlyCompletions)

	var builder strings.Builder
	builder.WriteString("📊 <b>Productivity report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString(fmt.Sprintf("✅ Completed: <b>%d of %d</b>\n", metrics.TasksCompleted, metrics.TotalTasks))
	if metrics.TasksCompleted > 0 {
		builder.WriteString(fmt.Sprintf("⏱ Average finish: %s\n", formatGap(metrics.AverageCompletionTime)))
		builder.WriteString(fmt.Sprintf("💰 Estimated savings on the backlog: %s\n", formatDuration(math.Abs(metrics.EstimatedTimeSavings))))
	}

	if len(metrics.PeakProductivityHours) > 0 {
		builder.WriteString("\n🔥 <b>Peak hours</b>\n")
		for _, hour := range metrics.PeakProductivityHours {
			builder.WriteString(fmt.Sprintf("— %02d:00, %d completed\n", hour, metrics.HourlyCompletions[hour]))
		}
	}

	if len(metrics.WeeklyTrend) > 0 {
		builder.WriteString("\n📈 <b>Weekly trend</b>\n")
		for i, count := range metrics.WeeklyTrend {
			builder.WriteString(fmt.Sprintf("%s: %d\n", html.EscapeString(metrics.TrendAnnotations[i]), count))
		}
	}

	if len(sessions) > 0 {
		builder.WriteString("\n🎯 <b>Recommended focus windows</b>\n")
		top := sessions
		if len(top) > 3 {
			top = top[:3]
		}
		for _, session := range top {
			builder.WriteString(fmt.Sprintf("— %s (≈%.1f tasks/h)\n", session.TimeRange(), session.Intensity))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// formatGap renders a signed completion gap, e.g. "2h 30m early".
func formatGap(seconds float64) string {
	if seconds == 0 {
		return "right on time"
	}
	suffix := "late"
	if seconds < 0 {
		suffix = "early"
	}
	return fmt.Sprintf("%s %s", formatDuration(math.Abs(seconds)), suffix)
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Minute)
	if d < time.Minute {
		return "under a minute"
	}
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/analytics"
	"focus-planner/internal/config"
	"focus-planner/internal/model"
	"focus-planner/internal/parse"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

const (
	iconDefault   = "🟢"
	iconDue       = "⏳"
	iconOverdue   = "⚠️"
	iconRecurring = "♻️"
	iconDone      = "✅"
)

const helpText = `<b>Commands</b>
/add &lt;text&gt; — add a task from plain text, e.g.
    <i>/add Call mom tomorrow at 6pm weekly</i>
    Dates, "urgent"/"important" and phrases like "daily" or
    "every month" are picked up automatically.
/tasks — list open tasks
/complete &lt;id&gt; — mark a task done
/reopen &lt;id&gt; — undo completion
/skip &lt;id&gt; — skip the next occurrence of a recurring task
/stoprecur &lt;id&gt; — stop a task from recurring
/delete &lt;id&gt; — delete a task
/event &lt;text&gt; — add a calendar event, e.g. <i>/event Dentist next Friday</i>
/events — list upcoming events
/report — productivity report
/focus — recommended focus windows`

// Bot aggregates the Telegram API with services.
type Bot struct {
	api       *tgbotapi.BotAPI
	userRepo  *repository.UserRepository
	eventRepo *repository.EventRepository
	taskSvc   *service.TaskService
	reportSvc *service.ReportService
	scheduler *service.SchedulerService
	parser    *parse.Parser
	config    *config.Config
}

func New(token string, userRepo *repository.UserRepository, eventRepo *repository.EventRepository, taskSvc *service.TaskService, reportSvc *service.ReportService, scheduler *service.SchedulerService, parser *parse.Parser, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		taskSvc:   taskSvc,
		reportSvc: reportSvc,
		scheduler: scheduler,
		parser:    parser,
		config:    cfg,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	user, err := b.userRepo.UpsertFromTelegram(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName)
	if err != nil {
		return err
	}

	if !msg.IsCommand() {
		// Bare text creates a task, same as /add.
		return b.handleAdd(ctx, msg, user, msg.Text)
	}

	log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.sendHTML(msg.Chat.ID, helpText)
	case "add":
		return b.handleAdd(ctx, msg, user, args)
	case "tasks":
		return b.handleListTasks(ctx, msg, user)
	case "complete":
		return b.handleComplete(ctx, msg, user, args)
	case "reopen":
		return b.handleReopen(ctx, msg, user, args)
	case "skip":
		return b.handleSkip(ctx, msg, user, args)
	case "stoprecur":
		return b.handleStopRecurrence(ctx, msg, user, args)
	case "delete":
		return b.handleDelete(ctx, msg, user, args)
	case "event":
		return b.handleAddEvent(ctx, msg, user, args)
	case "events":
		return b.handleListEvents(ctx, msg, user)
	case "report":
		return b.handleReport(ctx, msg, user)
	case "focus":
		return b.handleFocus(ctx, msg, user)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help for the list.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	return b.sendHTML(msg.Chat.ID,
		"👋 I turn plain text into planned tasks and tell you when you work best.\n\n"+helpText)
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, user *model.User, text string) error {
	if strings.TrimSpace(text) == "" {
		return b.sendText(msg.Chat.ID, "Tell me the task, e.g. /add Pay rent every month")
	}

	task, err := b.taskSvc.CreateFromText(ctx, user, text, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add the task: %v", err))
	}

	reply := fmt.Sprintf("Added #%d: %s", task.ID, formatTask(*task, time.Now()))
	if task.IsRecurring() {
		reply += fmt.Sprintf("\n%s Repeats %s; the next instance is already planned.", iconRecurring, task.RecurFrequency)
	}
	return b.sendHTML(msg.Chat.ID, reply)
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	tasks, err := b.taskSvc.ListPending(ctx, user)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "No open tasks. Add one with /add.")
	}

	now := time.Now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Open tasks</b>\n")
	for _, task := range tasks {
		builder.WriteString(fmt.Sprintf("#%d %s\n", task.ID, formatTask(task, now)))
	}
	return b.sendHTML(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message, user *model.User, args string) error {
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /complete <task id>")
	}

	task, err := b.taskSvc.CompleteTask(ctx, user, taskID, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not complete #%d: %v", taskID, err))
	}

	reply := fmt.Sprintf("%s Done: %s", iconDone, html.EscapeString(task.Title))
	if task.IsRecurring() {
		reply += fmt.Sprintf("\n%s The next %s instance is planned.", iconRecurring, task.RecurFrequency)
	}
	return b.sendHTML(msg.Chat.ID, reply)
}

func (b *Bot) handleReopen(ctx context.Context, msg *tgbotapi.Message, user *model.User, args string) error {
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /reopen <task id>")
	}

	task, err := b.taskSvc.ReopenTask(ctx, user, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not reopen #%d: %v", taskID, err))
	}
	return b.sendHTML(msg.Chat.ID, fmt.Sprintf("↩️ Reopened: %s", html.EscapeString(task.Title)))
}

func (b *Bot) handleSkip(ctx context.Context, msg *tgbotapi.Message, user *model.User, args string) error {
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /skip <task id>")
	}

	skipped, err := b.taskSvc.SkipNext(ctx, user, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not skip #%d: %v", taskID, err))
	}
	return b.sendHTML(msg.Chat.ID, fmt.Sprintf("⏭️ Skipped ahead: %s is now due %s (one-off).",
		html.EscapeString(skipped.Title), skipped.DueDate.Format("2006-01-02")))
}

func (b *Bot) handleStopRecurrence(ctx context.Context, msg *tgbotapi.Message, user *model.User, args string) error {
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /stoprecur <task id>")
	}

	task, err := b.taskSvc.StopRecurrence(ctx, user, taskID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not stop #%d: %v", taskID, err))
	}
	return b.sendHTML(msg.Chat.ID, fmt.Sprintf("🛑 %s no longer repeats.", html.EscapeString(task.Title)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, user *model.User, args string) error {
	taskID, err := parseTaskID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /delete <task id>")
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not delete #%d: %v", taskID, err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Task #%d deleted.", taskID))
}

func (b *Bot) handleAddEvent(ctx context.Context, msg *tgbotapi.Message, user *model.User, text string) error {
	if strings.TrimSpace(text) == "" {
		return b.sendText(msg.Chat.ID, "Tell me the event, e.g. /event Dentist next Friday")
	}

	now := time.Now()
	parsed := b.parser.Parse(text, now)
	if parsed.Title == "" {
		return b.sendText(msg.Chat.ID, "The event needs a title.")
	}

	date := now
	if parsed.DueDate != nil {
		date = *parsed.DueDate
	}
	event := model.Event{UserID: user.ID, Title: parsed.Title, Date: date}
	if err := b.eventRepo.Create(ctx, &event); err != nil {
		return err
	}
	return b.sendHTML(msg.Chat.ID, fmt.Sprintf("📅 Added event: %s on %s",
		html.EscapeString(event.Title), event.Date.Format("2006-01-02 15:04")))
}

func (b *Bot) handleListEvents(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	events, err := b.eventRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return b.sendText(msg.Chat.ID, "No events yet. Add one with /event.")
	}

	var builder strings.Builder
	builder.WriteString("📅 <b>Events</b>\n")
	for _, event := range events {
		builder.WriteString(fmt.Sprintf("— %s: %s", event.Date.Format("2006-01-02 15:04"), html.EscapeString(event.Title)))
		if event.Location != "" {
			builder.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(event.Location)))
		}
		builder.WriteByte('\n')
	}
	return b.sendHTML(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	summary, err := b.reportSvc.ProductivitySummary(ctx, *user, time.Now())
	if err != nil {
		return err
	}
	return b.sendHTML(msg.Chat.ID, summary)
}

func (b *Bot) handleFocus(ctx context.Context, msg *tgbotapi.Message, user *model.User) error {
	sessions, err := b.reportSvc.FocusSessions(ctx, *user, time.Now())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return b.sendText(msg.Chat.ID, "Not enough completed tasks yet to spot your focus windows.")
	}

	var builder strings.Builder
	builder.WriteString("🎯 <b>Your focus windows</b>\n")
	for _, session := range sessions {
		builder.WriteString(fmt.Sprintf("— %s (≈%.1f tasks/h)\n", session.TimeRange(), session.Intensity))
	}

	if b.config.FocusAlerts {
		if err := b.refreshFocusAlerts(user.TelegramID, sessions); err != nil {
			return err
		}
		builder.WriteString("\n🔔 I will ping you 5 minutes before the top windows.")
	}
	return b.sendHTML(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

// SendDailyReports pushes the productivity summary to every known user
// and refreshes their focus alerts. Invoked by the scheduler.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		summary, err := b.reportSvc.ProductivitySummary(ctx, user, time.Now())
		if err != nil {
			log.Printf("report for %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendHTML(user.TelegramID, summary); err != nil {
			log.Printf("send report to %d: %v", user.TelegramID, err)
		}

		if !b.config.FocusAlerts {
			continue
		}
		sessions, err := b.reportSvc.FocusSessions(ctx, user, time.Now())
		if err != nil {
			log.Printf("focus sessions for %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.refreshFocusAlerts(user.TelegramID, sessions); err != nil {
			log.Printf("focus alerts for %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) refreshFocusAlerts(chatID int64, sessions []analytics.FocusSession) error {
	return b.scheduler.ScheduleFocusAlerts(chatID, sessions, func(session analytics.FocusSession) {
		text := fmt.Sprintf("🎯 Focus time %s.\nYour peak productivity window starts soon!", session.TimeRange())
		if err := b.sendText(chatID, text); err != nil {
			log.Printf("focus alert to %d: %v", chatID, err)
		}
	})
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func parseTaskID(args string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", args)
	}
	return uint(id), nil
}

func formatTask(task model.Task, now time.Time) string {
	icon := iconDefault
	due := task.DueDate.In(now.Location())
	switch {
	case now.After(due):
		icon = iconOverdue
	case due.Sub(now) <= 48*time.Hour:
		icon = iconDue
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	switch task.Priority {
	case 3:
		sb.WriteString(" ‼️")
	case 2:
		sb.WriteString(" ❗")
	}
	sb.WriteString(fmt.Sprintf(" — due %s", due.Format("2006-01-02 15:04")))
	if task.IsRecurring() {
		sb.WriteString(fmt.Sprintf(" %s %s", iconRecurring, task.RecurFrequency))
	}
	return sb.String()
}

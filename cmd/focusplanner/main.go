package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focus-planner/internal/bot"
	"focus-planner/internal/config"
	"focus-planner/internal/parse"
	"focus-planner/internal/recur"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventRepository(db)

	engine := recur.NewEngine(taskRepo, recur.DefaultPolicy())
	parser := parse.NewParser()

	taskSvc := service.NewTaskService(taskRepo, parser, engine)
	reportSvc := service.NewReportService(taskRepo)
	scheduler := service.NewSchedulerService(time.Local)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, eventRepo, taskSvc, reportSvc, scheduler, parser, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("report: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Focus planner bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"KursPajak/internal/collector"
	"KursPajak/internal/config"
	"KursPajak/internal/exporter"
	"KursPajak/internal/extractor"
	"KursPajak/internal/notifier"
	"KursPajak/internal/recorder"
	"KursPajak/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env", slog.Any("error", err))
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(slog.Default(), "load config", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal(slog.Default(), "config validation", err)
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	logger.Info("KursPajak starting", slog.String("config", cfgPath))

	anchor, _ := cfg.Anchor()
	loc, _ := cfg.Location()

	fetcher := collector.NewKemenkeuFetcher(cfg.Source.BaseURL, cfg.Source.Proxy, cfg.Source.Timeout)
	if cfg.Source.UserAgent != "" {
		fetcher.UserAgent = cfg.Source.UserAgent
	}
	col := collector.NewCollector(fetcher, extractor.New(cfg.Source.Currency, logger), anchor, logger)
	col.Location = loc

	rec, err := recorder.NewFileRecorder(cfg.Export.OutputDir, logger)
	if err != nil {
		logger.Warn("init file recorder failed, exports will not be stored", slog.Any("error", err))
	}
	var store recorder.Recorder = recorder.NewNoopRecorder()
	if rec != nil {
		store = rec
	}
	defer store.Close()

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Source.Proxy, logger)
	}
	mailer := notifier.NewEmailSender(notifier.EmailConfig{
		SMTPServer: cfg.Email.SMTPServer,
		SMTPPort:   cfg.Email.SMTPPort,
		SMTPUser:   cfg.Email.SMTPUser,
		SMTPPass:   cfg.Email.SMTPPass,
		FromEmail:  cfg.Email.From,
		ToEmail:    cfg.Email.To,
		Enabled:    cfg.EmailEnabled(),
	}, logger)

	sched := scheduler.New(col, exporter.New(logger), store, tn, mailer,
		cfg.Lookback(), cfg.Export.Filename, loc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.Cron == "" {
		report, err := sched.RunNow(ctx)
		if err != nil {
			fatal(logger, "run", err)
		}
		logger.Info("run finished",
			slog.String("status", string(report.Result.Status())),
			slog.String("output", report.Path))
		return
	}

	if err := sched.Register(ctx, cfg.Schedule.Cron); err != nil {
		fatal(logger, "register cron task", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		logger.Info("run_on_start enabled, scraping now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				logger.Error("startup run failed", slog.Any("error", err))
			}
		}()
	}

	logger.Info("KursPajak is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

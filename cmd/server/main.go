package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/makt28/kumamail/internal/config"
	"github.com/makt28/kumamail/internal/notify"
	"github.com/makt28/kumamail/internal/web"
	"github.com/mattn/go-isatty"
)

func main() {
	// --- 1. Load Config ---
	// bootstrap logger until LOG_LEVEL is known
	setupLogger("info")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load(config.Environ())
	if err != nil {
		slog.Error("invalid configuration, the application will exit", "error", err)
		os.Exit(1)
	}

	// --- 2. Setup Logger ---
	setupLogger(cfg.Server.LogLevel)
	if len(cfg.Defaulted) > 0 {
		slog.Warn("using default values", "fields", strings.Join(cfg.Defaulted, ", "))
	}
	slog.Info("starting kumamail", "bind", cfg.Server.ListenAddr)

	// --- 3. Init Sender ---
	sender := newSender(cfg)
	if err := sender.Validate(); err != nil {
		slog.Error("invalid sender configuration", "type", sender.Type(), "error", err)
		os.Exit(1)
	}

	// --- 4. Init Notification Router & Renderer ---
	notifier := notify.NewRouter(sender, cfg.Server.SMTPTimeout, cfg.Server.SendConcurrency)
	renderer, err := notify.NewRenderer()
	if err != nil {
		slog.Error("failed to load email templates", "error", err)
		os.Exit(1)
	}

	// --- 5. HTTP Server ---
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           web.NewRouter(cfg, notifier, renderer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("kumamail is running",
			"address", cfg.Server.ListenAddr,
			"base_url", cfg.BaseURL,
			"webhook_url", strings.TrimRight(cfg.BaseURL, "/")+"/webhook?token=<redacted>",
			"sender", sender.Type(),
			"recipients", len(cfg.To),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// --- 6. Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("received shutdown signal", "signal", sig)

	// in-flight sends are bounded by SMTP_TIMEOUT
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.SMTPTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}

	slog.Info("kumamail stopped gracefully")
}

func newSender(cfg config.Config) notify.Sender {
	if cfg.Server.OutboxDir != "" {
		slog.Warn("EMAIL_OUTBOX_DIR is set, messages are written to disk instead of sent", "dir", cfg.Server.OutboxDir)
		return notify.NewOutboxSender(cfg.Server.OutboxDir)
	}
	return notify.NewSMTPSender(cfg.SMTP)
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

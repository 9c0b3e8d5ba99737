// Package main is the entry point for the LocalGame server.
// It loads configuration, prepares the data directory, wires the services,
// sets up routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"localgame/internal/auth"
	"localgame/internal/cache"
	"localgame/internal/catalog"
	"localgame/internal/chat"
	"localgame/internal/config"
	"localgame/internal/content"
	"localgame/internal/handlers"
	"localgame/internal/mail"
	"localgame/internal/middleware"
	"localgame/internal/ratelimit"
	"localgame/internal/router"
	"localgame/internal/scheduler"
	"localgame/internal/session"
	"localgame/internal/store"
)

func main() {
	// Optional .env file; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logger *slog.Logger
	if cfg.IsDev() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"data_dir", cfg.DataDir,
	)
	if cfg.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL not set, nobody will be granted the admin role")
	}

	layout := store.Layout{Root: cfg.DataDir}
	if err := layout.Init(); err != nil {
		slog.Error("failed to prepare data directory", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(scheduler.DefaultSchedule, logger)

	// Sessions and email counters live in Valkey when enabled, otherwise in
	// process memory.
	var (
		sessionBackend session.Backend
		counter        ratelimit.Counter
	)
	if cfg.ValkeyEnabled {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, 0)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		sessionBackend = session.NewRedisBackend(valkeyClient)
		counter = ratelimit.NewRedisCounter(valkeyClient)
	} else {
		memSessions := session.NewMemoryBackend()
		memCounter := ratelimit.NewMemoryCounter()
		sched.Add("sessions", memSessions)
		sched.Add("email counters", memCounter)
		sessionBackend = memSessions
		counter = memCounter
		slog.Info("valkey disabled, using in-memory sessions")
	}

	var sender mail.Sender
	if cfg.SMTPPassword == "" && cfg.IsDev() {
		slog.Warn("SMTP_PASSWORD not set, verification codes are written to the log")
		sender = mail.LogSender{}
	} else {
		sender = mail.NewSMTPSender(cfg.SMTP())
	}

	registrations := store.NewCodeStore(layout.PendingFile(), store.KeyRegistrations)
	logins := store.NewCodeStore(layout.LoginCodesFile(), store.KeyCodes)
	sched.Add("pending registrations", registrations)
	sched.Add("login codes", logins)

	authSvc := auth.New(
		store.NewUserStore(layout, cfg.AdminEmail),
		registrations,
		logins,
		session.NewStore(sessionBackend, cfg.SessionTTL),
		ratelimit.NewEmailPolicy(counter),
		mail.NewMailer(sender),
	)

	ids := content.NewIDGenerator()
	cat := catalog.New(layout)

	// Per-IP limit on the endpoints that send email or check credentials.
	limiter := middleware.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	r := router.New(authSvc, limiter, router.Handlers{
		Auth:          handlers.NewAuth(authSvc),
		Games:         handlers.NewGames(content.NewGames(layout, ids), cat),
		Announcements: handlers.NewNotices(content.NewNotices(layout, content.KindAnnouncement, ids)),
		Bulletins:     handlers.NewNotices(content.NewNotices(layout, content.KindBulletin, ids)),
		Chat:          handlers.NewChat(chat.NewStore(layout)),
		Public:        handlers.NewPublic(cat, layout, handlers.Stream{URL: cfg.StreamURL, Name: cfg.StreamName}),
	})

	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// ReadTimeout and WriteTimeout leave room for 100 MB game uploads.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-serverErr:
		slog.Error("server failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}

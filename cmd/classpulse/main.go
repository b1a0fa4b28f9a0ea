package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/classpulse/classpulse/internal/answers"
	"github.com/classpulse/classpulse/internal/app"
	"github.com/classpulse/classpulse/internal/auth"
	"github.com/classpulse/classpulse/internal/comments"
	"github.com/classpulse/classpulse/internal/contents"
	"github.com/classpulse/classpulse/internal/motd"
	"github.com/classpulse/classpulse/internal/observability"
	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/platform/cache"
	"github.com/classpulse/classpulse/internal/platform/db"
	"github.com/classpulse/classpulse/internal/resolve"
	"github.com/classpulse/classpulse/internal/rooms"
	"github.com/classpulse/classpulse/internal/shared"
	"github.com/classpulse/classpulse/internal/users"
	"github.com/classpulse/classpulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "classpulse_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	userRepo := users.NewRepository(dbpool)
	roomRepo := rooms.NewRepository(dbpool)
	contentRepo := contents.NewRepository(dbpool)
	answerRepo := answers.NewRepository(dbpool)
	commentRepo := comments.NewRepository(dbpool)
	motdRepo := motd.NewRepository(dbpool)

	metrics := observability.NewMetrics()

	lookups := resolve.NewLookups(redisClient, cfg.ResolveTTL, roomRepo, contentRepo, answerRepo, userRepo)
	evaluator := perm.NewEvaluator(lookups, perm.WithObserver(metrics))

	events := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := events.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(userRepo)
	roomService := rooms.NewService(roomRepo, evaluator, events)
	contentService := contents.NewService(contentRepo, evaluator)
	answerService := answers.NewService(answerRepo, lookups.Contents, evaluator, events)
	commentService := comments.NewService(commentRepo, evaluator)
	motdService := motd.NewService(motdRepo, evaluator)
	userService := users.NewService(userRepo, evaluator)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		Users:           authService,
		AuthHandler:     auth.NewHandler(logger, authService, sessionManager),
		RoomsHandler:    rooms.NewHandler(logger, roomService),
		ContentsHandler: contents.NewHandler(logger, contentService),
		AnswersHandler:  answers.NewHandler(logger, answerService),
		CommentsHandler: comments.NewHandler(logger, commentService),
		MotdHandler:     motd.NewHandler(logger, motdService),
		UsersHandler:    users.NewHandler(logger, userService),
		JobsHandler:     jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

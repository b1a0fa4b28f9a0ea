package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/classpulse/classpulse/internal/answers"
	"github.com/classpulse/classpulse/internal/app"
	"github.com/classpulse/classpulse/internal/comments"
	"github.com/classpulse/classpulse/internal/contents"
	jobmetrics "github.com/classpulse/classpulse/internal/jobs"
	"github.com/classpulse/classpulse/internal/motd"
	"github.com/classpulse/classpulse/internal/platform/cache"
	"github.com/classpulse/classpulse/internal/platform/db"
	"github.com/classpulse/classpulse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	contentRepo := contents.NewRepository(pool)
	answerRepo := answers.NewRepository(pool)
	commentRepo := comments.NewRepository(pool)
	motdRepo := motd.NewRepository(pool)

	metrics := jobmetrics.NewMetrics(nil)
	purger := jobs.NewPurger(logger, metrics, contentRepo, answerRepo, commentRepo, motdRepo)
	statsRefresher := jobs.NewStatsRefresher(logger, metrics, answerRepo, redisClient)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRoomPurge, Handler: purger.HandleRoomPurge},
			{Type: jobs.TaskAnswerStats, Handler: statsRefresher.HandleAnswerStats},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

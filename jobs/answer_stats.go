package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/classpulse/classpulse/internal/answers"
	jobmetrics "github.com/classpulse/classpulse/internal/jobs"
)

const answerStatsTTL = time.Hour

// StatsRefresher recounts answers per content and caches the result for
// the presentation views.
type StatsRefresher struct {
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	answers answers.Repository
	client  *redis.Client
}

// NewStatsRefresher constructs a StatsRefresher. metrics may be nil.
func NewStatsRefresher(logger *slog.Logger, metrics *jobmetrics.Metrics, answerRepo answers.Repository, client *redis.Client) *StatsRefresher {
	return &StatsRefresher{logger: logger, metrics: metrics, answers: answerRepo, client: client}
}

// HandleAnswerStats processes TaskAnswerStats tasks.
func (s *StatsRefresher) HandleAnswerStats(ctx context.Context, t *asynq.Task) error {
	var payload AnswerStatsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ContentID == "" {
		return asynq.SkipRetry
	}
	tracker := s.metrics.Track(TaskAnswerStats)

	count, err := s.answers.CountByContent(ctx, payload.ContentID)
	if err != nil {
		return tracker.End(err)
	}
	key := "stats:answers:" + payload.ContentID
	if err := s.client.Set(ctx, key, strconv.Itoa(count), answerStatsTTL).Err(); err != nil {
		return tracker.End(err)
	}

	s.logger.Debug("answer stats refreshed",
		slog.String("content_id", payload.ContentID),
		slog.Int("count", count))
	return tracker.End(nil)
}

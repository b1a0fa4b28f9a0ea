package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/classpulse/classpulse/internal/answers"
	"github.com/classpulse/classpulse/internal/comments"
	"github.com/classpulse/classpulse/internal/contents"
	jobmetrics "github.com/classpulse/classpulse/internal/jobs"
	"github.com/classpulse/classpulse/internal/motd"
)

// Purger removes a deleted room's dependents. Each dependent table is
// purged independently so a failure in one does not strand the others;
// the task retries until every delete has gone through at least once.
type Purger struct {
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	contents contents.Repository
	answers  answers.Repository
	comments comments.Repository
	motds    motd.Repository
}

// NewPurger constructs a Purger. metrics may be nil.
func NewPurger(logger *slog.Logger, metrics *jobmetrics.Metrics, contentRepo contents.Repository, answerRepo answers.Repository, commentRepo comments.Repository, motdRepo motd.Repository) *Purger {
	return &Purger{
		logger:   logger,
		metrics:  metrics,
		contents: contentRepo,
		answers:  answerRepo,
		comments: commentRepo,
		motds:    motdRepo,
	}
}

// HandleRoomPurge processes TaskRoomPurge tasks.
func (p *Purger) HandleRoomPurge(ctx context.Context, t *asynq.Task) error {
	var payload RoomPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RoomID == "" {
		return asynq.SkipRetry
	}
	tracker := p.metrics.Track(TaskRoomPurge)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.answers.DeleteByRoom(ctx, payload.RoomID) })
	g.Go(func() error { return p.comments.DeleteByRoom(ctx, payload.RoomID) })
	g.Go(func() error { return p.motds.DeleteByRoom(ctx, payload.RoomID) })
	g.Go(func() error {
		// Groups reference contents, so the two go together.
		if err := p.contents.DeleteGroupsByRoom(ctx, payload.RoomID); err != nil {
			return err
		}
		return p.contents.DeleteByRoom(ctx, payload.RoomID)
	})
	if err := g.Wait(); err != nil {
		p.logger.Error("room purge", slog.String("room_id", payload.RoomID), slog.Any("error", err))
		return tracker.End(err)
	}

	p.logger.Info("room purged", slog.String("room_id", payload.RoomID))
	return tracker.End(nil)
}

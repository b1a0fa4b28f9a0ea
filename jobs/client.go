package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits jobs to the queue. It satisfies the event interfaces of
// the domain services, so mutations fan out to background work without
// the services knowing about Asynq.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// RoomDeleted enqueues the purge of a deleted room's dependents.
func (c *Client) RoomDeleted(ctx context.Context, roomID string) error {
	task, err := NewRoomPurgeTask(RoomPurgePayload{RoomID: roomID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// AnswerSubmitted enqueues an answer-count refresh for the content.
func (c *Client) AnswerSubmitted(ctx context.Context, contentID string) error {
	task, err := NewAnswerStatsTask(AnswerStatsPayload{ContentID: contentID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Package jobs holds the asynchronous task definitions and the Asynq
// worker runtime.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRoomPurge removes everything a deleted room owned.
	TaskRoomPurge = "room:purge"
	// TaskAnswerStats refreshes the cached answer count for a content.
	TaskAnswerStats = "answer:stats"
)

// RoomPurgePayload names the room whose dependents must be removed.
type RoomPurgePayload struct {
	RoomID string `json:"room_id"`
}

// NewRoomPurgeTask constructs an Asynq task for a room purge.
func NewRoomPurgeTask(payload RoomPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoomPurge, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// AnswerStatsPayload names the content whose answer count changed.
type AnswerStatsPayload struct {
	ContentID string `json:"content_id"`
}

// NewAnswerStatsTask constructs an Asynq task for an answer-count refresh.
func NewAnswerStatsTask(payload AnswerStatsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnswerStats, data, asynq.Queue(QueueDefault)), nil
}

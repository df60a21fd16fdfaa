package recommend

import (
	"context"       // Context for Redis operations
	"encoding/json" // Message encoding
	"time"          // Blocking pop timeout

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

const (
	taskQueueKey   = "recommend:tasks"        // Pending task-created events
	failedQueueKey = "recommend:tasks:failed" // Events given up on after retries
)

// TaskMessage is one task-created event on the delivery queue. Delivery is
// at-least-once: a message may be observed more than once and the consumer
// must tolerate replays.
type TaskMessage struct {
	TaskID  uint      `json:"task_id"` // The task to deliver
	Tries   int       `json:"tries"`   // Delivery attempts so far
	Created time.Time `json:"created"` // When the event was first enqueued
}

// Queue carries task-created events from fan-out to the delivery worker.
type Queue interface {
	Enqueue(ctx context.Context, taskID uint) error
	Dequeue(ctx context.Context, timeout time.Duration) (*TaskMessage, error)
	Retry(ctx context.Context, msg *TaskMessage) error
	Fail(ctx context.Context, msg *TaskMessage, cause error)
}

type redisQueue struct {
	rdb *redis.Client
}

// NewQueue returns a Queue backed by a Redis list.
func NewQueue(rdb *redis.Client) Queue {
	return &redisQueue{rdb: rdb}
}

// Enqueue pushes one task-created event onto the queue.
func (q *redisQueue) Enqueue(ctx context.Context, taskID uint) error {
	msg := TaskMessage{TaskID: taskID, Tries: 0, Created: time.Now()}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, taskQueueKey, data).Err()
}

// Dequeue blocks up to timeout for the next event; (nil, nil) on timeout.
func (q *redisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*TaskMessage, error) {
	res, err := q.rdb.BRPop(ctx, timeout, taskQueueKey).Result()
	if err == redis.Nil {
		return nil, nil // Nothing queued within the timeout
	}
	if err != nil {
		return nil, err
	}
	var msg TaskMessage
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Retry puts a message back on the queue with its try counter bumped.
func (q *redisQueue) Retry(ctx context.Context, msg *TaskMessage) error {
	msg.Tries++
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, taskQueueKey, data).Err()
}

// Fail moves a message to the failed list for later inspection.
func (q *redisQueue) Fail(ctx context.Context, msg *TaskMessage, cause error) {
	failed := map[string]any{
		"message": msg,          // The event that could not be delivered
		"error":   cause.Error(), // Last failure
		"time":    time.Now(),    // When it was given up on
	}
	data, _ := json.Marshal(failed)
	q.rdb.LPush(ctx, failedQueueKey, data)
	// Log the move with context
	logrus.WithFields(logrus.Fields{
		"task_id": msg.TaskID,    // Task the event referenced
		"tries":   msg.Tries,     // Attempts made
		"error":   cause.Error(), // Last failure
	}).Error("Delivery event moved to failed queue") // Log the dead-letter move
}

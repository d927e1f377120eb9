package queue

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Task types consumed by the background worker.
const (
	TaskThumbnail = "thumbnail"
	TaskWelcome   = "welcome"
)

// Task is a unit of background work. Thumbnail tasks carry both ids, welcome
// tasks only the user id.
type Task struct {
	Type   string `json:"type"`
	FileID string `json:"fileId,omitempty"`
	UserID string `json:"userId"`
}

// Producer is the enqueue side handed to request-path code, decoupling the
// handlers from the queue implementation.
type Producer interface {
	Enqueue(ctx context.Context, task Task) error
}

// Handler processes a single task. Returning an error fails the task; the
// queue itself never retries, retry policy lives in the handler.
type Handler func(ctx context.Context, task Task) error

// Queue is an in-process task queue backed by a buffered channel. Delivery is
// at-least-once from the producer's perspective: Enqueue blocks until the
// task is buffered or the context is done.
type Queue struct {
	logger *slog.Logger
	tasks  chan Task
}

// New creates a queue buffering up to size tasks.
func New(logger *slog.Logger, size int) *Queue {
	return &Queue{
		logger: logger,
		tasks:  make(chan Task, size),
	}
}

// Enqueue submits a task, blocking while the buffer is full.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			slog.String("type", task.Type),
			slog.String("file_id", task.FileID),
			slog.String("user_id", task.UserID))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to enqueue task: %w", ctx.Err())
	}
}

// Run consumes tasks with the given number of workers until ctx is done.
// Task failures are logged and do not stop the workers.
func (q *Queue) Run(ctx context.Context, workers int, handler Handler) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case task := <-q.tasks:
					if err := handler(ctx, task); err != nil {
						q.logger.Error("task failed",
							slog.String("type", task.Type),
							slog.String("file_id", task.FileID),
							slog.String("user_id", task.UserID),
							slog.Any("error", err))
					}
				}
			}
		})
	}

	return g.Wait()
}

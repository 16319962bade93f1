package cron

import (
	"context"
	"errors"
	"time"

	"servicehub/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const fallbackSweepSchedule = "@every 5m"

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// StartSweepScheduler enqueues a completion sweep on every tick of schedule.
// An unparsable schedule falls back to every five minutes.
func StartSweepScheduler(q Enqueuer, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	job := func() { enqueueSweep(context.Background(), q, time.Minute, logger) }

	if _, err := c.AddFunc(schedule, job); err != nil {
		logger.Warn("sweep.schedule.invalid", zap.String("schedule", schedule), zap.Error(err))
		if _, err := c.AddFunc(fallbackSweepSchedule, job); err != nil {
			return nil, err
		}
	}
	c.Start()
	return c, nil
}

func enqueueSweep(ctx context.Context, q Enqueuer, uniqueFor time.Duration, logger *zap.Logger) {
	// zero AsOf: the worker sweeps as of when it runs
	task, opts, err := tasks.NewCompletionSweepTask(time.Time{}, uniqueFor)
	if err != nil {
		logger.Error("sweep.enqueue.build_failed", zap.Error(err))
		return
	}
	info, err := q.EnqueueContext(ctx, task, opts...)
	switch {
	case errors.Is(err, asynq.ErrDuplicateTask):
		logger.Debug("sweep.enqueue.duplicate")
	case err != nil:
		logger.Error("sweep.enqueue.failed", zap.Error(err))
	default:
		logger.Debug("sweep.enqueue.queued", zap.String("taskId", info.ID))
	}
}

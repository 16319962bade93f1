package cron

import (
	"context"
	"fmt"
	"time"

	"servicehub/config"
	"servicehub/services/appointment"
	"servicehub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// queueRedisOpt points asynq at REDIS_QUEUE_DB.
func queueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitSweepWorker runs the completion sweep worker in background and
// returns the server so the caller can shut it down.
func InitSweepWorker(svc appointment.AppointmentService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		queueRedisOpt(),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCompletionSweep, handleSweepTask(svc, logger))

	// Start async worker with retry logic
	go func() {
		logger.Info("sweep.worker.starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("sweep.worker.start_failed",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err),
				)
				if attempts == maxAttempts {
					logger.Fatal("sweep.worker.giving_up")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

func handleSweepTask(svc appointment.AppointmentService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseCompletionSweepPayload(task.Payload())
		if err != nil {
			logger.Error("sweep.task.invalid_payload", zap.Error(err))
			return fmt.Errorf("invalid sweep payload: %v: %w", err, asynq.SkipRetry)
		}

		count, err := svc.RunCompletionSweep(ctx, p.AsOf)
		if err != nil {
			return err
		}
		logger.Debug("sweep.task.done", zap.Int("count", count))
		return nil
	}
}

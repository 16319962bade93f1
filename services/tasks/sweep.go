package tasks

import (
	"time"

	"servicehub/models"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const TypeCompletionSweep = "appointment:completion_sweep"

// NewCompletionSweepTask builds a sweep task. uniqueFor keeps overlapping
// schedule ticks from queueing the same sweep twice.
func NewCompletionSweepTask(asOf time.Time, uniqueFor time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(models.SweepTaskPayload{AsOf: asOf})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCompletionSweep, b)
	opts := []asynq.Option{asynq.MaxRetry(3)}
	if uniqueFor > 0 {
		opts = append(opts, asynq.Unique(uniqueFor))
	}
	return task, opts, nil
}

// ParseCompletionSweepPayload decodes a sweep task payload.
func ParseCompletionSweepPayload(b []byte) (models.SweepTaskPayload, error) {
	var p models.SweepTaskPayload
	if len(b) == 0 {
		return p, nil
	}
	err := json.Unmarshal(b, &p)
	return p, err
}

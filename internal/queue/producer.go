package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Producer hands offboarding tasks to the worker fleet.
type Producer interface {
	Enqueue(ctx context.Context, task Task) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisProducer writes tasks to a Redis Stream. A nil logger falls
// back to slog.Default.
func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{client: client, stream: stream, logger: logger}
}

func (p *redisProducer) Enqueue(ctx context.Context, task Task) error {
	if task.TaskType == "" {
		return fmt.Errorf("enqueue: missing task_type")
	}
	if task.TaskType == TaskTypeOffboarding && task.EmployeeID == "" {
		return fmt.Errorf("enqueue: offboarding task missing employee_id")
	}

	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type": string(task.TaskType),
		"attempt":   attempt,
	}
	if task.EmployeeID != "" {
		fields["employee_id"] = task.EmployeeID
	}
	if task.TriggeredBy != "" {
		fields["triggered_by"] = task.TriggeredBy
	}
	if task.Department != "" {
		fields["department"] = task.Department
	}
	if task.Role != "" {
		fields["role"] = task.Role
	}
	if task.TraceID != nil && *task.TraceID != "" {
		fields["trace_id"] = *task.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued task", "task_type", task.TaskType, "employee_id", task.EmployeeID, "attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/internal/queue"
)

type RedisReclaimerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	MinIdle   time.Duration
	Interval  time.Duration
	BatchSize int64
}

// RedisReclaimer sweeps the consumer group's pending entries on an interval
// and re-processes messages whose original consumer went quiet — the crash
// window between XREADGROUP and XACK.
type RedisReclaimer struct {
	client    *redis.Client
	cfg       RedisReclaimerConfig
	consumer  *queue.RedisConsumer
	processor queue.MessageProcessor

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewRedisReclaimer(client *redis.Client, cfg RedisReclaimerConfig, consumer *queue.RedisConsumer, processor queue.MessageProcessor) *RedisReclaimer {
	return &RedisReclaimer{
		client:    client,
		cfg:       cfg,
		consumer:  consumer,
		processor: processor,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run blocks until Stop is called or the context is cancelled.
func (r *RedisReclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "offboard.worker.reclaimer",
	})

	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started",
		"interval", r.cfg.Interval,
		"min_idle", r.cfg.MinIdle,
		"stream", r.cfg.Stream,
		"group", r.cfg.Group)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			slog.InfoContext(ctx, "reclaimer stopping")
			return
		case <-ticker.C:
			if err := r.sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim sweep error", "error", err)
			}
		}
	}
}

// Stop signals the reclaimer and waits for the loop to exit.
func (r *RedisReclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// sweep claims up to BatchSize messages idle for at least MinIdle and runs
// each through the processor. XAUTOCLAIM transfers ownership atomically, so
// concurrent reclaimers never double-claim.
func (r *RedisReclaimer) sweep(ctx context.Context) error {
	claimed, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   r.cfg.Stream,
		Group:    r.cfg.Group,
		Consumer: r.cfg.Consumer,
		MinIdle:  r.cfg.MinIdle,
		Start:    "0-0",
		Count:    r.cfg.BatchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("xautoclaim: %w", err)
	}

	if len(claimed) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "claimed stale messages", "count", len(claimed))

	for _, raw := range claimed {
		if err := r.reprocess(ctx, raw); err != nil {
			slog.ErrorContext(ctx, "failed to reprocess claimed message",
				"error", err,
				"message_id", raw.ID)
		}
	}

	return nil
}

func (r *RedisReclaimer) reprocess(ctx context.Context, raw redis.XMessage) error {
	msgID := raw.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: &msgID,
	})

	msg, err := queue.ParseMessage(raw)
	if err != nil {
		// A malformed entry would be re-claimed forever; ack it away.
		slog.ErrorContext(ctx, "failed to parse claimed message, acknowledging to prevent loop",
			"error", err)
		_ = r.consumer.Ack(ctx, queue.Message{ID: raw.ID, Raw: raw})
		return nil
	}

	taskType := string(msg.TaskType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		EmployeeID: &msg.EmployeeID,
		TaskType:   &taskType,
	})

	start := time.Now()
	if err := r.processor(ctx, msg); err != nil {
		return fmt.Errorf("processing claimed message: %w", err)
	}

	slog.InfoContext(ctx, "claimed message processed",
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

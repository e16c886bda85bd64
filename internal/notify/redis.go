package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/offboardhq/offboard/internal/model"
)

type redisNotifier struct {
	client *redis.Client
	stream string
}

// NewRedisNotifier publishes risk alerts onto a Redis stream so downstream
// consumers (paging, chat bridges) can pick them up.
func NewRedisNotifier(client *redis.Client, stream string) Notifier {
	return &redisNotifier{client: client, stream: stream}
}

var _ Notifier = &redisNotifier{}

func (r *redisNotifier) NotifyRisk(ctx context.Context, n model.RiskNotification) error {
	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: streamValues(n),
	}).Err(); err != nil {
		return fmt.Errorf("publishing risk alert: %w", err)
	}
	return nil
}

// streamValues flattens a notification into the string fields Redis
// streams carry. Consumers must not depend on field order.
func streamValues(n model.RiskNotification) map[string]any {
	return map[string]any{
		"user_id":             n.UserID,
		"score":               strconv.FormatFloat(n.Score, 'f', 2, 64),
		"risk_tier":           string(n.RiskTier),
		"timeframe":           n.Timeframe,
		"critical_tickets":    strconv.Itoa(n.CriticalTickets),
		"high_complexity_prs": strconv.Itoa(n.HighComplexityPRs),
		"documentation_links": strconv.Itoa(n.DocumentationLinks),
		"specific_artifacts":  strings.Join(n.SpecificArtifacts, ","),
		"detected_at":         n.DetectedAt.UTC().Format(time.RFC3339),
	}
}

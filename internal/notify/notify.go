// Package notify delivers risk alerts for HIGH and CRITICAL intensity
// reports. The slog notifier always works; the Redis Streams notifier is
// layered on top when an alert stream is configured.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/offboardhq/offboard/internal/model"
)

type Notifier interface {
	NotifyRisk(ctx context.Context, notification model.RiskNotification) error
}

type slogNotifier struct{}

func NewSlogNotifier() Notifier {
	return &slogNotifier{}
}

var _ Notifier = &slogNotifier{}

func (s *slogNotifier) NotifyRisk(ctx context.Context, n model.RiskNotification) error {
	slog.WarnContext(ctx, "undocumented intensity risk detected",
		"user_id", n.UserID,
		"score", n.Score,
		"risk_tier", n.RiskTier,
		"timeframe", n.Timeframe,
		"critical_tickets", n.CriticalTickets,
		"high_complexity_prs", n.HighComplexityPRs,
		"documentation_links", n.DocumentationLinks,
		"specific_artifacts", strings.Join(n.SpecificArtifacts, ", "),
	)
	return nil
}

type multiNotifier struct {
	targets []Notifier
}

// NewMultiNotifier fans a notification out to every target. Each target is
// attempted even when an earlier one fails; failures are joined.
func NewMultiNotifier(targets ...Notifier) Notifier {
	return &multiNotifier{targets: targets}
}

var _ Notifier = &multiNotifier{}

func (m *multiNotifier) NotifyRisk(ctx context.Context, n model.RiskNotification) error {
	var errs []error
	for _, target := range m.targets {
		if err := target.NotifyRisk(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

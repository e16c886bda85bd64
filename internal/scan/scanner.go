package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/notify"
	"github.com/offboardhq/offboard/internal/service/issue_tracker"
	"github.com/offboardhq/offboard/internal/service/source_control"
)

// OrgScanner sweeps every active user through the engine.
type OrgScanner interface {
	// ScanOrganization enumerates the identities active inside the
	// lookback window, scores each one and notifies on HIGH and CRITICAL
	// reports. One user's scoring failure skips that user; a failure to
	// enumerate either roster aborts the scan.
	ScanOrganization(ctx context.Context) (*model.OrganizationScan, error)
}

type orgScanner struct {
	tickets  issue_tracker.IssueTrackerService
	source   source_control.SourceControlService
	engine   Engine
	notifier notify.Notifier
}

func NewOrgScanner(tickets issue_tracker.IssueTrackerService, source source_control.SourceControlService, engine Engine, notifier notify.Notifier) OrgScanner {
	return &orgScanner{tickets: tickets, source: source, engine: engine, notifier: notifier}
}

var _ OrgScanner = &orgScanner{}

func (s *orgScanner) ScanOrganization(ctx context.Context) (*model.OrganizationScan, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "offboard.scan.org"})

	startedAt := time.Now().UTC()
	window := model.NewLookbackWindow(startedAt)

	users, err := s.activeUsers(ctx, window.Start)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "organization scan started",
		"active_users", len(users),
		"window_start", window.Start,
		"window_end", window.End,
	)

	scan := &model.OrganizationScan{
		Window:    window,
		Reports:   make([]model.IntensityReport, 0, len(users)),
		Skipped:   make([]model.SkippedUser, 0),
		StartedAt: startedAt,
	}
	for _, userID := range users {
		report, err := s.engine.ScoreUser(ctx, userID, window)
		if err != nil {
			// One bad user must not sink the sweep.
			slog.WarnContext(ctx, "skipping user after scoring failure", "user_id", userID, "error", err)
			scan.Skipped = append(scan.Skipped, model.SkippedUser{UserID: userID, Reason: err.Error()})
			continue
		}
		if report.Score == 0 {
			continue
		}
		scan.Reports = append(scan.Reports, *report)

		if report.RiskTier.NeedsNotification() {
			if err := s.notify(ctx, report, startedAt); err != nil {
				// Alert delivery is best effort; the report itself is kept.
				slog.WarnContext(ctx, "risk notification failed", "user_id", userID, "risk_tier", report.RiskTier, "error", err)
			} else {
				scan.Summary.Notifications++
			}
		}
	}

	scan.Summary.UsersScanned = len(users)
	scan.Summary.UsersFlagged = len(scan.Reports)
	scan.Summary.UsersSkipped = len(scan.Skipped)
	for _, report := range scan.Reports {
		switch report.RiskTier {
		case model.RiskTierCritical:
			scan.Summary.CriticalRisk++
		case model.RiskTierHigh:
			scan.Summary.HighRisk++
		case model.RiskTierMedium:
			scan.Summary.MediumRisk++
		}
	}

	slog.InfoContext(ctx, "organization scan finished",
		"users_scanned", scan.Summary.UsersScanned,
		"users_flagged", scan.Summary.UsersFlagged,
		"users_skipped", scan.Summary.UsersSkipped,
		"notifications", scan.Summary.Notifications,
		"duration", time.Since(startedAt),
	)
	return scan, nil
}

// activeUsers unions both collaborators' views of who was active. Either
// roster failing aborts the scan: a partial roster would silently shrink
// coverage.
func (s *orgScanner) activeUsers(ctx context.Context, since time.Time) ([]string, error) {
	fromTickets, err := s.tickets.ListActiveUsers(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("enumerating ticket-active users: %w", err)
	}
	fromSource, err := s.source.ListActiveUsers(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("enumerating source-active users: %w", err)
	}

	seen := make(map[string]struct{}, len(fromTickets)+len(fromSource))
	users := make([]string, 0, len(fromTickets)+len(fromSource))
	for _, id := range append(fromTickets, fromSource...) {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func (s *orgScanner) notify(ctx context.Context, report *model.IntensityReport, detectedAt time.Time) error {
	return s.notifier.NotifyRisk(ctx, model.RiskNotification{
		UserID:             report.UserID,
		Score:              report.Score,
		RiskTier:           report.RiskTier,
		Timeframe:          report.Timeframe,
		CriticalTickets:    len(report.CriticalTickets),
		HighComplexityPRs:  len(report.HighComplexityPRs),
		DocumentationLinks: len(report.DocumentationURLs),
		SpecificArtifacts:  report.SpecificArtifacts,
		DetectedAt:         detectedAt,
	})
}

// Package scan implements the undocumented-intensity engine: per-user
// scoring over the six-month activity window, and the organization-wide
// sweep that folds per-user reports into a single scan.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/internal/classify"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/service"
	"github.com/offboardhq/offboard/internal/service/issue_tracker"
	"github.com/offboardhq/offboard/internal/service/source_control"
)

// Flagging thresholds. A ticket is high-activity past either bound and
// critical when its documentation ratio also sits below the floor; a pull
// request is flagged on complexity alone.
const (
	highActivityComments   = 3
	highActivitySummaryLen = 50
	criticalRatioFloor     = 0.3
	highComplexityFloor    = 6
)

// Engine scores a single user's undocumented intensity over a window.
type Engine interface {
	// ScoreUser computes the intensity report for userID over window.
	// Deterministic: identical collaborator responses yield identical
	// reports. A user with no qualifying activity gets the zero report
	// (score 0, tier LOW), never a nil one.
	ScoreUser(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error)
}

type engine struct {
	tickets issue_tracker.IssueTrackerService
	source  source_control.SourceControlService
	links   classify.LinkExtractor
}

func NewEngine(tickets issue_tracker.IssueTrackerService, source source_control.SourceControlService, links classify.LinkExtractor) Engine {
	return &engine{tickets: tickets, source: source, links: links}
}

var _ Engine = &engine{}

func (e *engine) ScoreUser(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error) {
	if userID == "" {
		return nil, service.NewValidationError("user_id", "must not be empty")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		UserID:    logger.Ptr(userID),
		Component: "offboard.scan.engine",
	})

	rawTickets, err := e.tickets.FetchTickets(ctx, userID, window.Start)
	if err != nil {
		return nil, fmt.Errorf("fetching tickets for %s: %w", userID, err)
	}
	rawPRs, err := e.source.FetchPullRequests(ctx, userID, window.Start)
	if err != nil {
		return nil, fmt.Errorf("fetching pull requests for %s: %w", userID, err)
	}

	// Collaborators are asked for records since window.Start, but nothing
	// outside the window may reach scoring, so every record is re-checked
	// here regardless of upstream filtering.
	docLinks := make(map[string]struct{})
	criticalTickets := make([]model.CriticalTicket, 0)
	for _, ticket := range rawTickets {
		if !window.Contains(ticket.ActivityAt()) {
			continue
		}
		links := e.links.DocLinks(ticket.Description)
		for _, link := range links {
			docLinks[link] = struct{}{}
		}
		ratio := documentationRatio(len(ticket.Description), len(links), ticket.CommentCount)
		if highActivity(ticket) && ratio < criticalRatioFloor {
			criticalTickets = append(criticalTickets, model.CriticalTicket{
				Key:                ticket.Key,
				Summary:            ticket.Summary,
				CommentCount:       ticket.CommentCount,
				DocumentationRatio: ratio,
				ActivityAt:         ticket.ActivityAt(),
			})
		}
	}

	highComplexityPRs := make([]model.HighComplexityPR, 0)
	for _, pr := range rawPRs {
		if !window.Contains(pr.ActivityAt()) {
			continue
		}
		for _, link := range e.links.DocLinks(pr.Title + "\n" + pr.Description) {
			docLinks[link] = struct{}{}
		}
		if pr.Complexity >= highComplexityFloor {
			highComplexityPRs = append(highComplexityPRs, model.HighComplexityPR{
				Number:     pr.Number,
				Title:      pr.Title,
				Complexity: pr.Complexity,
				ActivityAt: pr.ActivityAt(),
			})
		}
	}

	links := make([]string, 0, len(docLinks))
	for link := range docLinks {
		links = append(links, link)
	}
	sort.Strings(links)

	report := &model.IntensityReport{
		UserID:            userID,
		Timeframe:         window.Label(),
		Window:            window,
		CriticalTickets:   criticalTickets,
		HighComplexityPRs: highComplexityPRs,
		DocumentationURLs: links,
		Score:             intensityScore(len(criticalTickets), len(highComplexityPRs), len(links)),
		SpecificArtifacts: artifactRefs(criticalTickets, highComplexityPRs),
	}
	report.RiskTier = model.RiskTierFor(report.Score)

	slog.InfoContext(ctx, "user scored",
		"score", report.Score,
		"risk_tier", report.RiskTier,
		"critical_tickets", len(criticalTickets),
		"high_complexity_prs", len(highComplexityPRs),
		"documentation_links", len(links),
	)
	return report, nil
}

// documentationRatio folds description length, documentation link count and
// comment count into a 0..1 measure of how documented a ticket is. Inputs
// are non-negative counts, so only the upper bound needs clamping.
func documentationRatio(descriptionLen, linkCount, commentCount int) float64 {
	raw := float64(descriptionLen)/100 + 2*float64(linkCount) + 0.5*float64(commentCount)
	if raw > 10 {
		raw = 10
	}
	return raw / 10
}

// highActivity reports whether a ticket saw enough churn to matter: a long
// discussion or a non-trivial summary.
func highActivity(ticket model.RawTicket) bool {
	return ticket.CommentCount > highActivityComments || len(ticket.Summary) > highActivitySummaryLen
}

// intensityScore divides flagged work by documentation evidence. The
// denominator never drops below one, so the score stays finite; it is
// unbounded above when evidence is scarce.
func intensityScore(criticalTickets, highComplexityPRs, docLinks int) float64 {
	denominator := docLinks
	if denominator < 1 {
		denominator = 1
	}
	return float64(criticalTickets+highComplexityPRs) / float64(denominator)
}

func artifactRefs(tickets []model.CriticalTicket, prs []model.HighComplexityPR) []string {
	refs := make([]string, 0, len(tickets)+len(prs))
	for _, t := range tickets {
		refs = append(refs, t.Key)
	}
	for _, pr := range prs {
		refs = append(refs, fmt.Sprintf("PR #%d", pr.Number))
	}
	return refs
}

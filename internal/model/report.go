package model

import (
	"fmt"
	"strconv"
	"time"
)

type RiskTier string

const (
	RiskTierCritical RiskTier = "CRITICAL"
	RiskTierHigh     RiskTier = "HIGH"
	RiskTierMedium   RiskTier = "MEDIUM"
	RiskTierLow      RiskTier = "LOW"
)

// Risk tier breakpoints over the undocumented-intensity score.
const (
	riskThresholdCritical = 8.0
	riskThresholdHigh     = 6.0
	riskThresholdMedium   = 3.0
)

// RiskTierFor maps a score onto its tier. Monotonic: a higher score never
// yields a lower tier.
func RiskTierFor(score float64) RiskTier {
	switch {
	case score >= riskThresholdCritical:
		return RiskTierCritical
	case score >= riskThresholdHigh:
		return RiskTierHigh
	case score >= riskThresholdMedium:
		return RiskTierMedium
	default:
		return RiskTierLow
	}
}

// NeedsNotification reports whether the tier warrants an alert to the
// knowledge-management channel.
func (t RiskTier) NeedsNotification() bool {
	return t == RiskTierHigh || t == RiskTierCritical
}

// DocumentationLevelFor buckets a documentation ratio (0..1) into the
// coarse level attached to artifacts.
func DocumentationLevelFor(ratio float64) DocumentationLevel {
	switch {
	case ratio <= 0:
		return DocumentationNone
	case ratio < 0.3:
		return DocumentationMinimal
	case ratio < 0.7:
		return DocumentationAdequate
	default:
		return DocumentationComprehensive
	}
}

// CriticalTicket is derived during scoring: a high-activity ticket whose
// documentation ratio fell below the critical threshold.
type CriticalTicket struct {
	Key                string    `json:"key"`
	Summary            string    `json:"summary"`
	CommentCount       int       `json:"comment_count"`
	DocumentationRatio float64   `json:"documentation_ratio"`
	ActivityAt         time.Time `json:"activity_at"`
}

// HighComplexityPR is derived during scoring: a pull request whose opaque
// complexity score reached the high-complexity threshold.
type HighComplexityPR struct {
	Number     int       `json:"number"`
	Title      string    `json:"title"`
	Complexity int       `json:"complexity"`
	ActivityAt time.Time `json:"activity_at"`
}

// IntensityReport is the per-user outcome of an undocumented-intensity
// scan. A user with no qualifying artifacts gets the zero-valued report
// (score 0, tier LOW), never a nil one.
type IntensityReport struct {
	UserID            string             `json:"user_id"`
	Timeframe         string             `json:"timeframe"`
	Window            TimeWindow         `json:"window"`
	CriticalTickets   []CriticalTicket   `json:"critical_tickets"`
	HighComplexityPRs []HighComplexityPR `json:"high_complexity_prs"`
	DocumentationURLs []string           `json:"documentation_urls"`
	Score             float64            `json:"score"`
	RiskTier          RiskTier           `json:"risk_tier"`
	SpecificArtifacts []string           `json:"specific_artifacts"`
}

// Artifacts flattens the report's flagged records into the normalized
// union the interview pipeline anchors questions on.
func (r *IntensityReport) Artifacts() []CodeArtifact {
	artifacts := make([]CodeArtifact, 0, len(r.CriticalTickets)+len(r.HighComplexityPRs))
	for _, t := range r.CriticalTickets {
		artifacts = append(artifacts, CodeArtifact{
			Type:                 ArtifactTypeTicket,
			ID:                   t.Key,
			Title:                t.Summary,
			Author:               r.UserID,
			Timestamp:            t.ActivityAt,
			Documentation:        DocumentationLevelFor(t.DocumentationRatio),
			ComplexityIndicators: []string{fmt.Sprintf("%d comments", t.CommentCount)},
		})
	}
	for _, pr := range r.HighComplexityPRs {
		artifacts = append(artifacts, CodeArtifact{
			Type:      ArtifactTypePR,
			ID:        strconv.Itoa(pr.Number),
			Title:     pr.Title,
			Author:    r.UserID,
			Timestamp: pr.ActivityAt,
			// PRs enter the report on complexity alone; no per-record
			// documentation signal exists at this point.
			Documentation:        DocumentationMinimal,
			ComplexityIndicators: []string{fmt.Sprintf("complexity %d/10", pr.Complexity)},
		})
	}
	return artifacts
}

// OrganizationScan is the fold outcome of scanning every active user.
// Skipped records per-user failures without aborting the sweep.
type OrganizationScan struct {
	Window    TimeWindow        `json:"window"`
	Reports   []IntensityReport `json:"reports"`
	Skipped   []SkippedUser     `json:"skipped"`
	Summary   ScanSummary       `json:"summary"`
	StartedAt time.Time         `json:"started_at"`
}

type SkippedUser struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

type ScanSummary struct {
	UsersScanned  int `json:"users_scanned"`
	UsersFlagged  int `json:"users_flagged"`
	CriticalRisk  int `json:"critical_risk"`
	HighRisk      int `json:"high_risk"`
	MediumRisk    int `json:"medium_risk"`
	UsersSkipped  int `json:"users_skipped"`
	Notifications int `json:"notifications"`
}

// RiskNotification is the payload emitted for HIGH and CRITICAL reports.
type RiskNotification struct {
	UserID             string    `json:"user_id"`
	Score              float64   `json:"score"`
	RiskTier           RiskTier  `json:"risk_tier"`
	Timeframe          string    `json:"timeframe"`
	CriticalTickets    int       `json:"critical_tickets"`
	HighComplexityPRs  int       `json:"high_complexity_prs"`
	DocumentationLinks int       `json:"documentation_links"`
	SpecificArtifacts  []string  `json:"specific_artifacts"`
	DetectedAt         time.Time `json:"detected_at"`
}

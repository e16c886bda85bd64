package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/offboardhq/offboard/internal/classify"
	"github.com/offboardhq/offboard/internal/model"
)

// Confidence heuristic: an automated-only archive starts at the base;
// every answered question adds a fixed increment, capped below certainty.
const (
	confidenceBase        = 0.35
	confidencePerResponse = 0.08
	confidenceCap         = 0.95
)

// riskMarkers flag answers that likely carry tacit operational knowledge.
var riskMarkers = []string{
	"workaround", "gotcha", "legacy", "careful", "undocumented",
	"hack", "fragile", "quirk", "tribal", "manually",
}

type heuristicAgent struct {
	tags classify.TagExtractor
}

// NewHeuristicAgent returns the deterministic default agent. It never
// calls out to a model; interviews are driven entirely by the generated
// questions and extraction by keyword matching.
func NewHeuristicAgent(tags classify.TagExtractor) Agent {
	return &heuristicAgent{tags: tags}
}

var _ Agent = &heuristicAgent{}

func (a *heuristicAgent) ConductInterview(_ context.Context, ic InterviewContext) (*InterviewOutcome, error) {
	var prs, commits, tickets int
	for _, artifact := range ic.Artifacts {
		switch artifact.Type {
		case model.ArtifactTypePR:
			prs++
		case model.ArtifactTypeCommit:
			commits++
		case model.ArtifactTypeTicket:
			tickets++
		}
	}

	info := []string{
		fmt.Sprintf("Interview anchored on %d artifacts: %d tickets, %d pull requests, %d commits.",
			len(ic.Artifacts), tickets, prs, commits),
	}
	if ic.RiskTier != "" {
		info = append(info, fmt.Sprintf("Undocumented-intensity scan scored %.1f (%s) over the %s window.",
			ic.Score, ic.RiskTier, model.WindowLabel))
	}

	return &InterviewOutcome{ContextualInfo: info}, nil
}

func (a *heuristicAgent) ExtractTacitKnowledge(_ context.Context, responses []model.InterviewResponse, ic InterviewContext) (*KnowledgeExtraction, error) {
	var corpus strings.Builder
	for _, artifact := range ic.Artifacts {
		corpus.WriteString(artifact.Title)
		corpus.WriteString("\n")
	}

	answered := 0
	var insights []string
	for _, r := range responses {
		answer := strings.TrimSpace(r.Answer)
		if answer == "" {
			continue
		}
		answered++
		corpus.WriteString(answer)
		corpus.WriteString("\n")
		if containsRiskMarker(answer) {
			insights = append(insights, answer)
		}
	}

	confidence := confidenceBase + confidencePerResponse*float64(answered)
	if confidence > confidenceCap {
		confidence = confidenceCap
	}

	return &KnowledgeExtraction{
		Categories:       a.tags.Tags(corpus.String()),
		CriticalInsights: insights,
		ConfidenceScore:  confidence,
	}, nil
}

func containsRiskMarker(answer string) bool {
	lower := strings.ToLower(answer)
	for _, marker := range riskMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

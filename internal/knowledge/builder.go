// Package knowledge assembles the artifact archived when an employee
// leaves: scan findings, interview answers and the agent's distillation,
// folded into one wiki-ready document with references back to every
// scanned artifact.
package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/offboardhq/offboard/internal/agent"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/service"
)

// noResponsesMarker is written into the artifact content when the
// interview captured nothing; the archive must say so explicitly.
const noResponsesMarker = "No interview responses were captured. This analysis is automated-only."

// BuildInput carries everything the builder folds together. ArtifactID is
// minted by the caller so assembly stays deterministic.
type BuildInput struct {
	ArtifactID     string
	EmployeeID     string
	Department     string
	Role           string
	Report         *model.IntensityReport
	Questions      []model.Question
	Responses      []model.InterviewResponse
	ContextualInfo []string
	Extraction     *agent.KnowledgeExtraction
	ExtractedAt    time.Time
}

// Build assembles the knowledge artifact. Deterministic: identical input
// yields an identical artifact.
func Build(_ context.Context, input BuildInput) (*model.KnowledgeArtifact, error) {
	if input.EmployeeID == "" {
		return nil, service.NewValidationError("employee_id", "must not be empty")
	}
	if input.Report == nil {
		return nil, service.NewValidationError("report", "scan results are required")
	}
	if input.Extraction == nil {
		return nil, service.NewValidationError("extraction", "agent extraction is required")
	}

	related := splitRelated(input.Questions)

	return &model.KnowledgeArtifact{
		ID:              input.ArtifactID,
		EmployeeID:      input.EmployeeID,
		Title:           fmt.Sprintf("Offboarding knowledge capture: %s (%s)", input.EmployeeID, input.ExtractedAt.Format("2006-01-02")),
		Content:         buildContent(input),
		Tags:            mergeTags(input.Extraction.Categories, input.Report.RiskTier),
		Confidence:      clampConfidence(input.Extraction.ConfidenceScore),
		ExtractedAt:     input.ExtractedAt,
		RelatedTickets:  related.tickets,
		RelatedPRs:      related.prs,
		RelatedCommits:  related.commits,
		SourceArtifacts: sourceArtifacts(input.Report.SpecificArtifacts, input.Questions),
	}, nil
}

type relatedRefs struct {
	tickets []string
	prs     []string
	commits []string
}

func splitRelated(questions []model.Question) relatedRefs {
	related := relatedRefs{
		tickets: make([]string, 0),
		prs:     make([]string, 0),
		commits: make([]string, 0),
	}
	for _, q := range questions {
		switch q.ArtifactType {
		case model.ArtifactTypeTicket:
			related.tickets = append(related.tickets, q.ArtifactRef)
		case model.ArtifactTypePR:
			related.prs = append(related.prs, q.ArtifactRef)
		case model.ArtifactTypeCommit:
			related.commits = append(related.commits, q.ArtifactRef)
		}
	}
	return related
}

// sourceArtifacts keeps every scan reference and appends interview-only
// anchors (commits) after them, order-preserving and de-duplicated.
func sourceArtifacts(scanRefs []string, questions []model.Question) []string {
	seen := make(map[string]struct{}, len(scanRefs)+len(questions))
	refs := make([]string, 0, len(scanRefs)+len(questions))
	for _, ref := range scanRefs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	for _, q := range questions {
		if _, ok := seen[q.ArtifactRef]; ok {
			continue
		}
		seen[q.ArtifactRef] = struct{}{}
		refs = append(refs, q.ArtifactRef)
	}
	return refs
}

func mergeTags(categories []string, tier model.RiskTier) []string {
	seen := make(map[string]struct{}, len(categories)+1)
	tags := make([]string, 0, len(categories)+1)
	for _, tag := range categories {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if tier != "" {
		riskTag := "risk-" + strings.ToLower(string(tier))
		if _, ok := seen[riskTag]; !ok {
			tags = append(tags, riskTag)
		}
	}
	sort.Strings(tags)
	return tags
}

func clampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// buildContent renders plain text with blank-line paragraph breaks; the
// wiki collaborator converts it to storage format.
func buildContent(input BuildInput) string {
	var paragraphs []string

	header := fmt.Sprintf("Offboarding knowledge capture for %s%s.", input.EmployeeID, orgLine(input.Department, input.Role))
	header += fmt.Sprintf("\nUndocumented-intensity score %.1f (%s) over the %s window.",
		input.Report.Score, input.Report.RiskTier, input.Report.Timeframe)
	paragraphs = append(paragraphs, header)

	var findings strings.Builder
	findings.WriteString("Scan findings:")
	findings.WriteString(fmt.Sprintf("\nCritical tickets (%d): %s", len(input.Report.CriticalTickets), ticketKeys(input.Report.CriticalTickets)))
	findings.WriteString(fmt.Sprintf("\nHigh-complexity merge requests (%d): %s", len(input.Report.HighComplexityPRs), prRefs(input.Report.HighComplexityPRs)))
	findings.WriteString(fmt.Sprintf("\nDocumentation links found: %d", len(input.Report.DocumentationURLs)))
	paragraphs = append(paragraphs, findings.String())

	answered := 0
	for _, r := range input.Responses {
		if strings.TrimSpace(r.Answer) != "" {
			answered++
		}
	}
	if len(input.Responses) == 0 {
		paragraphs = append(paragraphs, noResponsesMarker)
	} else {
		paragraphs = append(paragraphs, fmt.Sprintf("Interview: %d questions asked, %d answered.", len(input.Questions), answered))
		for _, r := range input.Responses {
			answer := strings.TrimSpace(r.Answer)
			if answer == "" {
				answer = "(no answer)"
			}
			paragraphs = append(paragraphs, fmt.Sprintf("Q: %s\nA: %s", r.Question, answer))
		}
	}

	if len(input.Extraction.CriticalInsights) > 0 {
		paragraphs = append(paragraphs, "Critical insights:\n"+bulleted(input.Extraction.CriticalInsights))
	}
	if len(input.ContextualInfo) > 0 {
		paragraphs = append(paragraphs, "Context:\n"+bulleted(input.ContextualInfo))
	}

	return strings.Join(paragraphs, "\n\n")
}

func orgLine(department, role string) string {
	switch {
	case department != "" && role != "":
		return fmt.Sprintf(" (%s, %s)", department, role)
	case department != "":
		return fmt.Sprintf(" (%s)", department)
	case role != "":
		return fmt.Sprintf(" (%s)", role)
	default:
		return ""
	}
}

func ticketKeys(tickets []model.CriticalTicket) string {
	if len(tickets) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(tickets))
	for _, t := range tickets {
		keys = append(keys, t.Key)
	}
	return strings.Join(keys, ", ")
}

func prRefs(prs []model.HighComplexityPR) string {
	if len(prs) == 0 {
		return "none"
	}
	refs := make([]string, 0, len(prs))
	for _, pr := range prs {
		refs = append(refs, fmt.Sprintf("PR #%d", pr.Number))
	}
	return strings.Join(refs, ", ")
}

func bulleted(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

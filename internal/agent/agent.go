// Package agent defines the conversational collaborator that turns scan
// output into an interview and distills the answers. The default
// implementation is a deterministic heuristic; an LLM-backed one can be
// swapped in by configuration.
package agent

import (
	"context"

	"github.com/offboardhq/offboard/internal/model"
)

// InterviewContext carries everything the agent may ground on: the scan
// outcome for the employee and the artifact-anchored questions already
// generated. Agents may add to the question set but never replace it.
type InterviewContext struct {
	SessionID         string
	EmployeeID        string
	Department        string
	Role              string
	Score             float64
	RiskTier          model.RiskTier
	Artifacts         []model.CodeArtifact
	SpecificArtifacts []string
	Questions         []model.Question
}

// InterviewOutcome is the agent's contribution to the interview phase.
type InterviewOutcome struct {
	FollowUpQuestions []string
	ContextualInfo    []string
}

// KnowledgeExtraction is the agent's distillation of interview answers.
type KnowledgeExtraction struct {
	Categories       []string
	CriticalInsights []string
	ConfidenceScore  float64
}

type Agent interface {
	ConductInterview(ctx context.Context, ic InterviewContext) (*InterviewOutcome, error)
	ExtractTacitKnowledge(ctx context.Context, responses []model.InterviewResponse, ic InterviewContext) (*KnowledgeExtraction, error)
}

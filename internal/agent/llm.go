package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/offboardhq/offboard/common/llm"
	"github.com/offboardhq/offboard/internal/model"
	"log/slog"
)

type InterviewOutcomeResponse struct {
	FollowUpQuestions []string `json:"follow_up_questions" jsonschema_description:"Probing follow-up questions beyond the anchored set, max 5"`
	ContextualInfo    []string `json:"contextual_info" jsonschema_description:"Observations about the employee's knowledge areas worth recording"`
}

type ExtractionResponse struct {
	Categories       []string `json:"categories" jsonschema_description:"Knowledge categories covered by the answers (lowercase)"`
	CriticalInsights []string `json:"critical_insights" jsonschema_description:"Verbatim or lightly condensed answers that carry operational risk knowledge"`
	ConfidenceScore  float64  `json:"confidence_score" jsonschema_description:"How complete the captured knowledge is, 0.0-1.0"`
}

var (
	interviewSchema  = llm.GenerateSchema[InterviewOutcomeResponse]()
	extractionSchema = llm.GenerateSchema[ExtractionResponse]()
)

type llmAgent struct {
	llm      llm.Client
	fallback Agent
}

// NewLLMAgent returns an agent that enriches interviews and extraction
// through a language model. The fallback handles requests when the model
// keeps failing, so an offboarding never blocks on a provider outage.
func NewLLMAgent(client llm.Client, fallback Agent) Agent {
	return &llmAgent{llm: client, fallback: fallback}
}

var _ Agent = &llmAgent{}

func (a *llmAgent) ConductInterview(ctx context.Context, ic InterviewContext) (*InterviewOutcome, error) {
	var response InterviewOutcomeResponse
	err := a.chatWithRetry(ctx, llm.Request{
		SystemPrompt: interviewSystemPrompt,
		UserPrompt:   buildInterviewPrompt(ic),
		SchemaName:   "interview_outcome",
		Schema:       interviewSchema,
		Temperature:  llm.Temp(0.3),
	}, &response)
	if err != nil {
		slog.WarnContext(ctx, "llm interview failed, using heuristic agent", "error", err)
		return a.fallback.ConductInterview(ctx, ic)
	}

	return &InterviewOutcome{
		FollowUpQuestions: response.FollowUpQuestions,
		ContextualInfo:    response.ContextualInfo,
	}, nil
}

func (a *llmAgent) ExtractTacitKnowledge(ctx context.Context, responses []model.InterviewResponse, ic InterviewContext) (*KnowledgeExtraction, error) {
	if len(responses) == 0 {
		// Nothing for a model to read; the heuristic produces the
		// automated-only extraction.
		return a.fallback.ExtractTacitKnowledge(ctx, responses, ic)
	}

	var response ExtractionResponse
	err := a.chatWithRetry(ctx, llm.Request{
		SystemPrompt: extractionSystemPrompt,
		UserPrompt:   buildExtractionPrompt(responses, ic),
		SchemaName:   "knowledge_extraction",
		Schema:       extractionSchema,
		Temperature:  llm.Temp(0.1),
	}, &response)
	if err != nil {
		slog.WarnContext(ctx, "llm extraction failed, using heuristic agent", "error", err)
		return a.fallback.ExtractTacitKnowledge(ctx, responses, ic)
	}

	return &KnowledgeExtraction{
		Categories:       response.Categories,
		CriticalInsights: response.CriticalInsights,
		ConfidenceScore:  clamp01(response.ConfidenceScore),
	}, nil
}

// chatWithRetry retries transient provider failures with exponential
// backoff (1s, 2s, 4s) before giving up.
func (a *llmAgent) chatWithRetry(ctx context.Context, req llm.Request, result any) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		_, err = a.llm.Chat(ctx, req, result)
		if err == nil {
			return nil
		}
		if !llm.IsRetryable(ctx, err) {
			return fmt.Errorf("agent chat: %w", err)
		}
		slog.WarnContext(ctx, "agent chat retry", "attempt", attempt+1, "error", err)
		time.Sleep(time.Duration(1<<attempt) * time.Second)
	}
	return fmt.Errorf("agent chat after 3 attempts: %w", err)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func buildInterviewPrompt(ic InterviewContext) string {
	var sb strings.Builder

	sb.WriteString("## Departing employee\n")
	sb.WriteString(ic.EmployeeID)
	if ic.Role != "" {
		sb.WriteString(" (" + ic.Role)
		if ic.Department != "" {
			sb.WriteString(", " + ic.Department)
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n\n## Scan outcome\n")
	fmt.Fprintf(&sb, "Undocumented-intensity score %.1f, tier %s.\n\n", ic.Score, ic.RiskTier)

	sb.WriteString("## Flagged artifacts\n")
	for _, artifact := range ic.Artifacts {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", artifact.Type, artifact.Ref(), artifact.Title)
	}

	sb.WriteString("\n## Anchored questions (already asked, do not repeat)\n")
	for _, q := range ic.Questions {
		sb.WriteString("- " + q.Text + "\n")
	}

	return sb.String()
}

func buildExtractionPrompt(responses []model.InterviewResponse, ic InterviewContext) string {
	var sb strings.Builder

	sb.WriteString("## Interview transcript\n")
	for _, r := range responses {
		sb.WriteString("Q: " + r.Question + "\n")
		sb.WriteString("A: " + r.Answer + "\n\n")
	}

	sb.WriteString("## Artifacts under discussion\n")
	for _, ref := range ic.SpecificArtifacts {
		sb.WriteString("- " + ref + "\n")
	}

	return sb.String()
}

const interviewSystemPrompt = `You help capture knowledge from departing engineers.

You receive the outcome of an undocumented-intensity scan: artifacts the
engineer worked on heavily but documented poorly, plus the interview
questions already anchored to those artifacts.

Produce:
- follow_up_questions: at most 5 additional probing questions. Target the
  gaps the anchored questions miss: operational procedures, failure modes,
  informal ownership, things only this person knows. Never repeat or
  rephrase an anchored question.
- contextual_info: short observations about where this person's knowledge
  is concentrated, useful to whoever reads the archive later.

Be specific to the artifacts given. Generic offboarding questions are
worthless.`

const extractionSystemPrompt = `You distill offboarding interview answers into archival knowledge.

Produce:
- categories: lowercase topic labels covering the answers (e.g. database,
  deployment, billing)
- critical_insights: the answers (condensed where long) that carry
  operational risk: workarounds, fragile behavior, undocumented
  procedures, tribal knowledge. Keep the employee's concrete details.
- confidence_score: 0.0-1.0, how completely the transcript captures the
  knowledge the artifacts imply. Sparse or evasive answers score low.

Never invent facts that are not in the transcript.`

// Package workflow drives the cognitive-offboarding state machine:
// TRIGGERED → SCANNING → SCAN_COMPLETE → INTERVIEWING → INTERVIEW_COMPLETE
// → ARCHIVING → ARCHIVED, with FAILED reachable from any non-terminal
// state. Phases are serialized per session and run under a phase timeout.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/offboardhq/offboard/common/id"
	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/internal/agent"
	"github.com/offboardhq/offboard/internal/interview"
	"github.com/offboardhq/offboard/internal/knowledge"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/service"
	"github.com/offboardhq/offboard/internal/service/source_control"
	"github.com/offboardhq/offboard/internal/service/wiki"
	"github.com/offboardhq/offboard/internal/store"
)

// maxCommitAnchors caps how many recent commits enrich the interview.
const maxCommitAnchors = 5

// TriggerParams starts a workflow for one departing employee.
type TriggerParams struct {
	EmployeeID  string
	TriggeredBy string
	Department  string
	Role        string
}

type Orchestrator interface {
	// Trigger registers a new session in TRIGGERED state and anchors its
	// lookback window. Empty EmployeeID is a ValidationError.
	Trigger(ctx context.Context, params TriggerParams) (*model.WorkflowSession, error)

	// ExecuteScanPhase scores the employee and stores the report. Only
	// legal from TRIGGERED; a collaborator failure leaves the session
	// FAILED and returns a ScanError.
	ExecuteScanPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error)

	// ExecuteInterviewPhase generates artifact-anchored questions and
	// runs the conversational agent. Only legal from SCAN_COMPLETE.
	ExecuteInterviewPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error)

	// ExecuteArchivePhase distills responses into a knowledge artifact
	// and writes the archive page. Only legal from INTERVIEW_COMPLETE;
	// empty responses produce an automated-only artifact.
	ExecuteArchivePhase(ctx context.Context, sessionID string, responses []model.InterviewResponse) (*model.WorkflowSession, error)

	// ExecuteCompleteWorkflow runs trigger plus all three phases,
	// failing fast on the first error.
	ExecuteCompleteWorkflow(ctx context.Context, params TriggerParams, responses []model.InterviewResponse) (*model.WorkflowSession, error)

	// ValidateCompletion audits a session: terminal ARCHIVED state, all
	// result slots populated, every scanned artifact referenced by the
	// archive.
	ValidateCompletion(ctx context.Context, sessionID string) (*model.CompletionValidation, error)

	GetSession(ctx context.Context, sessionID string) (*model.WorkflowSession, error)
	ListSessions(ctx context.Context) ([]model.WorkflowSession, error)
}

// Config carries orchestrator tunables. A zero PhaseTimeout disables the
// per-phase deadline.
type Config struct {
	PhaseTimeout time.Duration
}

type orchestrator struct {
	sessions    store.SessionStore
	engine      scan.Engine
	source      source_control.SourceControlService
	interviewer agent.Agent
	archive     wiki.ArchiveWriter
	timeout     time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(sessions store.SessionStore, engine scan.Engine, source source_control.SourceControlService, interviewer agent.Agent, archive wiki.ArchiveWriter, cfg Config) Orchestrator {
	return &orchestrator{
		sessions:    sessions,
		engine:      engine,
		source:      source,
		interviewer: interviewer,
		archive:     archive,
		timeout:     cfg.PhaseTimeout,
		locks:       make(map[string]*sync.Mutex),
	}
}

var _ Orchestrator = &orchestrator{}

func (o *orchestrator) Trigger(ctx context.Context, params TriggerParams) (*model.WorkflowSession, error) {
	if params.EmployeeID == "" {
		return nil, service.NewValidationError("employee_id", "must not be empty")
	}

	now := time.Now().UTC()
	session := &model.WorkflowSession{
		SessionID:   id.NewString(),
		EmployeeID:  params.EmployeeID,
		TriggeredBy: params.TriggeredBy,
		Department:  params.Department,
		Role:        params.Role,
		// The window is anchored once here; every phase reuses it.
		Window: model.NewLookbackWindow(now),
	}
	session.Transition(model.StateTriggered, now)

	if err := o.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("registering session: %w", err)
	}

	ctx = o.sessionContext(ctx, session)
	slog.InfoContext(ctx, "offboarding workflow triggered", "triggered_by", params.TriggeredBy)
	return session, nil
}

func (o *orchestrator) ExecuteScanPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := o.phaseContext(ctx)
	defer cancel()

	session, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session.State != model.StateTriggered {
		return nil, &PhaseOrderError{Current: session.State, Message: msgTriggerBeforeScan}
	}

	ctx = o.sessionContext(ctx, session)
	session.Transition(model.StateScanning, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	report, err := o.engine.ScoreUser(ctx, session.EmployeeID, session.Window)
	if err != nil {
		return nil, o.fail(ctx, session, &ScanError{SessionID: sessionID, Err: err})
	}

	session.ScanResults = report
	session.Transition(model.StateScanComplete, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	slog.InfoContext(ctx, "scan phase complete",
		"score", report.Score,
		"risk_tier", report.RiskTier,
		"specific_artifacts", len(report.SpecificArtifacts),
	)
	return session, nil
}

func (o *orchestrator) ExecuteInterviewPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := o.phaseContext(ctx)
	defer cancel()

	session, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session.State != model.StateScanComplete {
		return nil, &PhaseOrderError{Current: session.State, Message: msgScanBeforeInterview}
	}

	ctx = o.sessionContext(ctx, session)
	session.Transition(model.StateInterviewing, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	artifacts := session.ScanResults.Artifacts()
	artifacts = append(artifacts, o.commitAnchors(ctx, session)...)
	questions := interview.Generate(artifacts)

	outcome, err := o.interviewer.ConductInterview(ctx, o.interviewContext(session, artifacts, questions))
	if err != nil {
		return nil, o.fail(ctx, session, &InterviewError{SessionID: sessionID, Err: err})
	}

	session.InterviewResults = &model.InterviewResult{
		SessionID:          session.SessionID,
		Questions:          questions,
		FollowUps:          outcome.FollowUpQuestions,
		ContextualInfo:     outcome.ContextualInfo,
		ArtifactsAnalyzed:  len(artifacts),
		QuestionsGenerated: len(questions) + len(outcome.FollowUpQuestions),
		CompletedAt:        time.Now().UTC(),
	}
	session.Transition(model.StateInterviewComplete, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	slog.InfoContext(ctx, "interview phase complete",
		"artifacts_analyzed", len(artifacts),
		"questions_generated", session.InterviewResults.QuestionsGenerated,
	)
	return session, nil
}

func (o *orchestrator) ExecuteArchivePhase(ctx context.Context, sessionID string, responses []model.InterviewResponse) (*model.WorkflowSession, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := o.phaseContext(ctx)
	defer cancel()

	session, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if session.State != model.StateInterviewComplete {
		return nil, &PhaseOrderError{Current: session.State, Message: msgInterviewBeforeArchive}
	}

	ctx = o.sessionContext(ctx, session)
	session.Transition(model.StateArchiving, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	questions := session.InterviewResults.Questions
	extraction, err := o.interviewer.ExtractTacitKnowledge(ctx, responses,
		o.interviewContext(session, session.ScanResults.Artifacts(), questions))
	if err != nil {
		return nil, o.fail(ctx, session, &ArchiveError{SessionID: sessionID, Err: err})
	}

	artifact, err := knowledge.Build(ctx, knowledge.BuildInput{
		ArtifactID:     id.NewString(),
		EmployeeID:     session.EmployeeID,
		Department:     session.Department,
		Role:           session.Role,
		Report:         session.ScanResults,
		Questions:      questions,
		Responses:      responses,
		ContextualInfo: session.InterviewResults.ContextualInfo,
		Extraction:     extraction,
		ExtractedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, o.fail(ctx, session, &ArchiveError{SessionID: sessionID, Err: err})
	}

	page, err := o.archive.CreateArchivePage(ctx, artifact)
	if err != nil {
		return nil, o.fail(ctx, session, &ArchiveError{SessionID: sessionID, Err: err})
	}

	session.ArchiveResults = &model.ArchiveResult{
		PageID:          page.PageID,
		PageURL:         page.PageURL,
		LinkedArtifacts: page.LinkedArtifacts,
		Artifact:        artifact,
		ArchivedAt:      time.Now().UTC(),
	}
	session.Transition(model.StateArchived, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}

	slog.InfoContext(ctx, "archive phase complete",
		"page_id", page.PageID,
		"confidence", artifact.Confidence,
		"responses", len(responses),
	)
	return session, nil
}

func (o *orchestrator) ExecuteCompleteWorkflow(ctx context.Context, params TriggerParams, responses []model.InterviewResponse) (*model.WorkflowSession, error) {
	session, err := o.Trigger(ctx, params)
	if err != nil {
		return nil, err
	}
	if _, err := o.ExecuteScanPhase(ctx, session.SessionID); err != nil {
		return nil, err
	}
	if _, err := o.ExecuteInterviewPhase(ctx, session.SessionID); err != nil {
		return nil, err
	}
	return o.ExecuteArchivePhase(ctx, session.SessionID, responses)
}

func (o *orchestrator) ValidateCompletion(ctx context.Context, sessionID string) (*model.CompletionValidation, error) {
	session, err := o.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	validation := &model.CompletionValidation{SessionID: sessionID, IsValid: true}

	if session.State != model.StateArchived {
		validation.AddError("Workflow is not complete, current state: %s", session.State)
	}
	if session.ScanResults == nil {
		validation.AddError("Scan results missing")
	}
	if session.InterviewResults == nil {
		validation.AddError("Interview results missing")
	}
	if session.ArchiveResults == nil {
		validation.AddError("Archive results missing")
	}

	if session.ScanResults != nil && session.ArchiveResults != nil && session.ArchiveResults.Artifact != nil {
		archived := make(map[string]struct{}, len(session.ArchiveResults.Artifact.SourceArtifacts))
		for _, ref := range session.ArchiveResults.Artifact.SourceArtifacts {
			archived[ref] = struct{}{}
		}
		for _, ref := range session.ScanResults.SpecificArtifacts {
			if _, ok := archived[ref]; !ok {
				validation.AddError("Scan artifact %s is not referenced by the archive", ref)
			}
		}
	}

	return validation, nil
}

func (o *orchestrator) GetSession(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	return o.sessions.GetByID(ctx, sessionID)
}

func (o *orchestrator) ListSessions(ctx context.Context) ([]model.WorkflowSession, error) {
	return o.sessions.List(ctx)
}

// commitAnchors enriches the interview with the employee's recent commits.
// Commit history is supplementary context: a fetch failure is logged and
// skipped, never fatal to the phase.
func (o *orchestrator) commitAnchors(ctx context.Context, session *model.WorkflowSession) []model.CodeArtifact {
	commits, err := o.source.FetchCommits(ctx, session.EmployeeID, session.Window.Start)
	if err != nil {
		slog.WarnContext(ctx, "skipping commit anchors", "error", err)
		return nil
	}

	anchors := make([]model.CodeArtifact, 0, maxCommitAnchors)
	for _, commit := range commits {
		if !session.Window.Contains(commit.ActivityAt()) {
			continue
		}
		anchors = append(anchors, model.CodeArtifact{
			Type:                 model.ArtifactTypeCommit,
			ID:                   commit.Hash,
			Title:                commit.Title,
			Author:               commit.Author,
			Timestamp:            commit.ActivityAt(),
			Documentation:        model.DocumentationNone,
			ComplexityIndicators: []string{fmt.Sprintf("%d lines", commit.LinesTotal)},
		})
		if len(anchors) == maxCommitAnchors {
			break
		}
	}
	return anchors
}

func (o *orchestrator) interviewContext(session *model.WorkflowSession, artifacts []model.CodeArtifact, questions []model.Question) agent.InterviewContext {
	return agent.InterviewContext{
		SessionID:         session.SessionID,
		EmployeeID:        session.EmployeeID,
		Department:        session.Department,
		Role:              session.Role,
		Score:             session.ScanResults.Score,
		RiskTier:          session.ScanResults.RiskTier,
		Artifacts:         artifacts,
		SpecificArtifacts: session.ScanResults.SpecificArtifacts,
		Questions:         questions,
	}
}

// fail moves the session to FAILED, best-effort persists it and returns
// the phase error unchanged.
func (o *orchestrator) fail(ctx context.Context, session *model.WorkflowSession, phaseErr error) error {
	session.Failure = phaseErr.Error()
	session.Transition(model.StateFailed, time.Now().UTC())
	if err := o.sessions.Update(ctx, session); err != nil {
		slog.ErrorContext(ctx, "persisting FAILED state", "error", err)
	}
	slog.ErrorContext(ctx, "workflow phase failed", "error", phaseErr)
	return phaseErr
}

func (o *orchestrator) sessionContext(ctx context.Context, session *model.WorkflowSession) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{
		SessionID:  logger.Ptr(session.SessionID),
		EmployeeID: logger.Ptr(session.EmployeeID),
		Component:  "offboard.workflow.orchestrator",
	})
}

// sessionLock returns the per-session mutex, creating it on first use.
// Locks live as long as the process, like the sessions they guard.
func (o *orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}

func (o *orchestrator) phaseContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.timeout)
}

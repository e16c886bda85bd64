package model

import (
	"fmt"
	"time"
)

type WorkflowState string

const (
	StateTriggered         WorkflowState = "TRIGGERED"
	StateScanning          WorkflowState = "SCANNING"
	StateScanComplete      WorkflowState = "SCAN_COMPLETE"
	StateInterviewing      WorkflowState = "INTERVIEWING"
	StateInterviewComplete WorkflowState = "INTERVIEW_COMPLETE"
	StateArchiving         WorkflowState = "ARCHIVING"
	StateArchived          WorkflowState = "ARCHIVED"
	StateFailed            WorkflowState = "FAILED"
)

// Progress maps a state onto its coarse completion percentage. The mapping
// is observability-only; no control flow depends on it.
func (s WorkflowState) Progress() int {
	switch s {
	case StateTriggered:
		return 0
	case StateScanning:
		return 20
	case StateScanComplete:
		return 40
	case StateInterviewing:
		return 55
	case StateInterviewComplete:
		return 70
	case StateArchiving:
		return 85
	case StateArchived:
		return 100
	default:
		return 0
	}
}

// Terminal reports whether the workflow can no longer advance.
func (s WorkflowState) Terminal() bool {
	return s == StateArchived || s == StateFailed
}

// SessionProgress is the typed progress bag: the percent plus the
// timestamp of every transition the session has gone through.
type SessionProgress struct {
	Percent              int        `json:"percent"`
	TriggeredAt          time.Time  `json:"triggered_at"`
	ScanStartedAt        *time.Time `json:"scan_started_at,omitempty"`
	ScanCompletedAt      *time.Time `json:"scan_completed_at,omitempty"`
	InterviewStartedAt   *time.Time `json:"interview_started_at,omitempty"`
	InterviewCompletedAt *time.Time `json:"interview_completed_at,omitempty"`
	ArchiveStartedAt     *time.Time `json:"archive_started_at,omitempty"`
	ArchivedAt           *time.Time `json:"archived_at,omitempty"`
	FailedAt             *time.Time `json:"failed_at,omitempty"`
}

// WorkflowSession tracks one cognitive-offboarding run. The three result
// slots are populated exactly once each, in phase order; Failure carries
// the reason when State is FAILED.
type WorkflowSession struct {
	SessionID        string           `json:"session_id"`
	EmployeeID       string           `json:"employee_id"`
	TriggeredBy      string           `json:"triggered_by"`
	Department       string           `json:"department,omitempty"`
	Role             string           `json:"role,omitempty"`
	State            WorkflowState    `json:"state"`
	Progress         SessionProgress  `json:"progress"`
	Window           TimeWindow       `json:"window"`
	ScanResults      *IntensityReport `json:"scan_results,omitempty"`
	InterviewResults *InterviewResult `json:"interview_results,omitempty"`
	ArchiveResults   *ArchiveResult   `json:"archive_results,omitempty"`
	Failure          string           `json:"failure,omitempty"`
}

// Transition moves the session to state at the given instant, stamping
// the matching progress timestamp. It does not validate ordering; phase
// preconditions are the orchestrator's job.
func (s *WorkflowSession) Transition(state WorkflowState, at time.Time) {
	s.State = state
	s.Progress.Percent = state.Progress()
	switch state {
	case StateTriggered:
		s.Progress.TriggeredAt = at
	case StateScanning:
		s.Progress.ScanStartedAt = &at
	case StateScanComplete:
		s.Progress.ScanCompletedAt = &at
	case StateInterviewing:
		s.Progress.InterviewStartedAt = &at
	case StateInterviewComplete:
		s.Progress.InterviewCompletedAt = &at
	case StateArchiving:
		s.Progress.ArchiveStartedAt = &at
	case StateArchived:
		s.Progress.ArchivedAt = &at
	case StateFailed:
		s.Progress.FailedAt = &at
	}
}

type Question struct {
	ArtifactRef  string       `json:"artifact_ref"`
	ArtifactType ArtifactType `json:"artifact_type"`
	Text         string       `json:"text"`
}

type InterviewResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InterviewResult captures the interview phase: the artifact-anchored
// questions, any agent follow-ups and contextual commentary.
type InterviewResult struct {
	SessionID          string     `json:"session_id"`
	Questions          []Question `json:"questions"`
	FollowUps          []string   `json:"follow_ups,omitempty"`
	ContextualInfo     []string   `json:"contextual_info,omitempty"`
	ArtifactsAnalyzed  int        `json:"artifacts_analyzed"`
	QuestionsGenerated int        `json:"questions_generated"`
	CompletedAt        time.Time  `json:"completed_at"`
}

// ArchiveResult records where the knowledge artifact landed.
type ArchiveResult struct {
	PageID          string             `json:"page_id"`
	PageURL         string             `json:"page_url"`
	LinkedArtifacts []string           `json:"linked_artifacts"`
	Artifact        *KnowledgeArtifact `json:"artifact"`
	ArchivedAt      time.Time          `json:"archived_at"`
}

// CompletionValidation is the outcome of auditing a finished workflow:
// terminal state reached, every result slot populated, and every scanned
// artifact traceable into the archive.
type CompletionValidation struct {
	SessionID string   `json:"session_id"`
	IsValid   bool     `json:"is_valid"`
	Errors    []string `json:"errors,omitempty"`
}

func (v *CompletionValidation) AddError(format string, args ...any) {
	v.IsValid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

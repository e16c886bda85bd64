package workflow

import (
	"fmt"

	"github.com/offboardhq/offboard/internal/model"
)

// Precondition messages are stable API surface; handlers and clients key
// off them.
const (
	msgTriggerBeforeScan      = "Workflow must be triggered before scan phase"
	msgScanBeforeInterview    = "Scan phase must be completed before interview phase"
	msgInterviewBeforeArchive = "Interview phase must be completed before archive phase"
)

// PhaseOrderError reports a phase invoked out of order. Current is the
// state the session was actually in.
type PhaseOrderError struct {
	Current model.WorkflowState
	Message string
}

func (e *PhaseOrderError) Error() string {
	return e.Message
}

// ScanError marks a scan phase failure; the session is left FAILED.
type ScanError struct {
	SessionID string
	Err       error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan phase failed for session %s: %v", e.SessionID, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// InterviewError marks an interview phase failure; the session is left
// FAILED.
type InterviewError struct {
	SessionID string
	Err       error
}

func (e *InterviewError) Error() string {
	return fmt.Sprintf("interview phase failed for session %s: %v", e.SessionID, e.Err)
}

func (e *InterviewError) Unwrap() error {
	return e.Err
}

// ArchiveError marks an archive phase failure; the session is left FAILED.
type ArchiveError struct {
	SessionID string
	Err       error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive phase failed for session %s: %v", e.SessionID, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

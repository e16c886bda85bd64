package dto

import (
	"github.com/offboardhq/offboard/internal/model"
)

type TriggerWorkflowRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,min=1,max=255"`
	TriggeredBy string `json:"triggered_by" binding:"omitempty,max=255"`
	Department  string `json:"department" binding:"omitempty,max=255"`
	Role        string `json:"role" binding:"omitempty,max=255"`
}

type InterviewResponseInput struct {
	Question string `json:"question" binding:"required"`
	// Answer may be empty: skipped questions still count as asked.
	Answer string `json:"answer"`
}

type ArchiveWorkflowRequest struct {
	Responses []InterviewResponseInput `json:"responses" binding:"omitempty,dive"`
}

type CompleteWorkflowRequest struct {
	EmployeeID  string                   `json:"employee_id" binding:"required,min=1,max=255"`
	TriggeredBy string                   `json:"triggered_by" binding:"omitempty,max=255"`
	Department  string                   `json:"department" binding:"omitempty,max=255"`
	Role        string                   `json:"role" binding:"omitempty,max=255"`
	Responses   []InterviewResponseInput `json:"responses" binding:"omitempty,dive"`
}

// WorkflowSessionResponse mirrors model.WorkflowSession on the wire. The
// result slots reuse the model types; they are wire-shaped already.
type WorkflowSessionResponse struct {
	SessionID        string                 `json:"session_id"`
	EmployeeID       string                 `json:"employee_id"`
	TriggeredBy      string                 `json:"triggered_by,omitempty"`
	Department       string                 `json:"department,omitempty"`
	Role             string                 `json:"role,omitempty"`
	State            string                 `json:"state"`
	Progress         model.SessionProgress  `json:"progress"`
	Window           model.TimeWindow       `json:"window"`
	ScanResults      *model.IntensityReport `json:"scan_results,omitempty"`
	InterviewResults *model.InterviewResult `json:"interview_results,omitempty"`
	ArchiveResults   *model.ArchiveResult   `json:"archive_results,omitempty"`
	Failure          string                 `json:"failure,omitempty"`
}

func ToWorkflowSessionResponse(s *model.WorkflowSession) *WorkflowSessionResponse {
	return &WorkflowSessionResponse{
		SessionID:        s.SessionID,
		EmployeeID:       s.EmployeeID,
		TriggeredBy:      s.TriggeredBy,
		Department:       s.Department,
		Role:             s.Role,
		State:            string(s.State),
		Progress:         s.Progress,
		Window:           s.Window,
		ScanResults:      s.ScanResults,
		InterviewResults: s.InterviewResults,
		ArchiveResults:   s.ArchiveResults,
		Failure:          s.Failure,
	}
}

func ToWorkflowSessionResponses(sessions []model.WorkflowSession) []WorkflowSessionResponse {
	responses := make([]WorkflowSessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, *ToWorkflowSessionResponse(&sessions[i]))
	}
	return responses
}

type CompletionValidationResponse struct {
	SessionID string   `json:"session_id"`
	IsValid   bool     `json:"is_valid"`
	Errors    []string `json:"errors,omitempty"`
}

func ToCompletionValidationResponse(v *model.CompletionValidation) *CompletionValidationResponse {
	return &CompletionValidationResponse{
		SessionID: v.SessionID,
		IsValid:   v.IsValid,
		Errors:    v.Errors,
	}
}

// ToInterviewResponses converts wire responses into the model type the
// orchestrator consumes.
func ToInterviewResponses(inputs []InterviewResponseInput) []model.InterviewResponse {
	if len(inputs) == 0 {
		return nil
	}
	responses := make([]model.InterviewResponse, 0, len(inputs))
	for _, input := range inputs {
		responses = append(responses, model.InterviewResponse{
			Question: input.Question,
			Answer:   input.Answer,
		})
	}
	return responses
}

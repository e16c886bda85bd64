package handler_test

import (
	"context"

	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/workflow"
)

type mockOrchestrator struct {
	triggerFn   func(ctx context.Context, params workflow.TriggerParams) (*model.WorkflowSession, error)
	scanFn      func(ctx context.Context, sessionID string) (*model.WorkflowSession, error)
	interviewFn func(ctx context.Context, sessionID string) (*model.WorkflowSession, error)
	archiveFn   func(ctx context.Context, sessionID string, responses []model.InterviewResponse) (*model.WorkflowSession, error)
	completeFn  func(ctx context.Context, params workflow.TriggerParams, responses []model.InterviewResponse) (*model.WorkflowSession, error)
	validateFn  func(ctx context.Context, sessionID string) (*model.CompletionValidation, error)
	getFn       func(ctx context.Context, sessionID string) (*model.WorkflowSession, error)
	listFn      func(ctx context.Context) ([]model.WorkflowSession, error)
}

func (m *mockOrchestrator) Trigger(ctx context.Context, params workflow.TriggerParams) (*model.WorkflowSession, error) {
	if m.triggerFn != nil {
		return m.triggerFn(ctx, params)
	}
	return nil, nil
}

func (m *mockOrchestrator) ExecuteScanPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockOrchestrator) ExecuteInterviewPhase(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	if m.interviewFn != nil {
		return m.interviewFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockOrchestrator) ExecuteArchivePhase(ctx context.Context, sessionID string, responses []model.InterviewResponse) (*model.WorkflowSession, error) {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, sessionID, responses)
	}
	return nil, nil
}

func (m *mockOrchestrator) ExecuteCompleteWorkflow(ctx context.Context, params workflow.TriggerParams, responses []model.InterviewResponse) (*model.WorkflowSession, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, params, responses)
	}
	return nil, nil
}

func (m *mockOrchestrator) ValidateCompletion(ctx context.Context, sessionID string) (*model.CompletionValidation, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockOrchestrator) GetSession(ctx context.Context, sessionID string) (*model.WorkflowSession, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockOrchestrator) ListSessions(ctx context.Context) ([]model.WorkflowSession, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.WorkflowSession{}, nil
}

var _ workflow.Orchestrator = &mockOrchestrator{}

type mockOrgScanner struct {
	scanFn func(ctx context.Context) (*model.OrganizationScan, error)
}

func (m *mockOrgScanner) ScanOrganization(ctx context.Context) (*model.OrganizationScan, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx)
	}
	return &model.OrganizationScan{}, nil
}

var _ scan.OrgScanner = &mockOrgScanner{}

type mockProducer struct {
	enqueueFn func(ctx context.Context, task queue.Task) error
	enqueued  []queue.Task
}

func (m *mockProducer) Enqueue(ctx context.Context, task queue.Task) error {
	m.enqueued = append(m.enqueued, task)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, task)
	}
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}

var _ queue.Producer = &mockProducer{}

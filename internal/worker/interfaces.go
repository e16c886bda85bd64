package worker

import (
	"context"

	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/workflow"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Offboarder is the slice of workflow.Orchestrator the processor needs.
type Offboarder interface {
	ExecuteCompleteWorkflow(ctx context.Context, params workflow.TriggerParams, responses []model.InterviewResponse) (*model.WorkflowSession, error)
}

// OrganizationScanner is the slice of scan.OrgScanner the processor needs.
type OrganizationScanner interface {
	ScanOrganization(ctx context.Context) (*model.OrganizationScan, error)
}

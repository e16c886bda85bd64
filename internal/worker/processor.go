package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/offboardhq/offboard/common/logger"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/workflow"
)

// Processor dispatches queue messages to the matching domain operation.
// Queue-driven offboarding runs are automated-only: nobody is on the other
// end to answer questions, so the archive records that explicitly.
type Processor struct {
	offboarder Offboarder
	scanner    OrganizationScanner
}

func NewProcessor(offboarder Offboarder, scanner OrganizationScanner) *Processor {
	return &Processor{
		offboarder: offboarder,
		scanner:    scanner,
	}
}

func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	taskType := string(msg.TaskType)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TaskType:  &taskType,
		Component: "offboard.worker.processor",
	})

	switch msg.TaskType {
	case queue.TaskTypeOffboarding:
		return p.processOffboarding(ctx, msg)
	case queue.TaskTypeOrgScan:
		return p.processOrgScan(ctx, msg)
	default:
		return fmt.Errorf("no processor for task_type %q", msg.TaskType)
	}
}

func (p *Processor) processOffboarding(ctx context.Context, msg queue.Message) error {
	session, err := p.offboarder.ExecuteCompleteWorkflow(ctx, workflow.TriggerParams{
		EmployeeID:  msg.EmployeeID,
		TriggeredBy: msg.TriggeredBy,
		Department:  msg.Department,
		Role:        msg.Role,
	}, nil)
	if err != nil {
		return fmt.Errorf("offboarding workflow: %w", err)
	}

	slog.InfoContext(ctx, "offboarding workflow archived",
		"session_id", session.SessionID,
		"risk_tier", session.ScanResults.RiskTier,
		"page_id", session.ArchiveResults.PageID)
	return nil
}

func (p *Processor) processOrgScan(ctx context.Context, msg queue.Message) error {
	result, err := p.scanner.ScanOrganization(ctx)
	if err != nil {
		return fmt.Errorf("organization scan: %w", err)
	}

	slog.InfoContext(ctx, "organization scan finished",
		"users_scanned", result.Summary.UsersScanned,
		"users_flagged", result.Summary.UsersFlagged,
		"users_skipped", result.Summary.UsersSkipped,
		"notifications", result.Summary.Notifications)
	return nil
}

package dto

import (
	"time"

	"github.com/offboardhq/offboard/internal/model"
)

// OrgScanResponse reports a synchronous organization sweep. Success stays
// true when individual users were skipped; it flips only when the roster
// could not be enumerated at all (which surfaces as an error status).
type OrgScanResponse struct {
	Success   bool                    `json:"success"`
	Window    model.TimeWindow        `json:"window"`
	Summary   model.ScanSummary       `json:"summary"`
	Reports   []model.IntensityReport `json:"reports"`
	Skipped   []model.SkippedUser     `json:"skipped,omitempty"`
	StartedAt time.Time               `json:"started_at"`
}

func ToOrgScanResponse(scan *model.OrganizationScan) *OrgScanResponse {
	return &OrgScanResponse{
		Success:   true,
		Window:    scan.Window,
		Summary:   scan.Summary,
		Reports:   scan.Reports,
		Skipped:   scan.Skipped,
		StartedAt: scan.StartedAt,
	}
}

type EnqueueScanResponse struct {
	Enqueued bool   `json:"enqueued"`
	TaskType string `json:"task_type"`
}

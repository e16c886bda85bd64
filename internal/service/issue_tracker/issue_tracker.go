package issue_tracker

import (
	"context"
	"time"

	"github.com/offboardhq/offboard/internal/model"
)

// IssueTrackerService is the ticket-side collaborator of the scanner.
// Implementations fetch from the provider since the given instant; callers
// still re-filter every record against their own window.
type IssueTrackerService interface {
	// FetchTickets returns the tickets assigned to userID with activity
	// at or after since.
	FetchTickets(ctx context.Context, userID string, since time.Time) ([]model.RawTicket, error)

	// ListActiveUsers returns the identities with any ticket activity at
	// or after since, de-duplicated and sorted.
	ListActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}

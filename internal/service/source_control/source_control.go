package source_control

import (
	"context"
	"time"

	"github.com/offboardhq/offboard/internal/model"
)

// SourceControlService is the code-side collaborator of the scanner.
// Implementations fetch from the provider since the given instant; callers
// still re-filter every record against their own window.
type SourceControlService interface {
	// FetchPullRequests returns the merge/pull requests authored by
	// userID with activity at or after since, complexity precomputed.
	FetchPullRequests(ctx context.Context, userID string, since time.Time) ([]model.RawPullRequest, error)

	// FetchCommits returns the commits authored by userID at or after
	// since.
	FetchCommits(ctx context.Context, userID string, since time.Time) ([]model.RawCommit, error)

	// ListActiveUsers returns the identities with any merge-request or
	// commit activity at or after since, de-duplicated and sorted.
	ListActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}

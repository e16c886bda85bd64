package source_control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/offboardhq/offboard/core/config"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/service"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	listPageSize = 100
	maxListPages = 3
)

type gitLabSourceControlService struct {
	client     *gitlab.Client
	projectIDs []int
}

func NewGitLabSourceControlService(cfg config.GitLabConfig) (SourceControlService, error) {
	client, err := newClient(cfg.BaseURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &gitLabSourceControlService{
		client:     client,
		projectIDs: cfg.ProjectIDs,
	}, nil
}

var _ SourceControlService = &gitLabSourceControlService{}

func newClient(baseURL, token string) (*gitlab.Client, error) {
	if baseURL == "" {
		return gitlab.NewClient(token)
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
	return gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
}

func (s *gitLabSourceControlService) FetchPullRequests(ctx context.Context, userID string, since time.Time) ([]model.RawPullRequest, error) {
	var prs []model.RawPullRequest

	for _, projectID := range s.projectIDs {
		mrs, err := s.listMergeRequests(ctx, projectID, &userID, since)
		if err != nil {
			return nil, fmt.Errorf("fetching merge requests for %s in project %d: %w", userID, projectID, err)
		}

		for _, mr := range mrs {
			if mr == nil {
				continue
			}
			lines, files, err := s.diffStats(ctx, projectID, mr.IID)
			if err != nil {
				return nil, fmt.Errorf("fetching diffs for !%d in project %d: %w", mr.IID, projectID, err)
			}
			prs = append(prs, mapMergeRequest(mr, lines, files))
		}
	}

	return prs, nil
}

func (s *gitLabSourceControlService) FetchCommits(ctx context.Context, userID string, since time.Time) ([]model.RawCommit, error) {
	var commits []model.RawCommit

	for _, projectID := range s.projectIDs {
		projectCommits, err := s.listCommits(ctx, projectID, since)
		if err != nil {
			return nil, fmt.Errorf("fetching commits in project %d: %w", projectID, err)
		}

		// The commits API has no author filter; authorship is matched
		// locally by email or display name.
		for _, c := range projectCommits {
			if c == nil || !matchesAuthor(c, userID) {
				continue
			}
			commits = append(commits, mapCommit(c))
		}
	}

	return commits, nil
}

func (s *gitLabSourceControlService) ListActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	seen := make(map[string]struct{})

	for _, projectID := range s.projectIDs {
		mrs, err := s.listMergeRequests(ctx, projectID, nil, since)
		if err != nil {
			return nil, fmt.Errorf("listing merge-request authors in project %d: %w", projectID, err)
		}
		for _, mr := range mrs {
			if mr != nil && mr.Author != nil && mr.Author.Username != "" {
				seen[mr.Author.Username] = struct{}{}
			}
		}

		commits, err := s.listCommits(ctx, projectID, since)
		if err != nil {
			return nil, fmt.Errorf("listing commit authors in project %d: %w", projectID, err)
		}
		for _, c := range commits {
			if c == nil {
				continue
			}
			if c.AuthorEmail != "" {
				seen[c.AuthorEmail] = struct{}{}
			} else if c.AuthorName != "" {
				seen[c.AuthorName] = struct{}{}
			}
		}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func (s *gitLabSourceControlService) listMergeRequests(ctx context.Context, projectID int, authorUsername *string, since time.Time) ([]*gitlab.BasicMergeRequest, error) {
	opts := &gitlab.ListProjectMergeRequestsOptions{
		UpdatedAfter:   gitlab.Ptr(since),
		Scope:          gitlab.Ptr("all"),
		AuthorUsername: authorUsername,
		ListOptions: gitlab.ListOptions{
			PerPage: listPageSize,
			Page:    1,
		},
	}

	var all []*gitlab.BasicMergeRequest
	for page := 0; page < maxListPages; page++ {
		mrs, resp, err := s.client.MergeRequests.ListProjectMergeRequests(projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapGitLabError("merge requests", err)
		}
		all = append(all, mrs...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func (s *gitLabSourceControlService) listCommits(ctx context.Context, projectID int, since time.Time) ([]*gitlab.Commit, error) {
	opts := &gitlab.ListCommitsOptions{
		Since:     gitlab.Ptr(since),
		All:       gitlab.Ptr(true),
		WithStats: gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{
			PerPage: listPageSize,
			Page:    1,
		},
	}

	var all []*gitlab.Commit
	for page := 0; page < maxListPages; page++ {
		commits, resp, err := s.client.Commits.ListCommits(projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, wrapGitLabError("commits", err)
		}
		all = append(all, commits...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// diffStats sums changed lines and files across a merge request's diffs.
// These feed the opaque complexity score the engine consumes.
func (s *gitLabSourceControlService) diffStats(ctx context.Context, projectID, mrIID int) (lines, files int, err error) {
	opts := &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: gitlab.ListOptions{
			PerPage: listPageSize,
			Page:    1,
		},
	}

	for page := 0; page < maxListPages; page++ {
		diffs, resp, err := s.client.MergeRequests.ListMergeRequestDiffs(projectID, mrIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return 0, 0, wrapGitLabError("merge request diffs", err)
		}
		for _, d := range diffs {
			if d == nil {
				continue
			}
			files++
			lines += countChangedLines(d.Diff)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return lines, files, nil
}

// countChangedLines counts added and removed lines in a unified diff,
// skipping the +++/--- file headers.
func countChangedLines(diff string) int {
	if diff == "" {
		return 0
	}
	count := 0
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			count++
		}
	}
	return count
}

func matchesAuthor(c *gitlab.Commit, userID string) bool {
	return strings.EqualFold(c.AuthorEmail, userID) || strings.EqualFold(c.AuthorName, userID)
}

func mapMergeRequest(mr *gitlab.BasicMergeRequest, lines, files int) model.RawPullRequest {
	pr := model.RawPullRequest{
		Number:         mr.IID,
		Title:          mr.Title,
		Description:    mr.Description,
		LinesChanged:   lines,
		FilesChanged:   files,
		ReviewComments: mr.UserNotesCount,
		Complexity:     model.ComplexityScore(lines, files, mr.UserNotesCount),
	}
	if mr.Author != nil {
		pr.Author = mr.Author.Username
	}
	if mr.CreatedAt != nil {
		pr.Created = *mr.CreatedAt
	}
	if mr.UpdatedAt != nil {
		pr.Updated = *mr.UpdatedAt
	}
	return pr
}

func mapCommit(c *gitlab.Commit) model.RawCommit {
	commit := model.RawCommit{
		Hash:    c.ID,
		Title:   c.Title,
		Message: c.Message,
		Author:  c.AuthorEmail,
	}
	if c.Stats != nil {
		commit.LinesTotal = c.Stats.Total
	}
	if c.AuthoredDate != nil {
		commit.AuthoredAt = *c.AuthoredDate
	} else if c.CreatedAt != nil {
		commit.AuthoredAt = *c.CreatedAt
	}
	return commit
}

// wrapGitLabError translates provider authorization failures into the
// shared permission error; everything else passes through wrapped.
func wrapGitLabError(resource string, err error) error {
	var respErr *gitlab.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			return service.NewPermissionError("gitlab.list", "gitlab "+resource,
				fmt.Errorf("gitlab returned status %d", code))
		}
	}
	return fmt.Errorf("gitlab %s: %w", resource, err)
}

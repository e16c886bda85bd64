package scan_test

import (
	"context"
	"time"

	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/scan"
)

type mockIssueTracker struct {
	fetchTicketsFn    func(ctx context.Context, userID string, since time.Time) ([]model.RawTicket, error)
	listActiveUsersFn func(ctx context.Context, since time.Time) ([]string, error)
	fetchCalls        int
}

func (m *mockIssueTracker) FetchTickets(ctx context.Context, userID string, since time.Time) ([]model.RawTicket, error) {
	m.fetchCalls++
	if m.fetchTicketsFn != nil {
		return m.fetchTicketsFn(ctx, userID, since)
	}
	return nil, nil
}

func (m *mockIssueTracker) ListActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	if m.listActiveUsersFn != nil {
		return m.listActiveUsersFn(ctx, since)
	}
	return nil, nil
}

type mockSourceControl struct {
	fetchPullRequestsFn func(ctx context.Context, userID string, since time.Time) ([]model.RawPullRequest, error)
	fetchCommitsFn      func(ctx context.Context, userID string, since time.Time) ([]model.RawCommit, error)
	listActiveUsersFn   func(ctx context.Context, since time.Time) ([]string, error)
}

func (m *mockSourceControl) FetchPullRequests(ctx context.Context, userID string, since time.Time) ([]model.RawPullRequest, error) {
	if m.fetchPullRequestsFn != nil {
		return m.fetchPullRequestsFn(ctx, userID, since)
	}
	return nil, nil
}

func (m *mockSourceControl) FetchCommits(ctx context.Context, userID string, since time.Time) ([]model.RawCommit, error) {
	if m.fetchCommitsFn != nil {
		return m.fetchCommitsFn(ctx, userID, since)
	}
	return nil, nil
}

func (m *mockSourceControl) ListActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	if m.listActiveUsersFn != nil {
		return m.listActiveUsersFn(ctx, since)
	}
	return nil, nil
}

type mockEngine struct {
	scoreUserFn func(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error)
	scoredUsers []string
}

func (m *mockEngine) ScoreUser(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error) {
	m.scoredUsers = append(m.scoredUsers, userID)
	if m.scoreUserFn != nil {
		return m.scoreUserFn(ctx, userID, window)
	}
	return &model.IntensityReport{UserID: userID, RiskTier: model.RiskTierLow}, nil
}

var _ scan.Engine = &mockEngine{}

type mockNotifier struct {
	notifyRiskFn  func(ctx context.Context, n model.RiskNotification) error
	notifications []model.RiskNotification
}

func (m *mockNotifier) NotifyRisk(ctx context.Context, n model.RiskNotification) error {
	m.notifications = append(m.notifications, n)
	if m.notifyRiskFn != nil {
		return m.notifyRiskFn(ctx, n)
	}
	return nil
}

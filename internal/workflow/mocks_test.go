package workflow_test

import (
	"context"
	"time"

	"github.com/offboardhq/offboard/internal/agent"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/scan"
)

type mockEngine struct {
	scoreUserFn func(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error)
	scoreCalls  int
}

func (m *mockEngine) ScoreUser(ctx context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error) {
	m.scoreCalls++
	if m.scoreUserFn != nil {
		return m.scoreUserFn(ctx, userID, window)
	}
	return &model.IntensityReport{
		UserID:            userID,
		Timeframe:         model.WindowLabel,
		Window:            window,
		CriticalTickets:   []model.CriticalTicket{},
		HighComplexityPRs: []model.HighComplexityPR{},
		DocumentationURLs: []string{},
		RiskTier:          model.RiskTierLow,
		SpecificArtifacts: []string{},
	}, nil
}

var _ scan.Engine = &mockEngine{}

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

type mockAgent struct {
	conductInterviewFn func(ctx context.Context, ic agent.InterviewContext) (*agent.InterviewOutcome, error)
	extractFn          func(ctx context.Context, responses []model.InterviewResponse, ic agent.InterviewContext) (*agent.KnowledgeExtraction, error)
	conductCalls       int
	lastResponses      []model.InterviewResponse
}

func (m *mockAgent) ConductInterview(ctx context.Context, ic agent.InterviewContext) (*agent.InterviewOutcome, error) {
	m.conductCalls++
	if m.conductInterviewFn != nil {
		return m.conductInterviewFn(ctx, ic)
	}
	return &agent.InterviewOutcome{}, nil
}

func (m *mockAgent) ExtractTacitKnowledge(ctx context.Context, responses []model.InterviewResponse, ic agent.InterviewContext) (*agent.KnowledgeExtraction, error) {
	m.lastResponses = responses
	if m.extractFn != nil {
		return m.extractFn(ctx, responses, ic)
	}
	return &agent.KnowledgeExtraction{ConfidenceScore: 0.35}, nil
}

var _ agent.Agent = &mockAgent{}

type mockArchiveWriter struct {
	createArchivePageFn func(ctx context.Context, artifact *model.KnowledgeArtifact) (*model.ArchivePage, error)
	lastArtifact        *model.KnowledgeArtifact
}

func (m *mockArchiveWriter) CreateArchivePage(ctx context.Context, artifact *model.KnowledgeArtifact) (*model.ArchivePage, error) {
	m.lastArtifact = artifact
	if m.createArchivePageFn != nil {
		return m.createArchivePageFn(ctx, artifact)
	}
	return &model.ArchivePage{
		PageID:          "page-1",
		PageURL:         "https://wiki.example.com/pages/page-1",
		LinkedArtifacts: append([]string(nil), artifact.SourceArtifacts...),
	}, nil
}

package scan_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offboardhq/offboard/internal/classify"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/service"
)

var _ = Describe("Engine", func() {
	var (
		engine  scan.Engine
		tickets *mockIssueTracker
		source  *mockSourceControl
		ctx     context.Context
		now     time.Time
		window  model.TimeWindow
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Now().UTC()
		window = model.NewLookbackWindow(now)
		tickets = &mockIssueTracker{}
		source = &mockSourceControl{}
		engine = scan.NewEngine(tickets, source, classify.NewKeywordClassifier())
	})

	Describe("ScoreUser", func() {
		It("rejects an empty user id before fetching anything", func() {
			report, err := engine.ScoreUser(ctx, "", window)

			Expect(report).To(BeNil())
			var validationErr *service.ValidationError
			Expect(errors.As(err, &validationErr)).To(BeTrue())
			Expect(validationErr.Field).To(Equal("user_id"))
			Expect(tickets.fetchCalls).To(BeZero())
		})

		It("returns the zero report for a user with no activity", func() {
			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			Expect(report).NotTo(BeNil())
			Expect(report.UserID).To(Equal("alice"))
			Expect(report.Score).To(BeZero())
			Expect(report.RiskTier).To(Equal(model.RiskTierLow))
			Expect(report.CriticalTickets).To(BeEmpty())
			Expect(report.HighComplexityPRs).To(BeEmpty())
			Expect(report.Timeframe).To(Equal("last_6_months"))
		})

		It("scores flagged work against documentation evidence", func() {
			// Two critical tickets and one high-complexity PR over a
			// single documentation link: (2 + 1) / 1 = 3.0, MEDIUM.
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return []model.RawTicket{
					{
						Key:         "PROJ-1",
						Summary:     "Migrate the payments ledger to the new double-entry schema",
						Description: "Everything is in my head.",
						Updated:     now.AddDate(0, 0, -30),
					},
					{
						Key:          "PROJ-2",
						Summary:      "Hotfix",
						CommentCount: 5,
						Updated:      now.AddDate(0, 0, -60),
					},
					{
						Key:         "PROJ-3",
						Summary:     "Docs",
						Description: "See https://wiki.internal.example.com/payments for the runbook",
						Updated:     now.AddDate(0, 0, -10),
					},
				}, nil
			}
			source.fetchPullRequestsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawPullRequest, error) {
				return []model.RawPullRequest{
					{Number: 7, Title: "Rework ledger reconciliation", Complexity: 7, Updated: now.AddDate(0, 0, -20)},
					{Number: 8, Title: "Bump linter", Complexity: 3, Updated: now.AddDate(0, 0, -5)},
				}, nil
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Score).To(Equal(3.0))
			Expect(report.RiskTier).To(Equal(model.RiskTierMedium))
			Expect(report.CriticalTickets).To(HaveLen(2))
			Expect(report.CriticalTickets[0].Key).To(Equal("PROJ-1"))
			Expect(report.CriticalTickets[1].Key).To(Equal("PROJ-2"))
			Expect(report.HighComplexityPRs).To(HaveLen(1))
			Expect(report.HighComplexityPRs[0].Number).To(Equal(7))
			Expect(report.DocumentationURLs).To(Equal([]string{"https://wiki.internal.example.com/payments"}))
			Expect(report.SpecificArtifacts).To(Equal([]string{"PROJ-1", "PROJ-2", "PR #7"}))
		})

		It("drops records outside the window even when the collaborator returns them", func() {
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return []model.RawTicket{
					{Key: "OLD-1", Summary: "Hotfix", CommentCount: 5, Updated: now.AddDate(0, -8, 0)},
					{Key: "EDGE-1", Summary: "Hotfix", CommentCount: 5, Updated: window.Start},
					{Key: "EDGE-2", Summary: "Hotfix", CommentCount: 5, Updated: window.Start.Add(-time.Second)},
				}, nil
			}
			source.fetchPullRequestsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawPullRequest, error) {
				return []model.RawPullRequest{
					{Number: 1, Title: "Ancient rewrite", Complexity: 9, Updated: now.AddDate(0, -7, 0)},
				}, nil
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			// Only the ticket sitting exactly on the window start survives.
			Expect(report.CriticalTickets).To(HaveLen(1))
			Expect(report.CriticalTickets[0].Key).To(Equal("EDGE-1"))
			Expect(report.HighComplexityPRs).To(BeEmpty())
		})

		It("counts a documentation link once across tickets and pull requests", func() {
			const link = "https://company.atlassian.net/wiki/spaces/ENG/pages/123"
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return []model.RawTicket{
					{Key: "PROJ-1", Summary: "A", Description: "see " + link, Updated: now},
					{Key: "PROJ-2", Summary: "B", Description: "also " + link, Updated: now},
				}, nil
			}
			source.fetchPullRequestsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawPullRequest, error) {
				return []model.RawPullRequest{
					{Number: 3, Title: "C", Description: "documented at " + link, Complexity: 1, Updated: now},
				}, nil
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.DocumentationURLs).To(Equal([]string{link}))
		})

		It("treats heavily commented tickets as self-documenting", func() {
			// Ten comments push the documentation ratio to 0.5, above the
			// critical floor, so high activity alone does not flag it.
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return []model.RawTicket{
					{Key: "PROJ-9", Summary: "Hotfix", CommentCount: 10, Updated: now},
				}, nil
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.CriticalTickets).To(BeEmpty())
			Expect(report.Score).To(BeZero())
		})

		It("escalates to CRITICAL when no documentation evidence exists", func() {
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				keys := []string{"A-1", "A-2", "A-3", "A-4", "A-5", "A-6", "A-7", "A-8"}
				out := make([]model.RawTicket, 0, len(keys))
				for _, key := range keys {
					out = append(out, model.RawTicket{
						Key:     key,
						Summary: "Quarterly incident response retrospective action items",
						Updated: now.AddDate(0, 0, -1),
					})
				}
				return out, nil
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Score).To(Equal(8.0))
			Expect(report.RiskTier).To(Equal(model.RiskTierCritical))
		})

		It("is deterministic for identical collaborator responses", func() {
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return []model.RawTicket{
					{Key: "PROJ-1", Summary: "Hotfix", CommentCount: 4, Updated: now.AddDate(0, 0, -3)},
				}, nil
			}
			source.fetchPullRequestsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawPullRequest, error) {
				return []model.RawPullRequest{
					{Number: 2, Title: "Refactor auth", Complexity: 8, Updated: now.AddDate(0, 0, -4)},
				}, nil
			}

			first, err := engine.ScoreUser(ctx, "alice", window)
			Expect(err).NotTo(HaveOccurred())
			second, err := engine.ScoreUser(ctx, "alice", window)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("wraps ticket fetch failures", func() {
			upstream := errors.New("jira: 500")
			tickets.fetchTicketsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawTicket, error) {
				return nil, upstream
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(report).To(BeNil())
			Expect(errors.Is(err, upstream)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("fetching tickets"))
		})

		It("wraps pull request fetch failures", func() {
			upstream := errors.New("gitlab: unreachable")
			source.fetchPullRequestsFn = func(_ context.Context, _ string, _ time.Time) ([]model.RawPullRequest, error) {
				return nil, upstream
			}

			report, err := engine.ScoreUser(ctx, "alice", window)

			Expect(report).To(BeNil())
			Expect(errors.Is(err, upstream)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("fetching pull requests"))
		})
	})
})

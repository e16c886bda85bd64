package scan_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/scan"
)

var _ = Describe("OrgScanner", func() {
	var (
		scanner  scan.OrgScanner
		tickets  *mockIssueTracker
		source   *mockSourceControl
		engine   *mockEngine
		notifier *mockNotifier
		ctx      context.Context
	)

	reportFor := func(userID string, score float64) *model.IntensityReport {
		return &model.IntensityReport{
			UserID:            userID,
			Timeframe:         model.WindowLabel,
			Score:             score,
			RiskTier:          model.RiskTierFor(score),
			CriticalTickets:   []model.CriticalTicket{{Key: userID + "-1"}},
			HighComplexityPRs: []model.HighComplexityPR{},
			DocumentationURLs: []string{},
			SpecificArtifacts: []string{userID + "-1"},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		tickets = &mockIssueTracker{}
		source = &mockSourceControl{}
		engine = &mockEngine{}
		notifier = &mockNotifier{}
		scanner = scan.NewOrgScanner(tickets, source, engine, notifier)
	})

	Describe("ScanOrganization", func() {
		It("unions both rosters, de-duplicated and sorted", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"bob", "alice"}, nil
			}
			source.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"carol", "alice", ""}, nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(engine.scoredUsers).To(Equal([]string{"alice", "bob", "carol"}))
			Expect(result.Summary.UsersScanned).To(Equal(3))
		})

		It("anchors a six-month window at scan start and hands it to the engine", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"alice"}, nil
			}
			var seen model.TimeWindow
			engine.scoreUserFn = func(_ context.Context, userID string, window model.TimeWindow) (*model.IntensityReport, error) {
				seen = window
				return reportFor(userID, 0), nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(seen.End).To(BeTemporally("~", time.Now(), time.Second))
			Expect(seen.Start).To(Equal(seen.End.AddDate(0, -model.LookbackMonths, 0)))
			Expect(result.Window).To(Equal(seen))
			Expect(result.StartedAt).To(Equal(seen.End))
		})

		It("skips a failing user without sinking the sweep", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"alice", "bob", "carol"}, nil
			}
			engine.scoreUserFn = func(_ context.Context, userID string, _ model.TimeWindow) (*model.IntensityReport, error) {
				if userID == "bob" {
					return nil, errors.New("jira: 429 too many requests")
				}
				return reportFor(userID, 4), nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reports).To(HaveLen(2))
			Expect(result.Skipped).To(HaveLen(1))
			Expect(result.Skipped[0].UserID).To(Equal("bob"))
			Expect(result.Skipped[0].Reason).To(ContainSubstring("429"))
			Expect(result.Summary.UsersScanned).To(Equal(3))
			Expect(result.Summary.UsersSkipped).To(Equal(1))
		})

		It("keeps only users with a positive score", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"alice", "bob"}, nil
			}
			engine.scoreUserFn = func(_ context.Context, userID string, _ model.TimeWindow) (*model.IntensityReport, error) {
				if userID == "alice" {
					return reportFor(userID, 0), nil
				}
				return reportFor(userID, 3.5), nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reports).To(HaveLen(1))
			Expect(result.Reports[0].UserID).To(Equal("bob"))
			Expect(result.Summary.UsersScanned).To(Equal(2))
			Expect(result.Summary.UsersFlagged).To(Equal(1))
		})

		It("notifies on HIGH and CRITICAL reports only", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"low", "medium", "high", "critical"}, nil
			}
			scores := map[string]float64{"low": 1, "medium": 4, "high": 6.5, "critical": 9}
			engine.scoreUserFn = func(_ context.Context, userID string, _ model.TimeWindow) (*model.IntensityReport, error) {
				return reportFor(userID, scores[userID]), nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.notifications).To(HaveLen(2))
			notified := []string{notifier.notifications[0].UserID, notifier.notifications[1].UserID}
			Expect(notified).To(ConsistOf("high", "critical"))
			Expect(result.Summary.Notifications).To(Equal(2))
			Expect(result.Summary.CriticalRisk).To(Equal(1))
			Expect(result.Summary.HighRisk).To(Equal(1))
			Expect(result.Summary.MediumRisk).To(Equal(1))
		})

		It("maps the report onto the notification payload", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"alice"}, nil
			}
			engine.scoreUserFn = func(_ context.Context, userID string, _ model.TimeWindow) (*model.IntensityReport, error) {
				return &model.IntensityReport{
					UserID:            userID,
					Timeframe:         model.WindowLabel,
					Score:             7,
					RiskTier:          model.RiskTierHigh,
					CriticalTickets:   []model.CriticalTicket{{Key: "PROJ-1"}, {Key: "PROJ-2"}},
					HighComplexityPRs: []model.HighComplexityPR{{Number: 9}},
					DocumentationURLs: []string{"https://wiki.example.com/x"},
					SpecificArtifacts: []string{"PROJ-1", "PROJ-2", "PR #9"},
				}, nil
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(notifier.notifications).To(HaveLen(1))
			n := notifier.notifications[0]
			Expect(n.UserID).To(Equal("alice"))
			Expect(n.Score).To(Equal(7.0))
			Expect(n.RiskTier).To(Equal(model.RiskTierHigh))
			Expect(n.Timeframe).To(Equal("last_6_months"))
			Expect(n.CriticalTickets).To(Equal(2))
			Expect(n.HighComplexityPRs).To(Equal(1))
			Expect(n.DocumentationLinks).To(Equal(1))
			Expect(n.SpecificArtifacts).To(Equal([]string{"PROJ-1", "PROJ-2", "PR #9"}))
			Expect(n.DetectedAt).To(Equal(result.StartedAt))
		})

		It("keeps the report when notification delivery fails", func() {
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return []string{"alice"}, nil
			}
			engine.scoreUserFn = func(_ context.Context, userID string, _ model.TimeWindow) (*model.IntensityReport, error) {
				return reportFor(userID, 9), nil
			}
			notifier.notifyRiskFn = func(_ context.Context, _ model.RiskNotification) error {
				return errors.New("stream down")
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reports).To(HaveLen(1))
			Expect(result.Summary.Notifications).To(BeZero())
		})

		It("aborts when the ticket roster cannot be enumerated", func() {
			upstream := errors.New("jira: unauthorized")
			tickets.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return nil, upstream
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(result).To(BeNil())
			Expect(errors.Is(err, upstream)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("enumerating ticket-active users"))
		})

		It("aborts when the source roster cannot be enumerated", func() {
			upstream := errors.New("gitlab: unreachable")
			source.listActiveUsersFn = func(_ context.Context, _ time.Time) ([]string, error) {
				return nil, upstream
			}

			result, err := scanner.ScanOrganization(ctx)

			Expect(result).To(BeNil())
			Expect(errors.Is(err, upstream)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("enumerating source-active users"))
		})
	})
})

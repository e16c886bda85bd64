package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/offboardhq/offboard/internal/http/handler"
	"github.com/offboardhq/offboard/internal/model"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/service"
)

var _ = Describe("ScanHandler", func() {
	var (
		router   *gin.Engine
		scanner  *mockOrgScanner
		producer *mockProducer
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		scanner = &mockOrgScanner{}
		producer = &mockProducer{}
		h := handler.NewScanHandler(scanner, producer)
		router.POST("/scans", h.Run)
		router.POST("/scans/enqueue", h.Enqueue)
	})

	post := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("POST /scans", func() {
		It("returns the sweep with skipped users still marked successful", func() {
			scanner.scanFn = func(_ context.Context) (*model.OrganizationScan, error) {
				return &model.OrganizationScan{
					Window: model.NewLookbackWindow(time.Now().UTC()),
					Reports: []model.IntensityReport{
						{UserID: "alice", Score: 6.5, RiskTier: model.RiskTierHigh},
					},
					Skipped: []model.SkippedUser{
						{UserID: "bob", Reason: "fetching tickets: 500"},
					},
					Summary: model.ScanSummary{UsersScanned: 2, UsersFlagged: 1, HighRisk: 1, UsersSkipped: 1},
				}, nil
			}

			w := post("/scans")

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Success bool                    `json:"success"`
				Reports []model.IntensityReport `json:"reports"`
				Skipped []model.SkippedUser     `json:"skipped"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Success).To(BeTrue())
			Expect(resp.Reports).To(HaveLen(1))
			Expect(resp.Skipped).To(HaveLen(1))
		})

		It("returns 502 when the roster cannot be enumerated", func() {
			scanner.scanFn = func(_ context.Context) (*model.OrganizationScan, error) {
				return nil, errors.New("listing active users: gitlab: 500")
			}

			w := post("/scans")

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["success"]).To(BeFalse())
		})

		It("returns 403 with a generic body on a permission failure", func() {
			scanner.scanFn = func(_ context.Context) (*model.OrganizationScan, error) {
				return nil, service.NewPermissionError("gitlab.list_users", "gitlab project 7", errors.New("403: token for acme-corp lacks read_api"))
			}

			w := post("/scans")

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).NotTo(ContainSubstring("acme-corp"))
			Expect(w.Body.String()).NotTo(ContainSubstring("read_api"))
		})
	})

	Describe("POST /scans/enqueue", func() {
		It("enqueues an org scan task and answers 202", func() {
			w := post("/scans/enqueue")

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(producer.enqueued).To(HaveLen(1))
			Expect(producer.enqueued[0].TaskType).To(Equal(queue.TaskTypeOrgScan))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["enqueued"]).To(BeTrue())
			Expect(resp["task_type"]).To(Equal("org_scan"))
		})

		It("returns 500 when the queue is unreachable", func() {
			producer.enqueueFn = func(_ context.Context, _ queue.Task) error {
				return errors.New("redis: connection refused")
			}

			w := post("/scans/enqueue")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})

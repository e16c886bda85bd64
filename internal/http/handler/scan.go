package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/offboardhq/offboard/internal/http/dto"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/service"
)

type ScanHandler struct {
	scanner  scan.OrgScanner
	producer queue.Producer
}

func NewScanHandler(scanner scan.OrgScanner, producer queue.Producer) *ScanHandler {
	return &ScanHandler{scanner: scanner, producer: producer}
}

// Run executes an organization sweep synchronously. Per-user failures are
// reported inside a successful response; only a roster enumeration failure
// makes the request itself fail.
func (h *ScanHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.scanner.ScanOrganization(ctx)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			slog.ErrorContext(ctx, "permission denied during organization scan", "error", err)
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "access to an upstream provider was denied"})
			return
		}
		slog.ErrorContext(ctx, "organization scan failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "failed to enumerate active users"})
		return
	}

	c.JSON(http.StatusOK, dto.ToOrgScanResponse(result))
}

func (h *ScanHandler) Enqueue(c *gin.Context) {
	ctx := c.Request.Context()

	task := queue.Task{TaskType: queue.TaskTypeOrgScan}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		task.TraceID = &traceID
	}

	if err := h.producer.Enqueue(ctx, task); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue organization scan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue scan"})
		return
	}

	c.JSON(http.StatusAccepted, dto.EnqueueScanResponse{
		Enqueued: true,
		TaskType: string(queue.TaskTypeOrgScan),
	})
}

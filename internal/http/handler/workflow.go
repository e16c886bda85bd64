package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/offboardhq/offboard/internal/http/dto"
	"github.com/offboardhq/offboard/internal/service"
	"github.com/offboardhq/offboard/internal/store"
	"github.com/offboardhq/offboard/internal/workflow"
)

type WorkflowHandler struct {
	orchestrator workflow.Orchestrator
}

func NewWorkflowHandler(orchestrator workflow.Orchestrator) *WorkflowHandler {
	return &WorkflowHandler{orchestrator: orchestrator}
}

func (h *WorkflowHandler) Trigger(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TriggerWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid trigger request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.orchestrator.Trigger(ctx, workflow.TriggerParams{
		EmployeeID:  req.EmployeeID,
		TriggeredBy: req.TriggeredBy,
		Department:  req.Department,
		Role:        req.Role,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	sessions, err := h.orchestrator.ListSessions(ctx)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": dto.ToWorkflowSessionResponses(sessions)})
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.orchestrator.GetSession(ctx, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) Scan(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.orchestrator.ExecuteScanPhase(ctx, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) Interview(c *gin.Context) {
	ctx := c.Request.Context()

	session, err := h.orchestrator.ExecuteInterviewPhase(ctx, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) Archive(c *gin.Context) {
	ctx := c.Request.Context()

	// An empty body is a legal archive request: the interview may have
	// captured nothing and the artifact records that.
	var req dto.ArchiveWorkflowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.WarnContext(ctx, "invalid archive request", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session, err := h.orchestrator.ExecuteArchivePhase(ctx, c.Param("id"), dto.ToInterviewResponses(req.Responses))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CompleteWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid complete request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.orchestrator.ExecuteCompleteWorkflow(ctx, workflow.TriggerParams{
		EmployeeID:  req.EmployeeID,
		TriggeredBy: req.TriggeredBy,
		Department:  req.Department,
		Role:        req.Role,
	}, dto.ToInterviewResponses(req.Responses))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkflowSessionResponse(session))
}

func (h *WorkflowHandler) Validation(c *gin.Context) {
	ctx := c.Request.Context()

	validation, err := h.orchestrator.ValidateCompletion(ctx, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionValidationResponse(validation))
}

// respondWorkflowError maps the domain error taxonomy onto HTTP statuses.
// Permission failures always answer a generic body; upstream provider
// detail stays in server logs.
func respondWorkflowError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var phaseErr *workflow.PhaseOrderError
	if errors.As(err, &phaseErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":         phaseErr.Message,
			"current_state": string(phaseErr.Current),
		})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow session not found"})
		return
	}

	// Checked before the phase errors: a permission failure inside a
	// phase wrapper still answers 403, not 502.
	if errors.Is(err, service.ErrPermissionDenied) {
		slog.ErrorContext(ctx, "permission denied by upstream provider", "error", err)
		c.JSON(http.StatusForbidden, gin.H{"error": "access to an upstream provider was denied"})
		return
	}

	var scanErr *workflow.ScanError
	var interviewErr *workflow.InterviewError
	var archiveErr *workflow.ArchiveError
	if errors.As(err, &scanErr) || errors.As(err, &interviewErr) || errors.As(err, &archiveErr) {
		slog.ErrorContext(ctx, "workflow phase failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "an upstream collaborator failed; the session is marked FAILED"})
		return
	}

	slog.ErrorContext(ctx, "workflow request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

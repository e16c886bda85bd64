package router

import (
	"github.com/gin-gonic/gin"

	"github.com/offboardhq/offboard/internal/http/handler"
)

// WorkflowRouter wires the offboarding workflow lifecycle: trigger, the
// three phase endpoints, the one-shot pipeline and the completion audit.
func WorkflowRouter(rg *gin.RouterGroup, h *handler.WorkflowHandler) {
	rg.POST("", h.Trigger)
	rg.GET("", h.List)
	rg.POST("/complete", h.Complete)

	rg.GET("/:id", h.Get)
	rg.POST("/:id/scan", h.Scan)
	rg.POST("/:id/interview", h.Interview)
	rg.POST("/:id/archive", h.Archive)
	rg.GET("/:id/validation", h.Validation)
}

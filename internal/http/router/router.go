package router

import (
	"github.com/gin-gonic/gin"

	"github.com/offboardhq/offboard/internal/http/handler"
	"github.com/offboardhq/offboard/internal/queue"
	"github.com/offboardhq/offboard/internal/scan"
	"github.com/offboardhq/offboard/internal/workflow"
)

type RouterConfig struct {
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, orchestrator workflow.Orchestrator, scanner scan.OrgScanner, producer queue.Producer, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		workflowHandler := handler.NewWorkflowHandler(orchestrator)
		WorkflowRouter(v1.Group("/workflows"), workflowHandler)

		scanHandler := handler.NewScanHandler(scanner, producer)
		ScanRouter(v1.Group("/scans"), scanHandler)
	}
}

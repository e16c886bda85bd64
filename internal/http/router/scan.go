package router

import (
	"github.com/gin-gonic/gin"

	"github.com/offboardhq/offboard/internal/http/handler"
)

func ScanRouter(rg *gin.RouterGroup, h *handler.ScanHandler) {
	rg.POST("", h.Run)
	rg.POST("/enqueue", h.Enqueue)
}

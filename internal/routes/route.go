package routes

import (
	"github.com/gin-gonic/gin"

	"koi_fox_mini/internal/handlers"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, analyzeHandler *handlers.AnalyzeHandler, wsHandler *handlers.WSHandler) {
	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)

	r.GET("/personas", analyzeHandler.ListPersonas)
	r.POST("/analyze", analyzeHandler.Analyze)

	v2 := r.Group("/v2")
	{
		v2.POST("/analyze", analyzeHandler.AnalyzeV2)
	}

	// 注册WebSocket路由
	r.GET("/ws/analyze", wsHandler.HandleWebSocket)
}

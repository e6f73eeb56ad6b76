package api

import (
	"github.com/gin-gonic/gin"

	"github.com/NethermindEth/chaoschain-reality/api/handlers"
	"github.com/NethermindEth/chaoschain-reality/metrics"
)

// SetupRoutes initializes all API endpoints
func SetupRoutes(router *gin.Engine, h *handlers.Handler, m *metrics.Metrics) {
	api := router.Group("/api")
	{
		api.GET("/actions", h.ListActions)
		api.POST("/actions/:action", h.ApplyAction)

		api.POST("/decision", h.FetchDecision)
		api.POST("/decision/execute", h.ExecuteDecision)

		api.POST("/elimination", h.Eliminate)
		api.POST("/elimination/preview", h.PreviewElimination)

		api.GET("/shows/:showId/risk", h.RiskRankings)
		api.GET("/shows/:showId/news", h.News)
		api.GET("/shows/:showId/cycles", h.Cycles)
		api.GET("/shows/:showId/recap", h.Recap)
		api.POST("/shows/:showId/archive", h.ArchiveShow)
		api.GET("/shows/:showId/archives", h.ListArchives)
		api.GET("/archive/:dataId", h.GetArchive)
	}
	router.GET("/ws", h.HandleWebSocket)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/pharmassist/internal/middleware"
)

type RouterDeps struct {
	RAG       *RAGHandler
	KPI       *KPIHandler
	Tables    *TableHandler
	Health    *HealthHandler
	JWTSecret []byte
	// IndexCooldown rate limits index and upload per client and tenant.
	IndexCooldown time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Health.Health)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	ingest := authGroup.Group("/rag")
	ingest.POST("/index", middleware.RateLimit(deps.IndexCooldown), deps.RAG.Index)
	ingest.POST("/upload", middleware.RateLimit(deps.IndexCooldown), deps.RAG.Upload)
	ingest.POST("/ask", deps.RAG.Ask)

	authGroup.GET("/kpi/:pharma_id/sales", deps.KPI.Sales)
	authGroup.GET("/kpi/:pharma_id/stock_alerts", deps.KPI.StockAlerts)
	authGroup.GET("/kpi/:pharma_id/purchases", deps.KPI.PurchaseChanges)

	authGroup.GET("/tables/descriptions", deps.Tables.List)
	authGroup.PUT("/tables/descriptions/:table", deps.Tables.Save)
}

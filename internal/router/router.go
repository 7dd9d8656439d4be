package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/handler"
	"github.com/ashwinyue/datamimic/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, allowedOrigins []string, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	// 健康检查
	r.GET("/health", h.System.Health)

	api := r.Group("/api")
	{
		api.POST("/upload", h.Dataset.Upload)

		// Dataset 数据集
		datasets := api.Group("/datasets")
		{
			datasets.GET("", h.Dataset.ListDatasets)
			datasets.GET("/:id", h.Dataset.GetDataset)
			datasets.DELETE("/:id", h.Dataset.DeleteDataset)
			datasets.GET("/:id/generations", h.Dataset.ListGenerations)
		}

		// Generation 生成任务
		api.POST("/generate", h.Generation.Generate)
		generations := api.Group("/generations")
		{
			generations.GET("/latest", h.Generation.GetLatestGeneration)
			generations.GET("/:id", h.Generation.GetGeneration)
		}
		api.GET("/download/:id", h.Generation.Download)

		// System 系统
		api.GET("/system/info", h.System.GetSystemInfo)
	}

	return r
}

package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ashwinyue/datamimic/internal/config"
)

// SystemHandler 系统处理器
type SystemHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(cfg *config.Config, db *gorm.DB) *SystemHandler {
	return &SystemHandler{cfg: cfg, db: db}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			ServiceUnavailable(c, "database unavailable")
			return
		}
	}

	Success(c, gin.H{"status": "ok"})
}

// GetSystemInfo 获取系统信息
// GET /api/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	Success(c, gin.H{
		"name":           h.cfg.App.Name,
		"version":        h.cfg.App.Version,
		"environment":    h.cfg.App.Environment,
		"databaseDriver": h.cfg.Database.Driver,
		"cacheEnabled":   h.cfg.Redis.Enabled,
		"synthesis": gin.H{
			"timeout":       h.cfg.Synthesis.Timeout.String(),
			"maxConcurrent": h.cfg.Synthesis.MaxConcurrent,
		},
	})
}

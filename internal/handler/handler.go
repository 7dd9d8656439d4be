package handler

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ashwinyue/datamimic/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Dataset    *DatasetHandler
	Generation *GenerationHandler
	System     *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services, db *gorm.DB, logger *zap.Logger) *Handlers {
	return &Handlers{
		Dataset:    NewDatasetHandler(svc.Dataset, svc.Generation, svc.Config.Server.MaxUploadSize, logger),
		Generation: NewGenerationHandler(svc.Generation, logger),
		System:     NewSystemHandler(svc.Config, db),
	}
}

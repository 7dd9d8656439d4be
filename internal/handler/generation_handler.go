package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/service/generation"
	"github.com/ashwinyue/datamimic/internal/service/synthesis"
)

// GenerationHandler 生成任务处理器
type GenerationHandler struct {
	svc    *generation.Service
	logger *zap.Logger
}

// NewGenerationHandler 创建生成任务处理器
func NewGenerationHandler(svc *generation.Service, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{svc: svc, logger: logger}
}

// GenerateRequest 生成请求体
type GenerateRequest struct {
	DatasetID  string                     `json:"datasetId"`
	ModelType  model.SynthesisModel       `json:"modelType"`
	Parameters model.GenerationParameters `json:"parameters"`
}

// Generate 同步执行一次合成
// POST /api/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), generation.GenerateRequest{
		DatasetID:  req.DatasetID,
		ModelType:  req.ModelType,
		Parameters: req.Parameters,
	})
	if err != nil {
		h.generateError(c, err)
		return
	}

	Success(c, gin.H{
		"success":    true,
		"generation": result.Generation,
		"evaluation": result.Evaluation,
	})
}

func (h *GenerationHandler) generateError(c *gin.Context, err error) {
	var failed *generation.FailedError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		NotFound(c, "Dataset not found")
	case errors.Is(err, apperrors.ErrValidation):
		BadRequest(c, err.Error())
	case errors.As(err, &failed):
		resp := ErrorResponse{GenerationID: failed.Generation.ID}
		switch {
		case errors.Is(failed, synthesis.ErrGenerationRejected):
			resp.Error = failed.Message
		case errors.Is(failed, synthesis.ErrMalformedResult), errors.Is(failed, synthesis.ErrIncompleteResult):
			resp.Error = "Failed to process generation result"
			resp.Details = failed.Message
		default:
			resp.Error = "Generation failed"
			resp.Details = failed.Message
		}
		c.JSON(http.StatusInternalServerError, resp)
	case errors.Is(err, apperrors.ErrConflict):
		Conflict(c, "Generation is no longer processing")
	default:
		h.logger.Error("Generation error", zap.Error(err))
		InternalServerError(c, "Failed to generate synthetic data")
	}
}

// GetGeneration 获取生成任务及评估
// GET /api/generations/:id
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			NotFound(c, "Generation not found")
			return
		}
		h.logger.Error("Failed to fetch generation", zap.Error(err))
		InternalServerError(c, "Failed to fetch generation")
		return
	}

	Success(c, result)
}

// GetLatestGeneration 获取最新的生成任务
// GET /api/generations/latest
func (h *GenerationHandler) GetLatestGeneration(c *gin.Context) {
	result, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			NotFound(c, "No generations found")
			return
		}
		h.logger.Error("Failed to fetch latest generation", zap.Error(err))
		InternalServerError(c, "Failed to fetch latest generation")
		return
	}

	Success(c, result)
}

// Download 下载合成 CSV
// GET /api/download/:id
func (h *GenerationHandler) Download(c *gin.Context) {
	download, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			NotFound(c, "Synthetic data not available")
			return
		}
		h.logger.Error("Failed to download synthetic data", zap.Error(err))
		InternalServerError(c, "Failed to download synthetic data")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, download.Filename))
	c.Data(http.StatusOK, "text/csv", []byte(download.Data))
}

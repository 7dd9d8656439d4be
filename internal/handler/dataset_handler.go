package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/service/dataset"
	"github.com/ashwinyue/datamimic/internal/service/generation"
)

// multipart 头部等额外开销
const multipartOverhead = 1 << 20

// DatasetHandler 数据集处理器
type DatasetHandler struct {
	svc           *dataset.Service
	generations   *generation.Service
	maxUploadSize int64
	logger        *zap.Logger
}

// NewDatasetHandler 创建数据集处理器
func NewDatasetHandler(svc *dataset.Service, generations *generation.Service, maxUploadSize int64, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{svc: svc, generations: generations, maxUploadSize: maxUploadSize, logger: logger}
}

// DatasetSummary 上传成功后返回的数据集摘要
type DatasetSummary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	RowCount    int                `json:"rowCount"`
	ColumnCount int                `json:"columnCount"`
	Columns     []model.ColumnInfo `json:"columns"`
}

// Upload 上传 CSV 数据集
// POST /api/upload
func (h *DatasetHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			BadRequest(c, h.tooLargeMessage())
			return
		}
		BadRequest(c, "No file uploaded")
		return
	}

	if file.Size > h.maxUploadSize {
		BadRequest(c, h.tooLargeMessage())
		return
	}
	if !isCSVFile(file) {
		BadRequest(c, "Only CSV files are allowed")
		return
	}

	content, err := readFile(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.String("filename", file.Filename), zap.Error(err))
		InternalServerError(c, "Failed to upload dataset")
		return
	}

	data, err := h.svc.Upload(c.Request.Context(), dataset.UploadRequest{
		Filename: file.Filename,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to upload dataset", zap.Error(err))
		InternalServerError(c, "Failed to upload dataset")
		return
	}

	Success(c, gin.H{
		"success": true,
		"dataset": DatasetSummary{
			ID:          data.ID,
			Name:        data.Name,
			RowCount:    data.RowCount,
			ColumnCount: data.ColumnCount,
			Columns:     data.ColumnList(),
		},
	})
}

func (h *DatasetHandler) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %s)", humanize.IBytes(uint64(h.maxUploadSize)))
}

// isCSVFile 扩展名为 .csv 或 MIME 为 text/csv
func isCSVFile(file *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	return err == nil && mediaType == "text/csv"
}

func readFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListDatasets 列出数据集
// GET /api/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch datasets", zap.Error(err))
		InternalServerError(c, "Failed to fetch datasets")
		return
	}
	if datasets == nil {
		datasets = []*model.Dataset{}
	}

	Success(c, gin.H{"datasets": datasets})
}

// GetDataset 获取数据集
// GET /api/datasets/:id
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			NotFound(c, "Dataset not found")
			return
		}
		h.logger.Error("Failed to fetch dataset", zap.Error(err))
		InternalServerError(c, "Failed to fetch dataset")
		return
	}

	Success(c, gin.H{"dataset": data})
}

// DeleteDataset 删除数据集及其生成任务
// DELETE /api/datasets/:id
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("Failed to delete dataset", zap.Error(err))
		InternalServerError(c, "Failed to delete dataset")
		return
	}

	Success(c, gin.H{"success": true})
}

// ListGenerations 列出数据集的生成任务
// GET /api/datasets/:id/generations
func (h *DatasetHandler) ListGenerations(c *gin.Context) {
	generations, err := h.generations.ListByDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			NotFound(c, "Dataset not found")
			return
		}
		h.logger.Error("Failed to fetch generations", zap.Error(err))
		InternalServerError(c, "Failed to fetch generations")
		return
	}
	if generations == nil {
		generations = []*model.Generation{}
	}

	Success(c, gin.H{"generations": generations})
}

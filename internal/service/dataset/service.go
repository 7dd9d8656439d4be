package dataset

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/repository"
	"github.com/ashwinyue/datamimic/internal/service/cache"
	"github.com/ashwinyue/datamimic/internal/service/profiler"
)

// Service 数据集服务
type Service struct {
	repo   *repository.Repositories
	cache  *cache.GenerationCache
	logger *zap.Logger
}

// NewService 创建数据集服务，generationCache 可为 nil
func NewService(repo *repository.Repositories, generationCache *cache.GenerationCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: generationCache, logger: logger}
}

// UploadRequest 上传请求
type UploadRequest struct {
	Filename string
	Content  string
}

// Upload 分析 CSV 并保存数据集
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*model.Dataset, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("empty csv file: %w", apperrors.ErrValidation)
	}

	profile := profiler.Analyze(req.Content)
	dataset := &model.Dataset{
		Name:             req.Filename,
		OriginalFilename: req.Filename,
		RowCount:         profile.RowCount,
		ColumnCount:      profile.ColumnCount(),
		Columns:          datatypes.NewJSONType(profile.Columns),
		FileData:         req.Content,
	}

	if err := s.repo.Dataset.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("%w: create dataset: %w", apperrors.ErrPersistence, err)
	}

	s.logger.Info("dataset uploaded",
		zap.String("dataset_id", dataset.ID),
		zap.String("filename", req.Filename),
		zap.Int("row_count", dataset.RowCount),
		zap.Int("column_count", dataset.ColumnCount))
	return dataset, nil
}

// Get 获取数据集
func (s *Service) Get(ctx context.Context, id string) (*model.Dataset, error) {
	dataset, err := s.repo.Dataset.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get dataset: %w", apperrors.ErrPersistence, err)
	}
	if dataset == nil {
		return nil, fmt.Errorf("dataset %s: %w", id, apperrors.ErrNotFound)
	}
	return dataset, nil
}

// List 列出数据集，最新上传的在前
func (s *Service) List(ctx context.Context) ([]*model.Dataset, error) {
	datasets, err := s.repo.Dataset.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list datasets: %w", apperrors.ErrPersistence, err)
	}
	return datasets, nil
}

// Delete 删除数据集及其生成任务和评估结果，未知 ID 不报错
func (s *Service) Delete(ctx context.Context, id string) error {
	generations, err := s.repo.Generation.ListByDataset(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: list generations: %w", apperrors.ErrPersistence, err)
	}

	if err := s.repo.Dataset.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete dataset: %w", apperrors.ErrPersistence, err)
	}

	ids := make([]string, 0, len(generations))
	for _, g := range generations {
		ids = append(ids, g.ID)
	}
	s.cache.Forget(ctx, ids...)

	s.logger.Info("dataset deleted", zap.String("dataset_id", id), zap.Int("generations", len(ids)))
	return nil
}

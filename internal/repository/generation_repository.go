package repository

import (
	"context"
	"errors"

	"github.com/ashwinyue/datamimic/internal/model"
	"gorm.io/gorm"
)

// GenerationRepository 生成任务仓库
type GenerationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository 创建生成任务仓库
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create 创建生成任务
func (r *GenerationRepository) Create(ctx context.Context, generation *model.Generation) error {
	return r.db.WithContext(ctx).Create(generation).Error
}

// GetByID 根据ID获取生成任务，不存在时返回 nil, nil
func (r *GenerationRepository) GetByID(ctx context.Context, id string) (*model.Generation, error) {
	var generation model.Generation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&generation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

// ListByDataset 列出数据集的生成任务，最新的在前
func (r *GenerationRepository) ListByDataset(ctx context.Context, datasetID string) ([]*model.Generation, error) {
	var generations []*model.Generation
	err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("generated_at DESC").
		Find(&generations).Error
	return generations, err
}

// ListByStatus 根据状态获取生成任务
func (r *GenerationRepository) ListByStatus(ctx context.Context, status model.GenerationStatus) ([]*model.Generation, error) {
	var generations []*model.Generation
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("generated_at ASC").Find(&generations).Error
	return generations, err
}

// Finish 将 processing 状态的生成任务写入终态
// 记录不存在或已处于终态时不做修改，返回 nil, nil
func (r *GenerationRepository) Finish(ctx context.Context, id string, update model.GenerationUpdate) (*model.Generation, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Generation{}).
		Where("id = ? AND status = ?", id, model.GenerationStatusProcessing).
		Updates(update.Fields())
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// GetLatest 获取全局最新的生成任务，没有时返回 nil, nil
func (r *GenerationRepository) GetLatest(ctx context.Context) (*model.Generation, error) {
	var generation model.Generation
	err := r.db.WithContext(ctx).Order("generated_at DESC").First(&generation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

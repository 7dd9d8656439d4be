package repository

import (
	"context"
	"errors"

	"github.com/ashwinyue/datamimic/internal/model"
	"gorm.io/gorm"
)

// DatasetRepository 数据集仓库
type DatasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository 创建数据集仓库
func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Create 创建数据集
func (r *DatasetRepository) Create(ctx context.Context, dataset *model.Dataset) error {
	return r.db.WithContext(ctx).Create(dataset).Error
}

// GetByID 根据ID获取数据集，不存在时返回 nil, nil
func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*model.Dataset, error) {
	var dataset model.Dataset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dataset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List 列出全部数据集，最新上传的在前
func (r *DatasetRepository) List(ctx context.Context) ([]*model.Dataset, error) {
	var datasets []*model.Dataset
	err := r.db.WithContext(ctx).Order("uploaded_at DESC").Find(&datasets).Error
	return datasets, err
}

// Delete 删除数据集及其生成任务和评估结果，未知 ID 不报错
func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		generationIDs := tx.Model(&model.Generation{}).Select("id").Where("dataset_id = ?", id)
		if err := tx.Where("generation_id IN (?)", generationIDs).Delete(&model.Evaluation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&model.Generation{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Dataset{}).Error
	})
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"gorm.io/gorm"
)

// EvaluationRepository 评估结果仓库
type EvaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository 创建评估结果仓库
func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create 创建评估结果，同一生成任务的第二条记录返回 ErrConflict
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	var existing int64
	if err := r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("generation_id = ?", evaluation.GenerationID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fmt.Errorf("evaluation for generation %s: %w", evaluation.GenerationID, apperrors.ErrConflict)
	}
	if err := r.db.WithContext(ctx).Create(evaluation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("evaluation for generation %s: %w", evaluation.GenerationID, apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// GetByGenerationID 获取生成任务的评估结果，不存在时返回 nil, nil
func (r *EvaluationRepository) GetByGenerationID(ctx context.Context, generationID string) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	err := r.db.WithContext(ctx).Where("generation_id = ?", generationID).First(&evaluation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

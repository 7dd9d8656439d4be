// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"

	"github.com/ashwinyue/datamimic/internal/model"
)

// DatasetStore 数据集数据访问接口
// GetByID 在记录不存在时返回 nil, nil；Delete 对未知 ID 为空操作
type DatasetStore interface {
	Create(ctx context.Context, dataset *model.Dataset) error
	GetByID(ctx context.Context, id string) (*model.Dataset, error)
	List(ctx context.Context) ([]*model.Dataset, error)
	Delete(ctx context.Context, id string) error
}

// GenerationStore 生成任务数据访问接口
// GetByID、GetLatest 在记录不存在时返回 nil, nil
// Finish 只修改 processing 状态的记录，未命中时返回 nil, nil
type GenerationStore interface {
	Create(ctx context.Context, generation *model.Generation) error
	GetByID(ctx context.Context, id string) (*model.Generation, error)
	ListByDataset(ctx context.Context, datasetID string) ([]*model.Generation, error)
	ListByStatus(ctx context.Context, status model.GenerationStatus) ([]*model.Generation, error)
	Finish(ctx context.Context, id string, update model.GenerationUpdate) (*model.Generation, error)
	GetLatest(ctx context.Context) (*model.Generation, error)
}

// EvaluationStore 评估结果数据访问接口
type EvaluationStore interface {
	Create(ctx context.Context, evaluation *model.Evaluation) error
	GetByGenerationID(ctx context.Context, generationID string) (*model.Evaluation, error)
}

var (
	_ DatasetStore    = (*DatasetRepository)(nil)
	_ GenerationStore = (*GenerationRepository)(nil)
	_ EvaluationStore = (*EvaluationRepository)(nil)
)

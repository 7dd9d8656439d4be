package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB         *gorm.DB // 直接访问数据库
	Dataset    DatasetStore
	Generation GenerationStore
	Evaluation EvaluationStore
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:         db,
		Dataset:    NewDatasetRepository(db),
		Generation: NewGenerationRepository(db),
		Evaluation: NewEvaluationRepository(db),
	}
}

// Transaction 在同一事务中执行 fn，fn 返回错误时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SynthesisModel 生成模型类型
type SynthesisModel string

const (
	SynthesisModelCTGAN  SynthesisModel = "ctgan"  // CTGAN
	SynthesisModelCopula SynthesisModel = "copula" // Gaussian Copula
)

// Valid 是否为支持的模型
func (m SynthesisModel) Valid() bool {
	return m == SynthesisModelCTGAN || m == SynthesisModelCopula
}

// GenerationStatus 生成任务状态
type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"    // 待执行
	GenerationStatusProcessing GenerationStatus = "processing" // 执行中
	GenerationStatusCompleted  GenerationStatus = "completed"  // 已完成
	GenerationStatusFailed     GenerationStatus = "failed"     // 失败
)

// Terminal 是否为终态
func (s GenerationStatus) Terminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// GenerationParameters 生成参数
type GenerationParameters struct {
	Epochs       *int     `json:"epochs,omitempty"`
	BatchSize    *int     `json:"batchSize,omitempty"`
	PrivacyLevel *float64 `json:"privacyLevel,omitempty"`
}

// Generation 一次合成数据生成
type Generation struct {
	ID            string                                   `json:"id" gorm:"type:varchar(36);primaryKey"`
	DatasetID     string                                   `json:"datasetId" gorm:"type:varchar(36);not null;index"`
	ModelType     SynthesisModel                           `json:"modelType" gorm:"type:varchar(20);not null"`
	Status        GenerationStatus                         `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Parameters    datatypes.JSONType[GenerationParameters] `json:"parameters" gorm:"not null"`
	SyntheticData *string                                  `json:"syntheticData" gorm:"type:text"`
	GeneratedAt   time.Time                                `json:"generatedAt" gorm:"autoCreateTime;index"`
	CompletedAt   *time.Time                               `json:"completedAt"`
	ErrorMessage  *string                                  `json:"errorMessage" gorm:"type:text"`

	Evaluation *Evaluation `json:"-" gorm:"foreignKey:GenerationID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate GORM 钩子，创建前生成 UUID
func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (Generation) TableName() string {
	return "generations"
}

// GenerationUpdate 生成任务的终态更新字段
type GenerationUpdate struct {
	Status        GenerationStatus
	SyntheticData *string
	ErrorMessage  *string
	CompletedAt   *time.Time
}

// Fields 转换为 gorm Updates 使用的列映射，nil 字段写入 NULL
func (u GenerationUpdate) Fields() map[string]interface{} {
	return map[string]interface{}{
		"status":         u.Status,
		"synthetic_data": u.SyntheticData,
		"error_message":  u.ErrorMessage,
		"completed_at":   u.CompletedAt,
	}
}

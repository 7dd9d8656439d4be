package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatisticalMetrics 按列统计的均值与标准差
type StatisticalMetrics struct {
	OriginalMean  map[string]float64 `json:"originalMean,omitempty"`
	SyntheticMean map[string]float64 `json:"syntheticMean,omitempty"`
	OriginalStd   map[string]float64 `json:"originalStd,omitempty"`
	SyntheticStd  map[string]float64 `json:"syntheticStd,omitempty"`
}

// DistributionSeries 单列的分布直方图，两组共享分箱
type DistributionSeries struct {
	Column        string    `json:"column"`
	OriginalDist  []float64 `json:"originalDist"`
	SyntheticDist []float64 `json:"syntheticDist"`
	Bins          []float64 `json:"bins"`
}

// CorrelationData 相关性矩阵
type CorrelationData struct {
	OriginalCorr  [][]float64 `json:"originalCorr"`
	SyntheticCorr [][]float64 `json:"syntheticCorr"`
	ColumnNames   []string    `json:"columnNames"`
}

// EvaluationMetrics 合成进程输出的评估指标
type EvaluationMetrics struct {
	PrivacyScore        *float64             `json:"privacyScore"`
	UtilityScore        *float64             `json:"utilityScore"`
	KSTestScore         *float64             `json:"ksTestScore"`
	CorrelationDistance *float64             `json:"correlationDistance"`
	StatisticalMetrics  *StatisticalMetrics  `json:"statisticalMetrics,omitempty"`
	DistributionData    []DistributionSeries `json:"distributionData,omitempty"`
	CorrelationData     *CorrelationData     `json:"correlationData,omitempty"`
}

// Evaluation 评估结果，每个生成任务至多一条
type Evaluation struct {
	ID                  string                                   `json:"id" gorm:"type:varchar(36);primaryKey"`
	GenerationID        string                                   `json:"generationId" gorm:"type:varchar(36);not null;uniqueIndex"`
	PrivacyScore        *float64                                 `json:"privacyScore"`
	UtilityScore        *float64                                 `json:"utilityScore"`
	KSTestScore         *float64                                 `json:"ksTestScore"`
	CorrelationDistance *float64                                 `json:"correlationDistance"`
	StatisticalMetrics  datatypes.JSONType[StatisticalMetrics]   `json:"statisticalMetrics"`
	DistributionData    datatypes.JSONType[[]DistributionSeries] `json:"distributionData"`
	CorrelationData     datatypes.JSONType[CorrelationData]      `json:"correlationData"`
	EvaluatedAt         time.Time                                `json:"evaluatedAt" gorm:"autoCreateTime"`
}

// NewEvaluation 根据评估指标构造评估记录
func NewEvaluation(generationID string, m EvaluationMetrics) *Evaluation {
	e := &Evaluation{
		GenerationID:        generationID,
		PrivacyScore:        m.PrivacyScore,
		UtilityScore:        m.UtilityScore,
		KSTestScore:         m.KSTestScore,
		CorrelationDistance: m.CorrelationDistance,
		DistributionData:    datatypes.NewJSONType(m.DistributionData),
	}
	if m.StatisticalMetrics != nil {
		e.StatisticalMetrics = datatypes.NewJSONType(*m.StatisticalMetrics)
	}
	if m.CorrelationData != nil {
		e.CorrelationData = datatypes.NewJSONType(*m.CorrelationData)
	}
	return e
}

// BeforeCreate GORM 钩子，创建前生成 UUID
func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (Evaluation) TableName() string {
	return "evaluations"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ColumnType 列类型
type ColumnType string

const (
	ColumnTypeNumeric     ColumnType = "numeric"     // 数值列
	ColumnTypeCategorical ColumnType = "categorical" // 类别列
)

// ColumnInfo 列描述
type ColumnInfo struct {
	Name      string     `json:"name"`
	Type      ColumnType `json:"type"`
	NullCount int        `json:"nullCount"`
}

// Dataset 上传的原始数据集
type Dataset struct {
	ID               string                           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name             string                           `json:"name" gorm:"type:text;not null"`
	OriginalFilename string                           `json:"originalFilename" gorm:"type:text;not null"`
	RowCount         int                              `json:"rowCount" gorm:"not null"`
	ColumnCount      int                              `json:"columnCount" gorm:"not null"`
	Columns          datatypes.JSONType[[]ColumnInfo] `json:"columns" gorm:"not null"`
	FileData         string                           `json:"fileData" gorm:"type:text;not null"` // 原始 CSV 内容
	UploadedAt       time.Time                        `json:"uploadedAt" gorm:"autoCreateTime;index"`

	Generations []Generation `json:"-" gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate GORM 钩子，创建前生成 UUID
func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName 指定表名
func (Dataset) TableName() string {
	return "datasets"
}

// ColumnList 返回列描述
func (d *Dataset) ColumnList() []ColumnInfo {
	return d.Columns.Data()
}

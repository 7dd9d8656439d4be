// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ashwinyue/datamimic/internal/database"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/repository"
)

// SampleCSV 三行两列的示例数据
const SampleCSV = "age,city\n34,NYC\n29,LA\n51,SF"

// NewTestDB 创建已迁移的内存 sqlite 数据库，测试结束自动关闭
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试独立的命名内存库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewTestRepositories 创建基于内存数据库的仓库集合
func NewTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.NewRepositories(NewTestDB(t))
}

// NewLogger 创建输出到测试日志的 zap logger
func NewLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// CreateDataset 写入一条示例数据集
func CreateDataset(t *testing.T, repos *repository.Repositories, name string) *model.Dataset {
	t.Helper()
	dataset := &model.Dataset{
		Name:             name,
		OriginalFilename: name + ".csv",
		RowCount:         3,
		ColumnCount:      2,
		Columns: datatypes.NewJSONType([]model.ColumnInfo{
			{Name: "age", Type: model.ColumnTypeNumeric},
			{Name: "city", Type: model.ColumnTypeCategorical},
		}),
		FileData: SampleCSV,
	}
	require.NoError(t, repos.Dataset.Create(context.Background(), dataset))
	return dataset
}

// CreateGeneration 写入一条生成任务，generatedAt 为零值时使用当前时间
func CreateGeneration(t *testing.T, repos *repository.Repositories, datasetID string, status model.GenerationStatus, generatedAt time.Time) *model.Generation {
	t.Helper()
	generation := &model.Generation{
		DatasetID:   datasetID,
		ModelType:   model.SynthesisModelCopula,
		Status:      status,
		GeneratedAt: generatedAt,
	}
	require.NoError(t, repos.Generation.Create(context.Background(), generation))
	return generation
}

// Float 返回指向 v 的指针
func Float(v float64) *float64 {
	return &v
}

// Package generation 生成任务编排：调用合成后端、落库结果与评估
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/repository"
	"github.com/ashwinyue/datamimic/internal/service/cache"
	"github.com/ashwinyue/datamimic/internal/service/synthesis"
)

// 写入 errorMessage 的固定文案
const (
	MsgProcessFailed = "synthesis process failed"
	MsgParseFailed   = "failed to parse generation result"
	MsgInterrupted   = "interrupted before completion"
	MsgStoreFailed   = "failed to store generation result"
)

// Service 生成任务服务
type Service struct {
	repo     *repository.Repositories
	backend  synthesis.Backend
	cache    *cache.GenerationCache
	logger   *zap.Logger
	now      func() time.Time
	inflight inflight
}

// NewService 创建生成任务服务，generationCache 可为 nil
func NewService(repo *repository.Repositories, backend synthesis.Backend, generationCache *cache.GenerationCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		backend: backend,
		cache:   generationCache,
		logger:  logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	DatasetID  string                     `json:"datasetId"`
	ModelType  model.SynthesisModel       `json:"modelType"`
	Parameters model.GenerationParameters `json:"parameters"`
}

// Result 生成任务及其评估结果，评估可为 nil
type Result struct {
	Generation *model.Generation `json:"generation"`
	Evaluation *model.Evaluation `json:"evaluation"`
}

// FailedError 生成任务已落为 failed 状态
type FailedError struct {
	Generation *model.Generation
	Message    string // 与记录中的 errorMessage 一致
	Err        error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("generation %s failed: %s", e.Generation.ID, e.Message)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Generate 执行一次同步生成
//
// 数据集不存在返回 ErrNotFound，模型类型非法返回 ErrValidation，二者均不创建记录。
// 记录创建后的任何失败都会先将记录置为 failed，再以 *FailedError 返回。
// 终态写入前记录已被其他进程置为终态时，以记录中的结果为准；记录已随数据集删除时返回 ErrConflict。
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	dataset, err := s.repo.Dataset.GetByID(ctx, req.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("%w: get dataset: %w", apperrors.ErrPersistence, err)
	}
	if dataset == nil {
		return nil, fmt.Errorf("dataset %s: %w", req.DatasetID, apperrors.ErrNotFound)
	}

	modelType := req.ModelType
	if modelType == "" {
		modelType = model.SynthesisModelCopula
	}
	if !modelType.Valid() {
		return nil, fmt.Errorf("unsupported model type %q: %w", modelType, apperrors.ErrValidation)
	}

	generation := &model.Generation{
		DatasetID:  dataset.ID,
		ModelType:  modelType,
		Status:     model.GenerationStatusProcessing,
		Parameters: datatypes.NewJSONType(req.Parameters),
	}
	if err := s.repo.Generation.Create(ctx, generation); err != nil {
		return nil, fmt.Errorf("%w: create generation: %w", apperrors.ErrPersistence, err)
	}
	s.inflight.add()
	defer s.inflight.done()

	logger := s.logger.With(
		zap.String("generation_id", generation.ID),
		zap.String("dataset_id", dataset.ID),
		zap.String("model_type", string(modelType)))
	logger.Info("generation started", zap.Int("row_count", dataset.RowCount))

	// 记录已进入 processing，之后的进程与终态写入不随请求取消
	runCtx := context.WithoutCancel(ctx)

	stdout, err := s.backend.Run(runCtx, synthesis.Input{
		CSVData:    dataset.FileData,
		ModelType:  modelType,
		RowCount:   dataset.RowCount,
		Parameters: req.Parameters,
	})
	if err != nil {
		return nil, s.fail(runCtx, logger, generation, err)
	}

	out, err := synthesis.ParseResult(stdout)
	if err != nil {
		return nil, s.fail(runCtx, logger, generation, err)
	}

	// 终态与评估在同一事务内写入
	completedAt := s.now()
	var updated *model.Generation
	var evaluation *model.Evaluation
	err = s.repo.Transaction(runCtx, func(tx *repository.Repositories) error {
		var err error
		updated, err = tx.Generation.Finish(runCtx, generation.ID, model.GenerationUpdate{
			Status:        model.GenerationStatusCompleted,
			SyntheticData: &out.SyntheticData,
			CompletedAt:   &completedAt,
		})
		if err != nil || updated == nil {
			return err
		}
		evaluation, err = NewRecorder(tx.Evaluation).Record(runCtx, generation.ID, out.Evaluation)
		return err
	})
	if err != nil {
		logger.Error("failed to store generation result", zap.Error(err))
		return nil, s.fail(runCtx, logger, generation, fmt.Errorf("%w: store generation result: %w", apperrors.ErrPersistence, err))
	}
	if updated == nil {
		return s.settled(runCtx, logger, generation.ID)
	}

	s.cache.Put(runCtx, updated, evaluation)
	logger.Info("generation completed", zap.Int("synthetic_bytes", len(out.SyntheticData)))
	return &Result{Generation: updated, Evaluation: evaluation}, nil
}

// fail 将生成任务置为 failed 并返回 *FailedError
func (s *Service) fail(ctx context.Context, logger *zap.Logger, generation *model.Generation, cause error) error {
	msg := FailureMessage(cause)
	completedAt := s.now()

	updated, err := s.repo.Generation.Finish(ctx, generation.ID, model.GenerationUpdate{
		Status:       model.GenerationStatusFailed,
		ErrorMessage: &msg,
		CompletedAt:  &completedAt,
	})
	if err != nil {
		logger.Error("failed to record generation failure",
			zap.NamedError("cause", cause),
			zap.Error(err))
		return fmt.Errorf("%w: record generation failure: %w", apperrors.ErrPersistence, err)
	}
	if updated == nil {
		result, err := s.settled(ctx, logger, generation.ID)
		if err != nil {
			return err
		}
		return fmt.Errorf("generation %s already %s: %w", result.Generation.ID, result.Generation.Status, apperrors.ErrConflict)
	}

	logger.Warn("generation failed", zap.String("error_message", msg), zap.Error(cause))
	s.cache.Put(ctx, updated, nil)
	return &FailedError{Generation: updated, Message: msg, Err: cause}
}

// settled 终态写入未命中时读取记录的现状
// 记录已不存在返回 ErrConflict；已为 failed 返回 *FailedError；已为 completed 返回其结果
func (s *Service) settled(ctx context.Context, logger *zap.Logger, id string) (*Result, error) {
	current, err := s.repo.Generation.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get generation: %w", apperrors.ErrPersistence, err)
	}
	if current == nil {
		logger.Warn("generation removed before completion")
		return nil, fmt.Errorf("generation %s removed before completion: %w", id, apperrors.ErrConflict)
	}

	logger.Warn("generation already finished elsewhere", zap.String("status", string(current.Status)))
	if current.Status == model.GenerationStatusFailed {
		msg := ""
		if current.ErrorMessage != nil {
			msg = *current.ErrorMessage
		}
		s.cache.Put(ctx, current, nil)
		return nil, &FailedError{
			Generation: current,
			Message:    msg,
			Err:        fmt.Errorf("generation %s already failed: %w", id, apperrors.ErrConflict),
		}
	}
	return s.withEvaluation(ctx, current)
}

// FailureMessage 将后端或解析错误转换为记录中的 errorMessage
func FailureMessage(err error) string {
	var procErr *synthesis.ProcessError
	var rejected *synthesis.RejectedError
	switch {
	case errors.As(err, &procErr):
		if strings.TrimSpace(procErr.Stderr) != "" {
			return procErr.Stderr
		}
		if procErr.ExitCode < 0 && procErr.Err != nil {
			return MsgProcessFailed + ": " + procErr.Err.Error()
		}
		return MsgProcessFailed
	case errors.Is(err, apperrors.ErrTimeout):
		return err.Error()
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.Is(err, synthesis.ErrMalformedResult), errors.Is(err, synthesis.ErrIncompleteResult):
		return MsgParseFailed
	case errors.Is(err, apperrors.ErrPersistence):
		return MsgStoreFailed
	default:
		return MsgProcessFailed
	}
}

// Get 获取生成任务及其评估结果
func (s *Service) Get(ctx context.Context, id string) (*Result, error) {
	if entry, ok := s.cache.Get(ctx, id); ok {
		return &Result{Generation: entry.Generation, Evaluation: entry.Evaluation}, nil
	}

	generation, err := s.repo.Generation.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: get generation: %w", apperrors.ErrPersistence, err)
	}
	if generation == nil {
		return nil, fmt.Errorf("generation %s: %w", id, apperrors.ErrNotFound)
	}
	return s.withEvaluation(ctx, generation)
}

// Latest 获取全局最新的生成任务
func (s *Service) Latest(ctx context.Context) (*Result, error) {
	generation, err := s.repo.Generation.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get latest generation: %w", apperrors.ErrPersistence, err)
	}
	if generation == nil {
		return nil, fmt.Errorf("no generations: %w", apperrors.ErrNotFound)
	}
	return s.withEvaluation(ctx, generation)
}

func (s *Service) withEvaluation(ctx context.Context, generation *model.Generation) (*Result, error) {
	evaluation, err := s.repo.Evaluation.GetByGenerationID(ctx, generation.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: get evaluation: %w", apperrors.ErrPersistence, err)
	}
	s.cache.Put(ctx, generation, evaluation)
	return &Result{Generation: generation, Evaluation: evaluation}, nil
}

// ListByDataset 列出数据集的生成任务，最新的在前
func (s *Service) ListByDataset(ctx context.Context, datasetID string) ([]*model.Generation, error) {
	dataset, err := s.repo.Dataset.GetByID(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("%w: get dataset: %w", apperrors.ErrPersistence, err)
	}
	if dataset == nil {
		return nil, fmt.Errorf("dataset %s: %w", datasetID, apperrors.ErrNotFound)
	}

	generations, err := s.repo.Generation.ListByDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("%w: list generations: %w", apperrors.ErrPersistence, err)
	}
	return generations, nil
}

// Download 合成数据下载内容
type Download struct {
	Filename string
	Data     string
}

// Download 获取已完成生成任务的合成 CSV
func (s *Service) Download(ctx context.Context, id string) (*Download, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	generation := result.Generation
	if generation.SyntheticData == nil || *generation.SyntheticData == "" {
		return nil, fmt.Errorf("synthetic data for generation %s: %w", id, apperrors.ErrNotFound)
	}

	name := "data"
	dataset, err := s.repo.Dataset.GetByID(ctx, generation.DatasetID)
	if err != nil {
		return nil, fmt.Errorf("%w: get dataset: %w", apperrors.ErrPersistence, err)
	}
	if dataset != nil && dataset.Name != "" {
		name = dataset.Name
	}

	return &Download{
		Filename: fmt.Sprintf("synthetic_%s_%s.csv", name, generation.ID),
		Data:     *generation.SyntheticData,
	}, nil
}

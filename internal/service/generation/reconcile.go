package generation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
)

// Reconcile 将上次进程退出时遗留在 processing 的生成任务置为 failed
// 仅在服务开始接收请求前调用；同时被本进程写入终态的任务会被跳过
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	stale, err := s.repo.Generation.ListByStatus(ctx, model.GenerationStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("%w: list processing generations: %w", apperrors.ErrPersistence, err)
	}

	msg := MsgInterrupted
	count := 0
	for _, generation := range stale {
		completedAt := s.now()
		updated, err := s.repo.Generation.Finish(ctx, generation.ID, model.GenerationUpdate{
			Status:       model.GenerationStatusFailed,
			ErrorMessage: &msg,
			CompletedAt:  &completedAt,
		})
		if err != nil {
			return count, fmt.Errorf("%w: fail generation %s: %w", apperrors.ErrPersistence, generation.ID, err)
		}
		if updated == nil {
			continue
		}
		count++
		s.logger.Warn("generation interrupted, marked failed",
			zap.String("generation_id", generation.ID),
			zap.Time("generated_at", generation.GeneratedAt))
	}
	return count, nil
}

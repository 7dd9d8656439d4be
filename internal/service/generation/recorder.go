package generation

import (
	"context"

	"github.com/ashwinyue/datamimic/internal/model"
	"github.com/ashwinyue/datamimic/internal/repository"
)

// Recorder 评估结果记录器
// 每次调用创建一条新记录，同一生成任务的重复调用由唯一索引拒绝（ErrConflict）
type Recorder struct {
	evaluations repository.EvaluationStore
}

// NewRecorder 创建评估记录器
func NewRecorder(evaluations repository.EvaluationStore) *Recorder {
	return &Recorder{evaluations: evaluations}
}

// Record 持久化一条评估结果
func (r *Recorder) Record(ctx context.Context, generationID string, metrics model.EvaluationMetrics) (*model.Evaluation, error) {
	evaluation := model.NewEvaluation(generationID, metrics)
	if err := r.evaluations.Create(ctx, evaluation); err != nil {
		return nil, err
	}
	return evaluation, nil
}

package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/model"
)

// Input 合成进程的输入契约
type Input struct {
	CSVData    string                     `json:"csvData"`
	ModelType  model.SynthesisModel       `json:"modelType"`
	RowCount   int                        `json:"rowCount"`
	Parameters model.GenerationParameters `json:"parameters"`
}

// Backend 合成后端，一次调用对应一次进程运行
// 退出码为 0 时返回标准输出；否则返回 *ProcessError 或超时错误
type Backend interface {
	Run(ctx context.Context, in Input) ([]byte, error)
}

// ProcessError 合成进程非零退出或无法启动
type ProcessError struct {
	ExitCode int    // -1 表示进程未能启动
	Stderr   string // 标准错误输出原文
	Err      error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("synthesis process exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("synthesis process exited with code %d: %s", e.ExitCode, msg)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, apperrors.ErrExternalProcess) 成立
func (e *ProcessError) Is(target error) bool {
	return target == apperrors.ErrExternalProcess
}

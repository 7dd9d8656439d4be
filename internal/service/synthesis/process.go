package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ashwinyue/datamimic/internal/apperrors"
	"github.com/ashwinyue/datamimic/internal/config"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// waitDelay 进程被终止后等待输出管道关闭的时间
const waitDelay = 5 * time.Second

var commandContext = exec.CommandContext

// ProcessBackend 以子进程运行合成脚本
type ProcessBackend struct {
	command string
	args    []string
	workDir string
	timeout time.Duration
	slots   *semaphore.Weighted
	logger  *zap.Logger
}

// NewProcessBackend 创建子进程合成后端
func NewProcessBackend(cfg config.SynthesisConfig, logger *zap.Logger) (*ProcessBackend, error) {
	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		return nil, errors.New("synthesis command required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &ProcessBackend{
		command: command,
		args:    append([]string(nil), cfg.Args...),
		workDir: cfg.WorkDir,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if cfg.MaxConcurrent > 0 {
		b.slots = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	return b, nil
}

// Run 运行一次合成进程并等待其退出
func (b *ProcessBackend) Run(ctx context.Context, in Input) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode synthesis input: %w", err)
	}

	runCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	if b.slots != nil {
		if err := b.slots.Acquire(runCtx, 1); err != nil {
			return nil, b.contextError(runCtx, err)
		}
		defer b.slots.Release(1)
	}

	args := append(append([]string(nil), b.args...), string(payload))
	cmd := commandContext(runCtx, b.command, args...)
	cmd.Dir = b.workDir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() != nil {
		b.logger.Warn("synthesis process terminated",
			zap.String("model_type", string(in.ModelType)),
			zap.Duration("elapsed", elapsed),
			zap.Error(runCtx.Err()))
		return nil, b.contextError(runCtx, runCtx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			b.logger.Warn("synthesis process exited with error",
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.Duration("elapsed", elapsed))
			return nil, &ProcessError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: err}
		}
		if errors.Is(err, exec.ErrWaitDelay) {
			// 进程已正常退出，仅有子孙进程仍持有输出管道
			b.logger.Warn("synthesis process left output pipes open", zap.Duration("elapsed", elapsed))
			return stdout.Bytes(), nil
		}
		return nil, &ProcessError{ExitCode: -1, Stderr: stderr.String(), Err: err}
	}

	b.logger.Debug("synthesis process finished",
		zap.String("model_type", string(in.ModelType)),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Duration("elapsed", elapsed))
	return stdout.Bytes(), nil
}

func (b *ProcessBackend) contextError(runCtx context.Context, err error) error {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		if b.timeout > 0 {
			return fmt.Errorf("%w after %s", apperrors.ErrTimeout, b.timeout)
		}
		return apperrors.ErrTimeout
	}
	return err
}

package synthesis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ashwinyue/datamimic/internal/model"
)

// 结果契约违规
var (
	ErrMalformedResult    = errors.New("malformed synthesis result")
	ErrIncompleteResult   = errors.New("incomplete synthesis result")
	ErrGenerationRejected = errors.New("generation rejected")
)

// defaultRejectMessage success 为 false 且未给出 error 时使用
const defaultRejectMessage = "generation rejected by synthesis process"

// RejectedError 合成进程报告 success=false
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// Is 使 errors.Is(err, ErrGenerationRejected) 成立
func (e *RejectedError) Is(target error) bool {
	return target == ErrGenerationRejected
}

// Output 校验通过的合成结果
type Output struct {
	SyntheticData string
	Evaluation    model.EvaluationMetrics
}

type rawResult struct {
	Success       *bool                    `json:"success"`
	SyntheticData *string                  `json:"syntheticData"`
	Evaluation    *model.EvaluationMetrics `json:"evaluation"`
	Error         *string                  `json:"error"`
}

// ParseResult 解析合成进程的标准输出
func ParseResult(stdout []byte) (*Output, error) {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedResult)
	}

	var raw rawResult
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if raw.Success == nil {
		return nil, fmt.Errorf("%w: missing success flag", ErrMalformedResult)
	}

	if !*raw.Success {
		msg := ""
		if raw.Error != nil {
			msg = strings.TrimSpace(*raw.Error)
		}
		if msg == "" {
			msg = defaultRejectMessage
		}
		return nil, &RejectedError{Message: msg}
	}

	switch {
	case raw.SyntheticData == nil:
		return nil, fmt.Errorf("%w: missing syntheticData", ErrIncompleteResult)
	case raw.Evaluation == nil:
		return nil, fmt.Errorf("%w: missing evaluation", ErrIncompleteResult)
	}

	return &Output{SyntheticData: *raw.SyntheticData, Evaluation: *raw.Evaluation}, nil
}

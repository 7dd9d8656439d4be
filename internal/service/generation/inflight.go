package generation

import (
	"context"
	"sync"
)

// inflight 统计已进入 processing、尚未写入终态的生成任务
type inflight struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (f *inflight) add() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
}

func (f *inflight) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
}

// InFlight 返回进行中的生成任务数
func (s *Service) InFlight() int {
	s.inflight.mu.Lock()
	defer s.inflight.mu.Unlock()
	return s.inflight.n
}

// Wait 等待进行中的生成任务全部写入终态，ctx 结束时返回 ctx.Err()
func (s *Service) Wait(ctx context.Context) error {
	s.inflight.mu.Lock()
	if s.inflight.n == 0 {
		s.inflight.mu.Unlock()
		return nil
	}
	idle := s.inflight.idle
	s.inflight.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package voicebridge

import (
	"context"
	"sync"
	"time"
)

const (
	toolCallDedupWindow = 60 * time.Second
	toolCallsPerTurn    = 5
)

// ToolCall is one function invocation requested by the remote model.
type ToolCall struct {
	ID       string
	Name     string
	Args     map[string]any
	TenantID string
}

// ToolExecutor runs a tool and returns its JSON-encoded result. The backend
// package provides the production implementation.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) ([]byte, error)
}

// executedCallSet remembers dispatched call IDs for a fixed window so a
// duplicate delivery does not re-run a side-effecting tool. Best effort: the
// window bounds memory, not correctness.
type executedCallSet struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

func newExecutedCallSet(window time.Duration) *executedCallSet {
	return &executedCallSet{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// mark records id and reports whether it was new.
func (s *executedCallSet) mark(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.timers[id]; seen {
		return false
	}
	s.timers[id] = time.AfterFunc(s.window, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
	})
	return true
}

func (s *executedCallSet) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

package gi

import (
	"context"
	"sync"
)

// BakeSession guards against concurrent bakes and carries the cancel func of the active one.
type BakeSession struct {
	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

// Start marks a bake active and derives its cancellable context.
//
// Parameters:
//   - parent: the caller's context
//
// Returns:
//   - context.Context: the bake context, cancelled by Cancel or Stop
//   - error: ErrBakeInProgress if another bake is active
func (s *BakeSession) Start(parent context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, ErrBakeInProgress
	}
	ctx, cancel := context.WithCancel(parent)
	s.active = true
	s.cancel = cancel
	return ctx, nil
}

// Cancel requests cancellation of the active bake without ending the session. No-op when idle.
func (s *BakeSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Stop ends the active session and releases its context.
func (s *BakeSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
}

// Active reports whether a bake is running.
//
// Returns:
//   - bool: true between Start and Stop
func (s *BakeSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

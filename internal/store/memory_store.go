package store

import (
	"sync"
	"time"

	"github.com/preston-bernstein/scorebug/internal/domain/games"
)

// MemoryStore keeps the latest published frame and game view for readers on other
// goroutines, such as the status server.
type MemoryStore struct {
	mu      sync.RWMutex
	view    games.View
	hasView bool
	frame   []byte
	frameAt time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetView replaces the stored game view.
func (s *MemoryStore) SetView(v games.View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = v
	s.hasView = true
}

// View returns the last stored view.
func (s *MemoryStore) View() (games.View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.hasView
}

// SetFrame stores a copy of an encoded frame.
func (s *MemoryStore) SetFrame(png []byte, at time.Time) {
	frame := make([]byte, len(png))
	copy(frame, png)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
	s.frameAt = at
}

// Frame returns the last stored frame and when it was rendered.
func (s *MemoryStore) Frame() ([]byte, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return nil, time.Time{}, false
	}
	return s.frame, s.frameAt, true
}

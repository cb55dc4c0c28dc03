package server

import (
	"sync"

	"github.com/preston-bernstein/scorebug/internal/poller"
)

// current tracks the stream on air so the status and admin endpoints can outlive it.
type current struct {
	mu     sync.RWMutex
	stream *Stream
}

func (c *current) set(s *Stream) {
	c.mu.Lock()
	c.stream = s
	c.mu.Unlock()
}

func (c *current) get() *Stream {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stream
}

// GameID returns the id of the game on air, or "" between games.
func (c *current) GameID() string {
	if s := c.get(); s != nil {
		return s.game.ID
	}
	return ""
}

// ForceEnd ends the game on air, if any.
func (c *current) ForceEnd() {
	if s := c.get(); s != nil {
		s.game.ForceEnd()
	}
}

// Ended reports whether the game on air has been ended. No game counts as ended.
func (c *current) Ended() bool {
	if s := c.get(); s != nil {
		return s.game.Ended()
	}
	return true
}

// Status is the playback status of the game on air.
func (c *current) Status() poller.Status {
	if s := c.get(); s != nil {
		return s.poller.Status()
	}
	return poller.Status{}
}

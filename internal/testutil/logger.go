package testutil

import (
	"bytes"
	"log/slog"
	"sync"

	"github.com/preston-bernstein/scorebug/internal/logging"
)

// syncBuffer lets background goroutines log while a test reads the output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// LogBuffer is the captured output of a test logger.
type LogBuffer struct {
	b *syncBuffer
}

// String returns everything logged so far.
func (l *LogBuffer) String() string {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	return l.b.buf.String()
}

// Len is the number of bytes logged so far.
func (l *LogBuffer) Len() int {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	return l.b.buf.Len()
}

// NewBufferLogger returns a debug-level text logger built like the production one,
// together with its captured output.
func NewBufferLogger() (*slog.Logger, *LogBuffer) {
	sb := &syncBuffer{}
	logger := logging.NewLogger(logging.Config{Level: "debug", Output: sb})
	return logger, &LogBuffer{b: sb}
}

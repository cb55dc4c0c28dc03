package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/preston-bernstein/scorebug/internal/snapshots"
)

// NewTempWriter returns an archive writer rooted in a temp dir.
func NewTempWriter(t *testing.T, retention int) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir(), retention)
}

// WritePlay archives payload as play n of game, failing the test on error.
func WritePlay(t *testing.T, w *snapshots.Writer, gameID string, n int, payload []byte) {
	t.Helper()
	if err := writePlayPayload(w, gameID, n, payload); err != nil {
		t.Fatalf("failed to write play %d: %v", n, err)
	}
}

func writePlayPayload(w *snapshots.Writer, gameID string, n int, payload []byte) error {
	if w == nil {
		return errors.New("nil writer")
	}
	return w.WritePlay(gameID, n, payload)
}

// PlayPath returns the archive path of play n.
func PlayPath(w *snapshots.Writer, gameID string, n int) string {
	return snapshots.PlayPath(w.BasePath(), gameID, n)
}

// SamplePlayPayload returns the recorded feed payload shipped with the wbsc client tests.
func SamplePlayPayload(t *testing.T) []byte {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "feed", "wbsc", "testdata", "play12.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample payload: %v", err)
	}
	return data
}

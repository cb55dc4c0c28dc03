package snapshots

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const defaultRetentionDays = 14

// Writer archives raw feed payloads, one file per play, and prunes old games.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time
}

// NewWriter constructs a writer rooted at basePath with a rolling window retention.
func NewWriter(basePath string, retentionDays int) *Writer {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// BasePath exposes the writer root path.
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WritePlay stores the payload of one play. Rewriting identical bytes is a no-op.
func (w *Writer) WritePlay(gameID string, play int, payload []byte) error {
	if err := w.check(gameID); err != nil {
		return err
	}
	if play < 0 {
		return fmt.Errorf("invalid play index %d", play)
	}
	return writeAtomic(PlayPath(w.basePath, gameID, play), payload)
}

// WriteLatest records the latest play index seen for a game.
func (w *Writer) WriteLatest(gameID string, play int) error {
	if err := w.check(gameID); err != nil {
		return err
	}
	return writeAtomic(LatestPath(w.basePath, gameID), []byte(strconv.Itoa(play)))
}

// Prune removes game directories untouched for longer than the retention window,
// except keep, which is the game currently being archived.
func (w *Writer) Prune(keep string) ([]string, error) {
	if w == nil {
		return nil, errors.New("snapshot writer not configured")
	}
	entries, err := os.ReadDir(w.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	cutoff := w.now().AddDate(0, 0, -w.retentionDays)
	var removed []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == keep {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.basePath, e.Name())); err != nil {
			return removed, err
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

func (w *Writer) check(gameID string) error {
	if w == nil {
		return errors.New("snapshot writer not configured")
	}
	if gameID == "" {
		return errors.New("game id required")
	}
	return nil
}

func writeAtomic(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

package snapshots

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterWritesPlayAtomically(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)

	if err := w.WritePlay("84123", 7, []byte(`{"play":7}`)); err != nil {
		t.Fatalf("write play: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "84123", "play7.json"))
	if err != nil {
		t.Fatalf("expected play file, got err %v", err)
	}
	if string(data) != `{"play":7}` {
		t.Fatalf("unexpected content %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "84123", "play7.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, got %v", err)
	}
}

func TestWriterSkipsIdenticalPayload(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)
	path := PlayPath(dir, "g", 1)

	if err := w.WritePlay("g", 1, []byte("same")); err != nil {
		t.Fatalf("write play: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := w.WritePlay("g", 1, []byte("same")); err != nil {
		t.Fatalf("rewrite play: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatalf("expected identical payload to leave file untouched")
	}
}

func TestWriterRejectsBadInput(t *testing.T) {
	w := NewWriter(t.TempDir(), 0)
	if err := w.WritePlay("", 1, nil); err == nil {
		t.Fatal("expected error for empty game id")
	}
	if err := w.WritePlay("g", -1, nil); err == nil {
		t.Fatal("expected error for negative play")
	}
	var nilWriter *Writer
	if err := nilWriter.WriteLatest("g", 1); err == nil {
		t.Fatal("expected error for nil writer")
	}
	if nilWriter.BasePath() != "" {
		t.Fatal("expected empty base path for nil writer")
	}
}

func TestWriterPrunesOldGames(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 1)

	for _, id := range []string{"old", "current", "fresh"} {
		if err := w.WritePlay(id, 1, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -5)
	for _, id := range []string{"old", "current"} {
		if err := os.Chtimes(GameDir(dir, id), stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed, err := w.Prune("current")
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(removed) != 1 || removed[0] != "old" {
		t.Fatalf("expected only old game pruned, got %v", removed)
	}
	for id, wantExists := range map[string]bool{"old": false, "current": true, "fresh": true} {
		_, err := os.Stat(GameDir(dir, id))
		if exists := err == nil; exists != wantExists {
			t.Fatalf("game %s exists=%v, want %v", id, exists, wantExists)
		}
	}
}

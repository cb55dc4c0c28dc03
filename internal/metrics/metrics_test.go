package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderTracksFeedAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordFeedAttempt("play", 10*time.Millisecond, nil)
	rec.RecordFeedAttempt("play", 15*time.Millisecond, errors.New("boom"))
	rec.RecordFeedAttempt("latest", time.Millisecond, nil)

	snap := rec.Snapshot("play")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.LastCallLatency != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", snap.LastCallLatency)
	}
	if got := rec.Snapshot("latest").Calls; got != 1 {
		t.Fatalf("expected 1 latest call, got %d", got)
	}
}

func TestRecorderTracksPipelineCounters(t *testing.T) {
	rec := NewRecorder()
	rec.RecordPlayApplied("live")
	rec.RecordPlayApplied("live")
	rec.RecordPlaySkipped("malformed")
	rec.RecordRender(time.Millisecond, nil)
	rec.RecordRender(time.Millisecond, errors.New("disk full"))
	rec.RecordEncoderRestart()

	snap := rec.Snapshot("")
	if snap.PlaysApplied != 2 || snap.PlaysSkipped != 1 {
		t.Fatalf("unexpected play counters %+v", snap)
	}
	if snap.Renders != 2 || snap.RenderErrors != 1 {
		t.Fatalf("unexpected render counters %+v", snap)
	}
	if snap.EncoderRestarts != 1 {
		t.Fatalf("expected 1 encoder restart, got %d", snap.EncoderRestarts)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.RecordFeedAttempt("play", time.Millisecond, nil)
	rec.RecordPlayApplied("live")
	rec.RecordPlaySkipped("malformed")
	rec.RecordRender(time.Millisecond, nil)
	rec.RecordEncoderRestart()
	rec.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)
	rec.RecordPollerCycle(time.Millisecond, nil)
	if snap := rec.Snapshot("play"); snap != (Snapshot{}) {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

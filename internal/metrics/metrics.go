package metrics

import (
	"sync"
	"time"
)

type operationStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

// Recorder captures in-memory counters for the pipeline and forwards them to
// OpenTelemetry instruments when Setup configured them. A nil Recorder is a no-op.
type Recorder struct {
	mu              sync.Mutex
	ops             map[string]*operationStats
	playsApplied    int
	playsSkipped    int
	renders         int
	renderErrors    int
	encoderRestarts int
	otel            *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		ops:  make(map[string]*operationStats),
		otel: otel,
	}
}

// RecordFeedAttempt counts one upstream call (feed poll, play fetch, asset download).
func (r *Recorder) RecordFeedAttempt(operation string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	stats, ok := r.ops[operation]
	if !ok {
		stats = &operationStats{}
		r.ops[operation] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	r.otel.recordFeedAttempt(operation, duration, err)
}

// RecordPlayApplied counts a play reconciled into the game state.
func (r *Recorder) RecordPlayApplied(mode string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.playsApplied++
	r.mu.Unlock()
	r.otel.recordPlayApplied(mode)
}

// RecordPlaySkipped counts a play index passed over without reconciliation.
func (r *Recorder) RecordPlaySkipped(reason string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.playsSkipped++
	r.mu.Unlock()
	r.otel.recordPlaySkipped(reason)
}

// RecordRender tracks one compose-and-publish cycle.
func (r *Recorder) RecordRender(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.renders++
	if err != nil {
		r.renderErrors++
	}
	r.mu.Unlock()
	r.otel.recordRender(duration, err)
}

// RecordEncoderRestart counts an out-of-band encoder restart.
func (r *Recorder) RecordEncoderRestart() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.encoderRestarts++
	r.mu.Unlock()
	r.otel.recordEncoderRestart()
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	Calls           int
	Errors          int
	LastCallLatency time.Duration
	PlaysApplied    int
	PlaysSkipped    int
	Renders         int
	RenderErrors    int
	EncoderRestarts int
}

// Snapshot returns the pipeline counters plus the stats for one upstream operation.
func (r *Recorder) Snapshot(operation string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		PlaysApplied:    r.playsApplied,
		PlaysSkipped:    r.playsSkipped,
		Renders:         r.renders,
		RenderErrors:    r.renderErrors,
		EncoderRestarts: r.encoderRestarts,
	}
	if stats, ok := r.ops[operation]; ok {
		snap.Calls = stats.calls
		snap.Errors = stats.errors
		snap.LastCallLatency = stats.lastCallLatency
	}
	return snap
}

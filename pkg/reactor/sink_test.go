package reactor

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// recorderSink captures engine events for assertions.
type recorderSink struct {
	flushesStarted  int
	flushesFinished []FlushStats
	runs            []RunStats
	reconciled      []TrackerStats
	disposalFails   []string
}

func (r *recorderSink) FlushStarted() { r.flushesStarted++ }

func (r *recorderSink) FlushFinished(s FlushStats) {
	r.flushesFinished = append(r.flushesFinished, s)
}

func (r *recorderSink) ComputationRan(s RunStats) {
	r.runs = append(r.runs, s)
}

func (r *recorderSink) DependenciesReconciled(s TrackerStats) {
	r.reconciled = append(r.reconciled, s)
}

func (r *recorderSink) DisposalFailed(owner string, _ any) {
	r.disposalFails = append(r.disposalFails, owner)
}

func TestSlogSinkLogsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	sink.FlushStarted()
	sink.FlushFinished(FlushStats{Passes: 2, Runs: 3, Duration: time.Millisecond})
	sink.ComputationRan(RunStats{Computation: "counter"})
	sink.ComputationRan(RunStats{Computation: "broken", Err: errors.New("boom")})
	sink.DisposalFailed("counter", "boom")

	out := buf.String()
	for _, want := range []string{"flush finished", "computation ran", "computation failed", "disposal failed", "counter", "broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNewSlogSinkNilLoggerFallsBack(t *testing.T) {
	sink := NewSlogSink(nil)
	if sink.logger == nil {
		t.Error("expected nil logger to fall back to slog.Default")
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recorderSink{}
	b := &recorderSink{}
	multi := MultiSink{a, b}

	multi.FlushStarted()
	multi.FlushFinished(FlushStats{Runs: 1})
	multi.ComputationRan(RunStats{Computation: "x"})
	multi.DependenciesReconciled(TrackerStats{Computation: "x"})
	multi.DisposalFailed("x", nil)

	for name, r := range map[string]*recorderSink{"a": a, "b": b} {
		if r.flushesStarted != 1 || len(r.flushesFinished) != 1 || len(r.runs) != 1 ||
			len(r.reconciled) != 1 || len(r.disposalFails) != 1 {
			t.Errorf("sink %s: expected every event once, got %+v", name, r)
		}
	}
}

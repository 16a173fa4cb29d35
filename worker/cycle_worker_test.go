package worker

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreachsim/engine"
)

type stubRunner struct {
	runs   atomic.Int64
	result engine.Result
}

func (r *stubRunner) Run(context.Context) engine.Result {
	r.runs.Add(1)
	return r.result
}

type panicRunner struct{}

func (panicRunner) Run(context.Context) engine.Result { panic("boom") }

type recordingSink struct {
	mu      sync.Mutex
	results []engine.Result
}

func (s *recordingSink) Publish(result engine.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func quietLogrus() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCycleWorkerRunsOnIntervalAndStops(t *testing.T) {
	runner := &stubRunner{result: engine.Result{Outcome: engine.OutcomeCompleted}}
	sink := &recordingSink{}
	w := NewCycleWorker(runner, 10*time.Millisecond, quietLogrus(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return runner.runs.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	// No new cycles after shutdown.
	after := runner.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runner.runs.Load())

	assert.GreaterOrEqual(t, sink.count(), 2)
}

func TestCycleWorkerPublishesResults(t *testing.T) {
	runner := &stubRunner{result: engine.Result{Outcome: engine.OutcomeNoSenders}}
	sink := &recordingSink{}
	w := NewCycleWorker(runner, time.Hour, quietLogrus(), sink)

	w.runOnce(context.Background())

	require.Equal(t, 1, sink.count())
	assert.Equal(t, engine.OutcomeNoSenders, sink.results[0].Outcome)
}

func TestCycleWorkerSurvivesRunnerPanic(t *testing.T) {
	w := NewCycleWorker(panicRunner{}, time.Hour, quietLogrus(), nil)

	assert.NotPanics(t, func() {
		w.runOnce(context.Background())
	})
}

func TestCycleWorkerNilSink(t *testing.T) {
	runner := &stubRunner{result: engine.Result{Outcome: engine.OutcomeCompleted}}
	w := NewCycleWorker(runner, time.Hour, quietLogrus(), nil)

	assert.NotPanics(t, func() {
		w.runOnce(context.Background())
	})
	assert.Equal(t, int64(1), runner.runs.Load())
}

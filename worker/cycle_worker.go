package worker

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"outreachsim/engine"
)

// CycleRunner executes one sending cycle per call.
type CycleRunner interface {
	Run(ctx context.Context) engine.Result
}

// ResultSink receives each cycle's typed result, e.g. for a live
// dashboard feed. Publish must not block.
type ResultSink interface {
	Publish(result engine.Result)
}

// CycleWorker fires the sending cycle on a fixed interval. Cycles run
// sequentially on the worker goroutine, so at most one executes at a
// time; ticks that fire mid-cycle are coalesced by the ticker.
type CycleWorker struct {
	runner   CycleRunner
	interval time.Duration
	logger   *logrus.Logger
	sink     ResultSink
}

func NewCycleWorker(runner CycleRunner, interval time.Duration, logger *logrus.Logger, sink ResultSink) *CycleWorker {
	return &CycleWorker{
		runner:   runner,
		interval: interval,
		logger:   logger,
		sink:     sink,
	}
}

// Start blocks until ctx is cancelled, running one cycle per tick.
func (w *CycleWorker) Start(ctx context.Context) {
	w.logger.WithField("interval", w.interval.String()).Info("sending cycle worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sending cycle worker shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce is the outermost guard around a cycle: whatever happens
// inside, the ticker loop keeps going.
func (w *CycleWorker) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			w.logger.WithField("panic", r).Error("cycle panicked")
		}
	}()

	result := w.runner.Run(ctx)

	entry := w.logger.WithFields(logrus.Fields{
		"outcome":  result.Outcome,
		"senders":  result.Senders,
		"sends":    result.Sends,
		"events":   result.Events,
		"failures": result.Failures,
		"duration": result.Duration.String(),
	})

	switch {
	case result.Err != nil:
		sentry.CaptureException(result.Err)
		entry.WithError(result.Err).Error("cycle aborted")
	case result.Failures > 0:
		entry.Warn("cycle completed with failures")
	case result.Outcome != engine.OutcomeCompleted:
		entry.Info("cycle was a no-op")
	default:
		entry.Info("cycle completed")
	}

	if w.sink != nil {
		w.sink.Publish(result)
	}
}

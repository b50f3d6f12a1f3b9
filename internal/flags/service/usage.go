package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
)

// DefaultUsageBuffer is the queue length used when none is configured.
const DefaultUsageBuffer = 1024

// UsageSink persists or forwards one usage event. Errors are logged and dropped.
type UsageSink func(ctx context.Context, ev domain.UsageEvent) error

// UsageLogger records feature usage off the request path. Record never
// blocks: when the queue is full or the logger has stopped, the event is
// dropped and counted.
type UsageLogger struct {
	Logger *slog.Logger
	Sink   UsageSink

	events  chan domain.UsageEvent
	dropped atomic.Uint64

	// mu makes the stopped check and the enqueue one step with respect to
	// Stop, so nothing lands in the queue after the final drain.
	mu      sync.RWMutex
	stopped bool

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewUsageLogger returns a logger with a queue of buffer events. The default
// sink writes each event as a structured log line.
func NewUsageLogger(logger *slog.Logger, buffer int) *UsageLogger {
	if buffer <= 0 {
		buffer = DefaultUsageBuffer
	}
	u := &UsageLogger{
		Logger: logger,
		events: make(chan domain.UsageEvent, buffer),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	u.Sink = u.logEvent
	return u
}

// Start launches the background worker.
func (u *UsageLogger) Start() {
	u.startOnce.Do(func() {
		go u.run()
		u.Logger.Info("usage logger started", "buffer", cap(u.events))
	})
}

// Stop flushes queued events and waits for the worker to exit.
func (u *UsageLogger) Stop() {
	u.stopOnce.Do(func() {
		u.mu.Lock()
		u.stopped = true
		close(u.stopCh)
		u.mu.Unlock()

		u.startOnce.Do(func() { close(u.doneCh) }) // never started
		<-u.doneCh

		// Only a logger that never started can have events left here.
		for n := len(u.events); n > 0; n-- {
			<-u.events
			u.dropped.Add(1)
		}
		u.Logger.Info("usage logger stopped", "dropped", u.dropped.Load())
	})
}

// Record enqueues a usage event. It is safe to call from any goroutine.
func (u *UsageLogger) Record(_ context.Context, featureName, subjectID string, at time.Time) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.stopped {
		u.dropped.Add(1)
		return
	}

	select {
	case u.events <- domain.UsageEvent{FeatureName: featureName, SubjectID: subjectID, At: at}:
	default:
		if n := u.dropped.Add(1); n == 1 || n%1000 == 0 {
			u.Logger.Warn("usage queue full, dropping events", "dropped_total", n)
		}
	}
}

// Dropped returns how many events were discarded so far.
func (u *UsageLogger) Dropped() uint64 { return u.dropped.Load() }

func (u *UsageLogger) run() {
	defer close(u.doneCh)
	ctx := context.Background()

	for {
		select {
		case ev := <-u.events:
			u.deliver(ctx, ev)
		case <-u.stopCh:
			for {
				select {
				case ev := <-u.events:
					u.deliver(ctx, ev)
				default:
					return
				}
			}
		}
	}
}

func (u *UsageLogger) deliver(ctx context.Context, ev domain.UsageEvent) {
	defer func() {
		if r := recover(); r != nil {
			u.Logger.Error("usage sink panicked", "panic", r, "feature", ev.FeatureName)
		}
	}()
	if err := u.Sink(ctx, ev); err != nil {
		u.Logger.Warn("usage sink failed", "error", err, "feature", ev.FeatureName)
	}
}

func (u *UsageLogger) logEvent(_ context.Context, ev domain.UsageEvent) error {
	u.Logger.Info("feature used",
		"feature", ev.FeatureName,
		"subject", ev.SubjectID,
		"at", ev.At,
	)
	return nil
}

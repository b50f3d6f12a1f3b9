package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []domain.UsageEvent
}

func (c *collector) sink(_ context.Context, ev domain.UsageEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestUsageLoggerDeliversAndDrainsOnStop(t *testing.T) {
	ctx := context.Background()
	c := &collector{}

	u := service.NewUsageLogger(slogx.Discard(), 16)
	u.Sink = c.sink

	// Queue before the worker runs so Stop has to drain.
	for range 5 {
		u.Record(ctx, "events.create", "user-1", time.Now())
	}
	u.Start()
	u.Stop()

	require.Equal(t, 5, c.len())
	require.Equal(t, "events.create", c.events[0].FeatureName)
	require.Equal(t, "user-1", c.events[0].SubjectID)
	require.Zero(t, u.Dropped())

	u.Record(ctx, "events.create", "user-1", time.Now())
	require.Equal(t, uint64(1), u.Dropped(), "records after stop are dropped")
}

func TestUsageLoggerAccountsForEveryEventAcrossStop(t *testing.T) {
	ctx := context.Background()

	for range 20 {
		c := &collector{}
		u := service.NewUsageLogger(slogx.Discard(), 4096)
		u.Sink = c.sink
		u.Start()

		const writers, perWriter = 8, 100
		var wg sync.WaitGroup
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWriter {
					u.Record(ctx, "events.create", "user-1", time.Now())
				}
			}()
		}
		u.Stop()
		wg.Wait()

		require.Equal(t, writers*perWriter, c.len()+int(u.Dropped()))
	}
}

func TestUsageLoggerStopWithoutStartCountsQueued(t *testing.T) {
	u := service.NewUsageLogger(slogx.Discard(), 8)
	for range 3 {
		u.Record(context.Background(), "events.create", "user-1", time.Now())
	}
	u.Stop()
	require.Equal(t, uint64(3), u.Dropped())
}

func TestUsageLoggerDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	u := service.NewUsageLogger(slogx.Discard(), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			u.Record(ctx, "f", "s", time.Now())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	require.Equal(t, uint64(8), u.Dropped())
	u.Stop()
}

func TestUsageLoggerSurvivesSinkFailures(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	calls := 0

	u := service.NewUsageLogger(slogx.Discard(), 8)
	u.Sink = func(_ context.Context, ev domain.UsageEvent) error {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		switch n {
		case 1:
			return errors.New("sink offline")
		case 2:
			panic("boom")
		}
		return nil
	}
	u.Start()
	for range 3 {
		u.Record(ctx, "f", "s", time.Now())
	}
	u.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, calls)
}

type stubAuditor struct {
	anomalies []hierarchy.Anomaly
	err       error
}

func (s stubAuditor) Audit(context.Context) ([]hierarchy.Anomaly, error) {
	return s.anomalies, s.err
}

func TestAuditServiceRunOnce(t *testing.T) {
	ctx := context.Background()

	clean := service.NewAuditService(stubAuditor{}, slogx.Discard(), 0)
	require.Equal(t, 10*time.Minute, clean.Interval)
	require.Zero(t, clean.RunOnce(ctx))

	dirty := service.NewAuditService(stubAuditor{anomalies: []hierarchy.Anomaly{
		{Kind: hierarchy.AnomalyCycle, Flag: "a", Detail: "loop"},
		{Kind: hierarchy.AnomalyDanglingParent, Flag: "b", Detail: "missing"},
	}}, slogx.Discard(), time.Hour)
	require.Equal(t, 2, dirty.RunOnce(ctx))

	failing := service.NewAuditService(stubAuditor{err: errors.New("db down")}, slogx.Discard(), time.Hour)
	require.Zero(t, failing.RunOnce(ctx))
}

func TestAuditServiceStartStop(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, "a", nil)

	a := service.NewAuditService(svc, slogx.Discard(), time.Hour)
	a.Start()
	a.Stop()
}

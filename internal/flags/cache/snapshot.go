package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds how stale a read may be when another process wrote.
const DefaultTTL = 5 * time.Second

const snapshotKey = "flags:snapshot"

// Loader reads the full record set from the source of truth.
type Loader func(ctx context.Context) ([]domain.Flag, error)

// localEntry is the decoded snapshot held in process for one generation.
type localEntry struct {
	gen     uint64
	snap    *hierarchy.Snapshot
	expires time.Time
}

// Snapshots caches the indexed flag record set. The decoded snapshot is kept
// in process; the backing Store shares the encoded record set between
// processes. Concurrent misses share one load.
//
// Invalidate bumps a generation. Filling either layer and invalidating are
// serialized by fillMu, so a load that began before a write can never be
// stored after that write's Invalidate returned.
type Snapshots struct {
	store Store
	ttl   time.Duration
	memo  bool
	now   func() time.Time

	fillMu sync.Mutex
	gen    atomic.Uint64
	local  atomic.Pointer[localEntry]
	group  singleflight.Group
}

// NewSnapshots wraps store. A Noop store or a non-positive ttl disables the
// in-process layer too, so every Load reaches the loader.
func NewSnapshots(store Store, ttl time.Duration) *Snapshots {
	if store == nil {
		store = NewNoop()
	}
	memo := ttl > 0
	switch store.(type) {
	case Noop, *Noop:
		memo = false
	}
	return &Snapshots{store: store, ttl: ttl, memo: memo, now: time.Now}
}

// Load returns the current snapshot, calling load on a miss. Cache failures
// are logged and fall through to load. The returned snapshot is shared and
// must be treated as read-only.
func (s *Snapshots) Load(ctx context.Context, load Loader) (*hierarchy.Snapshot, error) {
	log := slogx.FromContext(ctx)
	gen := s.gen.Load()

	if e := s.local.Load(); e != nil && e.gen == gen && s.now().Before(e.expires) {
		return e.snap, nil
	}

	if raw, ok, err := s.store.Get(ctx, snapshotKey); err != nil {
		log.Warn("flag cache read failed", "error", err)
	} else if ok {
		var flags []domain.Flag
		if err := json.Unmarshal(raw, &flags); err == nil {
			snap := hierarchy.NewSnapshot(flags)
			s.fill(ctx, gen, snap, nil)
			return snap, nil
		}
		log.Warn("flag cache entry undecodable, reloading")
	}

	// The shared load must not fail because the caller that started it went
	// away; joined callers are still waiting on it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		flags, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		snap := hierarchy.NewSnapshot(flags)
		s.fill(loadCtx, gen, snap, flags)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*hierarchy.Snapshot), nil
}

// fill stores snap for gen unless an Invalidate has happened since gen was
// read. flags is written through to the shared store when non-nil.
func (s *Snapshots) fill(ctx context.Context, gen uint64, snap *hierarchy.Snapshot, flags []domain.Flag) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	if s.gen.Load() != gen {
		return
	}
	if flags != nil {
		s.put(ctx, flags)
	}
	if s.memo {
		s.local.Store(&localEntry{gen: gen, snap: snap, expires: s.now().Add(s.ttl)})
	}
}

func (s *Snapshots) put(ctx context.Context, flags []domain.Flag) {
	raw, err := json.Marshal(flags)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, snapshotKey, raw, s.ttl); err != nil {
		slogx.FromContext(ctx).Warn("flag cache write failed", "error", err)
	}
}

// Invalidate drops the cached snapshot. Callers invoke it after every
// committed write, before returning to their own caller.
func (s *Snapshots) Invalidate(ctx context.Context) error {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	s.gen.Add(1)
	s.local.Store(nil)
	return s.store.Delete(ctx, snapshotKey)
}

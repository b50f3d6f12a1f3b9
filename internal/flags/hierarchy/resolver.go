package hierarchy

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
)

// Resolver computes effective state and materialises the flag forest over a
// Snapshot. It is pure computation and safe for concurrent use.
type Resolver struct {
	MaxDepth int
}

// NewResolver returns a Resolver bounded by maxDepth (DefaultMaxDepth if <= 0).
func NewResolver(maxDepth int) *Resolver {
	return &Resolver{MaxDepth: normaliseDepth(maxDepth)}
}

func (r *Resolver) maxDepth() int {
	if r == nil {
		return DefaultMaxDepth
	}
	return normaliseDepth(r.MaxDepth)
}

// IsEffectivelyEnabled reports whether the named flag and every ancestor are
// enabled. Unknown names are false. A cycle, a dangling parent or a chain
// deeper than MaxDepth yields false and is logged as a malformed hierarchy.
func (r *Resolver) IsEffectivelyEnabled(ctx context.Context, snap *Snapshot, name string) bool {
	rec, ok := snap.ByName(name)
	if !ok {
		return false
	}

	enabled, err := r.effective(snap, rec)
	if err != nil {
		reportAnomaly(ctx, err)
		return false
	}
	return enabled
}

// effective walks from rec to its root ANDing the own state of every record.
// The walk always reaches the root (or fails) so anomalies above a disabled
// ancestor are still surfaced.
func (r *Resolver) effective(snap *Snapshot, rec domain.Flag) (bool, error) {
	maxDepth := r.maxDepth()
	enabled := rec.Enabled
	visited := map[string]struct{}{rec.ID: {}}

	current := rec
	for hops := 0; current.ParentID != nil; hops++ {
		if hops >= maxDepth {
			return false, Anomaly{
				Kind:   AnomalyDepthExceeded,
				Flag:   rec.Name,
				Detail: fmt.Sprintf("ancestor chain exceeds max depth %d", maxDepth),
			}
		}

		parentID := *current.ParentID
		if _, seen := visited[parentID]; seen {
			return false, Anomaly{
				Kind:   AnomalyCycle,
				Flag:   rec.Name,
				Detail: fmt.Sprintf("parent chain revisits %s", parentID),
			}
		}
		visited[parentID] = struct{}{}

		parent, ok := snap.ByID(parentID)
		if !ok {
			return false, Anomaly{
				Kind:   AnomalyDanglingParent,
				Flag:   rec.Name,
				Detail: fmt.Sprintf("parent %s is missing", parentID),
			}
		}

		enabled = enabled && parent.Enabled
		current = parent
	}
	return enabled, nil
}

func reportAnomaly(ctx context.Context, err error) {
	log := slogx.FromContext(ctx)

	var a Anomaly
	if errors.As(err, &a) {
		log.Warn("malformed flag hierarchy",
			"anomaly", string(a.Kind),
			"flag", a.Flag,
			"reason", a.Detail,
		)
		return
	}
	log.Warn("malformed flag hierarchy", "error", err)
}

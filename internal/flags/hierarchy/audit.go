package hierarchy

import (
	"errors"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
)

// Audit walks every record's ancestor chain and returns one Anomaly per
// record whose chain is cyclic, dangling or too deep. A record whose own link
// is sound but whose ancestors are broken is reported as unreachable, so the
// defect itself is attributed to the records that carry it. It costs
// O(n * depth) and is meant for background checks and operator tooling, not
// the hot path.
func (r *Resolver) Audit(snap *Snapshot) []Anomaly {
	var found []Anomaly
	for _, f := range snap.Flags() {
		if _, err := r.effective(snap, f); err != nil {
			var a Anomaly
			if errors.As(err, &a) {
				found = append(found, classify(snap, f, a))
			}
		}
	}
	return found
}

func classify(snap *Snapshot, rec domain.Flag, a Anomaly) Anomaly {
	switch a.Kind {
	case AnomalyCycle:
		if !onCycle(snap, rec) {
			a.Kind = AnomalyUnreachable
			a.Detail = "ancestor chain enters a cycle"
		}
	case AnomalyDanglingParent:
		if _, ok := snap.ByID(rec.ParentIDValue()); ok {
			a.Kind = AnomalyUnreachable
			a.Detail = "an ancestor's parent is missing"
		}
	}
	return a
}

// onCycle reports whether following parents from rec leads back to rec.
func onCycle(snap *Snapshot, rec domain.Flag) bool {
	current := rec
	for hops := 0; hops <= snap.Len() && current.ParentID != nil; hops++ {
		if *current.ParentID == rec.ID {
			return true
		}
		parent, ok := snap.ByID(*current.ParentID)
		if !ok {
			return false
		}
		current = parent
	}
	return false
}

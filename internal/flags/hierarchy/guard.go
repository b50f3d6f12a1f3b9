package hierarchy

import "fmt"

// ValidateNoCycle checks that making candidateParentID the parent of
// candidateID keeps the parent graph acyclic and within maxDepth hops.
//
// The walk starts at the proposed parent and follows parent links with a
// visited set, so it costs O(depth) time and space regardless of how many
// records the snapshot holds. A nil parent is always valid.
func ValidateNoCycle(candidateID string, candidateParentID *string, snap *Snapshot, maxDepth int) error {
	_, err := ancestorCount(candidateID, candidateParentID, snap, normaliseDepth(maxDepth))
	return err
}

// ValidatePlacement runs ValidateNoCycle and additionally checks that every
// descendant of candidateID stays within maxDepth after the move. Use it for
// reparenting a flag that may already have children.
func ValidatePlacement(candidateID string, candidateParentID *string, snap *Snapshot, maxDepth int) error {
	maxDepth = normaliseDepth(maxDepth)

	ancestors, err := ancestorCount(candidateID, candidateParentID, snap, maxDepth)
	if err != nil {
		return err
	}

	height := subtreeHeight(candidateID, snap, maxDepth)
	if ancestors+height > maxDepth {
		return fmt.Errorf("%w: moving %s would put descendants %d levels deep (max %d)",
			ErrCycleDetected, candidateID, ancestors+height, maxDepth)
	}
	return nil
}

// ancestorCount returns how many ancestors candidateID would have under the
// proposed parent.
func ancestorCount(candidateID string, candidateParentID *string, snap *Snapshot, maxDepth int) (int, error) {
	if candidateParentID == nil {
		return 0, nil
	}

	visited := make(map[string]struct{}, 8)
	current := *candidateParentID

	for hops := 0; ; hops++ {
		if current == candidateID {
			return 0, fmt.Errorf("%w: %s would become its own ancestor", ErrCycleDetected, candidateID)
		}
		if hops >= maxDepth {
			return 0, fmt.Errorf("%w: ancestor chain exceeds max depth %d", ErrCycleDetected, maxDepth)
		}
		if _, seen := visited[current]; seen {
			return 0, fmt.Errorf("%w: existing loop through %s", ErrCycleDetected, current)
		}
		visited[current] = struct{}{}

		rec, ok := snap.ByID(current)
		if !ok {
			if hops == 0 {
				return 0, fmt.Errorf("%w: %s", ErrParentNotFound, current)
			}
			return 0, Anomaly{Kind: AnomalyDanglingParent, Flag: current, Detail: "ancestor missing from record set"}
		}
		if rec.ParentID == nil {
			return hops + 1, nil
		}
		current = *rec.ParentID
	}
}

// subtreeHeight returns the number of levels below id, capped at maxDepth+1.
// Records already seen on the way down are not expanded again.
func subtreeHeight(id string, snap *Snapshot, maxDepth int) int {
	children := childIndex(snap)
	visited := map[string]struct{}{id: {}}

	level := []string{id}
	height := 0
	for len(level) > 0 && height <= maxDepth {
		var next []string
		for _, parent := range level {
			for _, child := range children[parent] {
				if _, seen := visited[child.ID]; seen {
					continue
				}
				visited[child.ID] = struct{}{}
				next = append(next, child.ID)
			}
		}
		if len(next) == 0 {
			break
		}
		height++
		level = next
	}
	return height
}

package hierarchy

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds every ancestor walk when no explicit depth is configured.
const DefaultMaxDepth = 32

var (
	// ErrCycleDetected is returned by the write-time guard when a parent
	// assignment would close a loop or push a chain past the depth bound.
	ErrCycleDetected = errors.New("hierarchy: cycle detected")

	// ErrParentNotFound is returned when a requested parent is not in the snapshot.
	ErrParentNotFound = errors.New("hierarchy: parent not found")

	// ErrMalformedHierarchy is the read-path diagnostic. It is logged, never
	// returned to callers of evaluation or tree materialisation.
	ErrMalformedHierarchy = errors.New("hierarchy: malformed hierarchy")
)

// AnomalyKind classifies a malformed hierarchy finding.
type AnomalyKind string

const (
	AnomalyCycle          AnomalyKind = "cycle"
	AnomalyDepthExceeded  AnomalyKind = "depth_exceeded"
	AnomalyDanglingParent AnomalyKind = "dangling_parent"
	AnomalyUnreachable    AnomalyKind = "unreachable"
)

// Anomaly describes one defect found while walking the record set. It
// implements error and unwraps to ErrMalformedHierarchy.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Flag   string      `json:"flag"`
	Detail string      `json:"detail"`
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("%s: %s at %q: %s", ErrMalformedHierarchy, a.Kind, a.Flag, a.Detail)
}

func (a Anomaly) Unwrap() error { return ErrMalformedHierarchy }

func normaliseDepth(maxDepth int) int {
	if maxDepth <= 0 {
		return DefaultMaxDepth
	}
	return maxDepth
}

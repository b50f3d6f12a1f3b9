package domain

import "time"

// UsageEvent records that a subject successfully used a gated feature.
type UsageEvent struct {
	FeatureName string
	SubjectID   string
	At          time.Time
}

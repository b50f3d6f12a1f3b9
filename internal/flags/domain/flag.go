package domain

import "time"

// Flag is a single persisted feature flag. Parentage is a weak reference by
// id; the effective (ancestor-aware) state is never stored here.
type Flag struct {
	ID          string
	Name        string // Unique, case-sensitive, immutable after creation
	DisplayName string
	Description string
	Enabled     bool    // Own state, independent of ancestors
	ParentID    *string // nil marks a root flag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the flag has no parent.
func (f Flag) IsRoot() bool { return f.ParentID == nil }

// ParentIDValue returns the parent id or "" for roots.
func (f Flag) ParentIDValue() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

package flagsdk

import "time"

// ============================================================================
// Flag Types
// ============================================================================

// Flag is the wire form of a stored feature flag. Enabled is the flag's own
// bit; use IsEnabled or the tree view for the ancestor-aware state.
type Flag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	ParentID    *string   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TreeNode is one flag in the hierarchy view. Effective is true only when
// the flag and every ancestor are enabled. Children is empty where a
// malformed hierarchy was cut.
type TreeNode struct {
	Flag      Flag       `json:"flag"`
	Effective bool       `json:"effective"`
	Children  []TreeNode `json:"children"`
}

// ListFlagsResponse is returned from GET /v1/flags.
type ListFlagsResponse struct {
	Flags []Flag `json:"flags"`
}

// TreeResponse is returned from GET /v1/flags/tree.
type TreeResponse struct {
	Roots []TreeNode `json:"roots"`
}

// EnabledResponse is returned from GET /v1/flags/{name}/enabled.
type EnabledResponse struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Anomaly is one malformed-hierarchy finding.
type Anomaly struct {
	Kind   string `json:"kind"`
	Flag   string `json:"flag"`
	Detail string `json:"detail"`
}

// AuditResponse is returned from GET /v1/flags/audit.
type AuditResponse struct {
	Count     int       `json:"count"`
	Anomalies []Anomaly `json:"anomalies"`
}

// ============================================================================
// Request Types
// ============================================================================

// CreateFlagRequest creates a new, disabled flag. Parent names an existing
// flag; omit it for a root.
type CreateFlagRequest struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name,omitempty"`
	Description string  `json:"description,omitempty"`
	Parent      *string `json:"parent,omitempty"`
}

// UpdateFlagRequest is a partial update. Nil fields are left unchanged.
type UpdateFlagRequest struct {
	Enabled     *bool   `json:"enabled,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ReparentRequest moves a flag. A null Parent moves it to the top level.
type ReparentRequest struct {
	Parent *string `json:"parent"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Keys     string `json:"keys"`
}

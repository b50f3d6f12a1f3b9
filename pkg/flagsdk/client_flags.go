package flagsdk

import (
	"context"
	"net/http"
)

// State filters ListFlags by the flag's own bit.
type State string

const (
	StateAll      State = ""
	StateEnabled  State = "enabled"
	StateDisabled State = "disabled"
)

// CreateFlag creates a new flag. Requires flags:write.
func (c *Client) CreateFlag(ctx context.Context, req CreateFlagRequest) (*Flag, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/flags", req, true)
	if err != nil {
		return nil, err
	}

	var flag Flag
	if err := decodeJSON(resp, &flag, http.StatusCreated); err != nil {
		return nil, err
	}
	return &flag, nil
}

// GetFlag fetches one flag by name. Requires flags:read.
func (c *Client) GetFlag(ctx context.Context, name string) (*Flag, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, flagPath(name, ""), nil, true)
	if err != nil {
		return nil, err
	}

	var flag Flag
	if err := decodeJSON(resp, &flag, http.StatusOK); err != nil {
		return nil, err
	}
	return &flag, nil
}

// ListFlags lists flags ordered by name, optionally filtered by own state.
// Requires flags:read.
func (c *Client) ListFlags(ctx context.Context, state State) ([]Flag, error) {
	path := "/v1/flags"
	if state != StateAll {
		path += "?state=" + string(state)
	}
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	var out ListFlagsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Flags, nil
}

// ListTree returns the flag forest with effective states. Requires flags:read.
func (c *Client) ListTree(ctx context.Context) ([]TreeNode, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/flags/tree", nil, true)
	if err != nil {
		return nil, err
	}

	var out TreeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Roots, nil
}

// Audit returns malformed-hierarchy findings. Requires flags:read.
func (c *Client) Audit(ctx context.Context) (*AuditResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/flags/audit", nil, true)
	if err != nil {
		return nil, err
	}

	var out AuditResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFlag applies a partial update. Requires flags:write.
func (c *Client) UpdateFlag(ctx context.Context, name string, req UpdateFlagRequest) (*Flag, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, flagPath(name, ""), req, true)
	if err != nil {
		return nil, err
	}

	var flag Flag
	if err := decodeJSON(resp, &flag, http.StatusOK); err != nil {
		return nil, err
	}
	return &flag, nil
}

// SetEnabled sets the flag's own bit. Requires flags:write.
func (c *Client) SetEnabled(ctx context.Context, name string, enabled bool) (*Flag, error) {
	return c.UpdateFlag(ctx, name, UpdateFlagRequest{Enabled: &enabled})
}

// Reparent moves name under parent, or to the top level when parent is nil.
// Requires flags:write.
func (c *Client) Reparent(ctx context.Context, name string, parent *string) (*Flag, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, flagPath(name, "/parent"), ReparentRequest{Parent: parent}, true)
	if err != nil {
		return nil, err
	}

	var flag Flag
	if err := decodeJSON(resp, &flag, http.StatusOK); err != nil {
		return nil, err
	}
	return &flag, nil
}

// DeleteFlag removes name and all of its descendants. Requires flags:write.
func (c *Client) DeleteFlag(ctx context.Context, name string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, flagPath(name, ""), nil, true)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// IsEnabled reports the effective state of name. Unknown flags are false.
// The endpoint is public.
func (c *Client) IsEnabled(ctx context.Context, name string) (bool, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, flagPath(name, "/enabled"), nil, false)
	if err != nil {
		return false, err
	}

	var out EnabledResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Enabled, nil
}

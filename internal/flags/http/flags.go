package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/pkg/flagsdk"
	"github.com/aussiebroadwan/flagtree/pkg/httpx"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
)

type FlagsHandler struct {
	Flags *service.FlagService
}

// HandleCreate creates a flag
//
//	@Summary		Create a flag
//	@Description	Creates a new, disabled flag, optionally under an existing parent. Requires flags:write scope.
//	@Tags			Flags
//	@Accept			json
//	@Produce		json
//	@Param			request	body		flagsdk.CreateFlagRequest	true	"Flag to create"
//	@Success		201		{object}	flagsdk.Flag
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Failure		404		{object}	httpx.ErrorResponse	"parent_not_found"
//	@Failure		409		{object}	httpx.ErrorResponse	"duplicate_flag_name or cycle_detected"
//	@Security		BearerAuth
//	@Router			/v1/flags [post].
func (h *FlagsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req flagsdk.CreateFlagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		flagsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	flag, err := h.Flags.Create(r.Context(), service.CreateFlagInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		ParentName:  req.Parent,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toFlag(flag))
}

// HandleList lists flags
//
//	@Summary		List flags
//	@Description	Returns every flag ordered by name. state=enabled or state=disabled filters by the flag's own bit, ignoring ancestors. Requires flags:read scope.
//	@Tags			Flags
//	@Produce		json
//	@Param			state	query		string	false	"Own-state filter"	Enums(enabled, disabled)
//	@Success		200		{object}	flagsdk.ListFlagsResponse
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Security		BearerAuth
//	@Router			/v1/flags [get].
func (h *FlagsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		flags []domain.Flag
		err   error
	)
	switch state := r.URL.Query().Get("state"); state {
	case "":
		flags, err = h.Flags.ListAll(ctx)
	case string(flagsdk.StateEnabled):
		flags, err = h.Flags.ListEnabled(ctx)
	case string(flagsdk.StateDisabled):
		flags, err = h.Flags.ListDisabled(ctx)
	default:
		flagsdk.ErrInvalidRequest.WithDescription("state must be enabled or disabled").WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := flagsdk.ListFlagsResponse{Flags: make([]flagsdk.Flag, len(flags))}
	for i, f := range flags {
		resp.Flags[i] = toFlag(f)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleTree returns the hierarchy
//
//	@Summary		Flag tree
//	@Description	Returns the flag forest with the effective state of every node. Branches of a malformed hierarchy are cut, never reported as errors. Requires flags:read scope.
//	@Tags			Flags
//	@Produce		json
//	@Success		200	{object}	flagsdk.TreeResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Security		BearerAuth
//	@Router			/v1/flags/tree [get].
func (h *FlagsHandler) HandleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Flags.ListTree(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, flagsdk.TreeResponse{Roots: toTree(tree)})
}

// HandleAudit scans the hierarchy
//
//	@Summary		Audit the hierarchy
//	@Description	Lists cycles, dangling parents, depth overflows and unreachable flags. Gated by the flagtree.audit flag. Requires flags:read scope.
//	@Tags			Flags
//	@Produce		json
//	@Success		200	{object}	flagsdk.AuditResponse
//	@Failure		401	{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	httpx.ErrorResponse	"insufficient_scope or feature_disabled"
//	@Security		BearerAuth
//	@Router			/v1/flags/audit [get].
func (h *FlagsHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	anomalies, err := h.Flags.Audit(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := flagsdk.AuditResponse{
		Count:     len(anomalies),
		Anomalies: make([]flagsdk.Anomaly, len(anomalies)),
	}
	for i, a := range anomalies {
		resp.Anomalies[i] = flagsdk.Anomaly{Kind: string(a.Kind), Flag: a.Flag, Detail: a.Detail}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet returns one flag
//
//	@Summary		Get a flag
//	@Tags			Flags
//	@Produce		json
//	@Param			name	path		string	true	"Flag name"
//	@Success		200		{object}	flagsdk.Flag
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Failure		404		{object}	httpx.ErrorResponse	"flag_not_found"
//	@Security		BearerAuth
//	@Router			/v1/flags/{name} [get].
func (h *FlagsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	flag, err := h.Flags.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFlag(flag))
}

// HandleUpdate applies a partial update
//
//	@Summary		Update a flag
//	@Description	Sets the flag's own enabled bit and/or its display name and description. Requires flags:write scope.
//	@Tags			Flags
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string						true	"Flag name"
//	@Param			request	body		flagsdk.UpdateFlagRequest	true	"Fields to change"
//	@Success		200		{object}	flagsdk.Flag
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Failure		404		{object}	httpx.ErrorResponse	"flag_not_found"
//	@Security		BearerAuth
//	@Router			/v1/flags/{name} [patch].
func (h *FlagsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	var req flagsdk.UpdateFlagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		flagsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if req.Enabled == nil && req.DisplayName == nil && req.Description == nil {
		flagsdk.ErrInvalidRequest.WithDescription("nothing to update").WriteError(w)
		return
	}

	flag, err := h.Flags.Patch(ctx, name, service.FlagPatch{
		Enabled:     req.Enabled,
		DisplayName: req.DisplayName,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toFlag(flag))
}

// HandleReparent moves a flag
//
//	@Summary		Move a flag
//	@Description	Moves the flag under another parent, or to the top level when parent is null. Moves that would loop the hierarchy are rejected and change nothing. Requires flags:write scope.
//	@Tags			Flags
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Flag name"
//	@Param			request	body		flagsdk.ReparentRequest	true	"New parent"
//	@Success		200		{object}	flagsdk.Flag
//	@Failure		400		{object}	httpx.ErrorResponse	"invalid_request"
//	@Failure		401		{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403		{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Failure		404		{object}	httpx.ErrorResponse	"flag_not_found or parent_not_found"
//	@Failure		409		{object}	httpx.ErrorResponse	"cycle_detected"
//	@Security		BearerAuth
//	@Router			/v1/flags/{name}/parent [put].
func (h *FlagsHandler) HandleReparent(w http.ResponseWriter, r *http.Request) {
	var req flagsdk.ReparentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		flagsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	flag, err := h.Flags.Reparent(r.Context(), r.PathValue("name"), req.Parent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toFlag(flag))
}

// HandleDelete removes a flag
//
//	@Summary		Delete a flag
//	@Description	Deletes the flag and every descendant. Requires flags:write scope.
//	@Tags			Flags
//	@Param			name	path	string	true	"Flag name"
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	httpx.ErrorResponse	"insufficient_scope"
//	@Failure		404	{object}	httpx.ErrorResponse	"flag_not_found"
//	@Security		BearerAuth
//	@Router			/v1/flags/{name} [delete].
func (h *FlagsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Flags.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleIsEnabled evaluates a flag
//
//	@Summary		Evaluate a flag
//	@Description	Returns whether the flag and all of its ancestors are enabled. Unknown flags and malformed hierarchies evaluate to false. Public.
//	@Tags			Evaluation
//	@Produce		json
//	@Param			name	path		string	true	"Flag name"
//	@Success		200		{object}	flagsdk.EnabledResponse
//	@Failure		429		{object}	httpx.ErrorResponse	"rate_limit_exceeded"
//	@Router			/v1/flags/{name}/enabled [get].
func (h *FlagsHandler) HandleIsEnabled(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	httpx.WriteJSON(w, http.StatusOK, flagsdk.EnabledResponse{
		Name:    name,
		Enabled: h.Flags.IsEnabled(r.Context(), name),
	})
}

// writeServiceError maps service sentinels to API errors. Anything unmapped
// is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *flagsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidFlagName):
		apiErr = flagsdk.ErrInvalidRequest
	case errors.Is(err, service.ErrParentNotFound):
		apiErr = flagsdk.ErrParentNotFound
	case errors.Is(err, service.ErrFlagNotFound):
		apiErr = flagsdk.ErrFlagNotFound
	case errors.Is(err, service.ErrDuplicateFlagName):
		apiErr = flagsdk.ErrDuplicateFlagName
	case errors.Is(err, service.ErrCycleDetected):
		apiErr = flagsdk.ErrCycleDetected
	default:
		slogx.FromContext(r.Context()).Error("flag request failed", "error", err)
		flagsdk.ErrServerError.WriteError(w)
		return
	}
	apiErr.WithDescription(err.Error()).WriteError(w)
}

func toFlag(f domain.Flag) flagsdk.Flag {
	return flagsdk.Flag{
		ID:          f.ID,
		Name:        f.Name,
		DisplayName: f.DisplayName,
		Description: f.Description,
		Enabled:     f.Enabled,
		ParentID:    f.ParentID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func toTree(nodes []hierarchy.TreeNode) []flagsdk.TreeNode {
	out := make([]flagsdk.TreeNode, len(nodes))
	for i, n := range nodes {
		out[i] = flagsdk.TreeNode{
			Flag:      toFlag(n.Flag),
			Effective: n.Effective,
			Children:  toTree(n.Children),
		}
	}
	return out
}

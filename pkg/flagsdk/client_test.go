package flagsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/flagtree/pkg/flagsdk"
	"github.com/aussiebroadwan/flagtree/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestClientSendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/flags", r.URL.Path)

		var req flagsdk.CreateFlagRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "events.create", req.Name)
		require.NotNil(t, req.Parent)
		require.Equal(t, "events", *req.Parent)

		httpx.WriteJSON(w, http.StatusCreated, flagsdk.Flag{ID: "01H", Name: req.Name, ParentID: req.Parent})
	}))
	defer srv.Close()

	c := flagsdk.NewClient(srv.URL+"/", flagsdk.StaticToken("tok"))
	parent := "events"
	flag, err := c.CreateFlag(context.Background(), flagsdk.CreateFlagRequest{Name: "events.create", Parent: &parent})
	require.NoError(t, err)
	require.Equal(t, "01H", flag.ID)
	require.False(t, flag.Enabled)
}

func TestClientDecodesTypedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/flags/ghost":
			flagsdk.ErrFlagNotFound.WithDescription(`flag "ghost" not found`).WriteError(w)
		case "/v1/flags/a/parent":
			flagsdk.ErrCycleDetected.WriteError(w)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := flagsdk.NewClient(srv.URL, flagsdk.StaticToken("tok"))

	_, err := c.GetFlag(ctx, "ghost")
	require.ErrorIs(t, err, flagsdk.ErrFlagNotFound)
	var apiErr *flagsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Contains(t, apiErr.Description, "ghost")

	b := "b"
	_, err = c.Reparent(ctx, "a", &b)
	require.ErrorIs(t, err, flagsdk.ErrCycleDetected)
	require.NotErrorIs(t, err, flagsdk.ErrFlagNotFound)

	err = c.DeleteFlag(ctx, "other")
	require.ErrorIs(t, err, flagsdk.ErrServerError)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClientIsEnabledIsPublic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		require.Equal(t, "/v1/flags/events.create/enabled", r.URL.Path)
		httpx.WriteJSON(w, http.StatusOK, flagsdk.EnabledResponse{Name: "events.create", Enabled: true})
	}))
	defer srv.Close()

	c := flagsdk.NewClient(srv.URL, nil)
	on, err := c.IsEnabled(context.Background(), "events.create")
	require.NoError(t, err)
	require.True(t, on)

	_, err = c.ListFlags(context.Background(), flagsdk.StateAll)
	require.Error(t, err, "management calls need a token source")
}

func TestClientListAndUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/flags":
			require.Equal(t, "enabled", r.URL.Query().Get("state"))
			httpx.WriteJSON(w, http.StatusOK, flagsdk.ListFlagsResponse{Flags: []flagsdk.Flag{{Name: "a", Enabled: true}}})
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/flags/a":
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, map[string]any{"enabled": false}, req)
			httpx.WriteJSON(w, http.StatusOK, flagsdk.Flag{Name: "a"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/flags/tree":
			httpx.WriteJSON(w, http.StatusOK, flagsdk.TreeResponse{Roots: []flagsdk.TreeNode{
				{Flag: flagsdk.Flag{Name: "a"}, Children: []flagsdk.TreeNode{{Flag: flagsdk.Flag{Name: "a.b"}}}},
			}})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/flags/a":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := flagsdk.NewClient(srv.URL, flagsdk.StaticToken("tok"))

	flags, err := c.ListFlags(ctx, flagsdk.StateEnabled)
	require.NoError(t, err)
	require.Len(t, flags, 1)

	flag, err := c.SetEnabled(ctx, "a", false)
	require.NoError(t, err)
	require.False(t, flag.Enabled)

	roots, err := c.ListTree(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "a.b", roots[0].Children[0].Flag.Name)

	require.NoError(t, c.DeleteFlag(ctx, "a"))
}

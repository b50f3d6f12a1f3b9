package http_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	flagshttp "github.com/aussiebroadwan/flagtree/internal/flags/http"
	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/internal/flags/store/drivers/sqlite"
	"github.com/aussiebroadwan/flagtree/pkg/flagsdk"
	"github.com/aussiebroadwan/flagtree/pkg/httpx"
	"github.com/aussiebroadwan/flagtree/pkg/jwtx"
	"github.com/aussiebroadwan/flagtree/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type usageSink struct {
	mu     sync.Mutex
	events []string
}

func (u *usageSink) Record(_ context.Context, feature, subject string, _ time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, feature+"/"+subject)
}

type harness struct {
	srv   *httptest.Server
	svc   *service.FlagService
	usage *usageSink
	mint  func(scopes ...string) string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", priv)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(signer.PublicJWK()))
	verifier := jwtx.NewVerifier(keys, jwtx.VerifyOptions{Issuer: "https://auth.test", Audience: []string{"flagtree"}})

	svc := service.NewFlagService(st, cache.NewSnapshots(cache.NewMemory(), time.Minute), 8)
	usage := &usageSink{}

	router := flagshttp.NewRouter(keys, verifier, "test", st, slogx.Discard())
	router.FlagService = svc
	router.Usage = usage
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &harness{
		srv:   srv,
		svc:   svc,
		usage: usage,
		mint: func(scopes ...string) string {
			tok, err := signer.Sign(jwtx.NewClaims("admin-1", scopes, time.Minute, "https://auth.test", []string{"flagtree"}, time.Now()))
			require.NoError(t, err)
			return tok
		},
	}
}

func (h *harness) client(scopes ...string) *flagsdk.Client {
	return flagsdk.NewClient(h.srv.URL, flagsdk.StaticToken(h.mint(scopes...)))
}

func TestFlagLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.client(flagsdk.ScopeFlagsWrite)

	root, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "root", DisplayName: "Root"})
	require.NoError(t, err)
	require.False(t, root.Enabled)
	require.Nil(t, root.ParentID)

	parent := "root"
	child, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "root.child", Parent: &parent})
	require.NoError(t, err)
	require.Equal(t, root.ID, *child.ParentID)

	_, err = c.SetEnabled(ctx, "root", true)
	require.NoError(t, err)
	_, err = c.SetEnabled(ctx, "root.child", true)
	require.NoError(t, err)

	on, err := c.IsEnabled(ctx, "root.child")
	require.NoError(t, err)
	require.True(t, on)

	_, err = c.SetEnabled(ctx, "root", false)
	require.NoError(t, err)
	on, err = c.IsEnabled(ctx, "root.child")
	require.NoError(t, err)
	require.False(t, on)

	enabled, err := c.ListFlags(ctx, flagsdk.StateEnabled)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	require.Equal(t, "root.child", enabled[0].Name)

	tree, err := c.ListTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.False(t, tree[0].Effective)
	require.False(t, tree[0].Children[0].Effective)
	require.True(t, tree[0].Children[0].Flag.Enabled)

	desc := "top level"
	updated, err := c.UpdateFlag(ctx, "root", flagsdk.UpdateFlagRequest{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Root", updated.DisplayName)
	require.Equal(t, "top level", updated.Description)

	require.NoError(t, c.DeleteFlag(ctx, "root"))
	_, err = c.GetFlag(ctx, "root.child")
	require.ErrorIs(t, err, flagsdk.ErrFlagNotFound)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.client(flagsdk.ScopeFlagsWrite)

	_, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "a"})
	require.NoError(t, err)
	a := "a"
	_, err = c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "a.b", Parent: &a})
	require.NoError(t, err)

	missing := "missing"
	ab := "a.b"

	cases := []struct {
		name   string
		call   func() error
		want   *flagsdk.APIError
		status int
	}{
		{"duplicate", func() error {
			_, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "a"})
			return err
		}, flagsdk.ErrDuplicateFlagName, http.StatusConflict},
		{"invalid name", func() error {
			_, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "no spaces"})
			return err
		}, flagsdk.ErrInvalidRequest, http.StatusBadRequest},
		{"missing parent", func() error {
			_, err := c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "x", Parent: &missing})
			return err
		}, flagsdk.ErrParentNotFound, http.StatusNotFound},
		{"unknown flag", func() error {
			_, err := c.GetFlag(ctx, "ghost")
			return err
		}, flagsdk.ErrFlagNotFound, http.StatusNotFound},
		{"cycle", func() error {
			_, err := c.Reparent(ctx, "a", &ab)
			return err
		}, flagsdk.ErrCycleDetected, http.StatusConflict},
		{"empty patch", func() error {
			_, err := c.UpdateFlag(ctx, "a", flagsdk.UpdateFlagRequest{})
			return err
		}, flagsdk.ErrInvalidRequest, http.StatusBadRequest},
		{"delete unknown", func() error {
			return c.DeleteFlag(ctx, "ghost")
		}, flagsdk.ErrFlagNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.ErrorIs(t, err, tc.want)
			var apiErr *flagsdk.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.StatusCode)
		})
	}

	got, err := c.GetFlag(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, got.ParentID, "rejected reparent leaves the flag in place")
}

func TestAuthAndScopes(t *testing.T) {
	h := newHarness(t)

	do := func(method, path, token, body string) *http.Response {
		req, err := http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	require.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/v1/flags", "", "").StatusCode)
	require.Equal(t, http.StatusForbidden,
		do(http.MethodPost, "/v1/flags", h.mint(flagsdk.ScopeFlagsRead), `{"name":"x"}`).StatusCode)
	require.Equal(t, http.StatusOK, do(http.MethodGet, "/v1/flags", h.mint(flagsdk.ScopeFlagsRead), "").StatusCode)
	require.Equal(t, http.StatusBadRequest,
		do(http.MethodGet, "/v1/flags?state=maybe", h.mint(flagsdk.ScopeFlagsRead), "").StatusCode)
	require.Equal(t, http.StatusBadRequest,
		do(http.MethodPost, "/v1/flags", h.mint(flagsdk.ScopeFlagsWrite), `{"name":"x","bogus":true}`).StatusCode)

	resp := do(http.MethodGet, "/v1/flags/never-created/enabled", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out flagsdk.EnabledResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, flagsdk.EnabledResponse{Name: "never-created", Enabled: false}, out)
}

func TestAuditIsGatedByItsOwnFlag(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := h.client(flagsdk.ScopeFlagsRead, flagsdk.ScopeFlagsWrite)

	_, err := c.Audit(ctx)
	var apiErr *flagsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, flagsdk.ErrorCodeFeatureDisabled, apiErr.Code)

	_, err = c.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: flagshttp.AuditFeatureFlag})
	require.NoError(t, err)
	_, err = c.SetEnabled(ctx, flagshttp.AuditFeatureFlag, true)
	require.NoError(t, err)

	report, err := c.Audit(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Count)

	h.usage.mu.Lock()
	defer h.usage.mu.Unlock()
	require.Equal(t, []string{flagshttp.AuditFeatureFlag + "/admin-1"}, h.usage.events)
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := flagsdk.NewClient(h.srv.URL, nil)

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "disabled", ready.Checks.Cache)
	require.Equal(t, "ok", ready.Checks.Database)
}

func TestWriteErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	flagsdk.ErrCycleDetected.WithDescription("a -> b -> a").WriteError(rec)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var body httpx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "cycle_detected", body.Error)
}

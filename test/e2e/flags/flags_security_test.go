package flags_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/flagtree/pkg/flagsdk"
	"github.com/stretchr/testify/require"
)

// TestManagementRequiresScopes verifies token and scope enforcement.
func TestManagementRequiresScopes(t *testing.T) {
	ctx := t.Context()
	baseURL := setupFlagsContainer(t)

	anonymous := flagsdk.NewClient(baseURL, flagsdk.StaticToken("not-a-jwt"))
	_, err := anonymous.ListFlags(ctx, flagsdk.StateAll)
	require.ErrorIs(t, err, flagsdk.ErrInvalidToken)

	reader := flagsdk.NewClient(baseURL, flagsdk.StaticToken(mintToken(t, flagsdk.ScopeFlagsRead)))
	_, err = reader.ListFlags(ctx, flagsdk.StateAll)
	require.NoError(t, err)

	_, err = reader.CreateFlag(ctx, flagsdk.CreateFlagRequest{Name: "x"})
	require.ErrorIs(t, err, flagsdk.ErrInsufficientScope)
	var apiErr *flagsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

// TestAuditFlagGatesAuditEndpoint verifies the seeded system flag controls
// the audit endpoint.
func TestAuditFlagGatesAuditEndpoint(t *testing.T) {
	ctx := t.Context()
	baseURL := setupFlagsContainer(t)
	admin := adminClient(t, baseURL)

	_, err := admin.Audit(ctx)
	require.NoError(t, err)

	_, err = admin.SetEnabled(ctx, "flagtree.audit", false)
	require.NoError(t, err)

	_, err = admin.Audit(ctx)
	var apiErr *flagsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, flagsdk.ErrorCodeFeatureDisabled, apiErr.Code)
}

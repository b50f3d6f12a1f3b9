package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
	"github.com/aussiebroadwan/flagtree/internal/flags/service"
	"github.com/aussiebroadwan/flagtree/internal/flags/store/drivers/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newService(t *testing.T) (*service.FlagService, *sqlite.Store) {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	// A long TTL makes any missed invalidation visible.
	snaps := cache.NewSnapshots(cache.NewMemory(), time.Hour)
	return service.NewFlagService(st, snaps, 8), st
}

func mustCreate(t *testing.T, svc *service.FlagService, name string, parent *string) domain.Flag {
	t.Helper()
	f, err := svc.Create(context.Background(), service.CreateFlagInput{Name: name, ParentName: parent})
	require.NoError(t, err)
	return f
}

func TestScenarioRootAndChild(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	root := mustCreate(t, svc, "root", nil)
	require.False(t, root.Enabled)
	child := mustCreate(t, svc, "root.child", ptr("root"))
	require.Equal(t, root.ID, child.ParentIDValue())

	_, err := svc.Update(ctx, "root", true)
	require.NoError(t, err)
	_, err = svc.Update(ctx, "root.child", true)
	require.NoError(t, err)
	require.True(t, svc.IsEnabled(ctx, "root.child"))

	_, err = svc.Update(ctx, "root", false)
	require.NoError(t, err)
	require.False(t, svc.IsEnabled(ctx, "root.child"))

	got, err := svc.Get(ctx, "root.child")
	require.NoError(t, err)
	require.True(t, got.Enabled, "own bit is untouched by the ancestor toggle")
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first, err := svc.Create(ctx, service.CreateFlagInput{Name: "events", DisplayName: "Events", Description: "all event features"})
	require.NoError(t, err)
	require.False(t, first.Enabled)
	require.True(t, first.IsRoot())
	require.NotEmpty(t, first.ID)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.Create(ctx, service.CreateFlagInput{Name: "events", Description: "other"})
		require.ErrorIs(t, err, service.ErrDuplicateFlagName)

		got, err := svc.Get(ctx, "events")
		require.NoError(t, err)
		require.Equal(t, first.ID, got.ID)
		require.Equal(t, "all event features", got.Description)
	})

	t.Run("names are case sensitive", func(t *testing.T) {
		_, err := svc.Create(ctx, service.CreateFlagInput{Name: "Events"})
		require.NoError(t, err)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := svc.Create(ctx, service.CreateFlagInput{Name: ".hidden"})
		require.ErrorIs(t, err, service.ErrInvalidFlagName)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := svc.Create(ctx, service.CreateFlagInput{Name: "orphan", ParentName: ptr("nope")})
		require.ErrorIs(t, err, service.ErrParentNotFound)
		require.ErrorIs(t, err, service.ErrFlagNotFound)

		_, err = svc.Get(ctx, "orphan")
		require.ErrorIs(t, err, service.ErrFlagNotFound)
	})

	t.Run("depth bound", func(t *testing.T) {
		parent := "events"
		for i := range 8 {
			name := parent + "." + string(rune('a'+i))
			_, err := svc.Create(ctx, service.CreateFlagInput{Name: name, ParentName: ptr(parent)})
			require.NoError(t, err)
			parent = name
		}
		_, err := svc.Create(ctx, service.CreateFlagInput{Name: "too.deep", ParentName: ptr(parent)})
		require.ErrorIs(t, err, service.ErrCycleDetected)
	})
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "events.posts.create", "A-b_c.9", "9lives"} {
		require.NoError(t, service.ValidateName(ok), ok)
	}
	long := make([]byte, service.MaxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	for _, bad := range []string{"", "-x", ".x", "has space", "emoji😀", string(long)} {
		require.ErrorIs(t, service.ValidateName(bad), service.ErrInvalidFlagName, bad)
	}
}

func TestUpdateAndGetNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Get(ctx, "ghost")
	require.ErrorIs(t, err, service.ErrFlagNotFound)
	_, err = svc.Update(ctx, "ghost", true)
	require.ErrorIs(t, err, service.ErrFlagNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "ghost"), service.ErrFlagNotFound)
	_, err = svc.Reparent(ctx, "ghost", nil)
	require.ErrorIs(t, err, service.ErrFlagNotFound)
}

func TestUpdateOnlyTouchesEnabled(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	orig, err := svc.Create(ctx, service.CreateFlagInput{Name: "a", DisplayName: "A", Description: "desc"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	got, err := svc.Update(ctx, "a", true)
	require.NoError(t, err)
	require.True(t, got.Enabled)
	require.Equal(t, orig.ID, got.ID)
	require.Equal(t, "A", got.DisplayName)
	require.Equal(t, "desc", got.Description)
	require.Equal(t, orig.CreatedAt, got.CreatedAt)
	require.True(t, got.UpdatedAt.After(orig.UpdatedAt))

	got, err = svc.UpdateDetails(ctx, "a", nil, ptr("new desc"))
	require.NoError(t, err)
	require.Equal(t, "A", got.DisplayName)
	require.Equal(t, "new desc", got.Description)
	require.True(t, got.Enabled)
}

func TestPatchAppliesAllFieldsTogether(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustCreate(t, svc, "a", nil)

	on, off := true, false
	for range 20 {
		var wg sync.WaitGroup
		for _, p := range []service.FlagPatch{
			{Enabled: &on, DisplayName: ptr("on")},
			{Enabled: &off, DisplayName: ptr("off")},
		} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Patch(ctx, "a", p)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := svc.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, got.Enabled, got.DisplayName == "on", "patch fields must land together")
	}

	_, err := svc.Patch(ctx, "missing", service.FlagPatch{Enabled: &on})
	require.ErrorIs(t, err, service.ErrFlagNotFound)
}

func TestIsEnabledUnknownIsFalse(t *testing.T) {
	svc, _ := newService(t)
	require.False(t, svc.IsEnabled(context.Background(), "never-created"))
}

func TestListEnabledUsesOwnBit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustCreate(t, svc, "p", nil)
	mustCreate(t, svc, "p.c", ptr("p"))
	_, err := svc.Update(ctx, "p.c", true)
	require.NoError(t, err)

	enabled, err := svc.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	require.Equal(t, "p.c", enabled[0].Name)
	require.False(t, svc.IsEnabled(ctx, "p.c"), "effective state still honours the disabled parent")

	disabled, err := svc.ListDisabled(ctx)
	require.NoError(t, err)
	require.Len(t, disabled, 1)
	require.Equal(t, "p", disabled[0].Name)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestListTree(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustCreate(t, svc, "b", nil)
	mustCreate(t, svc, "a", nil)
	mustCreate(t, svc, "a.x", ptr("a"))
	_, err := svc.Update(ctx, "a", true)
	require.NoError(t, err)
	_, err = svc.Update(ctx, "a.x", true)
	require.NoError(t, err)

	tree, err := svc.ListTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "a", tree[0].Flag.Name)
	require.True(t, tree[0].Effective)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "a.x", tree[0].Children[0].Flag.Name)
	require.True(t, tree[0].Children[0].Effective)
	require.Equal(t, "b", tree[1].Flag.Name)
	require.Empty(t, tree[1].Children)
}

func TestReparent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustCreate(t, svc, "a", nil)
	mustCreate(t, svc, "a.b", ptr("a"))
	c := mustCreate(t, svc, "a.b.c", ptr("a.b"))
	mustCreate(t, svc, "z", nil)

	t.Run("onto a descendant is rejected", func(t *testing.T) {
		_, err := svc.Reparent(ctx, "a", ptr("a.b.c"))
		require.ErrorIs(t, err, service.ErrCycleDetected)

		a, err := svc.Get(ctx, "a")
		require.NoError(t, err)
		require.True(t, a.IsRoot())

		got, err := svc.Get(ctx, "a.b.c")
		require.NoError(t, err)
		require.Equal(t, c.ParentID, got.ParentID)
	})

	t.Run("onto itself is rejected", func(t *testing.T) {
		_, err := svc.Reparent(ctx, "z", ptr("z"))
		require.ErrorIs(t, err, service.ErrCycleDetected)
	})

	t.Run("onto a missing parent", func(t *testing.T) {
		_, err := svc.Reparent(ctx, "z", ptr("nope"))
		require.ErrorIs(t, err, service.ErrParentNotFound)
	})

	t.Run("valid move and back to root", func(t *testing.T) {
		z, err := svc.Get(ctx, "z")
		require.NoError(t, err)

		moved, err := svc.Reparent(ctx, "a", ptr("z"))
		require.NoError(t, err)
		require.Equal(t, z.ID, moved.ParentIDValue())

		tree, err := svc.ListTree(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		require.Equal(t, "z", tree[0].Flag.Name)

		moved, err = svc.Reparent(ctx, "a", nil)
		require.NoError(t, err)
		require.True(t, moved.IsRoot())
	})
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustCreate(t, svc, "a", nil)
	mustCreate(t, svc, "a.b", ptr("a"))
	mustCreate(t, svc, "a.b.c", ptr("a.b"))
	mustCreate(t, svc, "other", nil)

	require.NoError(t, svc.Delete(ctx, "a"))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "other", all[0].Name)

	_, err = svc.Get(ctx, "a.b.c")
	require.ErrorIs(t, err, service.ErrFlagNotFound)
}

func TestCorruptHierarchyFailsClosed(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	a := mustCreate(t, svc, "a", nil)
	b := mustCreate(t, svc, "b", ptr("a"))
	self := mustCreate(t, svc, "self", nil)
	for _, n := range []string{"a", "b", "self"} {
		_, err := svc.Update(ctx, n, true)
		require.NoError(t, err)
	}

	// Write the corruption straight to the store, past the guard.
	require.NoError(t, st.Flags().UpdateFlagParent(ctx, a.ID, &b.ID))
	require.NoError(t, st.Flags().UpdateFlagParent(ctx, self.ID, &self.ID))
	require.NoError(t, svc.Cache.Invalidate(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.False(t, svc.IsEnabled(ctx, "a"))
		assert.False(t, svc.IsEnabled(ctx, "b"))
		assert.False(t, svc.IsEnabled(ctx, "self"))

		_, err := svc.ListTree(ctx)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("evaluation over a cyclic record set did not terminate")
	}

	anomalies, err := svc.Audit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, anomalies)
	for _, an := range anomalies {
		require.ErrorIs(t, an, hierarchy.ErrMalformedHierarchy)
	}
}

func TestReadYourWrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustCreate(t, svc, "flag", nil)
	require.False(t, svc.IsEnabled(ctx, "flag")) // warms the cache

	_, err := svc.Update(ctx, "flag", true)
	require.NoError(t, err)
	require.True(t, svc.IsEnabled(ctx, "flag"))

	mustCreate(t, svc, "late", nil)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestConcurrentReparentCannotFormCycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for range 10 {
		mustCreate(t, svc, "x", nil)
		mustCreate(t, svc, "y", nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() { defer wg.Done(); _, errs[0] = svc.Reparent(ctx, "x", ptr("y")) }()
		go func() { defer wg.Done(); _, errs[1] = svc.Reparent(ctx, "y", ptr("x")) }()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, service.ErrCycleDetected)
			}
		}
		require.Equal(t, 1, succeeded)

		anomalies, err := svc.Audit(ctx)
		require.NoError(t, err)
		require.Empty(t, anomalies)

		// Whichever is the root takes the other with it.
		tree, err := svc.ListTree(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		require.NoError(t, svc.Delete(ctx, tree[0].Flag.Name))
	}
}

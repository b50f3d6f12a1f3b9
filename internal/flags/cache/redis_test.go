package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/cache"
	"github.com/aussiebroadwan/flagtree/internal/flags/domain"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedisStore(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	client, err := cache.Connect(ctx, cache.RedisConfig{
		URL:           url,
		RetryAttempts: 5,
		RetryInterval: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	r := cache.NewRedis(client, "flagtree-test")
	require.NoError(t, r.Ping(ctx))

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, r.Set(ctx, "k", []byte("v"), time.Minute))
		got, ok, err := r.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("v"), got)

		require.NoError(t, r.Delete(ctx, "k"))
		_, ok, err = r.Get(ctx, "k")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("snapshots over redis", func(t *testing.T) {
		s := cache.NewSnapshots(r, time.Minute)
		loads := 0
		load := func(context.Context) ([]domain.Flag, error) {
			loads++
			return records("events", "events.posts"), nil
		}

		for range 2 {
			got, err := s.Load(ctx, load)
			require.NoError(t, err)
			require.Equal(t, 2, got.Len())
		}
		require.Equal(t, 1, loads)

		// A second process sharing the same redis is served the encoded set.
		other := cache.NewSnapshots(r, time.Minute)
		got, err := other.Load(ctx, func(context.Context) ([]domain.Flag, error) {
			return nil, errors.New("loader must not run")
		})
		require.NoError(t, err)
		_, ok := got.ByName("events.posts")
		require.True(t, ok)
	})
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := cache.Connect(context.Background(), cache.RedisConfig{URL: "not a url"})
	require.ErrorIs(t, err, cache.ErrRedisNotReady)
}

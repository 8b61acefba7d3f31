package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevProvider(t *testing.T, env map[string]string) *Provider {
	t.Helper()
	return NewProvider(WithLookup(func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}))
}

func TestProviderCacheInfo(t *testing.T) {
	provider := newDevProvider(t, map[string]string{"mode": "development", "gcp_project_id": "p"})

	assert.False(t, provider.IsCached())
	assert.Equal(t, CacheInfo{MaxSize: 1}, provider.CacheInfo())

	first, err := provider.Get()
	require.NoError(t, err)
	assert.True(t, provider.IsCached())
	assert.Equal(t, CacheInfo{Misses: 1, MaxSize: 1, CurrentSize: 1}, provider.CacheInfo())

	second, err := provider.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, CacheInfo{Hits: 1, Misses: 1, MaxSize: 1, CurrentSize: 1}, provider.CacheInfo())

	_, _ = provider.Get()
	assert.Equal(t, 2, provider.CacheInfo().Hits)
}

func TestProviderReload(t *testing.T) {
	provider := newDevProvider(t, map[string]string{"mode": "development", "gcp_project_id": "p"})

	first := provider.MustGet()
	provider.Reload()

	assert.False(t, provider.IsCached())
	assert.Equal(t, CacheInfo{MaxSize: 1}, provider.CacheInfo())

	second := provider.MustGet()
	assert.NotSame(t, first, second)
	assert.Equal(t, CacheInfo{Misses: 1, MaxSize: 1, CurrentSize: 1}, provider.CacheInfo())
}

func TestProviderPicksUpEnvironmentOnlyAfterReload(t *testing.T) {
	t.Setenv("mode", "development")
	t.Setenv("gcp_project_id", "p")
	t.Setenv("port", "8080")

	provider := NewProvider()
	settings, err := provider.Get()
	require.NoError(t, err)
	require.Equal(t, 8080, settings.Port())

	t.Setenv("port", "9090")
	settings, err = provider.Get()
	require.NoError(t, err)
	assert.Equal(t, 8080, settings.Port())

	provider.Reload()
	settings, err = provider.Get()
	require.NoError(t, err)
	assert.Equal(t, 9090, settings.Port())
}

func TestProviderFailedResolution(t *testing.T) {
	provider := newDevProvider(t, map[string]string{"mode": "production", "gcp_project_id": "p"})

	settings, err := provider.Get()
	require.Error(t, err)
	assert.Nil(t, settings)
	assert.Contains(t, err.Error(), "(current_mode: production)")
	assert.False(t, provider.IsCached())
	assert.Equal(t, CacheInfo{Misses: 1, MaxSize: 1}, provider.CacheInfo())

	assert.Panics(t, func() {
		provider.MustGet()
	})
}

func TestProviderConcurrentAccess(t *testing.T) {
	provider := newDevProvider(t, map[string]string{"mode": "development", "gcp_project_id": "p"})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%8 == 0 {
				provider.Reload()
				return
			}
			settings, err := provider.Get()
			assert.NoError(t, err)
			assert.NotNil(t, settings)
		}(i)
	}
	wg.Wait()

	provider.Reload()
	provider.MustGet()
	assert.Equal(t, CacheInfo{Misses: 1, MaxSize: 1, CurrentSize: 1}, provider.CacheInfo())
}

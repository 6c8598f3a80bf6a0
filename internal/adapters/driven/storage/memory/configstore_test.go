package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Pairs(t *testing.T) {
	store := NewConfigStore("vault.root", "/notes", "trends.windows", []int{7}, 42, "ignored", "dangling")

	v, ok := store.Lookup("vault.root")
	require.True(t, ok)
	assert.Equal(t, "/notes", v)
	assert.Equal(t, []string{"trends.windows", "vault.root"}, store.Keys())
}

func TestConfigStore_SetUnset(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("server.token", "a"))
	require.NoError(t, store.Set("server.token", "b"))

	v, ok := store.Lookup("server.token")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, store.Unset("server.token"))
	require.NoError(t, store.Unset("server.token"))
	_, ok = store.Lookup("server.token")
	assert.False(t, ok)
	assert.Empty(t, store.Keys())

	assert.NoError(t, store.Reload())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("analysis.requests_per_minute", i)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Lookup("analysis.requests_per_minute")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	_, ok := store.Lookup("analysis.requests_per_minute")
	assert.True(t, ok)
}

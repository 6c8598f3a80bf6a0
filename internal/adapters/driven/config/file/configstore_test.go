package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[vault]
root = "~/Notes"
git_history = true

[archive.s3]
bucket = "daylog-raw"

[trends]
windows = [7, 14, 30]

[goals]
active = ["Run a 10k", "Read more"]
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o600))
}

func TestNewConfigStore_CreatesHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", ".daylog")

	store, err := NewConfigStore(home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ConfigFile), store.Path())
	assert.Empty(t, store.Keys())

	info, err := os.Stat(home)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestNewConfigStore_Errors(t *testing.T) {
	_, err := NewConfigStore("/dev/null/daylog")
	assert.Error(t, err)

	dir := t.TempDir()
	writeConfig(t, dir, "not = [valid")
	_, err = NewConfigStore(dir)
	assert.ErrorContains(t, err, "parse")
}

func TestConfigStore_FlattensTables(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"archive.s3.bucket", "goals.active", "trends.windows", "vault.git_history", "vault.root",
	}, store.Keys())

	v, ok := store.Lookup("archive.s3.bucket")
	require.True(t, ok)
	assert.Equal(t, "daylog-raw", v)

	v, _ = store.Lookup("trends.windows")
	assert.Equal(t, []any{int64(7), int64(14), int64(30)}, v)
}

func TestConfigStore_SetRewritesTables(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("vault.root", "/srv/vault"))
	require.NoError(t, store.Set("server.token", "s3cret"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vault]")
	assert.Contains(t, string(data), "[archive.s3]")
	assert.NotContains(t, string(data), "'vault.root'")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	v, _ := reopened.Lookup("vault.root")
	assert.Equal(t, "/srv/vault", v)
	v, _ = reopened.Lookup("server.token")
	assert.Equal(t, "s3cret", v)
	v, _ = reopened.Lookup("goals.active")
	assert.Equal(t, []any{"Run a 10k", "Read more"}, v)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestConfigStore_Unset(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sampleConfig)
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Unset("archive.s3.bucket"))
	require.NoError(t, store.Unset("never.set"))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reopened.Lookup("archive.s3.bucket")
	assert.False(t, ok)
	_, ok = reopened.Lookup("vault.root")
	assert.True(t, ok)
}

func TestConfigStore_FailedWriteRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("vault.root", "/a"))

	// A directory in place of the file makes the rename fail.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0o700))

	assert.Error(t, store.Set("vault.root", "/b"))
	assert.Error(t, store.Set("vault.daily_dir", "Daily"))
	assert.Error(t, store.Unset("vault.root"))

	v, _ := store.Lookup("vault.root")
	assert.Equal(t, "/a", v)
	_, ok := store.Lookup("vault.daily_dir")
	assert.False(t, ok)
}

func TestConfigStore_UnencodableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("lock.ttl_seconds", make(chan int)))
	_, ok := store.Lookup("lock.ttl_seconds")
	assert.False(t, ok)
}

func TestConfigStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	writeConfig(t, dir, "[server]\naddr = \":9000\"\n")
	require.NoError(t, store.Reload())
	v, _ := store.Lookup("server.addr")
	assert.Equal(t, ":9000", v)

	writeConfig(t, dir, "][")
	assert.Error(t, store.Reload())
	_, ok := store.Lookup("server.addr")
	assert.True(t, ok, "a bad file keeps the previous values")
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := "goals.slot" + string(rune('0'+i))
			_ = store.Set(key, i)
			_, _ = store.Lookup(key)
			_ = store.Keys()
		}()
	}
	wg.Wait()
	assert.Len(t, store.Keys(), 10)
}

func TestNest(t *testing.T) {
	got := nest(map[string]any{
		"vault.root":        "/v",
		"vault.git_history": true,
		"archive.s3.bucket": "b",
		"top":               int64(1),
	})
	assert.Equal(t, map[string]any{
		"vault":   map[string]any{"root": "/v", "git_history": true},
		"archive": map[string]any{"s3": map[string]any{"bucket": "b"}},
		"top":     int64(1),
	}, got)
}

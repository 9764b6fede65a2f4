package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".telemachus", "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[broken"), 0o600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 2.5))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []string{"uk", "ie"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "hello"},
		{"int", store.GetInt("i"), 42},
		{"float", store.GetFloat("f"), 2.5},
		{"int as float", store.GetFloat("i"), 42.0},
		{"bool", store.GetBool("b"), true},
		{"slice", store.GetStringSlice("list"), []string{"uk", "ie"}},
		{"missing string", store.GetString("nope"), ""},
		{"missing int", store.GetInt("nope"), 0},
		{"missing float", store.GetFloat("nope"), 0.0},
		{"wrong type string", store.GetString("i"), ""},
		{"wrong type int", store.GetInt("s"), 0},
		{"wrong type bool", store.GetBool("s"), false},
		{"wrong type float", store.GetFloat("s"), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Nil(t, store.GetStringSlice("nope"))
}

func TestConfigStore_DottedKeysPersistAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("live.months_back", 6))
	require.NoError(t, store.Set("live.enabled", false))
	require.NoError(t, store.Set("snapshot.remote_url", "s3://bucket/snapshot.json"))
	require.NoError(t, store.Set("build.jurisdictions", []string{"uk"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[live]")
	assert.Contains(t, string(raw), "[snapshot]")

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 6, reopened.GetInt("live.months_back"))
	assert.False(t, reopened.GetBool("live.enabled"))
	assert.Equal(t, "s3://bucket/snapshot.json", reopened.GetString("snapshot.remote_url"))
	assert.Equal(t, []string{"uk"}, reopened.GetStringSlice("build.jurisdictions"))
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[http]
requests_per_second = 1.5
user_agent = "test-agent"

[scheduler]
build_interval_hours = 24
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, store.GetFloat("http.requests_per_second"), 1e-9)
	assert.Equal(t, "test-agent", store.GetString("http.user_agent"))
	assert.Equal(t, 24, store.GetInt("scheduler.build_interval_hours"))
}

func TestConfigStore_ConflictingKeys(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("live", "on"))

	err := store.Set("live.enabled", true)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
	require.NoError(t, store.Set("x", 1))
	assert.Equal(t, 1, store.GetInt("x"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("query.concurrency", n)
			_ = store.GetInt("query.concurrency")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("query.concurrency")
	assert.True(t, ok)
}

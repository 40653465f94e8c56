package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "kgview", "config.toml"), p)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "https://kb.example.com/user/api/v1"
timeout = "3s"

[cache]
backend = "memory"
ttl = "1h"

[format]
units = ["", "K", "M"]
timestamp_layout = "YYYY/MM/DD"
`), 0o644))

	t.Setenv("KGVIEW_API_TOKEN", "secret")
	t.Setenv("KGVIEW_DEBOUNCE", "50ms")
	t.Setenv("KGVIEW_CACHE_TTL", "2h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://kb.example.com/user/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, "secret", cfg.API.Token)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL.Std(), "env wins over file")
	assert.Equal(t, []string{"", "K", "M"}, cfg.Format.Units)
	assert.Equal(t, "YYYY/MM/DD", cfg.Format.TimestampLayout)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce.Std())
	assert.Equal(t, "localhost:8080", cfg.Server.Addr, "defaults survive")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("KGVIEW_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("KGVIEW_LOG_LEVEL") })

	cfg, err := Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Cache, cfg.Cache)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		toml string
		env  map[string]string
	}{
		{"bad backend", "[cache]\nbackend = \"s3\"\n", nil},
		{"bad url", "[api]\nbase_url = \"not a url\"\n", nil},
		{"mongo without uri", "[snapshot]\nbackend = \"mongo\"\n", nil},
		{"bad duration", "[cache]\nttl = \"soon\"\n", nil},
		{"bad env duration", "", map[string]string{"KGVIEW_DEBOUNCE": "fast"}},
		{"bad redis db", "", map[string]string{"KGVIEW_REDIS_DB": "x"}},
		{"empty units", "[format]\nunits = []\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := filepath.Join(dir, "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.toml), 0o644))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestRedisAddrRequiredOnlyForRedis(t *testing.T) {
	cfg := Default()
	cfg.Cache.Redis.Addr = ""
	require.NoError(t, cfg.Validate())

	cfg.Cache.Backend = "redis"
	require.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.API.BaseURL = "http://localhost:9000"
	cfg.Watch.Debounce = Duration(time.Second)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, got.API.BaseURL)
	assert.Equal(t, time.Second, got.Watch.Debounce.Std())
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Format.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Format.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.True(t, kgerrors.Is(err, kgerrors.ErrCodeInvalidConfig))
}

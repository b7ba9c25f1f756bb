package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a fresh directory and clears SHES_* variables the
// developer may have exported.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"SHES_CONFIG", "SHES_DB_DRIVER", "SHES_DB_PATH", "SHES_DB_DSN",
		"SHES_ENGINE_DELETE_MODE", "SHES_ENGINE_CACHE_SIZE", "SHES_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return home
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("shes", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, filepath.Join(home, ".shes", "shes.db"), cfg.DB.Path)
	assert.Equal(t, DeleteSequential, cfg.Engine.DeleteMode)
	assert.Equal(t, 512, cfg.Engine.CacheSize)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Empty(t, cfg.File)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".shes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".shes", "config.yaml"), []byte(`
db:
  path: ~/from-file.db
engine:
  delete_mode: atomic
  cache_size: 16
log:
  level: warn
  events: true
`), 0o600))

	t.Setenv("SHES_ENGINE_CACHE_SIZE", "0")
	t.Setenv("SHES_LOG_LEVEL", "error")

	cfg, err := Load(newFlags(t, "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".shes", "config.yaml"), cfg.File)
	assert.Equal(t, filepath.Join(home, "from-file.db"), cfg.DB.Path, "file value, ~ expanded")
	assert.Equal(t, DeleteAtomic, cfg.Engine.DeleteMode)
	assert.Equal(t, 0, cfg.Engine.CacheSize, "env beats file")
	assert.Equal(t, "debug", cfg.Log.Level, "flag beats env")
	assert.True(t, cfg.Log.Events)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry:\n  path: /etc/shes/types.yaml\n"), 0o600))

	cfg, err := Load(newFlags(t, "--config", path, "--db", "/tmp/x.db"))
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/etc/shes/types.yaml", cfg.Registry.Path)
	assert.Equal(t, "/tmp/x.db", cfg.DB.Path)

	_, err = Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorContains(t, err, "config file")
}

func TestLoad_NilFlagSet(t *testing.T) {
	isolate(t)
	t.Setenv("SHES_DB_DRIVER", "postgres")
	t.Setenv("SHES_DB_DSN", "postgres://localhost/shes")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/shes", cfg.DB.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.DB.Driver = "mysql" }, "unsupported driver"},
		{"postgres needs dsn", func(c *Config) { c.DB.Driver = "postgres" }, "db.dsn is required"},
		{"bad delete mode", func(c *Config) { c.Engine.DeleteMode = "cascade" }, "engine.delete_mode"},
		{"negative cache", func(c *Config) { c.Engine.CacheSize = -1 }, "engine.cache_size"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }, "tracing.exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults("/home/u")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// Package config resolves shes settings from defaults, an optional YAML
// file, SHES_* environment variables (a .env file is honoured) and command
// line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SHES"

// Delete modes for the hierarchy engine.
const (
	DeleteSequential = "sequential"
	DeleteAtomic     = "atomic"
)

// Config holds all configuration options for shes.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Registry RegistryConfig `mapstructure:"registry"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"` // empty uses the built-in catalog
}

type EngineConfig struct {
	DeleteMode string `mapstructure:"delete_mode"`
	CacheSize  int    `mapstructure:"cache_size"` // 0 disables the lookup cache
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	UseCases bool   `mapstructure:"use_cases"`
	Events   bool   `mapstructure:"events"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Textfile receives the metrics in Prometheus text format when the
	// command exits, for a node exporter textfile collector.
	Textfile string `mapstructure:"textfile"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter"`
}

// Defaults returns the built-in configuration. home is the user's home
// directory and anchors the default database path.
func Defaults(home string) Config {
	return Config{
		DB:      DBConfig{Driver: "sqlite", Path: filepath.Join(home, ".shes", "shes.db")},
		Engine:  EngineConfig{DeleteMode: DeleteSequential, CacheSize: 512},
		Log:     LogConfig{Level: "info"},
		Metrics: MetricsConfig{Textfile: filepath.Join(home, ".shes", "metrics.prom")},
		Tracing: TracingConfig{Exporter: "none"},
	}
}

// RegisterFlags adds the global flags that feed configuration.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ~/.shes/config.yaml)")
	fs.String("db", "", "path to the SQLite database")
	fs.String("registry", "", "YAML item type registry (default: built-in catalog)")
	fs.String("log-level", "", "log level: debug, info, warn or error")
}

var flagKeys = map[string]string{
	"db":        "db.path",
	"registry":  "registry.path",
	"log-level": "log.level",
}

// Load resolves the configuration. fs may be nil; otherwise it must carry
// the flags from RegisterFlags.
func Load(fs *pflag.FlagSet) (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, Defaults(home))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	file, err := configFile(fs, home)
	if err != nil {
		return Config{}, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = file
	cfg.DB.Path = expandHome(cfg.DB.Path, home)
	cfg.Registry.Path = expandHome(cfg.Registry.Path, home)
	cfg.Metrics.Textfile = expandHome(cfg.Metrics.Textfile, home)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db.driver", d.DB.Driver)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.dsn", d.DB.DSN)
	v.SetDefault("registry.path", d.Registry.Path)
	v.SetDefault("engine.delete_mode", d.Engine.DeleteMode)
	v.SetDefault("engine.cache_size", d.Engine.CacheSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.use_cases", d.Log.UseCases)
	v.SetDefault("log.events", d.Log.Events)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
}

// configFile picks --config, then SHES_CONFIG, then ~/.shes/config.yaml
// when it exists. An explicitly named file must exist.
func configFile(fs *pflag.FlagSet, home string) (string, error) {
	explicit := os.Getenv(envPrefix + "_CONFIG")
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			explicit = f.Value.String()
		}
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}

	def := filepath.Join(home, ".shes", "config.yaml")
	if _, err := os.Stat(def); err == nil {
		return def, nil
	}
	return "", nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for sqlite"))
		}
	case "postgres":
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("db.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("db.driver: unsupported driver %q", c.DB.Driver))
	}
	switch c.Engine.DeleteMode {
	case DeleteSequential, DeleteAtomic:
	default:
		errs = append(errs, fmt.Errorf("engine.delete_mode: must be %q or %q, got %q", DeleteSequential, DeleteAtomic, c.Engine.DeleteMode))
	}
	if c.Engine.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("engine.cache_size: must not be negative, got %d", c.Engine.CacheSize))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unsupported exporter %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Package config loads kgview settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at $XDG_CONFIG_HOME/kgview/config.toml
//  3. a .env file in the working directory
//  4. KGVIEW_* environment variables
//
// The merged result is checked with struct-tag validation before use.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	kgerrors "github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/format"
)

// Config is the complete kgview configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Cache    CacheConfig    `toml:"cache"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Server   ServerConfig   `toml:"server"`
	Format   FormatConfig   `toml:"format"`
	Watch    WatchConfig    `toml:"watch"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig points at the knowledge-base backend.
type APIConfig struct {
	BaseURL string   `toml:"base_url" validate:"omitempty,url"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout" validate:"gte=0"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Backend string      `toml:"backend" validate:"oneof=file memory redis none"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl" validate:"gte=0"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig is used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr     string `toml:"addr" validate:"required_if=Enabled true"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
	Prefix   string `toml:"prefix"`
	Enabled  bool   `toml:"-"`
}

// SnapshotConfig selects where transformed graphs are archived.
type SnapshotConfig struct {
	Backend    string `toml:"backend" validate:"oneof=memory mongo none"`
	MongoURI   string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database   string `toml:"database" validate:"required_if=Backend mongo"`
	Collection string `toml:"collection" validate:"required_if=Backend mongo"`
}

// ServerConfig configures `kgview serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr" validate:"required,hostname_port"`
	ReadTimeout  Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout Duration `toml:"write_timeout" validate:"gte=0"`
}

// FormatConfig holds display defaults for the formatter.
type FormatConfig struct {
	Units            []string `toml:"units" validate:"min=1"`
	TimestampLayout  string   `toml:"timestamp_layout" validate:"required"`
	FileSizeDecimals int      `toml:"filesize_decimals" validate:"gte=0,lte=20"`
	Timezone         string   `toml:"timezone"`
}

// WatchConfig tunes `transform --watch` and the browse filter.
type WatchConfig struct {
	Debounce Duration `toml:"debounce" validate:"gte=0"`
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{Timeout: Duration(10 * time.Second)},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration(24 * time.Hour),
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "kgview:"},
		},
		Snapshot: SnapshotConfig{
			Backend:    "memory",
			Database:   "kgview",
			Collection: "snapshots",
		},
		Server: ServerConfig{
			Addr:         "localhost:8080",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(60 * time.Second),
		},
		Format: FormatConfig{
			Units:            append([]string(nil), format.ChineseUnits...),
			TimestampLayout:  format.DefaultLayout,
			FileSizeDecimals: format.DefaultFileSizeDecimals,
		},
		Watch: WatchConfig{Debounce: Duration(300 * time.Millisecond)},
		Log:   LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kgview/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "kgview", "config.toml"), nil
}

// Load builds the configuration from path ([DefaultPath] when empty), the
// .env file and the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "read .env")
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Location resolves Format.Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Format.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Format.Timezone)
	if err != nil {
		return nil, kgerrors.Wrap(kgerrors.ErrCodeInvalidConfig, err, "timezone %q", c.Format.Timezone)
	}
	return loc, nil
}

// Package config loads the trackgrid configuration file.
//
// The file lives at $XDG_CONFIG_HOME/trackgrid/config.toml (default
// ~/.config/trackgrid/config.toml). A missing file at the default location
// yields the defaults; every setting can be overridden from the environment:
//
//	TRACKGRID_LOG_LEVEL       [log] level
//	TRACKGRID_CACHE_BACKEND   [cache] backend
//	TRACKGRID_CACHE_DIR       [cache] dir
//	TRACKGRID_REDIS_ADDR      [cache.redis] addr
//	TRACKGRID_REDIS_PASSWORD  [cache.redis] password
//	TRACKGRID_MONGO_URI       [cache.mongo] uri
//	TRACKGRID_SERVER_ADDR     [server] addr
//
// Example:
//
//	[log]
//	level = "debug"
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":9090"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackgrid/pkg/cache"
	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "trackgrid"

// DefaultServerAddr is the default listen address of `trackgrid serve`.
const DefaultServerAddr = ":8080"

// Config is the complete configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is none, file, redis or mongo.
	Backend string `toml:"backend"`

	// Dir is the file cache directory. Defaults to the XDG cache directory.
	Dir string `toml:"dir"`

	// TTL caps the lifetime of cache entries. Zero keeps the per-kind defaults.
	TTL time.Duration `toml:"ttl"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Cache:  CacheConfig{Backend: cache.BackendFile},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads the file at path, or the default path when path is empty, and
// applies environment overrides. Only a missing file at the default path is
// tolerated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
	case err != nil:
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "parse config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errs.New(errs.ErrCodeInvalidDocument, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("TRACKGRID_LOG_LEVEL", &c.Log.Level)
	set("TRACKGRID_CACHE_BACKEND", &c.Cache.Backend)
	set("TRACKGRID_CACHE_DIR", &c.Cache.Dir)
	set("TRACKGRID_REDIS_ADDR", &c.Cache.Redis.Addr)
	set("TRACKGRID_REDIS_PASSWORD", &c.Cache.Redis.Password)
	set("TRACKGRID_MONGO_URI", &c.Cache.Mongo.URI)
	set("TRACKGRID_SERVER_ADDR", &c.Server.Addr)

	if v, ok := lookup("TRACKGRID_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errs.New(errs.ErrCodeInvalidInput, "TRACKGRID_REDIS_DB: %q is not a number", v)
		}
		c.Cache.Redis.DB = db
	}
	return nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (want none, file, redis or mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must be >= 0, got %s", c.Cache.TTL)
	}
	return nil
}

// LogLevel parses the configured level. Empty means info.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errs.New(errs.ErrCodeInvalidInput, "invalid log level %q", c.Log.Level)
	}
	return lvl, nil
}

// CacheOptions converts the cache section for cache.Open. An empty file
// cache directory resolves to CacheDir.
func (c *Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		MaxTTL:  c.Cache.TTL,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.Redis.Addr,
			Password: c.Cache.Redis.Password,
			DB:       c.Cache.Redis.DB,
		},
		Mongo: cache.MongoOptions{
			URI:        c.Cache.Mongo.URI,
			Database:   c.Cache.Mongo.Database,
			Collection: c.Cache.Mongo.Collection,
		},
	}
	if opts.Dir == "" && strings.EqualFold(opts.Backend, cache.BackendFile) {
		dir, err := CacheDir()
		if err != nil {
			return cache.Options{}, err
		}
		opts.Dir = dir
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigDir returns $XDG_CONFIG_HOME/trackgrid or ~/.config/trackgrid.
func ConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// CacheDir returns $XDG_CACHE_HOME/trackgrid or ~/.cache/trackgrid.
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

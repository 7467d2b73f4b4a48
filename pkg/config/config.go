// Package config loads tool configuration from a TOML file.
//
// Configuration is optional. Every field has a working default and the file
// only overrides what it names; the CLI applies its flags on top, so the
// effective precedence is flag > file > default.
//
// The default location is $XDG_CONFIG_HOME/kami2solver/config.toml
// (~/.config/kami2solver/config.toml when XDG_CONFIG_HOME is unset).
//
// # File Format
//
//	[solver]
//	max_moves = 6
//	timeout = "45s"
//	merge_regions = 10
//	merge_cells = 1
//
//	[extract]
//	columns = 10
//	rows = 28
//	tolerance = 40
//
//	[cache]
//	backend = "redis" # file, null, redis or mongo
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	job_ttl = "1h"
//
// Solver and extract values left at zero defer to the pipeline defaults, so
// an empty file (or no file at all) behaves exactly like the built-ins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// appName is the directory name used under the XDG config and cache roots.
const appName = "kami2solver"

// Cache backend names accepted in the [cache] section.
const (
	BackendFile  = "file"
	BackendNull  = "null"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

var validBackends = map[string]bool{
	BackendFile:  true,
	BackendNull:  true,
	BackendRedis: true,
	BackendMongo: true,
}

// Server defaults.
const (
	DefaultAddr   = ":8080"
	DefaultJobTTL = time.Hour
)

// Mongo defaults for the cache backend.
const (
	DefaultMongoDatabase   = "kami2solver"
	DefaultMongoCollection = "results"
)

// Duration wraps time.Duration so TOML files can write durations as
// strings like "30s" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full configuration file.
type Config struct {
	Solver  Solver  `toml:"solver"`
	Extract Extract `toml:"extract"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Solver configures the search. Zero values defer to pipeline defaults.
type Solver struct {
	MaxMoves     int      `toml:"max_moves"`
	Timeout      Duration `toml:"timeout"`
	MergeRegions int      `toml:"merge_regions"`
	MergeCells   int      `toml:"merge_cells"`
}

// Extract configures screenshot extraction. Zero values defer to the
// extractor defaults.
type Extract struct {
	Columns     int `toml:"columns"`
	Rows        int `toml:"rows"`
	Tolerance   int `toml:"tolerance"`
	TopInset    int `toml:"top_inset"`
	BottomInset int `toml:"bottom_inset"`
}

// Cache selects and configures the result cache backend.
type Cache struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr   string   `toml:"addr"`
	JobTTL Duration `toml:"job_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: Cache{
			Backend:         BackendFile,
			Dir:             DefaultCacheDir(),
			MongoDatabase:   DefaultMongoDatabase,
			MongoCollection: DefaultMongoCollection,
		},
		Server: Server{
			Addr:   DefaultAddr,
			JobTTL: Duration{DefaultJobTTL},
		},
	}
}

// Load reads the configuration at path. An empty path means the default
// location, where a missing file is not an error and yields Default();
// an explicitly named file must exist and parse.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can accept.
// Range checks on solver and extract settings happen where they are used,
// so a config file can hold partial sections without tripping validation.
func (c *Config) Validate() error {
	if !validBackends[c.Cache.Backend] {
		return fmt.Errorf("unknown cache backend %q (valid: file, null, redis, mongo)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache backend %q requires redis_url", BackendRedis)
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return fmt.Errorf("cache backend %q requires mongo_uri", BackendMongo)
	}
	if c.Solver.MaxMoves < 0 {
		return fmt.Errorf("solver.max_moves cannot be negative")
	}
	if c.Solver.Timeout.Duration < 0 {
		return fmt.Errorf("solver.timeout cannot be negative")
	}
	if c.Extract.Columns < 0 || c.Extract.Rows < 0 {
		return fmt.Errorf("extract grid cannot be negative")
	}
	if c.Server.JobTTL.Duration < 0 {
		return fmt.Errorf("server.job_ttl cannot be negative")
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/kami2solver/config.toml).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/kami2solver/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName)
}

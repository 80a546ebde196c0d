// Package config loads the srcsetlab configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/srcsetlab/config.toml
// (~/.config/srcsetlab/config.toml when XDG_CONFIG_HOME is unset). Every
// key is optional; missing keys keep their built-in defaults:
//
//	[unsplash]
//	endpoint   = "https://.../unsplash-scrset"
//	api_url    = "https://api.unsplash.com"
//	access_key = ""        # enables direct API lookups
//	cache_ttl  = "24h"
//
//	[cache]
//	backend   = "file"     # file, redis or none
//	dir       = ""         # defaults to $XDG_CACHE_HOME/srcsetlab
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr            = "127.0.0.1:8080"
//	request_timeout = "30s"
//
//	[defaults]
//	breakpoints = 5
//	min_width   = 300
//	max_width   = 600
//	max_height  = 400
//	retina      = true
//	debug       = true
//
// The UNSPLASH_ACCESS_KEY environment variable overrides unsplash.access_key.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
)

const (
	// AppName names the config and cache directories.
	AppName = "srcsetlab"

	// AccessKeyEnv overrides Unsplash.AccessKey when set.
	AccessKeyEnv = "UNSPLASH_ACCESS_KEY"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Unsplash Unsplash         `toml:"unsplash"`
	Cache    Cache            `toml:"cache"`
	Server   Server           `toml:"server"`
	Defaults imgparams.Params `toml:"defaults"`
}

type Unsplash struct {
	Endpoint  string   `toml:"endpoint"`
	APIURL    string   `toml:"api_url"`
	AccessKey string   `toml:"access_key"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Unsplash: Unsplash{
			Endpoint: unsplash.DefaultEndpoint,
			APIURL:   unsplash.DefaultAPIURL,
			CacheTTL: Duration{unsplash.DefaultCacheTTL},
		},
		Cache: Cache{
			Backend:  BackendFile,
			RedisURL: "redis://localhost:6379/0",
		},
		Server: Server{
			Addr:           "127.0.0.1:8080",
			RequestTimeout: Duration{30 * time.Second},
		},
		Defaults: imgparams.Defaults(""),
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path, or at Path() when path is empty.
// A missing default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("locate config: %w", err)
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("load config %s: %w", path, err)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	if key := os.Getenv(AccessKeyEnv); key != "" {
		cfg.Unsplash.AccessKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated and positive-valued fields.
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Unsplash.CacheTTL.Duration < 0 {
		return fmt.Errorf("unsplash.cache_ttl must not be negative")
	}
	if c.Server.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	return nil
}

// UnsplashOptions converts the [unsplash] section into client options.
func (c *Config) UnsplashOptions() unsplash.Options {
	return unsplash.Options{
		Endpoint:  c.Unsplash.Endpoint,
		APIURL:    c.Unsplash.APIURL,
		AccessKey: c.Unsplash.AccessKey,
		CacheTTL:  c.Unsplash.CacheTTL.Duration,
	}
}

// Write encodes c as TOML. The access key is masked.
func (c *Config) Write(w io.Writer) error {
	masked := *c
	if k := masked.Unsplash.AccessKey; k != "" {
		masked.Unsplash.AccessKey = mask(k)
	}
	return toml.NewEncoder(w).Encode(masked)
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

// Package cli implements the srcsetlab command-line interface.
//
// # Commands
//
//   - generate: print src, srcset or <img> markup for an image URL
//   - resolve: turn an Unsplash photo page into its full-size image URL
//   - serve: run the browser sandbox
//   - tui: interactive sandbox in the terminal
//   - cache, config: inspect and manage local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and also receives lookup, cache and HTTP
// events from pkg/observability.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/srcsetlab/internal/config"
	"github.com/matzehuels/srcsetlab/pkg/buildinfo"
	"github.com/matzehuels/srcsetlab/pkg/cache"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance logging to w. LogLevelEnv, when set,
// takes precedence over level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, envLevel(level))}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "srcsetlab generates responsive image markup for Unsplash photos",
		Long:         `srcsetlab turns an Unsplash photo into src, srcset and <img> markup with width breakpoints, retina variants, focal-point crops and debug overlays, and lets you tune them interactively.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			installHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/srcsetlab/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Factories
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if noCache {
		return cache.NewNullCache(), nil
	}

	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newResolver builds the Unsplash client. The returned cache must be closed
// by the caller.
func (c *CLI) newResolver(ctx context.Context, noCache, refresh bool) (*unsplash.Client, cache.Cache, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.UnsplashOptions()
	opts.Refresh = refresh
	client := unsplash.NewClient(backend, opts)
	c.Logger.Debug("unsplash client", "mode", client.Mode(), "cache", cfg.Cache.Backend)
	return client, backend, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns cache.dir from the config, or the XDG cache directory
// (~/.cache/srcsetlab/).
func (c *CLI) cacheDir() (string, error) {
	if cfg, err := c.config(); err == nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

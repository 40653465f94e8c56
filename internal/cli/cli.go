// Package cli implements the kgview command-line interface.
//
// # Commands
//
//   - transform: turn a knowledge graph payload into json, yaml, dot or svg
//   - format: amount, score, time and size display formatting
//   - browse: interactive node browser with a live filter
//   - serve: the HTTP API
//   - auth: store the backend login token and permissions
//   - cache: inspect and clear the local caches
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context; see loggerFromContext.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kgview/pkg/api"
	"github.com/matzehuels/kgview/pkg/buildinfo"
	"github.com/matzehuels/kgview/pkg/cache"
	"github.com/matzehuels/kgview/pkg/config"
	"github.com/matzehuels/kgview/pkg/httputil"
	"github.com/matzehuels/kgview/pkg/observability"
	"github.com/matzehuels/kgview/pkg/pipeline"
	"github.com/matzehuels/kgview/pkg/snapshot"
	"github.com/matzehuels/kgview/pkg/store"
)

// appName is used for directories and display.
const appName = "kgview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a CLI with a default logger and the built-in configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "kgview shapes knowledge graphs for display",
		Long:          `kgview turns knowledge-base graph payloads into render-ready graphs, exports them as JSON, YAML, DOT or SVG, and formats values the way the knowledge-base UI shows them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			switch {
			case c.verbose:
				c.SetLogLevel(LogDebug)
				observability.SetPipelineHooks(logHooks{logger: c.Logger})
			default:
				if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
					c.SetLogLevel(lvl)
				}
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kgview/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.transformCommand())
	root.AddCommand(c.formatCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the artifact cache selected by the configuration.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache {
		return cache.NewNullCache(), nil
	}
	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "memory":
		backend = cache.NewMemoryCache(256)
	case "redis":
		backend, err = cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		var dir string
		dir, err = c.artifactDir()
		if err == nil {
			backend, err = cache.NewFileCache(dir)
		}
	}
	if err != nil {
		return nil, err
	}
	return cache.Instrument(backend), nil
}

// newResponseCache opens the JSON response cache used by the API client.
func (c *CLI) newResponseCache() (*httputil.ResponseCache, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewResponseCache(filepath.Join(dir, "http"), c.Config.Cache.TTL.Std())
}

// newAPIClient returns nil when no backend URL is configured.
func (c *CLI) newAPIClient(ctx context.Context, keyer cache.Keyer, noCache bool) (*api.Client, error) {
	if c.Config.API.BaseURL == "" {
		return nil, nil
	}
	opts := api.Options{
		BaseURL:  c.Config.API.BaseURL,
		Token:    c.token(ctx),
		Timeout:  c.Config.API.Timeout.Std(),
		Logger:   c.Logger,
		CacheKey: keyer.GraphKey,
	}
	if !noCache && c.Config.Cache.Backend != "none" {
		rc, err := c.newResponseCache()
		if err != nil {
			return nil, err
		}
		opts.Cache = rc
	}
	return api.New(opts)
}

// newSnapshots returns nil when snapshots are disabled.
func (c *CLI) newSnapshots(ctx context.Context) (snapshot.Repository, error) {
	cfg := c.Config.Snapshot
	switch cfg.Backend {
	case "mongo":
		return snapshot.NewMongoRepository(ctx, snapshot.MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		})
	case "memory":
		return snapshot.NewMemoryRepository(), nil
	}
	return nil, nil
}

// services bundles what a pipeline run needs and releases it in close.
type services struct {
	runner    *pipeline.Runner
	snapshots snapshot.Repository
}

func (r *services) close(ctx context.Context) {
	_ = r.runner.Cache.Close()
	if r.snapshots != nil {
		_ = r.snapshots.Close(ctx)
	}
}

// newServices wires cache, API client and snapshot repository into a runner.
func (c *CLI) newServices(ctx context.Context, noCache bool) (*services, error) {
	keyer := cache.NewDefaultKeyer()
	artifacts, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	client, err := c.newAPIClient(ctx, keyer, noCache)
	if err != nil {
		_ = artifacts.Close()
		return nil, err
	}
	snaps, err := c.newSnapshots(ctx)
	if err != nil {
		_ = artifacts.Close()
		return nil, err
	}

	cfg := pipeline.Config{
		Cache:     artifacts,
		Keyer:     keyer,
		Snapshots: snaps,
		Logger:    c.Logger,
		RenderTTL: c.Config.Cache.TTL.Std(),
	}
	if client != nil {
		cfg.Fetcher = client
	}
	return &services{runner: pipeline.NewRunner(cfg), snapshots: snaps}, nil
}

// token prefers the configured token over the one saved by `auth login`.
func (c *CLI) token(ctx context.Context) string {
	if c.Config.API.Token != "" {
		return c.Config.API.Token
	}
	st, err := c.openState(ctx)
	if err != nil {
		c.Logger.Debug("no saved login", "err", err)
		return ""
	}
	return store.Token(st)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache root: the configured directory or
// $XDG_CACHE_HOME/kgview (~/.cache/kgview).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func (c *CLI) artifactDir() (string, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "artifacts"), nil
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

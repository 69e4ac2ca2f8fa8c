package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/buildinfo"
	"github.com/matzehuels/zigzag/pkg/cache"
	"github.com/matzehuels/zigzag/pkg/config"
	"github.com/matzehuels/zigzag/pkg/errors"
)

const (
	appName    = "zigzag"
	configFile = "config.toml"
)

const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds what every command shares: the logger and the --config flag.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty means the default config file,
	// if one exists.
	ConfigPath string
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the zigzag command tree.
func (c *CLI) RootCommand() *cobra.Command {
	build := buildinfo.Get()
	root := &cobra.Command{
		Use:   appName,
		Short: "Zigzag builds layered proof-of-replication encodings",
		Long: `Zigzag generates the depth-robust and expander graphs of a ZigZag
proof-of-replication and uses them to encode sectors layer by layer.`,
		Version:      build.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(build.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default "+defaultConfigHint()+")")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.parentsCommand())
	root.AddCommand(c.replicateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default config file when it exists.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		dir, err := configDir()
		if err == nil {
			if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
				path = filepath.Join(dir, configFile)
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		c.Logger.Debug("Loaded config", "path", path)
	}
	return cfg, nil
}

// newCache opens the cache backend selected in cfg.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		c.Logger.Debug("Using redis cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return rc, nil
	case config.CacheMongo:
		c.Logger.Debug("Using mongo cache", "database", cfg.MongoDatabase)
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "connect to mongo")
		}
		return mc, nil
	default:
		dir, err := fileCacheDir(cfg)
		if err != nil {
			c.Logger.Warn("No cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "open cache %s", dir)
		}
		return fc, nil
	}
}

// newKeyer returns the keyer for cfg, scoped when a prefix is set.
func newKeyer(cfg config.CacheConfig) cache.Keyer {
	if cfg.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Prefix)
}

// cacheDir is $XDG_CACHE_HOME/zigzag, defaulting to ~/.cache/zigzag.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// configDir is $XDG_CONFIG_HOME/zigzag, defaulting to ~/.config/zigzag.
func configDir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// fileCacheDir resolves the file cache directory, honoring cache.dir.
func fileCacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		if err := errors.ValidatePath(cfg.Dir); err != nil {
			return "", err
		}
		return cfg.Dir, nil
	}
	return cacheDir()
}

func defaultConfigHint() string {
	dir, err := configDir()
	if err != nil {
		return "none"
	}
	return filepath.Join(dir, configFile)
}

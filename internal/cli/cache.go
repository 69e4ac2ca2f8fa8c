package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/matzehuels/zigzag/pkg/cache"
	"github.com/matzehuels/zigzag/pkg/config"
	"github.com/matzehuels/zigzag/pkg/graph"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var gf graphFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached graphs",
		Long: `Clear cached graphs.

The file cache is emptied. Shared backends (redis, mongo) only drop the
graph of the configured parameters, so other deployments keep theirs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := gf.apply(cmd, &cfg); err != nil {
				return err
			}

			ch, err := c.newCache(cmd.Context(), cfg.Cache, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			switch b := ch.(type) {
			case *cache.FileCache:
				if err := b.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared the graph cache")
				printDetail("Directory: %s", b.Dir())
				return nil
			case *cache.NullCache:
				printInfo("Cache is disabled")
				return nil
			}

			p, err := cfg.GraphParams()
			if err != nil {
				return err
			}
			key := graph.NewCacheStore(ch, newKeyer(cfg.Cache)).Key(p)
			if err := ch.Delete(cmd.Context(), key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			printSuccess("Deleted the cached graph for %s", p)
			printDetail("Key: %s", key)
			return nil
		},
	}

	gf.register(cmd)

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheRedis:
				fmt.Println("redis://" + cfg.Cache.RedisAddr)
			case config.CacheMongo:
				fmt.Println(redactURI(cfg.Cache.MongoURI))
			case config.CacheNone:
				printWarning("Cache is disabled")
			default:
				dir, err := fileCacheDir(cfg.Cache)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Println(dir)
			}
			return nil
		},
	}
}

// redactURI hides the password of uri.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return u.Redacted()
}

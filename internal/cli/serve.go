package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barstack/internal/server"
	"github.com/matzehuels/barstack/pkg/cache"
	"github.com/matzehuels/barstack/pkg/pipeline"
	"github.com/matzehuels/barstack/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string // listen address
	redisAddr     string // redis address for the artifact cache
	redisPassword string // redis password
	redisDB       int    // redis database number
	mongoURI      string // mongodb connection string for chart storage
	mongoDB       string // mongodb database name
	mongoColl     string // mongodb collection name
	cachePrefix   string // cache key namespace prefix
	noCache       bool   // disable the artifact cache
}

// serveCommand creates the serve command for running the render API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render API",
		Long: `Serve runs the barstack render API.

Without flags the server renders with a local file cache and no chart
storage. Point --redis-addr at a Redis instance to share the artifact
cache across replicas, and --mongo-uri at MongoDB to enable the chart
persistence endpoints.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "redis address for the artifact cache")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "redis database number")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "mongodb connection string for chart storage")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", appName, "mongodb database name")
	cmd.Flags().StringVar(&opts.mongoColl, "mongo-collection", "charts", "mongodb collection name")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", "", "cache key prefix for shared backends")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runServe wires the cache, store, and runner, then serves until the
// context is canceled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cch, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.cachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, opts.cachePrefix)
	}
	runner := pipeline.NewRunner(cch, keyer, c.Logger)
	defer runner.Close()

	var charts *store.ChartStore
	if opts.mongoURI != "" {
		charts, err = store.Connect(ctx, opts.mongoURI, opts.mongoDB, opts.mongoColl)
		if err != nil {
			return fmt.Errorf("connect chart store: %w", err)
		}
		defer charts.Close(context.Background())
		c.Logger.Info("chart storage enabled", "database", opts.mongoDB, "collection", opts.mongoColl)
	}

	srv := server.New(server.Config{
		Addr:   opts.addr,
		Runner: runner,
		Store:  charts,
		Logger: c.Logger,
	})
	return srv.ListenAndServe(ctx)
}

// serveCache picks the cache backend: Redis when configured, otherwise the
// local file cache the CLI uses.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		cch, err := cache.NewRedisCache(ctx, opts.redisAddr, opts.redisPassword, opts.redisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("artifact cache", "backend", "redis", "addr", opts.redisAddr)
		return cch, nil
	}
	return newCache(false)
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/utxoscope/internal/api"
	"github.com/matzehuels/utxoscope/pkg/cache"
	"github.com/matzehuels/utxoscope/pkg/pipeline"
	"github.com/matzehuels/utxoscope/pkg/store"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
		mongoDB   string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the utxoscope HTTP API",
		Long: `Run the utxoscope HTTP API.

The serve command starts the HTTP server exposing the layout pipeline at
POST /v1/layouts and saved runs at /v1/runs. By default it uses the local
file cache and an in-memory run store; point it at Redis and MongoDB for
multi-instance deployments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, mongoURI, mongoDB, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for a shared cache (host:port)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string for run persistence")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "", "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the cache and store backends and starts the server.
func (c *CLI) runServe(ctx context.Context, addr, redisAddr, mongoURI, mongoDB string, noCache bool) error {
	backend, err := c.serveCache(ctx, redisAddr, noCache)
	if err != nil {
		return err
	}

	st, err := c.serveStore(ctx, mongoURI, mongoDB)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	runner := pipeline.NewRunner(backend, nil, c.Logger)
	defer runner.Close()

	server := api.NewServer(runner, st, c.Logger)

	c.Logger.Info("starting server", "addr", addr)
	return server.ListenAndServe(addr)
}

// serveCache picks the cache backend: Redis when configured, the local
// file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		backend, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", redisAddr, err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return backend, nil
	}
	return newCache(false)
}

// serveStore picks the run store: MongoDB when configured, in-memory
// otherwise.
func (c *CLI) serveStore(ctx context.Context, mongoURI, mongoDB string) (store.Store, error) {
	if mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI, Database: mongoDB})
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.Logger.Info("using mongodb store", "database", mongoDB)
	return st, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dihm/leveldiagram/internal/api"
	"github.com/dihm/leveldiagram/pkg/cache"
	"github.com/dihm/leveldiagram/pkg/pipeline"
	"github.com/dihm/leveldiagram/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	redisURL string // Redis cache URL, empty for the local file cache
	mongoURI string // MongoDB URI, empty for the in-memory store
	noCache  bool   // disable caching entirely
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout and rendering HTTP API",
		Long: `Run the HTTP API for computing layouts, rendering diagrams, and
managing the document gallery.

By default layouts are cached on disk and documents live in memory.
Point --redis at a Redis instance for a shared cache, and --mongo at a
MongoDB instance for persistent documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the shared cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for the document gallery (e.g. mongodb://localhost:27017)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe wires the cache, store, and runner together and serves until
// the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	ch, err := c.serveCache(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	st, err := c.serveStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()

	runner := pipeline.NewRunner(ch, nil, logger)
	defer runner.Close()

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, st, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// serveCache picks the cache backend from flags.
func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		loggerFromContext(ctx).Info("using Redis cache", "url", opts.redisURL)
		return cache.NewRedisCache(ctx, opts.redisURL)
	}
	return newCache(false)
}

// serveStore picks the document store backend from flags.
func (c *CLI) serveStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	logger := loggerFromContext(ctx)
	if opts.mongoURI != "" {
		logger.Info("using MongoDB store", "uri", opts.mongoURI)
		return store.NewMongoStore(ctx, opts.mongoURI)
	}
	logger.Info("using in-memory store")
	return store.NewMemoryStore(), nil
}

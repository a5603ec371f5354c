package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/fieldlens/fieldlens/pkg/cache"
	"github.com/fieldlens/fieldlens/pkg/cli/config"
	httpctrl "github.com/fieldlens/fieldlens/pkg/controller/http"
	"github.com/fieldlens/fieldlens/pkg/domain/interfaces"
	"github.com/fieldlens/fieldlens/pkg/service/names"
	"github.com/fieldlens/fieldlens/pkg/service/worker"
	"github.com/fieldlens/fieldlens/pkg/usecase"
	"github.com/fieldlens/fieldlens/pkg/utils/logging"
	"github.com/fieldlens/fieldlens/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var metaCacheSize int
	var namesCacheTTL time.Duration
	var warmInterval time.Duration
	var appCfg config.App
	var registryCfg config.Registry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FIELDLENS_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "metadata-cache-size",
			Usage:       "Capacity of the field metadata LRU cache",
			Value:       cache.DefaultCapacity,
			Sources:     cli.EnvVars("FIELDLENS_METADATA_CACHE_SIZE"),
			Destination: &metaCacheSize,
		},
		&cli.DurationFlag{
			Name:        "names-cache-ttl",
			Usage:       "TTL of the name snapshot cache (0 disables the cache)",
			Value:       0,
			Sources:     cli.EnvVars("FIELDLENS_NAMES_CACHE_TTL"),
			Destination: &namesCacheTTL,
		},
		&cli.DurationFlag{
			Name:        "warm-interval",
			Usage:       "Interval of the registry warm worker (requires names-cache-ttl)",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("FIELDLENS_WARM_INTERVAL"),
			Destination: &warmInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, registryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Load schema configuration (entities, datasets, dev seeds)
			schema, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load schema configuration")
			}

			// Initialize registry backend
			registry, registryCloser, err := registryCfg.Configure(ctx, schema)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize name registry")
			}
			defer safe.Close(ctx, registryCloser)

			// Wrap the registry with a snapshot cache when enabled
			var lookup interfaces.NameRegistry = registry
			var warmWorker *worker.RegistryWarmWorker
			if namesCacheTTL > 0 {
				namesCache := names.New(registry, namesCacheTTL)
				lookup = namesCache
				logging.Default().Info("Name snapshot cache enabled", "ttl", namesCacheTTL.String())

				if len(schema.Entities) > 0 {
					warmWorker = worker.NewRegistryWarmWorker(namesCache, schema.EntityCodes(), warmInterval)
					if err := warmWorker.Start(ctx); err != nil {
						return goerr.Wrap(err, "failed to start registry warm worker")
					}
				}
			}

			uc := usecase.New(lookup,
				usecase.WithMetadataCache(cache.NewMetadata(metaCacheSize)),
				usecase.WithFieldListProvider(schema),
			)

			httpHandler, err := httpctrl.New(uc)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if warmWorker != nil {
					warmWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

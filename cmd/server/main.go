package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/flightproxy/internal/cache"
	"github.com/dharmasatrya/flightproxy/internal/config"
	"github.com/dharmasatrya/flightproxy/internal/handler"
	"github.com/dharmasatrya/flightproxy/internal/logging"
	"github.com/dharmasatrya/flightproxy/internal/providers"
	"github.com/dharmasatrya/flightproxy/internal/ratelimit"
	"github.com/dharmasatrya/flightproxy/internal/search"
	"github.com/dharmasatrya/flightproxy/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Flight search proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logging.New(cfg.Log.Level, cfg.Log.Pretty, os.Stderr))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_FILE"), "path to a YAML config file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	store, sweeper, err := newStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	upstreamLimiter := ratelimit.NewKeyedLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Upstream.Limit.RequestsPerSecond,
		BurstSize:         cfg.Upstream.Limit.Burst,
	})
	upstreamLimiter.SetLimit(providers.OperationAirports, cfg.Upstream.AirportsLimit.RequestsPerSecond, cfg.Upstream.AirportsLimit.Burst)

	if cfg.Upstream.APIKey == "" {
		log.Warn().Msg("RAPIDAPI_KEY is not set; searches will fail until it is configured")
	}

	provider := providers.NewSkyScrapper(cfg.Upstream.APIKey,
		providers.WithBaseURL(cfg.Upstream.BaseURL),
		providers.WithHost(cfg.Upstream.Host),
		providers.WithMarket(cfg.Upstream.Currency, cfg.Upstream.Market, cfg.Upstream.CountryCode),
		providers.WithRateLimiter(upstreamLimiter),
		providers.WithLogger(logging.Component(log, "provider")),
	)

	svc := search.NewService(provider, store, search.Config{
		Timeout:    cfg.Upstream.Timeout,
		MaxRetries: cfg.Upstream.MaxRetries,
		BaseDelay:  cfg.Upstream.RetryDelay,
		MaxDelay:   cfg.Upstream.MaxDelay,
		Currency:   provider.Currency(),
	}, logging.Component(log, "search"))

	var clientLimiter *ratelimit.KeyedLimiter
	if cfg.Inbound.RequestsPerSecond > 0 {
		clientLimiter = ratelimit.NewKeyedLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.Inbound.RequestsPerSecond,
			BurstSize:         cfg.Inbound.Burst,
			IdleTTL:           cfg.Inbound.IdleTTL,
		})
	}

	e := server.New(server.Options{
		Search:        handler.NewSearchHandler(svc, store, logging.Component(log, "handler")),
		Log:           logging.Component(log, "http"),
		ClientLimiter: clientLimiter,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := net.JoinHostPort("", cfg.Port)
		log.Info().Str("addr", addr).Str("cache", cfg.Cache.Backend).Msg("Starting flight search server")

		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	})

	if sweeper != nil {
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	if clientLimiter != nil {
		g.Go(func() error {
			return clientLimiter.Run(gctx, cfg.Inbound.IdleTTL)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newStore returns the configured result store. The memory store is also returned as the sweeper.
func newStore(cfg config.Config, log zerolog.Logger) (cache.ResultStore, *cache.MemoryStore, error) {
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
			Prefix:   cache.DefaultRedisConfig().Prefix,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info().Str("host", cfg.Redis.Host).Str("port", cfg.Redis.Port).Dur("ttl", cfg.Cache.TTL).Msg("Redis result store enabled")
		return store, nil, nil
	default:
		store := cache.NewMemoryStore(cache.MemoryConfig{
			TTL:           cfg.Cache.TTL,
			MaxEntries:    cfg.Cache.MaxEntries,
			SweepInterval: cfg.Cache.SweepInterval,
		})
		log.Info().Dur("ttl", cfg.Cache.TTL).Int("max_entries", cfg.Cache.MaxEntries).Msg("In-memory result store enabled")
		return store, store, nil
	}
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/fdsnws-client/internal/cache"
	"github.com/mohammed-shakir/fdsnws-client/internal/cache/lrustore"
	"github.com/mohammed-shakir/fdsnws-client/internal/cache/redisstore"
	"github.com/mohammed-shakir/fdsnws-client/internal/config"
	"github.com/mohammed-shakir/fdsnws-client/internal/health"
	"github.com/mohammed-shakir/fdsnws-client/internal/httpclient"
	"github.com/mohammed-shakir/fdsnws-client/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/fdsnws-client/internal/logger"
	"github.com/mohammed-shakir/fdsnws-client/internal/observability"
	"github.com/mohammed-shakir/fdsnws-client/internal/router"
	"github.com/mohammed-shakir/fdsnws-client/internal/server"
	"github.com/mohammed-shakir/fdsnws-client/pkg/fdsnws"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// flags override the matching environment variables
	addrFlag := flag.String("addr", "", "listen address")
	configFlag := flag.String("config", "", "YAML config file")
	flag.Parse()

	if *configFlag != "" {
		_ = os.Setenv("CONFIG_FILE", *configFlag)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		return 2
	}
	if *addrFlag != "" {
		cfg.Addr = strings.TrimSpace(*addrFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "gateway",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting gateway",
		"addr", cfg.Addr,
		"version", Version,
		"fdsnws", cfg.FDSNWSURL,
		"cache", cfg.Cache.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []fdsnws.Option{
		fdsnws.WithHTTPClient(httpclient.New(httpclient.Config{Timeout: cfg.HTTPTimeout})),
		fdsnws.WithLogger(appLog),
		fdsnws.WithObserver(observability.Observer{}),
		fdsnws.WithUserAgent(cfg.UserAgent),
		fdsnws.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}

	var readiness []health.ReadinessReporter
	responses, closeStore, err := openCache(ctx, cfg, appLog)
	if err != nil {
		appLog.Error("cache setup failed", "err", err)
		return 1
	}
	defer closeStore()

	if responses != nil {
		opts = append(opts, fdsnws.WithCache(responses))

		if cfg.Invalidation.Enabled {
			consumer := kafkaconsumer.New(kafkaconsumer.FromConfig(cfg.Invalidation), appLog, responses)
			readiness = append(readiness, consumer)
			go func() {
				if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
					appLog.Error("invalidation consumer stopped", "err", err)
				}
			}()
		}
	}

	client := fdsnws.New(cfg.FDSNWSURL, opts...)
	api := router.New(client.Station, appLog, router.WithDefaultH3Res(cfg.H3Res))
	mux := server.NewMux(appLog, api, server.Options{
		Metrics:   cfg.MetricsEnabled,
		Readiness: readiness,
	})

	if err := server.Run(ctx, cfg.Addr, appLog, mux); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// openCache builds the response cache for the configured driver. It returns
// nil when caching is disabled.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (*cache.Responses, func(), error) {
	noop := func() {}
	switch cfg.Cache.Driver {
	case config.CacheLRU:
		store := lrustore.New(cfg.Cache.LRUSize, cfg.Cache.TTL)
		return cache.NewResponses(store, cfg.Cache.TTL, cfg.Cache.OpTimeout, log), noop, nil
	case config.CacheRedis:
		store, err := redisstore.New(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := store.Close(); err != nil {
				log.Warn("redis close", "err", err)
			}
		}
		return cache.NewResponses(store, cfg.Cache.TTL, cfg.Cache.OpTimeout, log), closeFn, nil
	default:
		return nil, noop, nil
	}
}

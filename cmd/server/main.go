package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	directoryhandler "crmdir/internal/directory/handler"
	directorymetrics "crmdir/internal/directory/metrics"
	directoryservice "crmdir/internal/directory/service"
	directorystore "crmdir/internal/directory/store"
	httpapi "crmdir/internal/http"
	jwttoken "crmdir/internal/jwt_token"
	locationcache "crmdir/internal/location/cache"
	locationhandler "crmdir/internal/location/handler"
	"crmdir/internal/location/masterdata"
	locationmetrics "crmdir/internal/location/metrics"
	"crmdir/internal/location/models"
	"crmdir/internal/location/resolver"
	locationstore "crmdir/internal/location/store"
	"crmdir/internal/platform/config"
	"crmdir/internal/platform/httpserver"
	"crmdir/internal/platform/logger"
	platformmetrics "crmdir/internal/platform/metrics"
	"crmdir/internal/platform/postgres"
	platformredis "crmdir/internal/platform/redis"
	timelinehandler "crmdir/internal/timeline/handler"
	timelinemetrics "crmdir/internal/timeline/metrics"
	timelineservice "crmdir/internal/timeline/service"
	timelinestore "crmdir/internal/timeline/store"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CRMDIR_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDevSigningKey() {
		log.Warn("using development JWT signing key; set CRMDIR_AUTH_JWT_SIGNING_KEY in production")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	clients, records, err := buildDirectoryStores(ctx, cfg, db)
	if err != nil {
		return err
	}

	res, err := buildResolver(ctx, cfg, log, reg, db, rdb)
	if err != nil {
		return err
	}

	directorySvc := directoryservice.New(clients,
		directoryservice.WithLogger(log),
		directoryservice.WithMetrics(directorymetrics.New(reg)),
		directoryservice.WithAddressFormatter(res),
	)
	timelineSvc := timelineservice.New(records, clients,
		timelineservice.WithLogger(log),
		timelineservice.WithMetrics(timelinemetrics.New(reg)),
		timelineservice.WithStep(cfg.Timeline.Step),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Gatherer:       reg,
		Metrics:        platformmetrics.New(reg),
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Handlers: []httpapi.Registrar{
			directoryhandler.New(directorySvc, log),
			timelinehandler.New(timelineSvc, log),
			locationhandler.New(res, log),
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting crmdir", "addr", cfg.Server.Addr, "location_store", cfg.Location.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

type clientStore interface {
	directoryservice.ClientStore
	timelineservice.ClientLookup
}

// buildDirectoryStores keeps clients and timeline records in Postgres when a
// database is configured and in memory otherwise.
func buildDirectoryStores(ctx context.Context, cfg config.Config, db *sql.DB) (clientStore, timelineservice.RecordStore, error) {
	if db == nil {
		return directorystore.NewInMemoryStore(), timelinestore.NewInMemoryStore(), nil
	}
	clients := directorystore.NewPostgres(db)
	records := timelinestore.NewPostgres(db)
	if cfg.Database.Migrate {
		if err := clients.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		if err := records.Migrate(ctx); err != nil {
			return nil, nil, err
		}
	}
	return clients, records, nil
}

type seedableStore interface {
	resolver.Store
	Upsert(ctx context.Context, level models.Level, entities ...models.Entity) error
}

func buildResolver(ctx context.Context, cfg config.Config, log *slog.Logger, reg prometheus.Registerer, db *sql.DB, rdb *platformredis.Client) (*resolver.Resolver, error) {
	master, err := masterdata.Bundled()
	if err != nil {
		return nil, err
	}

	var store seedableStore
	switch cfg.Location.Store {
	case config.StorePostgres:
		pg := locationstore.NewPostgres(db)
		if cfg.Database.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		store = pg
	case config.StoreRedis:
		store = locationstore.NewRedis(rdb.Client)
	default:
		store = locationstore.NewInMemory()
	}

	res := resolver.New(locationcache.New(), store, master,
		resolver.WithLogger(log),
		resolver.WithMetrics(locationmetrics.New(reg)),
		resolver.WithFetchTimeout(cfg.Location.FetchTimeout),
		resolver.WithCircuitBreaker(cfg.Location.BreakerFailures, cfg.Location.BreakerSuccesses, cfg.Location.BreakerCooldown),
	)

	if err := seedOrWarm(ctx, cfg.Location, log, store, master, res); err != nil {
		return nil, err
	}
	return res, nil
}

// seedOrWarm upserts the master dataset into the store when configured (always
// for the in-memory store). Otherwise the store may lack the roots, so countries
// are warmed into the resolver cache from the master dataset instead.
func seedOrWarm(ctx context.Context, cfg config.Location, log *slog.Logger, store seedableStore, master *masterdata.Dataset, res *resolver.Resolver) error {
	if cfg.SeedStore || cfg.Store == config.StoreMemory {
		for _, level := range models.Levels {
			if err := store.Upsert(ctx, level, master.ChildrenOf(level, "")...); err != nil {
				return fmt.Errorf("seed %s locations: %w", level, err)
			}
		}
		log.Info("location store seeded from master dataset", "store", cfg.Store)
		return nil
	}
	warmed := res.WarmFromMasterData(models.LevelCountry, "")
	log.Info("location cache warmed from master dataset", "level", models.LevelCountry, "added", warmed)
	return nil
}

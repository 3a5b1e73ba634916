// Command server runs the vaultnet HTTP API and the background flush daemon.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vaultnet/internal/audit"
	"vaultnet/internal/captoken"
	identityservice "vaultnet/internal/identity/service"
	identitystore "vaultnet/internal/identity/store"
	"vaultnet/internal/ledger"
	lifecycleservice "vaultnet/internal/lifecycle/service"
	lifecyclestore "vaultnet/internal/lifecycle/store"
	"vaultnet/internal/lifecycle/worker"
	"vaultnet/internal/platform/config"
	"vaultnet/internal/platform/httpserver"
	"vaultnet/internal/platform/logger"
	"vaultnet/internal/platform/metrics"
	platformredis "vaultnet/internal/platform/redis"
	"vaultnet/internal/platform/storage"
	settlementservice "vaultnet/internal/settlement/service"
	settlementstore "vaultnet/internal/settlement/store"
	transport "vaultnet/internal/transport/http"
	vaultservice "vaultnet/internal/vault/service"
	vaultstore "vaultnet/internal/vault/store"
	"vaultnet/pkg/platform/tx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	var (
		vaults   vaultstore.Store
		pool     vaultstore.GlobalPool
		records  lifecyclestore.Store
		bindings identitystore.Store
		swaps    settlementstore.Store

		runner tx.Runner = tx.Passthrough{}
	)
	if cfg.PostgresDSN != "" {
		db, err := storage.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := storage.Migrate(ctx, db); err != nil {
			return err
		}
		vaults = vaultstore.NewPostgres(db)
		pool = vaultstore.NewPostgresPool(db)
		records = lifecyclestore.NewPostgres(db)
		bindings = identitystore.NewPostgres(db)
		swaps = settlementstore.NewPostgres(db)
		runner = tx.SQLRunner{DB: db}
		log.Info("using postgres stores")
	} else {
		vaults = vaultstore.NewMemory()
		pool = vaultstore.NewMemoryPool()
		records = lifecyclestore.NewMemory()
		bindings = identitystore.NewMemory()
		swaps = settlementstore.NewMemory()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var sink audit.Sink
	if cfg.KafkaBrokers != "" {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	} else {
		sink = audit.NewMemorySink()
	}
	auditor := audit.NewPublisher(sink, audit.WithAsyncBuffer(256))
	defer auditor.Close()

	baseLedger := ledger.NewMemoryLedger()

	lifecycleSvc := lifecycleservice.New(records, vaults, pool, runner, auditor, m, log)
	vaultSvc := vaultservice.New(vaults, pool, lifecycleSvc, baseLedger, runner, auditor, m, log)
	identitySvc := identityservice.New(bindings, vaults, lifecycleSvc, auditor, m, log)
	settlementSvc := settlementservice.New(swaps, vaults, identitySvc, baseLedger, runner, auditor, m, log)

	tokens := captoken.New(cfg.JWTSigningKey, "vaultnet")
	router := transport.NewRouter(transport.Deps{
		Vaults:         vaultSvc,
		Lifecycle:      lifecycleSvc,
		Identity:       identitySvc,
		Settlement:     settlementSvc,
		TokenValidator: tokens,
		Redis:          redisClient,
		RateLimit:      cfg.RateLimitPerMinute,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)
	daemon := worker.NewFlushDaemon(lifecycleSvc, cfg.FlushInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := daemon.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

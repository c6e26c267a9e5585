// main wires the draw engine: stores (Postgres when configured, in-memory
// otherwise), the winner cache, the Kafka notification emitter, the identity
// resolver, and the HTTP surface. Business logic lives in internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"luckydraw/internal/draw/cache"
	drawhandler "luckydraw/internal/draw/handler"
	drawmetrics "luckydraw/internal/draw/metrics"
	"luckydraw/internal/draw/service"
	drawstore "luckydraw/internal/draw/store/draw"
	regstore "luckydraw/internal/draw/store/registration"
	"luckydraw/internal/identity"
	"luckydraw/internal/notify"
	"luckydraw/internal/platform/config"
	"luckydraw/internal/platform/httpserver"
	"luckydraw/internal/platform/logger"
	"luckydraw/internal/platform/middleware"
	platformredis "luckydraw/internal/platform/redis"
	httptransport "luckydraw/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		draws  service.DrawStore
		ledger service.RegistrationStore
		db     *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgDraws := drawstore.NewPostgres(db)
		pgLedger := regstore.NewPostgres(db)
		if err := pgDraws.EnsureSchema(ctx); err != nil {
			log.Error("draws schema", "error", err)
			os.Exit(1)
		}
		if err := pgLedger.EnsureSchema(ctx); err != nil {
			log.Error("registrations schema", "error", err)
			os.Exit(1)
		}
		draws, ledger = pgDraws, pgLedger
	} else {
		log.Warn("POSTGRES_URL not set; using in-memory stores")
		draws, ledger = drawstore.NewInMemory(), regstore.NewInMemory()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis", "error", err)
		os.Exit(1)
	}
	var winnerCache *cache.WinnerCache
	if redisClient != nil {
		defer redisClient.Close()
		winnerCache = cache.New(redisClient.Client, cfg.WinnerCacheTTL)
	}

	var emitter notify.Emitter = notify.NewMemoryEmitter()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaEmitter, err := notify.NewKafkaEmitter(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka emitter", "error", err)
			os.Exit(1)
		}
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	} else {
		log.Warn("KAFKA_BROKERS not set; winner events stay in memory")
	}

	var resolver identity.Resolver
	if cfg.IdentityBaseURL != "" {
		resolver = identity.NewHTTPResolver(cfg.IdentityBaseURL)
	} else {
		log.Warn("IDENTITY_BASE_URL not set; email selection disabled")
	}

	svc := service.New(draws, ledger,
		service.WithLogger(log),
		service.WithMetrics(drawmetrics.New()),
		service.WithNotifier(emitter),
		service.WithIdentityResolver(resolver),
		service.WithWinnerCache(winnerCache),
	)

	validator := middleware.NewHMACValidator(cfg.JWTSigningKey)
	handler := drawhandler.New(svc, log, validator)

	health := func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}

	router := httptransport.NewRouter(handler, log, health)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting luckydraw engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

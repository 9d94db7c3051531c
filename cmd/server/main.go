package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/tokengate/internal/adapter/http"
	"github.com/iho/tokengate/internal/adapter/http/handler"
	"github.com/iho/tokengate/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/tokengate/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/tokengate/internal/adapter/repository/redis"
	"github.com/iho/tokengate/internal/infrastructure/auth"
	"github.com/iho/tokengate/internal/infrastructure/config"
	"github.com/iho/tokengate/internal/infrastructure/gemini"
	"github.com/iho/tokengate/internal/infrastructure/logger"
	"github.com/iho/tokengate/internal/infrastructure/metrics"
	"github.com/iho/tokengate/internal/infrastructure/postgres"
	"github.com/iho/tokengate/internal/infrastructure/redis"
	"github.com/iho/tokengate/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Connect to Redis. The dedup cache is an optimization; the service
	// runs without it.
	var redisClient *goredis.Client
	redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Warn().Err(err).Msg("redis unavailable, dedup cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info().Msg("connected to redis")
	}

	// Verify against the external API up front rather than on the first request.
	generator, err := gemini.NewClient(gemini.Config{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to configure generation client")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	dedupRepo := postgresRepo.NewDedupRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	var dedupCache usecase.DedupCache
	if redisClient != nil {
		dedupCache = redisRepo.NewDedupCache(redisClient)
	}

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, idGen, retrier)
	meterUC := usecase.NewMeterUseCase(ledgerUC, dedupRepo, dedupCache, cfg.DedupCacheTTL)
	generateUC := usecase.NewGenerateUseCase(meterUC, generator, cfg.GenerateTimeout)
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)

	// Initialize handlers
	m := metrics.New()
	generateHandler := handler.NewGenerateHandler(generateUC, m, appLogger)
	accountHandler := handler.NewAccountHandler(accountUC, ledgerUC, appLogger)
	entryHandler := handler.NewEntryHandler(ledgerUC)
	topUpHandler := handler.NewTopUpHandler(ledgerUC, cfg.WebhookSecret, m, appLogger)
	healthHandler := handler.NewHealthHandler(pool, redisPinger(redisClient))

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		GenerateHandler: generateHandler,
		AccountHandler:  accountHandler,
		EntryHandler:    entryHandler,
		TopUpHandler:    topUpHandler,
		HealthHandler:   healthHandler,
		Verifier:        auth.NewJWTVerifier(cfg.JWTSecret),
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		Logger:          appLogger,
	})

	// Prune consumed request ids that have aged out of the dedup window.
	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneDedupRecords(pruneCtx, dedupRepo, cfg.DedupRetention)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

// pruneDedupRecords deletes dedup rows older than the retention window,
// once an hour. Requests older than the window may be replayed; the
// window is sized so legitimate retries never reach it.
func pruneDedupRecords(ctx context.Context, repo *postgresRepo.DedupRepository, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-retention)
			deleted, err := repo.PruneBefore(ctx, cutoff)
			if err != nil {
				log.Error().Err(err).Msg("dedup prune failed")
				continue
			}
			if deleted > 0 {
				log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("pruned dedup records")
			}
		}
	}
}

// redisPinger adapts the go-redis client to the health handler. A nil
// client yields a nil Pinger, which the handler treats as "no cache".
func redisPinger(client *goredis.Client) handler.Pinger {
	if client == nil {
		return nil
	}
	return pingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

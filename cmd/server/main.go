package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/api"
	"github.com/smartlpd/enforcement-api/internal/api/handler"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
	"github.com/smartlpd/enforcement-api/internal/core/service"
	"github.com/smartlpd/enforcement-api/internal/infrastructure/config"
	mongodb "github.com/smartlpd/enforcement-api/internal/infrastructure/db/mongo"
	"github.com/smartlpd/enforcement-api/internal/infrastructure/db/postgres"
	redisdb "github.com/smartlpd/enforcement-api/internal/infrastructure/db/redis"
	"github.com/smartlpd/enforcement-api/internal/infrastructure/mlclient"
	"github.com/smartlpd/enforcement-api/internal/infrastructure/queue"
	"github.com/smartlpd/enforcement-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title                       Smart LPD Enforcement API
// @version                     1.0
// @description                 License plate detection and traffic fine management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Pretty: true})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "enforcement-api",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, relying on existing environment")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		return err
	}
	defer pool.Close()

	mongoClient, mdb, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	detectionRepo := mongodb.NewDetectionRepository(mdb)
	fineEventRepo := mongodb.NewFineEventRepository(mdb)
	if err := detectionRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := fineEventRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(pool)
	fineRepo := postgres.NewFineRepository(pool)

	// --- Fine events ---
	var publisher ports.EventPublisher
	if cfg.Events.RabbitMQURL != "" {
		p := queue.NewPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue, logger.Component("publisher"))
		defer p.Close()
		publisher = p
	} else {
		log.Info().Msg("RABBITMQ_URL not set, fine events are only audited")
	}

	processor := service.NewEventService(fineEventRepo, publisher, logger.Component("fine_events"))
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, processor, logger.Component("dispatcher"))

	// Workers outlive the signal context so queued events drain after the
	// HTTP server has stopped producing them.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher.Start(workerCtx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, service.AuthOptions{
		JWTSecret:       cfg.Auth.JWTSecret,
		TokenTTL:        cfg.Auth.TokenTTL,
		AuthorityDomain: cfg.Auth.AuthorityDomain,
		BcryptCost:      cfg.Auth.BcryptCost,
	}, logger.Component("auth"))

	fineService := service.NewFineService(
		fineRepo,
		userRepo,
		dispatcher,
		redisdb.NewStatsCache(rdb, cfg.Redis.StatsCacheTTL),
		logger.Component("fines"),
	)

	detectionService := service.NewDetectionService(
		mlclient.New(cfg.ML.URL, cfg.ML.Timeout),
		detectionRepo,
		nil,
		logger.Component("detection"),
	)

	if cfg.Auth.SeedDemoUsers {
		if err := authService.SeedDemoUsers(ctx); err != nil {
			return err
		}
	}

	readiness := handler.NewHealthDependenciesHandler(
		detectionService.RecognizerHealthy,
		handler.DependencyCheck{Name: "postgres", Ping: pool.Ping},
		handler.DependencyCheck{Name: "mongodb", Ping: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
		handler.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)

	e := api.NewRouter(api.Deps{
		JWTSecret: cfg.Auth.JWTSecret,
		Log:       logger.Component("http"),
		Auth:      authService,
		Fines:     fineService,
		Detection: detectionService,
		Limiter:   redisdb.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window),
		Readiness: readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("fine events not fully drained")
	}
	return nil
}

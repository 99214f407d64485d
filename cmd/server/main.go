package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/product-catalog/internal/api"
	"github.com/99minutos/product-catalog/internal/api/rpc"
	"github.com/99minutos/product-catalog/internal/api/schema"
	"github.com/99minutos/product-catalog/internal/core/ports"
	"github.com/99minutos/product-catalog/internal/core/service"
	"github.com/99minutos/product-catalog/internal/infrastructure/config"
	mongodb "github.com/99minutos/product-catalog/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/product-catalog/internal/infrastructure/db/redis"
	"github.com/99minutos/product-catalog/internal/infrastructure/events"
	"github.com/99minutos/product-catalog/internal/infrastructure/http/handlers"
	"github.com/99minutos/product-catalog/internal/infrastructure/messaging"
	"github.com/99minutos/product-catalog/internal/infrastructure/users"
	"github.com/99minutos/product-catalog/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

//	@title			Product Catalog API
//	@version		1.0
//	@description	Product catalog with soft-delete lifecycle and user enrichment.
//	@BasePath		/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "product-catalog",
	})
	log := logger.Get()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("service stopped with error")
	}
	log.Info().Msg("service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get().With().Str("env", cfg.Env).Logger()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	repo := mongodb.NewProductRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	rpcClient := messaging.NewClient(rdb, cfg.RPC.Timeout, log)
	if err := rpcClient.Start(ctx); err != nil {
		return err
	}
	defer rpcClient.Close()

	publisher, closePublisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	products := service.NewProductService(
		repo,
		users.NewSummaryClient(rpcClient, log),
		publisher,
		log,
	)

	rpcServer := messaging.NewServer(rdb, log,
		messaging.WithWorkers(cfg.RPC.Workers),
		messaging.WithErrorMapper(rpc.MapError(log)),
	)
	rpc.NewProductHandlers(products, schema.NewValidator()).Register(rpcServer)

	router := api.NewRouter(api.RouterDeps{
		Products: products,
		Checks: map[string]handlers.PingFunc{
			"mongodb": handlers.MongoPing(db),
			"redis":   handlers.RedisPing(rdb),
		},
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Int("workers", cfg.RPC.Workers).Msg("message server listening")
		return rpcServer.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newPublisher picks Kafka when brokers are configured and falls back to
// logging the events otherwise.
func newPublisher(cfg config.KafkaConfig, log zerolog.Logger) (ports.ProductEventPublisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Warn().Msg("no kafka brokers configured, product events are only logged")
		return events.NewLoggingPublisher(log), func() {}, nil
	}

	p, err := events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := p.Close(); err != nil {
			log.Error().Err(err).Msg("close kafka publisher")
		}
	}, nil
}

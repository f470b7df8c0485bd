// Package main runs the business directory HTTP server with live search and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/businessbook/directory/config"
	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/realtime"
	"github.com/businessbook/directory/internal/session"
	"github.com/businessbook/directory/internal/traffic"
	"github.com/businessbook/directory/pkg/database"
	"github.com/businessbook/directory/pkg/redis"
	"github.com/businessbook/directory/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("catalog", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.String("source", cfg.Catalog.Source), zap.Int("enterprises", store.Len()))

	var rdb *goredis.Client
	if cfg.NeedsRedis() {
		rdb, err = redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var counter traffic.Counter = traffic.NewMemory()
	if cfg.Traffic.Backend == config.TrafficRedis {
		counter = traffic.NewRedis(rdb, cfg.Traffic.KeyPrefix)
	}

	var (
		pub    realtime.Publisher
		bridge *realtime.RedisPubSub
	)
	if cfg.Redis.PubSub {
		bridge = realtime.NewRedisPubSub(rdb, logger)
		pub = bridge
	}
	hub := realtime.NewHub(logger, pub, store)
	if bridge != nil {
		if err := bridge.Subscribe(ctx, hub.HandleRemote); err != nil {
			logger.Fatal("subscribe catalog events", zap.Error(err))
		}
	}

	router, registry := newRouter(deps{
		cfg:     cfg,
		store:   store,
		counter: counter,
		hub:     hub,
		logger:  logger,
	})
	sweeper := session.NewSweeper(registry, cfg.JWT.SweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// loadCatalog builds the EntityStore from the configured source.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*catalog.Store, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool, logger); err != nil {
				return nil, err
			}
		}
		return catalog.Load(ctx, catalog.NewPostgresSource(pool))
	case config.SourceS3:
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.Endpoint,
			Bucket:          cfg.AWS.CatalogBucket,
		}, logger)
		if err != nil {
			return nil, err
		}
		return catalog.Load(ctx, catalog.NewS3Source(s3, cfg.Catalog.S3Key))
	default:
		return catalog.Load(ctx, catalog.EmbeddedSource{})
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("LOG_LEVEL") == "debug" {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, _ := config.Build()
	return logger
}

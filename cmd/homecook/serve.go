package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/homecook/gateway"
	"github.com/example/homecook/pkg/api"
	"github.com/example/homecook/pkg/auth"
	"github.com/example/homecook/pkg/cache"
	"github.com/example/homecook/pkg/config"
	"github.com/example/homecook/pkg/connectivity"
	"github.com/example/homecook/pkg/discovery"
	"github.com/example/homecook/pkg/events"
	"github.com/example/homecook/pkg/grpc"
	"github.com/example/homecook/pkg/notify"
	"github.com/example/homecook/pkg/payment"
	"github.com/example/homecook/pkg/repository"
	"github.com/example/homecook/pkg/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway and the gRPC health server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func openBackend(ctx context.Context, cfg *config.BackendConfig) (table.API, error) {
	switch cfg.Driver {
	case "postgres":
		return table.NewPostgresStore(ctx, cfg.Postgres)
	case "mysql":
		return table.NewGormStore(&cfg.MySQL)
	default:
		return table.NewMemoryStore(), nil
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting homecook",
		zap.String("backend", cfg.Backend.Driver),
		zap.String("cache", cfg.Cache.Driver),
		zap.String("gateway", cfg.Gateway.Addr()))

	db, err := openBackend(ctx, &cfg.Backend)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend.Driver, err)
	}
	defer db.Close()

	var rdb *repository.RedisRepository
	if cfg.Cache.Driver == "redis" || cfg.Auth.Sessions == "redis" {
		rdb = repository.NewRedisRepository(&cfg.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed", zap.Error(err))
		} else {
			logger.Info("Redis connected successfully")
		}
	}

	var tagCache cache.Cache = cache.NewMemory(cfg.Cache.TTL)
	if cfg.Cache.Driver == "redis" {
		tagCache = cache.NewRedis(rdb.Client(), cfg.Redis.KeyPrefix, cfg.Cache.TTL)
	}
	defer tagCache.Close()

	var sessions auth.SessionStore = auth.NewMemorySessions()
	if cfg.Auth.Sessions == "redis" {
		sessions = auth.NewRedisSessions(rdb)
	}

	var audit repository.AuditTrail = repository.NewMemoryAuditTrail()
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := repository.NewMongoRepository(ctx, &cfg.MongoDB)
		if err != nil {
			logger.Warn("MongoDB unavailable, keeping audit logs in memory", zap.Error(err))
		} else {
			defer mongoRepo.Close(context.Background())
			audit = mongoRepo
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQ.URL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.Server.Name, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, order events disabled", zap.Error(err))
		} else {
			publisher = amqpPub
		}
	}
	defer publisher.Close()

	hub := notify.NewHub(0, logger)
	defer hub.Close()

	watcher := connectivity.NewWatcher(db, cfg.Connectivity.Interval, cfg.Connectivity.Timeout, logger)
	wasOffline := false
	watcher.Subscribe(func(ev connectivity.Event) {
		switch {
		case ev.Status == connectivity.Offline:
			wasOffline = true
			hub.Publish(notify.LevelError, "Connection lost", "The data backend is unreachable. Changes may not be saved.")
		case wasOffline:
			wasOffline = false
			hub.Publish(notify.LevelInfo, "Back online", "The data backend is reachable again.")
		}
	})

	endpoints := api.New(db, api.Options{
		Cache:    tagCache,
		Payment:  payment.NewTokenProcessor(cfg.Payment.TokenPrefix),
		Audit:    audit,
		Events:   publisher,
		Notifier: hub,
		Landing:  cfg.Landing,
		Logger:   logger,
	})
	authSvc := auth.NewService(db, sessions, auth.LogMailer{Logger: logger}, cfg.Auth, logger)

	gw := gateway.NewGateway(cfg, logger, endpoints, authSvc, hub, watcher.Status)
	gw.SetupRoutes()

	health := grpc.NewHealthServer(cfg.GRPC.Addr(), logger)
	health.Watch(watcher)
	go watcher.Run(ctx)

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := health.Start(); err != nil {
			errCh <- fmt.Errorf("grpc health: %w", err)
		}
	}()

	if sd := register(ctx, cfg, logger); sd != nil {
		defer sd.Close()
	}

	logger.Info("homecook started successfully")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case runErr = <-errCh:
		logger.Error("Server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Gateway shutdown failed", zap.Error(err))
	}
	health.Stop()

	logger.Info("homecook stopped")
	return runErr
}

// register announces the gateway in etcd when endpoints are configured.
// Leases are revoked when the returned client is closed.
func register(ctx context.Context, cfg *config.Config, logger *zap.Logger) *discovery.ServiceDiscovery {
	if len(cfg.Etcd.Endpoints) == 0 {
		return nil
	}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd, logger)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		return nil
	}
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Gateway.Port,
	}
	if err := sd.Register(ctx, instance); err != nil {
		logger.Warn("Failed to register service", zap.Error(err))
		sd.Close()
		return nil
	}
	logger.Info("Service registered in etcd",
		zap.String("name", instance.Name),
		zap.String("address", instance.Addr()))
	return sd
}

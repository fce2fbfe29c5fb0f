package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wardenbot/internal/core/ports"
	"wardenbot/internal/core/services"
	"wardenbot/internal/handlers/dispatch"
	"wardenbot/internal/infrastructure/gateway"
	"wardenbot/internal/infrastructure/monitoring"
	"wardenbot/internal/infrastructure/ops"
	"wardenbot/internal/infrastructure/repositories/file"
	"wardenbot/internal/infrastructure/repositories/memory"
	redisrepo "wardenbot/internal/infrastructure/repositories/redis"
	"wardenbot/internal/infrastructure/sched"
	"wardenbot/pkg/config"
	"wardenbot/pkg/logger"
	"wardenbot/pkg/syncutil"
	"wardenbot/pkg/tracing"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, configPath, err := config.LoadFirst(
		"configs/config.yaml",
		"/etc/wardenbot/config.yaml",
		"config.yaml",
	)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if configPath != "" {
		log.Printf("Loaded config from: %s", configPath)
	} else {
		log.Print("No config file found, using defaults")
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	// Record stores
	var (
		identityRepo   ports.IdentityRepository
		permissionRepo ports.PermissionRepository
		cooldownRepo   ports.CooldownRepository
		redisClient    *goredis.Client
	)
	switch cfg.Storage.Backend {
	case "redis":
		redisClient, err = redisrepo.NewRedisClient(
			cfg.Storage.Redis.Address,
			cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB,
			cfg.Storage.Redis.PoolSize,
			sugar,
		)
		if err != nil {
			sugar.Fatalw("failed to connect to Redis", "error", err)
		}
		identityRepo = redisrepo.NewRedisIdentityRepository(redisClient)
		permissionRepo = redisrepo.NewRedisPermissionRepository(redisClient)
		cooldownRepo = redisrepo.NewRedisCooldownRepository(redisClient)
	case "memory":
		identityRepo = memory.NewMemoryIdentityRepository()
		permissionRepo = memory.NewMemoryPermissionRepository()
		cooldownRepo = memory.NewMemoryCooldownRepository()
	default:
		identityRepo = file.NewFileIdentityRepository(cfg.Storage.Dir)
		permissionRepo = file.NewFilePermissionRepository(cfg.Storage.Dir)
		cooldownRepo = file.NewFileCooldownRepository(cfg.Storage.Dir)
	}

	// Gateway to the platform adapter
	auth := gateway.NewTokenAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	wsServer := gateway.NewWebSocketServer(auth, sugar)
	wsServer.SetPingInterval(cfg.Gateway.PingInterval)
	wsServer.SetPongTimeout(cfg.Gateway.PongTimeout)
	wsServer.SetRequestTimeout(cfg.Gateway.RequestTimeout)
	bridge := gateway.NewBridge(wsServer)

	metrics := monitoring.NewPrometheusCollector()
	scheduler := sched.NewTimerScheduler()
	locks := syncutil.NewKeyedMutex()

	// Core engines
	permissionService := services.NewPermissionService(permissionRepo, sugar)
	cooldownService := services.NewCooldownService(cooldownRepo)
	moderationService := services.NewModerationService(
		permissionService,
		cooldownService,
		bridge,
		bridge,
		bridge,
		scheduler,
		metrics,
		locks,
		sugar,
	)
	gameService := services.NewGameService(
		bridge,
		scheduler,
		metrics,
		locks,
		services.GameConfig{
			TurnTimeout:   cfg.Game.TurnTimeout,
			MinPlayers:    cfg.Game.MinPlayers,
			ChamberBlanks: cfg.Game.ChamberBlanks,
			ChamberLive:   cfg.Game.ChamberLive,
		},
		sugar,
	)

	dispatcher := dispatch.NewDispatcher(
		identityRepo,
		permissionService,
		moderationService,
		gameService,
		bridge,
		bridge,
		metrics,
		sugar,
	)
	if cfg.RateLimiting.Enabled {
		dispatcher.EnableRateLimiting(cfg.RateLimiting.EventsPerSecond, cfg.RateLimiting.Burst)
	}
	if cfg.Moderation.RandomMuteEnabled {
		dispatcher.EnableRandomMute(dispatch.RandomMuteConfig{
			Enabled:  true,
			Chance:   cfg.Moderation.RandomMuteChance,
			Duration: cfg.Moderation.RandomMuteDuration,
		})
	}
	wsServer.SetEventSink(dispatcher)

	// Ops API
	health := monitoring.NewHealthChecker()
	health.AddCheck("gateway", func(ctx context.Context) (bool, error) {
		return true, nil
	}, 2*time.Second)
	if redisClient != nil {
		health.AddCheck("redis", func(ctx context.Context) (bool, error) {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return false, err
			}
			return true, nil
		}, 2*time.Second)
	}
	opsServer := ops.NewServer(permissionService, gameService, health, sugar, cfg.Monitoring.PrometheusEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gatewayMux := http.NewServeMux()
	gatewayMux.HandleFunc("/ws", wsServer.HandleWebSocket)
	gatewaySrv := &http.Server{
		Addr:    cfg.Gateway.Address,
		Handler: gatewayMux,
	}

	errCh := make(chan error, 2)
	go func() {
		sugar.Infow("starting gateway", "address", cfg.Gateway.Address)
		if err := gatewaySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		sugar.Infow("starting ops API", "address", cfg.Ops.Address)
		if err := opsServer.Run(ctx, cfg.Ops.Address); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		sugar.Errorw("server failed", "error", err)
	case <-ctx.Done():
		sugar.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()

	if err := gatewaySrv.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("gateway shutdown failed", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("tracing shutdown failed", "error", err)
	}
	if redisClient != nil {
		if err := redisrepo.CloseRedisClient(redisClient); err != nil {
			sugar.Warnw("redis close failed", "error", err)
		}
	}
	sugar.Info("shutdown complete")
}

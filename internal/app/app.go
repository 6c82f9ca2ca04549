package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/windmesh/bearing/internal/config"
	"github.com/windmesh/bearing/internal/directory"
	"github.com/windmesh/bearing/internal/httpserver"
	"github.com/windmesh/bearing/internal/httpserver/deps"
	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/mesh"
	"github.com/windmesh/bearing/internal/redis"
	"github.com/windmesh/bearing/internal/router"
	"github.com/windmesh/bearing/internal/scheduler"
	"github.com/windmesh/bearing/internal/sources/seed"
	redisstore "github.com/windmesh/bearing/internal/store/redis"
	"github.com/windmesh/bearing/internal/telemetry"
	"github.com/windmesh/bearing/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	mqttSink    *mesh.MQTTSink
	directory   *directory.MemoryDirectory
	publisher   *scheduler.CostPublisher
	reloader    *scheduler.SeedReloader
	syncer      *scheduler.DirectorySyncer
	sweeper     *scheduler.ExpirySweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Initialize Redis store. Cost snapshots outlive a few missed
	// publish ticks before they expire.
	store := redisstore.NewStore(redisClient)
	store.SetCostTTL(3 * cfg.PublishInterval)

	// Resolve node identity: the seed file's node profile wins over
	// config, config over generated defaults.
	loader := seed.NewLoader(cfg.SeedFile)
	mapper := seed.NewMapper(cfg.NodeID, cfg.NodeName, cfg.RecordTTL, loggerClient)
	seedCfg, err := loader.Load()
	if err != nil {
		loggerClient.Errorf("Failed to load seed file %s: %v", cfg.SeedFile, err)
		os.Exit(1)
	}
	nodeID, nodeName := mapper.NodeIdentity(seedCfg)
	loggerClient.Info("node identity resolved",
		logger.String("node_id", nodeID),
		logger.String("node_name", nodeName))

	// Initialize memory directory
	dir := directory.NewMemoryDirectory()

	// Cost sinks: Redis always, MQTT when a broker is configured
	sinks := []mesh.CostSink{store}
	var mqttSink *mesh.MQTTSink
	if cfg.MQTTBroker != "" {
		loggerClient.Info("mqtt broker configured, publishing cost updates to the mesh",
			logger.String("broker", cfg.MQTTBroker))
		mqttSink = mesh.NewMQTTSink(cfg.MQTTBroker, cfg.MQTTTopicPrefix, nodeID, loggerClient)
		sinks = append(sinks, mqttSink)
	}

	// Initialize cost publisher
	publisher := scheduler.NewCostPublisher(
		telemetry.New(loggerClient),
		mesh.NewFanOut(sinks...),
		nodeID,
		loggerClient,
		cfg.CollectInterval,
		cfg.PublishInterval,
	)

	// Optional seed file watcher
	var watcher *seed.Watcher
	if cfg.WatchSeed {
		watcher, err = seed.NewWatcher(cfg.SeedFile, seed.DefaultDebounce, loggerClient)
		if err != nil {
			loggerClient.Warn("failed to watch seed file, falling back to periodic reload only",
				logger.Error(err))
			watcher = nil
		}
	}

	// Manual trigger channels for the admin resync endpoint
	seedReloadTrigger := make(chan struct{}, 1)
	syncTrigger := make(chan struct{}, 1)

	// Initialize seed reloader
	reloader := scheduler.NewSeedReloader(
		loader,
		mapper,
		store,
		dir,
		watcher,
		nodeID,
		loggerClient,
		cfg.SeedReloadInterval,
		seedReloadTrigger,
	)

	// Initialize directory syncer
	syncer := scheduler.NewDirectorySyncer(
		store,
		dir,
		publisher,
		nodeID,
		loggerClient,
		cfg.SyncInterval,
		syncTrigger,
	)

	// Initialize expiry sweeper
	sweeper := scheduler.NewExpirySweeper(
		store,
		dir,
		loggerClient,
		cfg.SweepInterval,
	)

	// Initialize routing engine
	routerEngine := router.New(dir, loggerClient)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		NodeID:            nodeID,
		NodeName:          nodeName,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		RedisClient:       redisClient,
		Store:             store,
		Directory:         dir,
		Router:            routerEngine,
		Publisher:         publisher,
		SeedReloadTrigger: seedReloadTrigger,
		SyncTrigger:       syncTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		mqttSink:    mqttSink,
		directory:   dir,
		publisher:   publisher,
		reloader:    reloader,
		syncer:      syncer,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Bearing v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Bearing %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start cost publisher (samples device state and broadcasts cost)
	if err := a.publisher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cost publisher: %w", err)
	}
	a.logger.Info("cost publisher started",
		logger.Duration("collect_interval", a.cfg.CollectInterval),
		logger.Duration("publish_interval", a.cfg.PublishInterval))

	// Start seed reloader (loads local capabilities and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start seed reloader: %w", err)
	}
	a.logger.Info("seed reloader started",
		logger.Duration("interval", a.cfg.SeedReloadInterval))

	// Start directory syncer (pulls remote capabilities, pushes local ones)
	if err := a.syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start directory syncer: %w", err)
	}
	a.logger.Info("directory syncer started",
		logger.Duration("interval", a.cfg.SyncInterval))

	// Start expiry sweeper
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start expiry sweeper: %w", err)
	}
	a.logger.Info("expiry sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop schedulers before the server so no handler trips over a
	// half-stopped component.
	a.reloader.Stop()
	a.syncer.Stop()
	a.sweeper.Stop()
	a.publisher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.mqttSink != nil {
		if err := a.mqttSink.Close(); err != nil {
			a.logger.Warnf("failed to close mqtt sink: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Bearing stopped cleanly")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.daifugo/internal/config"
	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/handler"
	"sudooom.daifugo/internal/health"
	"sudooom.daifugo/internal/monitor"
	daifugoNats "sudooom.daifugo/internal/nats"
	"sudooom.daifugo/internal/presence"
	"sudooom.daifugo/internal/repository"
	"sudooom.daifugo/internal/room"
	"sudooom.daifugo/internal/router"
	"sudooom.daifugo/internal/task"
	"sudooom.daifugo/pkg/snowflake"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := daifugoNats.NewClient(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "host", cfg.Redis.Host)

	// 连接数据库
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	gameRepo := repository.NewGameRepository(db)
	if err := gameRepo.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// 机器人台词
	chatter, err := newChatter(cfg.Game.BotLinesFile)
	if err != nil {
		logger.Error("Failed to load bot lines", "error", err)
		os.Exit(1)
	}

	ids, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		logger.Error("Failed to create id generator", "error", err)
		os.Exit(1)
	}

	// 启动任务调度器
	scheduler := task.NewScheduler(cfg.Scheduler.WorkerCount, cfg.Scheduler.Tick)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// 初始化房间服务
	subjects := daifugoNats.NewSubjects(cfg.NATS.SubjectPrefix)
	tracker := presence.NewRedisTracker(redisClient, cfg.Redis.PresenceTTL)
	manager := room.NewManager(cfg.Room.MaxRooms, cfg.Room.EvictTimeout, cfg.Room.EvictCheckInterval)
	roomService := room.NewService(manager, scheduler, chatter, ids, room.Deps{
		Publisher: daifugoNats.NewEventPublisher(natsClient.Conn(), subjects),
		Recorder:  gameRepo,
		Notifier:  daifugoNats.NewContactNotifier(natsClient.Conn(), subjects),
		Presence:  tracker,
	}, room.Options{
		MinPlayers:      cfg.Game.MinPlayers,
		BotThinkDelay:   cfg.Game.BotThinkDelay,
		BotDiscardDelay: cfg.Game.BotDiscardDelay,
		MaxMessages:     cfg.Game.MaxMessages,
	})

	// 启动超时监控
	mon := monitor.New(roomService, tracker, monitor.Config{
		Interval:      cfg.Game.MonitorInterval,
		TakeoverAfter: cfg.Game.TakeoverThreshold,
		PassAfter:     cfg.Game.PassThreshold,
	})
	mon.Start()

	// 启动健康检查 HTTP 服务
	healthChecker := health.NewChecker(natsClient.Conn(), redisClient, db, manager, scheduler)
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler: healthChecker.Handler(),
	}
	go serve(healthServer, "health", logger)

	// 启动 API 服务
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           router.SetupRouter(cfg, handler.NewRoomHandler(roomService)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go serve(apiServer, "api", logger)

	logger.Info("Daifugo service started", "name", cfg.App.Name, "httpPort", cfg.App.HTTPPort)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", "error", err)
	}
	mon.Stop()
	scheduler.Stop()
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("Room manager shutdown failed", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown failed", "error", err)
	}
	cancel()
	logger.Info("Daifugo service stopped")
}

// serve 启动 HTTP 服务
func serve(server *http.Server, name string, logger *slog.Logger) {
	logger.Info("HTTP server started", "server", name, "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("HTTP server failed", "server", name, "error", err)
	}
}

// newChatter 加载机器人台词，未配置文件时使用内置台词
func newChatter(path string) (*bot.Chatter, error) {
	if path == "" {
		return bot.NewChatter(nil, nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines, err := bot.ParseLines(data)
	if err != nil {
		return nil, err
	}
	return bot.NewChatter(lines, nil), nil
}

// parseLevel 解析日志级别，无法识别时使用 info
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

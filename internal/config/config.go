package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Game      GameConfig      `mapstructure:"game"`
	Room      RoomConfig      `mapstructure:"room"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type AppConfig struct {
	Name       string `mapstructure:"name"`
	LogLevel   string `mapstructure:"log_level"`
	HTTPPort   int    `mapstructure:"http_port"`
	HealthPort int    `mapstructure:"health_port"`
	Mode       string `mapstructure:"mode"`
	NodeID     int64  `mapstructure:"node_id"` // 消息 ID 生成器节点号
}

// GameConfig 对局参数
type GameConfig struct {
	MinPlayers        int           `mapstructure:"min_players"`
	BotThinkDelay     time.Duration `mapstructure:"bot_think_delay"`
	BotDiscardDelay   time.Duration `mapstructure:"bot_discard_delay"`
	TakeoverThreshold time.Duration `mapstructure:"takeover_threshold"`
	PassThreshold     time.Duration `mapstructure:"pass_threshold"`
	MonitorInterval   time.Duration `mapstructure:"monitor_interval"`
	MaxMessages       int           `mapstructure:"max_messages"`
	BotLinesFile      string        `mapstructure:"bot_lines_file"` // 为空时使用内置台词
}

// RoomConfig 房间注册表参数
type RoomConfig struct {
	MaxRooms           int           `mapstructure:"max_rooms"`
	EvictTimeout       time.Duration `mapstructure:"evict_timeout"`
	EvictCheckInterval time.Duration `mapstructure:"evict_check_interval"`
}

type SchedulerConfig struct {
	WorkerCount int           `mapstructure:"worker_count"`
	Tick        time.Duration `mapstructure:"tick"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

// Addr Redis 地址
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN PostgreSQL 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// Load 从指定路径加载配置
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 从环境变量覆盖配置
	cfg.applyEnv()

	return &cfg, nil
}

// setDefaults 配置文件缺省时使用的值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "daifugo")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.http_port", 8080)
	v.SetDefault("app.health_port", 8081)
	v.SetDefault("app.mode", "release")

	v.SetDefault("game.min_players", 5)
	v.SetDefault("game.bot_think_delay", 10*time.Second)
	v.SetDefault("game.bot_discard_delay", 4*time.Second)
	v.SetDefault("game.takeover_threshold", 30*time.Second)
	v.SetDefault("game.pass_threshold", 60*time.Second)
	v.SetDefault("game.monitor_interval", 500*time.Millisecond)
	v.SetDefault("game.max_messages", 200)

	v.SetDefault("room.max_rooms", 10000)
	v.SetDefault("room.evict_timeout", 2*time.Hour)
	v.SetDefault("room.evict_check_interval", time.Minute)

	v.SetDefault("scheduler.worker_count", 16)
	v.SetDefault("scheduler.tick", 100*time.Millisecond)

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", 2*time.Second)
	v.SetDefault("nats.subject_prefix", "daifugo")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.presence_ttl", 10*time.Minute)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
}

// applyEnv 从环境变量覆盖配置
func (c *Config) applyEnv() {
	// App
	c.App.LogLevel = GetEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.HTTPPort = GetEnvInt("HTTP_PORT", c.App.HTTPPort)
	c.App.HealthPort = GetEnvInt("HEALTH_PORT", c.App.HealthPort)
	c.App.Mode = GetEnv("GIN_MODE", c.App.Mode)
	c.App.NodeID = int64(GetEnvInt("NODE_ID", int(c.App.NodeID)))

	// Game
	c.Game.BotThinkDelay = GetEnvDuration("BOT_THINK_DELAY", c.Game.BotThinkDelay)
	c.Game.TakeoverThreshold = GetEnvDuration("TAKEOVER_THRESHOLD", c.Game.TakeoverThreshold)
	c.Game.PassThreshold = GetEnvDuration("PASS_THRESHOLD", c.Game.PassThreshold)

	// NATS
	c.NATS.URL = GetEnv("NATS_URL", c.NATS.URL)

	// Redis
	c.Redis.Host = GetEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = GetEnvInt("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = GetEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = GetEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = GetEnvInt("REDIS_POOL_SIZE", c.Redis.PoolSize)

	// Database
	c.Database.Host = GetEnv("POSTGRES_HOST", c.Database.Host)
	c.Database.Port = GetEnvInt("POSTGRES_PORT", c.Database.Port)
	c.Database.User = GetEnv("POSTGRES_USER", c.Database.User)
	c.Database.Password = GetEnv("POSTGRES_PASSWORD", c.Database.Password)
	c.Database.Name = GetEnv("POSTGRES_DB", c.Database.Name)
	c.Database.MaxOpenConns = GetEnvInt("POSTGRES_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = GetEnvInt("POSTGRES_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
}

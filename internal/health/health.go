package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Status 健康状态
type Status struct {
	NATS      string         `json:"nats"`
	Redis     string         `json:"redis"`
	Database  string         `json:"database"`
	Rooms     int            `json:"rooms"`
	Scheduler map[string]any `json:"scheduler,omitempty"`
}

// Healthy 所有依赖都已连接
func (s *Status) Healthy() bool {
	return s.NATS == StatusConnected &&
		s.Redis == StatusConnected &&
		s.Database == StatusConnected
}

// NATSConn NATS 连接状态
type NATSConn interface {
	IsConnected() bool
}

// RedisPinger Redis 连通性检查
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// DBPinger 数据库连通性检查
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RoomCounter 房间数量
type RoomCounter interface {
	Count() int
}

// StatsProvider 调度器统计
type StatsProvider interface {
	GetStats() map[string]any
}

// Checker 健康检查器
type Checker struct {
	nc          NATSConn
	redisClient RedisPinger
	db          DBPinger
	rooms       RoomCounter
	scheduler   StatsProvider
}

// NewChecker 创建健康检查器
func NewChecker(nc NATSConn, redisClient RedisPinger, db DBPinger, rooms RoomCounter, scheduler StatsProvider) *Checker {
	return &Checker{
		nc:          nc,
		redisClient: redisClient,
		db:          db,
		rooms:       rooms,
		scheduler:   scheduler,
	}
}

// Check 执行健康检查
func (h *Checker) Check(ctx context.Context) *Status {
	status := &Status{
		NATS:     StatusDisconnected,
		Redis:    StatusDisconnected,
		Database: StatusDisconnected,
	}

	// 检查 NATS
	if h.nc != nil && h.nc.IsConnected() {
		status.NATS = StatusConnected
	}

	// 检查 Redis
	if h.redisClient != nil {
		redisCtx, redisCancel := context.WithTimeout(ctx, 2*time.Second)
		defer redisCancel()

		if err := h.redisClient.Ping(redisCtx).Err(); err == nil {
			status.Redis = StatusConnected
		}
	}

	// 检查 PostgreSQL
	if h.db != nil {
		dbCtx, dbCancel := context.WithTimeout(ctx, 2*time.Second)
		defer dbCancel()

		if err := h.db.Ping(dbCtx); err == nil {
			status.Database = StatusConnected
		}
	}

	if h.rooms != nil {
		status.Rooms = h.rooms.Count()
	}
	if h.scheduler != nil {
		status.Scheduler = h.scheduler.GetStats()
	}

	return status
}

// IsHealthy 检查是否健康
func (h *Checker) IsHealthy(ctx context.Context) bool {
	return h.Check(ctx).Healthy()
}

// ServeHTTP HTTP 健康检查端点
func (h *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.Healthy() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// Handler 健康检查路由：/health 返回详细状态，/ready 用于就绪探针
func (h *Checker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", h)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if h.IsHealthy(r.Context()) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Not Ready"))
		}
	})
	return mux
}

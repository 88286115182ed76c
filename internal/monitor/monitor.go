package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sudooom.daifugo/internal/room"
)

// Rooms 监控需要的房间操作
type Rooms interface {
	Snapshots() []room.Snapshot
	TakeoverPlayer(ctx context.Context, roomID, playerID string) error
	ReleaseTakeover(ctx context.Context, roomID, playerID string) error
	ForcePass(ctx context.Context, roomID, playerID string, turnStartedAt time.Time) error
	DispatchBots(ctx context.Context, roomID string) error
}

// Presence 心跳查询
type Presence interface {
	LastSeen(ctx context.Context, roomID, playerID string) (time.Time, bool, error)
}

// Config 监控配置
type Config struct {
	Interval      time.Duration // 轮询间隔
	TakeoverAfter time.Duration // 超过该时间没有心跳则代管
	PassAfter     time.Duration // 持有出牌权超过该时间则强制 pass
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Interval:      500 * time.Millisecond,
		TakeoverAfter: 30 * time.Second,
		PassAfter:     60 * time.Second,
	}
}

// Monitor 超时监控
// 定期检查所有进行中的房间：掉线代管、恢复、超时 pass、自动 pass、机器人调度
type Monitor struct {
	rooms    Rooms
	presence Presence
	cfg      Config

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	now    func() time.Time
	logger *slog.Logger
}

// New 创建监控
func New(rooms Rooms, presence Presence, cfg Config) *Monitor {
	d := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = d.Interval
	}
	if cfg.TakeoverAfter <= 0 {
		cfg.TakeoverAfter = d.TakeoverAfter
	}
	if cfg.PassAfter <= 0 {
		cfg.PassAfter = d.PassAfter
	}
	return &Monitor{
		rooms:    rooms,
		presence: presence,
		cfg:      cfg,
		now:      time.Now,
		logger:   slog.Default().With("component", "Monitor"),
	}
}

// Start 启动监控循环
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(m.stop, m.done)

	m.logger.Info("Monitor started", "interval", m.cfg.Interval)
}

// Stop 停止监控循环并等待当前一轮检查结束
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stop)
	done := m.done
	m.mu.Unlock()

	<-done
	m.logger.Info("Monitor stopped")
}

func (m *Monitor) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.safeCheck()
		case <-stop:
			return
		}
	}
}

// safeCheck 一轮检查中的 panic 不会终止监控循环
func (m *Monitor) safeCheck() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Monitor check panicked", "panic", r)
		}
	}()
	m.Check(context.Background())
}

// Check 检查所有房间一次
func (m *Monitor) Check(ctx context.Context) {
	now := m.now()
	for _, snap := range m.rooms.Snapshots() {
		if snap.Started {
			m.checkRoom(ctx, snap, now)
		}
	}
}

func (m *Monitor) checkRoom(ctx context.Context, snap room.Snapshot, now time.Time) {
	// 代管中的玩家在阈值的一半以内重新出现则归还操作权
	for _, id := range snap.TakenOver {
		if at, ok := m.lastSeen(ctx, snap.RoomID, id); ok && now.Sub(at) <= m.cfg.TakeoverAfter/2 {
			if err := m.rooms.ReleaseTakeover(ctx, snap.RoomID, id); err != nil {
				m.logger.Warn("Failed to release takeover", "roomId", snap.RoomID, "playerId", id, "error", err)
			}
		}
	}

	if snap.CurrentID == "" {
		return
	}
	if snap.CurrentIsBot {
		if err := m.rooms.DispatchBots(ctx, snap.RoomID); err != nil {
			m.logger.Warn("Failed to dispatch bots", "roomId", snap.RoomID, "error", err)
		}
		return
	}

	// 只有记录过心跳的玩家才会被代管
	if at, ok := m.lastSeen(ctx, snap.RoomID, snap.CurrentID); ok && now.Sub(at) > m.cfg.TakeoverAfter {
		if err := m.rooms.TakeoverPlayer(ctx, snap.RoomID, snap.CurrentID); err != nil {
			m.logger.Warn("Failed to take over player", "roomId", snap.RoomID, "playerId", snap.CurrentID, "error", err)
		}
		return
	}

	if now.Sub(snap.TurnStartedAt) >= m.cfg.PassAfter || snap.AutoPass {
		if err := m.rooms.ForcePass(ctx, snap.RoomID, snap.CurrentID, snap.TurnStartedAt); err != nil {
			m.logger.Warn("Failed to force pass", "roomId", snap.RoomID, "playerId", snap.CurrentID, "error", err)
		}
	}
}

func (m *Monitor) lastSeen(ctx context.Context, roomID, playerID string) (time.Time, bool) {
	at, ok, err := m.presence.LastSeen(ctx, roomID, playerID)
	if err != nil {
		m.logger.Warn("Failed to read presence", "roomId", roomID, "playerId", playerID, "error", err)
		return time.Time{}, false
	}
	return at, ok
}

package room

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// EvictFunc 房间被淘汰后的回调
type EvictFunc func(r *Room)

// Manager 房间管理器
// 管理所有 Room 实例的生命周期：创建 → 活跃 → 超时淘汰
//
// 使用示例：
//
//	manager := NewManager(5000, 30*time.Minute, time.Minute)
//	err := manager.Add(room)
//	room, ok := manager.Get(roomID)
type Manager struct {
	rooms sync.Map // roomID -> *Room

	// 淘汰配置
	maxRooms     int
	evictTimeout time.Duration
	evictTicker  *time.Ticker
	done         chan struct{}
	stopOnce     sync.Once

	mu      sync.Mutex // 保护 onEvict 和房间数量检查
	onEvict EvictFunc

	now    func() time.Time
	logger *slog.Logger
}

// NewManager 创建房间管理器，evictCheckInterval <= 0 时不启动淘汰循环
func NewManager(maxRooms int, evictTimeout, evictCheckInterval time.Duration) *Manager {
	m := &Manager{
		maxRooms:     maxRooms,
		evictTimeout: evictTimeout,
		done:         make(chan struct{}),
		now:          time.Now,
		logger:       slog.Default().With("component", "RoomManager"),
	}

	if evictCheckInterval > 0 {
		m.evictTicker = time.NewTicker(evictCheckInterval)
		go m.evictLoop()
	}

	return m
}

// OnEvict 设置淘汰回调（用于发送 room_evicted 通知）
func (m *Manager) OnEvict(fn EvictFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Add 登记新房间
func (m *Manager) Add(r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxRooms > 0 && m.Count() >= m.maxRooms {
		return ErrRoomLimit
	}
	if _, loaded := m.rooms.LoadOrStore(r.ID(), r); loaded {
		return ErrRoomExists
	}
	return nil
}

// Get 获取房间
func (m *Manager) Get(roomID string) (*Room, bool) {
	val, ok := m.rooms.Load(roomID)
	if !ok {
		return nil, false
	}
	return val.(*Room), true
}

// Remove 移除房间
func (m *Manager) Remove(roomID string) {
	m.rooms.Delete(roomID)
	m.logger.Info("Removed room", "roomId", roomID)
}

// Count 返回当前房间数
func (m *Manager) Count() int {
	count := 0
	m.rooms.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Rooms 按 ID 排序的全部房间
func (m *Manager) Rooms() []*Room {
	var out []*Room
	m.rooms.Range(func(key, value any) bool {
		out = append(out, value.(*Room))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// evictLoop 淘汰循环
func (m *Manager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.EvictInactive()
		case <-m.done:
			return
		}
	}
}

// EvictInactive 淘汰超过 evictTimeout 未活跃的房间，返回被淘汰的数量
func (m *Manager) EvictInactive() int {
	now := m.now()
	var toEvict []*Room

	m.rooms.Range(func(key, value any) bool {
		r := value.(*Room)
		if now.Sub(r.LastActiveTime()) > m.evictTimeout {
			toEvict = append(toEvict, r)
		}
		return true
	})

	m.mu.Lock()
	onEvict := m.onEvict
	m.mu.Unlock()

	evicted := 0
	for _, r := range toEvict {
		if _, loaded := m.rooms.LoadAndDelete(r.ID()); !loaded {
			continue
		}
		evicted++
		if onEvict != nil {
			onEvict(r)
		}
		m.logger.Info("Evicted inactive room", "roomId", r.ID(), "lastActive", r.LastActiveTime())
	}
	return evicted
}

// Shutdown 关闭管理器
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() {
		if m.evictTicker != nil {
			m.evictTicker.Stop()
		}
		close(m.done)
	})

	m.logger.Info("RoomManager shutdown complete")
	return nil
}

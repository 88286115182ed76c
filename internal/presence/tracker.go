package presence

import (
	"context"
	"sync"
	"time"
)

// Tracker 玩家心跳记录
type Tracker interface {
	// Touch 记录玩家在 at 时刻在线
	Touch(ctx context.Context, roomID, playerID string, at time.Time) error
	// LastSeen 最后一次心跳时间，没有记录时 ok 为 false
	LastSeen(ctx context.Context, roomID, playerID string) (at time.Time, ok bool, err error)
}

// MemoryTracker 进程内心跳记录，单实例部署或测试使用
type MemoryTracker struct {
	mu   sync.RWMutex
	seen map[string]time.Time
}

// NewMemoryTracker 创建进程内心跳记录
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{seen: make(map[string]time.Time)}
}

// Touch 记录心跳，只会向后更新
func (m *MemoryTracker) Touch(_ context.Context, roomID, playerID string, at time.Time) error {
	key := BuildPresenceKey(roomID, playerID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.seen[key]; !ok || at.After(prev) {
		m.seen[key] = at
	}
	return nil
}

// LastSeen 最后一次心跳时间
func (m *MemoryTracker) LastSeen(_ context.Context, roomID, playerID string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.seen[BuildPresenceKey(roomID, playerID)]
	return at, ok, nil
}

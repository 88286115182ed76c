package room

import (
	"context"
	"sync"
	"time"

	"sudooom.daifugo/internal/game/daifugo"
)

// Message 房间聊天消息
type Message struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
	TS       int64  `json:"ts"` // 毫秒时间戳
}

// Event 对外发布的房间事件
type Event struct {
	RoomID  string            `json:"room_id"`
	Type    daifugo.EventType `json:"type"`
	Payload map[string]any    `json:"payload"`
	TS      int64             `json:"ts"`
}

// Room 房间实例
//
// mu 保护牌桌和房间内的全部状态，所有修改都在 mu 下完成。
// flushMu 保证同一房间的事件按产生顺序发布：先拿到 flushMu 再释放 mu。
type Room struct {
	mu      sync.Mutex
	flushMu sync.Mutex

	id        string
	table     *daifugo.Table
	messages  []Message
	events    []Event
	createdAt time.Time

	lastActive time.Time

	// 机器人调度状态
	botFor       string // 已安排行动的机器人
	botRound     int
	discardFor   *daifugo.Obligation
	botLastReply map[string]time.Time

	// 本次修改累积的待发送内容
	pending batch
}

// batch 一次修改产生的对外副作用，释放 mu 之后执行
type batch struct {
	events   []Event
	records  []daifugo.Record
	messages []Message
	notices  []ContactNotice
	persist  []func(ctx context.Context, rec Recorder) error
}

func (b *batch) empty() bool {
	return len(b.events) == 0 && len(b.records) == 0 && len(b.messages) == 0 &&
		len(b.notices) == 0 && len(b.persist) == 0
}

// NewRoom 创建房间实例
func NewRoom(id string, table *daifugo.Table, now time.Time) *Room {
	return &Room{
		id:           id,
		table:        table,
		createdAt:    now,
		lastActive:   now,
		botLastReply: make(map[string]time.Time),
	}
}

// ID 房间ID
func (r *Room) ID() string {
	return r.id
}

// LastActiveTime 最后活跃时间
func (r *Room) LastActiveTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

func (r *Room) touch(now time.Time) {
	r.lastActive = now
}

// appendMessage 追加消息，超过上限时丢弃最早的消息
func (r *Room) appendMessage(m Message, limit int) {
	r.messages = append(r.messages, m)
	if limit > 0 && len(r.messages) > limit {
		r.messages = append([]Message(nil), r.messages[len(r.messages)-limit:]...)
	}
	r.pending.messages = append(r.pending.messages, m)
}

// queueEvent 事件进入待拉取队列，超过上限时丢弃最早的事件
func (r *Room) queueEvent(ev Event, limit int) {
	r.events = append(r.events, ev)
	if limit > 0 && len(r.events) > limit {
		r.events = append([]Event(nil), r.events[len(r.events)-limit:]...)
	}
	r.pending.events = append(r.pending.events, ev)
}

// drainEvents 取出并清空待拉取的事件
func (r *Room) drainEvents() []Event {
	out := r.events
	r.events = nil
	return out
}

// takePending 取出累积的副作用
func (r *Room) takePending() batch {
	b := r.pending
	r.pending = batch{}
	return b
}

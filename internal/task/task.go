package task

import (
	"context"
	"time"
)

// Kind 任务类型
type Kind string

const (
	KindBotAct     Kind = "bot_act"     // 机器人思考结束后行动
	KindBotChat    Kind = "bot_chat"    // 机器人思考中的台词
	KindBotDiscard Kind = "bot_discard" // 机器人出 10 之后弃牌
)

// Func 任务执行函数，roomID 为任务所属房间
type Func func(ctx context.Context, roomID string) error

// Task 延迟任务
type Task struct {
	ID        string        `json:"id"`        // 任务唯一ID，同 ID 的任务会被替换
	RoomID    string        `json:"roomId"`    // 所属房间
	Kind      Kind          `json:"kind"`      // 任务类型
	Delay     time.Duration `json:"delay"`     // 延迟
	Fn        Func          `json:"-"`         // 执行函数
	CreatedAt time.Time     `json:"createdAt"` // 创建时间
}

// NewTask 创建新任务
func NewTask(id, roomID string, kind Kind, delay time.Duration, fn Func) *Task {
	return &Task{
		ID:        id,
		RoomID:    roomID,
		Kind:      kind,
		Delay:     delay,
		Fn:        fn,
		CreatedAt: time.Now(),
	}
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx, t.RoomID)
}

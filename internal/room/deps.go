package room

import (
	"context"
	"time"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
	"sudooom.daifugo/internal/task"
)

// Publisher 房间事件发布
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Recorder 对局持久化
type Recorder interface {
	CreateGame(ctx context.Context, roomID string) error
	RegisterPlayers(ctx context.Context, roomID string, players []daifugo.Player) error
	RecordPlay(ctx context.Context, roomID, playerID string, c card.Card) error
	RecordPlayerFinished(ctx context.Context, roomID, playerID string, rank int) error
	RecordRoundFinished(ctx context.Context, roomID string, results []daifugo.Result) error
	RecordRoundResultsWithScoring(ctx context.Context, roomID string, results []daifugo.Result) error
	RecordGradeRotation(ctx context.Context, roomID, actor string, results []daifugo.Result) error
	AddMessage(ctx context.Context, roomID, playerID, name, text string, ts time.Time) error
}

// Notifier 玩家联系方式通知（代管开始 / 结束）
type Notifier interface {
	NotifyContact(ctx context.Context, n ContactNotice) error
}

// Presence 玩家在线心跳
type Presence interface {
	Touch(ctx context.Context, roomID, playerID string, at time.Time) error
}

// Scheduler 延迟任务调度
type Scheduler interface {
	Schedule(t *task.Task) error
	Cancel(taskID string) bool
}

// Deps 房间服务的外部协作方，nil 时不做任何处理
type Deps struct {
	Publisher Publisher
	Recorder  Recorder
	Notifier  Notifier
	Presence  Presence
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

type nopNotifier struct{}

func (nopNotifier) NotifyContact(context.Context, ContactNotice) error { return nil }

type nopPresence struct{}

func (nopPresence) Touch(context.Context, string, string, time.Time) error { return nil }

type nopRecorder struct{}

func (nopRecorder) CreateGame(context.Context, string) error { return nil }
func (nopRecorder) RegisterPlayers(context.Context, string, []daifugo.Player) error {
	return nil
}
func (nopRecorder) RecordPlay(context.Context, string, string, card.Card) error { return nil }
func (nopRecorder) RecordPlayerFinished(context.Context, string, string, int) error {
	return nil
}
func (nopRecorder) RecordRoundFinished(context.Context, string, []daifugo.Result) error {
	return nil
}
func (nopRecorder) RecordRoundResultsWithScoring(context.Context, string, []daifugo.Result) error {
	return nil
}
func (nopRecorder) RecordGradeRotation(context.Context, string, string, []daifugo.Result) error {
	return nil
}
func (nopRecorder) AddMessage(context.Context, string, string, string, string, time.Time) error {
	return nil
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = nopPublisher{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Presence == nil {
		d.Presence = nopPresence{}
	}
	return d
}

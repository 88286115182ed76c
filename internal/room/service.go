package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sudooom.daifugo/internal/game/bot"
	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
	"sudooom.daifugo/pkg/snowflake"
)

// Options 房间服务配置
type Options struct {
	MinPlayers      int           // 开局时不足的座位由机器人补齐
	BotThinkDelay   time.Duration // 机器人思考时间
	BotDiscardDelay time.Duration // 机器人出 10 之后弃牌的等待时间
	MaxMessages     int           // 每个房间保留的消息数
	EventQueueSize  int           // 每个房间待拉取事件的上限
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{
		MinPlayers:      5,
		BotThinkDelay:   10 * time.Second,
		BotDiscardDelay: 4 * time.Second,
		MaxMessages:     200,
		EventQueueSize:  500,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinPlayers <= 0 {
		o.MinPlayers = d.MinPlayers
	}
	if o.BotThinkDelay <= 0 {
		o.BotThinkDelay = d.BotThinkDelay
	}
	if o.BotDiscardDelay <= 0 {
		o.BotDiscardDelay = d.BotDiscardDelay
	}
	if o.MaxMessages <= 0 {
		o.MaxMessages = d.MaxMessages
	}
	if o.EventQueueSize <= 0 {
		o.EventQueueSize = d.EventQueueSize
	}
	return o
}

// Service 房间服务
// 所有对房间的修改都经过 mutate：持锁修改牌桌，释放锁后发布事件、写库、发通知
type Service struct {
	manager   *Manager
	scheduler Scheduler
	deps      Deps
	opts      Options
	chatter   *bot.Chatter
	ids       *snowflake.Node

	newDealer func() *card.Dealer
	now       func() time.Time
	logger    *slog.Logger
}

// NewService 创建房间服务
func NewService(manager *Manager, scheduler Scheduler, chatter *bot.Chatter, ids *snowflake.Node, deps Deps, opts Options) *Service {
	if chatter == nil {
		chatter = bot.NewChatter(nil, nil)
	}
	if ids == nil {
		ids, _ = snowflake.NewNode(0)
	}
	s := &Service{
		manager:   manager,
		scheduler: scheduler,
		deps:      deps.withDefaults(),
		opts:      opts.withDefaults(),
		chatter:   chatter,
		ids:       ids,
		newDealer: func() *card.Dealer {
			return card.NewDealer(nil)
		},
		now:    time.Now,
		logger: slog.Default().With("component", "RoomService"),
	}
	manager.OnEvict(s.onEvict)
	return s
}

// Options 当前配置
func (s *Service) Options() Options {
	return s.opts
}

// newRoomID 8 位十六进制房间ID
func newRoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// newPlayerID 32 位十六进制玩家ID
func newPlayerID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Service) room(roomID string) (*Room, error) {
	r, ok := s.manager.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// view 持锁读取房间
func (s *Service) view(roomID string, fn func(r *Room) error) error {
	r, err := s.room(roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

// mutate 持锁修改房间，然后按顺序发布本次修改产生的事件与记录
func (s *Service) mutate(ctx context.Context, roomID string, fn func(r *Room) error) error {
	return s.run(ctx, roomID, true, fn)
}

// run active 为 false 时不刷新房间活跃时间（监控的例行检查）
func (s *Service) run(ctx context.Context, roomID string, active bool, fn func(r *Room) error) error {
	r, err := s.room(roomID)
	if err != nil {
		return err
	}
	b, err := s.apply(r, active, fn)
	defer r.flushMu.Unlock()
	s.flush(ctx, roomID, b)
	return err
}

// apply 执行修改并取出副作用，返回时已持有 flushMu
func (s *Service) apply(r *Room, active bool, fn func(r *Room) error) (batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := fn(r)
	if err == nil {
		if active {
			r.touch(s.now())
		}
		s.afterChange(r)
	}
	b := s.collect(r)
	r.flushMu.Lock()
	return b, err
}

// collect 取出牌桌事件，出牌、弃牌和机器人台词同时记为聊天消息
func (s *Service) collect(r *Room) batch {
	now := s.now()
	events, records := r.table.Drain()
	for _, ev := range events {
		r.queueEvent(Event{RoomID: r.id, Type: ev.Type, Payload: ev.Payload, TS: now.UnixMilli()}, s.opts.EventQueueSize)

		playerID, _ := ev.Payload["player_id"].(string)
		switch ev.Type {
		case daifugo.EventCardPlayed:
			cards, _ := ev.Payload["cards"].([]card.Card)
			s.addMessage(r, playerID, "出した: "+strings.Join(card.Strings(cards), ","), now)
		case daifugo.EventCardDiscarded:
			c, _ := ev.Payload["card"].(card.Card)
			s.addMessage(r, playerID, "捨てた: "+c.String(), now)
		case daifugo.EventBotChat:
			text, _ := ev.Payload["text"].(string)
			s.addMessage(r, playerID, text, now)
		}
	}
	r.pending.records = append(r.pending.records, records...)
	return r.takePending()
}

// addMessage 以玩家名义追加一条消息
func (s *Service) addMessage(r *Room, playerID, text string, now time.Time) Message {
	name := playerID
	if p := r.table.Player(playerID); p != nil {
		name = p.Label()
	}
	m := Message{
		ID:       s.ids.Generate().String(),
		PlayerID: playerID,
		Name:     name,
		Text:     text,
		TS:       now.UnixMilli(),
	}
	r.appendMessage(m, s.opts.MaxMessages)
	return m
}

// flush 发布事件、写库、发通知，失败只记录日志
func (s *Service) flush(ctx context.Context, roomID string, b batch) {
	if b.empty() {
		return
	}
	for _, ev := range b.events {
		if err := s.deps.Publisher.Publish(ctx, ev); err != nil {
			s.logger.Warn("Failed to publish room event", "roomId", roomID, "type", ev.Type, "error", err)
		}
	}
	for _, fn := range b.persist {
		if err := fn(ctx, s.deps.Recorder); err != nil {
			s.logger.Warn("Failed to persist room", "roomId", roomID, "error", err)
		}
	}
	for _, rec := range b.records {
		if err := s.persistRecord(ctx, roomID, rec); err != nil {
			s.logger.Warn("Failed to persist record", "roomId", roomID, "kind", rec.Kind, "error", err)
		}
	}
	for _, m := range b.messages {
		if err := s.deps.Recorder.AddMessage(ctx, roomID, m.PlayerID, m.Name, m.Text, time.UnixMilli(m.TS)); err != nil {
			s.logger.Warn("Failed to persist message", "roomId", roomID, "error", err)
		}
	}
	for _, n := range b.notices {
		if err := s.deps.Notifier.NotifyContact(ctx, n); err != nil {
			s.logger.Warn("Failed to notify contact", "roomId", roomID, "playerId", n.PlayerID, "reason", n.Reason, "error", err)
		}
	}
}

func (s *Service) persistRecord(ctx context.Context, roomID string, rec daifugo.Record) error {
	rc := s.deps.Recorder
	switch rec.Kind {
	case daifugo.RecordPlay:
		return rc.RecordPlay(ctx, roomID, rec.PlayerID, rec.Card)
	case daifugo.RecordPlayerFinished:
		return rc.RecordPlayerFinished(ctx, roomID, rec.PlayerID, rec.Rank)
	case daifugo.RecordRoundFinished:
		// 结算时同时记录名次和得分
		return errors.Join(
			rc.RecordRoundFinished(ctx, roomID, rec.Results),
			rc.RecordRoundResultsWithScoring(ctx, roomID, rec.Results),
		)
	case daifugo.RecordGradeRotation:
		return rc.RecordGradeRotation(ctx, roomID, rec.PlayerID, rec.Results)
	}
	return nil
}

// touchPresence 记录玩家心跳
func (s *Service) touchPresence(ctx context.Context, roomID, playerID string) {
	if playerID == "" {
		return
	}
	if err := s.deps.Presence.Touch(ctx, roomID, playerID, s.now()); err != nil {
		s.logger.Warn("Failed to touch presence", "roomId", roomID, "playerId", playerID, "error", err)
	}
}

// onEvict 房间被淘汰：取消延迟任务并发布 room_evicted
func (s *Service) onEvict(r *Room) {
	for _, id := range []string{botTaskID(r.id), chatTaskID(r.id), discardTaskID(r.id)} {
		s.scheduler.Cancel(id)
	}
	ev := Event{
		RoomID: r.id,
		Type:   daifugo.EventRoomEvicted,
		Payload: map[string]any{
			"room_id": r.id,
			"reason":  "idle timeout",
		},
		TS: s.now().UnixMilli(),
	}
	if err := s.deps.Publisher.Publish(context.Background(), ev); err != nil {
		s.logger.Warn("Failed to send eviction notification", "roomId", r.id, "error", err)
	}
}

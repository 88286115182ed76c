package daifugo

import (
	"time"

	"sudooom.daifugo/internal/game/card"
)

// Direction 出牌方向
type Direction string

const (
	Clockwise        Direction = "clockwise"
	CounterClockwise Direction = "counterclockwise"
)

// Flip 反转方向
func (d Direction) Flip() Direction {
	if d == CounterClockwise {
		return Clockwise
	}
	return CounterClockwise
}

// Phase 牌局阶段
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseInRound   Phase = "in_round"
	PhaseRoundOver Phase = "round_over"
)

// Obligation 一次性效果（10 弃牌 / 4 交换 / A 抽牌），非 nil 即为可用
type Obligation struct {
	PlayerID string `json:"player_id"`
	Allowed  bool   `json:"allowed"`
}

// GiveObligation 按上局名次需要交出的牌
type GiveObligation struct {
	To      string `json:"to"`
	Count   int    `json:"count"`
	Allowed bool   `json:"allowed"`
}

// Table 一个房间的牌局状态
//
// Table 本身不加锁，调用方（房间）负责串行化所有访问。
// 字段可以直接读取，修改只能通过方法进行。
type Table struct {
	ID      string
	Players []*Player
	Hands   map[string][]card.Card
	Rules   Rules

	Center            card.Combination
	CurrentTurn       int
	Direction         Direction
	Revolution        bool
	ConsecutivePasses int
	PassStreaks       map[string]int
	LastPlayer        string
	LastNonNullPlayer string

	PendingDiscard *Obligation
	PendingSwap    *Obligation
	PendingTake    *Obligation
	PendingGive    map[string]*GiveObligation

	// Finished 本局已确定的名次
	Finished map[string]int
	// Standing 上一局结算后的名次（用于换牌与即时名次轮换）
	Standing map[string]int
	NextRank int

	Started       bool
	GameOver      bool
	Round         int
	TurnStartedAt time.Time
	// Discarded 本局已离场的牌（被清场的中央牌、弃牌、大量弃牌）
	Discarded []card.Card

	gaveThisPlay bool
	dealer       *card.Dealer
	now          func() time.Time
	out          outbox
}

// NewTable 创建空牌桌
func NewTable(id string, dealer *card.Dealer) *Table {
	if dealer == nil {
		dealer = card.NewDealer(nil)
	}
	return &Table{
		ID:          id,
		Hands:       make(map[string][]card.Card),
		Rules:       DefaultRules(),
		Direction:   Clockwise,
		PassStreaks: make(map[string]int),
		PendingGive: make(map[string]*GiveObligation),
		Finished:    make(map[string]int),
		Standing:    make(map[string]int),
		NextRank:    1,
		dealer:      dealer,
		now:         time.Now,
	}
}

// SetClock 替换时钟（测试用）
func (t *Table) SetClock(now func() time.Time) {
	t.now = now
}

// Dealer 牌桌使用的随机源
func (t *Table) Dealer() *card.Dealer {
	return t.dealer
}

// Phase 当前阶段
func (t *Table) Phase() Phase {
	switch {
	case t.Started:
		return PhaseInRound
	case t.GameOver:
		return PhaseRoundOver
	default:
		return PhaseLobby
	}
}

// SeatOf 返回玩家座位，不存在时返回 -1
func (t *Table) SeatOf(playerID string) int {
	for i, p := range t.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player 按 ID 查找玩家
func (t *Table) Player(playerID string) *Player {
	if i := t.SeatOf(playerID); i >= 0 {
		return t.Players[i]
	}
	return nil
}

// CurrentPlayer 当前出牌的玩家
func (t *Table) CurrentPlayer() *Player {
	if t.CurrentTurn < 0 || t.CurrentTurn >= len(t.Players) {
		return nil
	}
	return t.Players[t.CurrentTurn]
}

// Hand 玩家手牌副本
func (t *Table) Hand(playerID string) []card.Card {
	return card.Clone(t.Hands[playerID])
}

// AddPlayer 入座
func (t *Table) AddPlayer(p *Player) {
	t.Players = append(t.Players, p)
}

// RemoveBot 牌局开始前移除机器人
func (t *Table) RemoveBot(botID string) error {
	if t.Started {
		return ErrGameAlreadyStarted
	}
	i := t.SeatOf(botID)
	if i < 0 || !t.Players[i].IsBot {
		return ErrBotNotFound.WithContext("bot_id", botID)
	}
	t.Players = append(t.Players[:i], t.Players[i+1:]...)
	delete(t.Hands, botID)
	delete(t.Standing, botID)
	return nil
}

// ReplaceBot 真人接替机器人座位，继承手牌与名次
func (t *Table) ReplaceBot(botID string, human *Player) error {
	i := t.SeatOf(botID)
	if i < 0 || !t.Players[i].IsBot {
		return ErrBotNotFound.WithContext("bot_id", botID)
	}
	t.Players[i] = human
	moveKey(t.Hands, botID, human.ID)
	moveKey(t.PassStreaks, botID, human.ID)
	moveKey(t.Finished, botID, human.ID)
	moveKey(t.Standing, botID, human.ID)
	moveKey(t.PendingGive, botID, human.ID)
	for _, g := range t.PendingGive {
		if g.To == botID {
			g.To = human.ID
		}
	}
	for _, ob := range []*Obligation{t.PendingDiscard, t.PendingSwap, t.PendingTake} {
		if ob != nil && ob.PlayerID == botID {
			ob.PlayerID = human.ID
		}
	}
	if t.LastPlayer == botID {
		t.LastPlayer = human.ID
	}
	if t.LastNonNullPlayer == botID {
		t.LastNonNullPlayer = human.ID
	}
	t.out.emit(EventBotSlotJoined, map[string]any{
		"bot_id":    botID,
		"player_id": human.ID,
		"name":      human.Name,
	})
	return nil
}

func moveKey[V any](m map[string]V, from, to string) {
	if v, ok := m[from]; ok {
		delete(m, from)
		m[to] = v
	}
}

// SetRules 更新规则
func (t *Table) SetRules(r Rules) {
	t.Rules = r
}

// TakeOver 将真人座位交给机器人代管
func (t *Table) TakeOver(playerID string) (*Player, error) {
	p := t.Player(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound.WithContext("player_id", playerID)
	}
	p.IsBot = true
	p.TakenOver = true
	t.out.emit(EventPlayerTakenOver, map[string]any{"player_id": playerID, "by_bot": true})
	return p, nil
}

// Release 解除代管
func (t *Table) Release(playerID string) (*Player, error) {
	p := t.Player(playerID)
	if p == nil {
		return nil, ErrPlayerNotFound.WithContext("player_id", playerID)
	}
	p.IsBot = false
	p.TakenOver = false
	t.out.emit(EventPlayerReleased, map[string]any{"player_id": playerID})
	return p, nil
}

// activeCount 仍有手牌的座位数
func (t *Table) activeCount() int {
	n := 0
	for _, p := range t.Players {
		if len(t.Hands[p.ID]) > 0 {
			n++
		}
	}
	return n
}

// requireTurn 校验牌局已开始且轮到该玩家
func (t *Table) requireTurn(playerID string) (int, error) {
	if !t.Started {
		return -1, ErrGameNotStarted
	}
	cur := t.CurrentPlayer()
	if cur == nil || cur.ID != playerID {
		return -1, ErrNotYourTurn.WithContext("player_id", playerID)
	}
	return t.CurrentTurn, nil
}

// retireCenter 中央牌离场
func (t *Table) retireCenter() {
	t.Discarded = append(t.Discarded, t.Center.Cards...)
	t.Center = card.Combination{}
}

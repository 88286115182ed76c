package room

import (
	"context"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

// PlayerView 公开的座位信息
type PlayerView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name,omitempty"`
	Tone        daifugo.Tone       `json:"tone,omitempty"`
	Difficulty  daifugo.Difficulty `json:"difficulty,omitempty"`
	IsBot       bool               `json:"is_bot"`
	TakenOver   bool               `json:"taken_over"`
	HandCount   int                `json:"hand_count"`
}

// GiveView 请求者需要完成的名次交牌
type GiveView struct {
	To          string `json:"to"`
	ToName      string `json:"to_name"`
	Count       int    `json:"count"`
	Allowed     bool   `json:"allowed"`
	ToHandCount int    `json:"to_hand_count"`
	ToIsBot     bool   `json:"to_is_bot"`
	ToRank      *int   `json:"to_rank,omitempty"`
}

// StateView 房间状态
type StateView struct {
	RoomID         string              `json:"room_id"`
	Phase          daifugo.Phase       `json:"phase"`
	Started        bool                `json:"started"`
	GameOver       bool                `json:"game_over"`
	Round          int                 `json:"round"`
	Players        []PlayerView        `json:"players"`
	Center         []card.Card         `json:"center"`
	CenterKind     string              `json:"center_kind"`
	CurrentTurn    int                 `json:"current_turn"`
	CurrentPlayer  string              `json:"current_player,omitempty"`
	Direction      daifugo.Direction   `json:"direction"`
	Revolution     bool                `json:"revolution"`
	LastPlayer     string              `json:"last_player,omitempty"`
	PendingDiscard *daifugo.Obligation `json:"pending_discard,omitempty"`
	PendingSwap    *daifugo.Obligation `json:"pending_swap,omitempty"`
	PendingTake    *daifugo.Obligation `json:"pending_take,omitempty"`
	PendingGive    *GiveView           `json:"pending_give,omitempty"`
	Finished       map[string]int      `json:"finished"`
	Standing       []daifugo.Result    `json:"standing,omitempty"`
	Rules          map[string]bool     `json:"rules"`
	YourHand       []card.Card         `json:"your_hand,omitempty"`
	Messages       []Message           `json:"messages"`
	TurnStartedAt  int64               `json:"turn_started_at,omitempty"` // 毫秒时间戳
}

// GetRoomState 房间状态；playerID 非空时附带该玩家的手牌，并记为一次心跳
func (s *Service) GetRoomState(ctx context.Context, roomID, playerID string) (*StateView, error) {
	var (
		v      *StateView
		seated bool
	)
	err := s.view(roomID, func(r *Room) error {
		v = stateOf(r, playerID)
		seated = playerID != "" && r.table.Player(playerID) != nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if seated {
		s.touchPresence(ctx, roomID, playerID)
	}
	return v, nil
}

func stateOf(r *Room, playerID string) *StateView {
	t := r.table
	v := &StateView{
		RoomID:      r.id,
		Phase:       t.Phase(),
		Started:     t.Started,
		GameOver:    t.GameOver,
		Round:       t.Round,
		Center:      card.Clone(t.Center.Cards),
		CenterKind:  t.Center.Kind.String(),
		CurrentTurn: t.CurrentTurn,
		Direction:   t.Direction,
		Revolution:  t.Revolution,
		LastPlayer:  t.LastPlayer,
		Finished:    make(map[string]int, len(t.Finished)),
		Rules:       t.Rules.Map(),
		Messages:    append([]Message(nil), r.messages...),
	}
	for id, rank := range t.Finished {
		v.Finished[id] = rank
	}
	if len(t.Standing) > 0 {
		v.Standing = t.StandingResults()
	}
	for _, ob := range []struct {
		src *daifugo.Obligation
		dst **daifugo.Obligation
	}{
		{t.PendingDiscard, &v.PendingDiscard},
		{t.PendingSwap, &v.PendingSwap},
		{t.PendingTake, &v.PendingTake},
	} {
		if ob.src != nil {
			c := *ob.src
			*ob.dst = &c
		}
	}
	if t.Started {
		if cur := t.CurrentPlayer(); cur != nil {
			v.CurrentPlayer = cur.ID
		}
		v.TurnStartedAt = t.TurnStartedAt.UnixMilli()
	}

	for _, p := range t.Players {
		v.Players = append(v.Players, PlayerView{
			ID:          p.ID,
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Tone:        p.Tone,
			Difficulty:  p.Difficulty,
			IsBot:       p.IsBot,
			TakenOver:   p.TakenOver,
			HandCount:   len(t.Hands[p.ID]),
		})
	}

	if playerID == "" || t.Player(playerID) == nil {
		return v
	}
	v.YourHand = t.Hand(playerID)
	card.SortByRank(v.YourHand)

	if g := t.PendingGive[playerID]; g != nil {
		gv := &GiveView{
			To:          g.To,
			Count:       g.Count,
			Allowed:     g.Allowed,
			ToHandCount: len(t.Hands[g.To]),
		}
		if to := t.Player(g.To); to != nil {
			gv.ToName = to.Label()
			gv.ToIsBot = to.IsBot
		}
		if rank, ok := t.Standing[g.To]; ok {
			gv.ToRank = &rank
		} else if rank, ok := t.Finished[g.To]; ok {
			gv.ToRank = &rank
		}
		v.PendingGive = gv
	}
	return v
}

package room

import (
	"context"
	"time"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

// Snapshot 超时监控看到的房间状态
type Snapshot struct {
	RoomID        string
	Started       bool
	CurrentID     string
	CurrentIsBot  bool
	TurnStartedAt time.Time
	// AutoPass 规则开启、中央有 2、当前真人没有王牌
	AutoPass  bool
	TakenOver []string
}

// Snapshots 所有房间的快照
func (s *Service) Snapshots() []Snapshot {
	rooms := s.manager.Rooms()
	out := make([]Snapshot, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		out = append(out, snapshotOf(r))
		r.mu.Unlock()
	}
	return out
}

func snapshotOf(r *Room) Snapshot {
	t := r.table
	snap := Snapshot{
		RoomID:        r.id,
		Started:       t.Started,
		TurnStartedAt: t.TurnStartedAt,
	}
	for _, p := range t.Players {
		if p.TakenOver {
			snap.TakenOver = append(snap.TakenOver, p.ID)
		}
	}
	if cur := t.CurrentPlayer(); cur != nil && t.Started {
		snap.CurrentID = cur.ID
		snap.CurrentIsBot = cur.IsBot
		snap.AutoPass = !cur.IsBot &&
			t.Rules.AutoPassNoJokerVsTwo &&
			t.Center.HasRank(card.Rank2) &&
			card.CountJokers(t.Hands[cur.ID]) == 0
	}
	return snap
}

// Heartbeat 玩家心跳
func (s *Service) Heartbeat(ctx context.Context, roomID, playerID string) error {
	err := s.view(roomID, func(r *Room) error {
		if r.table.Player(playerID) == nil {
			return daifugo.ErrPlayerNotFound.WithContext("player_id", playerID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.touchPresence(ctx, roomID, playerID)
	return nil
}

// TakeoverPlayer 由机器人代管真人座位
func (s *Service) TakeoverPlayer(ctx context.Context, roomID, playerID string) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		p := r.table.Player(playerID)
		if p == nil {
			return daifugo.ErrPlayerNotFound.WithContext("player_id", playerID)
		}
		if p.IsOriginalBot() {
			return daifugo.ErrInvalidTarget.WithContext("player_id", playerID)
		}
		if p.TakenOver {
			return nil
		}
		if _, err := r.table.TakeOver(playerID); err != nil {
			return err
		}
		s.logger.Info("Player taken over", "roomId", roomID, "playerId", playerID)
		if n, ok := newContactNotice(roomID, p, ReasonTakeover); ok {
			r.pending.notices = append(r.pending.notices, n)
		}
		return nil
	})
}

// ReleaseTakeover 解除代管
func (s *Service) ReleaseTakeover(ctx context.Context, roomID, playerID string) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		p := r.table.Player(playerID)
		if p == nil {
			return daifugo.ErrPlayerNotFound.WithContext("player_id", playerID)
		}
		if !p.TakenOver {
			return nil
		}
		if _, err := r.table.Release(playerID); err != nil {
			return err
		}
		s.logger.Info("Player released", "roomId", roomID, "playerId", playerID)
		if n, ok := newContactNotice(roomID, p, ReasonRelease); ok {
			r.pending.notices = append(r.pending.notices, n)
		}
		return nil
	})
}

// ForcePass 超时或自动 pass：仅当该真人仍在同一回合持有出牌权时生效
func (s *Service) ForcePass(ctx context.Context, roomID, playerID string, turnStartedAt time.Time) error {
	return s.mutate(ctx, roomID, func(r *Room) error {
		t := r.table
		cur := t.CurrentPlayer()
		if !t.Started || cur == nil || cur.ID != playerID || cur.IsBot || !t.TurnStartedAt.Equal(turnStartedAt) {
			return nil
		}
		s.logger.Info("Forcing pass", "roomId", roomID, "playerId", playerID)
		return t.Pass(playerID)
	})
}

// DispatchBots 轮到机器人而尚未安排行动时安排行动
func (s *Service) DispatchBots(ctx context.Context, roomID string) error {
	return s.run(ctx, roomID, false, func(r *Room) error {
		return nil
	})
}

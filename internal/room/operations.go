package room

import (
	"context"

	"sudooom.daifugo/internal/game/card"
	"sudooom.daifugo/internal/game/daifugo"
)

// act 执行玩家操作，成功后记为一次心跳
func (s *Service) act(ctx context.Context, roomID, playerID string, fn func(t *daifugo.Table) error) error {
	err := s.mutate(ctx, roomID, func(r *Room) error {
		return fn(r.table)
	})
	if err != nil {
		s.logger.Debug("Player action rejected", "roomId", roomID, "playerId", playerID, "error", err)
		return err
	}
	s.touchPresence(ctx, roomID, playerID)
	return nil
}

// Play 出牌，出 Q 时 target 为大量弃牌的点数
func (s *Service) Play(ctx context.Context, roomID, playerID string, cards []card.Card, target *card.Rank) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Play(playerID, cards, target)
	})
}

// Pass 过牌
func (s *Service) Pass(ctx context.Context, roomID, playerID string) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Pass(playerID)
	})
}

// Discard 10 之后弃牌
func (s *Service) Discard(ctx context.Context, roomID, playerID string, c card.Card) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Discard(playerID, c)
	})
}

// Give 7 之后送牌，direction 为空时与出牌方向相反
func (s *Service) Give(ctx context.Context, roomID, playerID string, c card.Card, direction string) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Give(playerID, c, direction)
	})
}

// Swap 4 之后与指定玩家交换一张牌
func (s *Service) Swap(ctx context.Context, roomID, playerID, targetID string, give, take card.Card) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Swap(playerID, targetID, give, take)
	})
}

// Take A 之后从指定玩家手中抽一张牌
func (s *Service) Take(ctx context.Context, roomID, playerID, targetID string, take card.Card) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.Take(playerID, targetID, take)
	})
}

// SubmitGive 按上局名次交牌
func (s *Service) SubmitGive(ctx context.Context, roomID, playerID string, cards []card.Card) error {
	return s.act(ctx, roomID, playerID, func(t *daifugo.Table) error {
		return t.SubmitGive(playerID, cards)
	})
}
